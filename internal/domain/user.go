package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password length limits. 72 bytes is bcrypt's practical maximum.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// HSK levels a learner can target.
const (
	MinHSKLevel = 1
	MaxHSKLevel = 9
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrDisplayNameTooLong  = errors.New("display name must be at most 100 characters long")
	ErrInvalidTargetHSK    = errors.New("target HSK level must be between 1 and 9")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// User is a registered learner.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	TargetHSK      int       `json:"target_hsk"`
	Password       string    `json:"-"` // plaintext, only set during registration
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User with a fresh ID. The email is normalised to lower
// case and the display name defaults to the local part of the email.
//
// The plaintext password is kept on the struct; the store hashes it before
// persisting.
func NewUser(email, password, displayName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			displayName = email[:at]
		}
	}

	now := time.Now().UTC()
	user := &User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: displayName,
		TargetHSK:   MinHSKLevel,
		Password:    password,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}
	if len(u.DisplayName) > 100 {
		return ErrDisplayNameTooLong
	}
	if u.TargetHSK < MinHSKLevel || u.TargetHSK > MaxHSKLevel {
		return ErrInvalidTargetHSK
	}

	// A plaintext password is only present while registering or changing it;
	// persisted users carry the hash instead.
	if u.Password != "" {
		switch {
		case len(u.Password) < MinPasswordLength:
			return ErrPasswordTooShort
		case len(u.Password) > MaxPasswordLength:
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// validateEmailFormat accepts a bare address with a dotted domain.
func validateEmailFormat(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domainPart := email[at+1:]
	dot := strings.IndexByte(domainPart, '.')
	return dot > 0 && dot < len(domainPart)-1
}
