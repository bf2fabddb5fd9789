package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  Learner@Example.com ", "correcthorse", "")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "learner@example.com", user.Email)
	assert.Equal(t, "learner", user.DisplayName, "display name defaults to the email local part")
	assert.Equal(t, MinHSKLevel, user.TargetHSK)
	assert.Equal(t, "correcthorse", user.Password)
	assert.Empty(t, user.HashedPassword)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestNewUser_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty email", "", "correcthorse", ErrEmptyEmail},
		{"missing at", "learner.example.com", "correcthorse", ErrInvalidEmail},
		{"missing domain dot", "learner@example", "correcthorse", ErrInvalidEmail},
		{"display form", "Learner <learner@example.com>", "correcthorse", ErrInvalidEmail},
		{"empty password", "learner@example.com", "", ErrEmptyPassword},
		{"short password", "learner@example.com", "short", ErrPasswordTooShort},
		{"long password", "learner@example.com", strings.Repeat("a", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			user, err := NewUser(tt.email, tt.password, "")
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	valid := User{
		ID:             uuid.New(),
		Email:          "learner@example.com",
		DisplayName:    "Learner",
		TargetHSK:      3,
		HashedPassword: "$2a$10$hash",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(u *User)
		want   error
	}{
		{"nil id", func(u *User) { u.ID = uuid.Nil }, ErrEmptyUserID},
		{"no password or hash", func(u *User) { u.HashedPassword = "" }, ErrEmptyPassword},
		{"target hsk too low", func(u *User) { u.TargetHSK = 0 }, ErrInvalidTargetHSK},
		{"target hsk too high", func(u *User) { u.TargetHSK = 10 }, ErrInvalidTargetHSK},
		{"display name too long", func(u *User) { u.DisplayName = strings.Repeat("x", 101) }, ErrDisplayNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := valid
			tt.mutate(&u)
			assert.ErrorIs(t, u.Validate(), tt.want)
		})
	}
}
