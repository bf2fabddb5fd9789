package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Counter validation errors
var (
	ErrNegativeStreak      = errors.New("streak values cannot be negative")
	ErrLongestBelowCurrent = errors.New("longest streak cannot be below current streak")
	ErrNegativeXP          = errors.New("XP cannot be negative")
)

// StreakState tracks consecutive calendar days with at least one review.
type StreakState struct {
	CurrentStreak  int   `json:"current_streak"`
	LongestStreak  int   `json:"longest_streak"`
	TotalStudyDays int   `json:"total_study_days"`
	LastStudyDate  *Date `json:"last_study_date"`
}

// StudiedOn reports whether day has already been counted.
func (s StreakState) StudiedOn(day Date) bool {
	return s.LastStudyDate != nil && s.LastStudyDate.Equal(day)
}

// Validate checks the streak invariants.
func (s StreakState) Validate() error {
	if s.CurrentStreak < 0 || s.LongestStreak < 0 || s.TotalStudyDays < 0 {
		return NewValidationError("streak", "values cannot be negative", ErrNegativeStreak)
	}
	if s.LongestStreak < s.CurrentStreak {
		return NewValidationError("longest_streak", "cannot be below current streak", ErrLongestBelowCurrent)
	}
	return nil
}

// UserCounters is the per-user aggregate of streak and XP state. It is loaded,
// passed through review processing and saved as a unit.
type UserCounters struct {
	UserID    uuid.UUID   `json:"user_id"`
	Streak    StreakState `json:"streak"`
	TotalXP   int64       `json:"total_xp"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewUserCounters returns empty counters for userID.
func NewUserCounters(userID uuid.UUID) *UserCounters {
	return &UserCounters{UserID: userID, UpdatedAt: time.Now().UTC()}
}

// AddXP adds a non-negative amount to the running XP total.
func (c *UserCounters) AddXP(amount int) error {
	if amount < 0 {
		return NewValidationError("xp", "cannot be negative", ErrNegativeXP)
	}
	c.TotalXP += int64(amount)
	return nil
}

// Validate checks the counters invariants.
func (c *UserCounters) Validate() error {
	if c.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrEmptyUserID)
	}
	if c.TotalXP < 0 {
		return NewValidationError("total_xp", "cannot be negative", ErrNegativeXP)
	}
	return c.Streak.Validate()
}
