package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Defaults for an item that has never been reviewed. DefaultReviewProgress is
// the only place they are applied.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Mastery tiers are derived from the number of consecutive successful recalls.
const (
	MinMasteryTier = 0
	MaxMasteryTier = 5
)

// Progress validation errors
var (
	ErrInvalidVocabularyID = errors.New("vocabulary ID must be positive")
	ErrEaseFactorTooLow    = errors.New("ease factor must be at least 1.3")
	ErrNegativeRepetitions = errors.New("repetitions cannot be negative")
	ErrNegativeInterval    = errors.New("interval cannot be negative")
	ErrNegativeCounter     = errors.New("review counters cannot be negative")
	ErrNegativeResponse    = errors.New("response time cannot be negative")
)

// ReviewProgress is a learner's spaced-repetition state for one vocabulary
// item.
type ReviewProgress struct {
	UserID         uuid.UUID `json:"user_id"`
	VocabularyID   int64     `json:"vocabulary_id"`
	EaseFactor     float64   `json:"ease_factor"`
	Repetitions    int       `json:"repetitions"`
	IntervalDays   int       `json:"interval_days"`
	NextReviewAt   time.Time `json:"next_review_at"`
	TimesSeen      int       `json:"times_seen"`
	TimesCorrect   int       `json:"times_correct"`
	TimesWrong     int       `json:"times_wrong"`
	AvgResponseMs  *int      `json:"avg_response_ms,omitempty"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultReviewProgress returns the unowned starting state of an item that has
// never been reviewed: ease factor 2.5, no repetitions and no interval, due at
// now.
func DefaultReviewProgress(now time.Time) ReviewProgress {
	now = now.UTC()
	return ReviewProgress{
		EaseFactor:   DefaultEaseFactor,
		Repetitions:  0,
		IntervalDays: 0,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewReviewProgress returns the starting progress of userID on vocabularyID.
func NewReviewProgress(userID uuid.UUID, vocabularyID int64, now time.Time) (*ReviewProgress, error) {
	p := DefaultReviewProgress(now)
	p.UserID = userID
	p.VocabularyID = vocabularyID
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// MasteryTier returns the coarse 0-5 mastery bucket for the current
// repetition count.
func (p *ReviewProgress) MasteryTier() int {
	return MasteryTierFor(p.Repetitions)
}

// IsNew reports whether the item has never been reviewed.
func (p *ReviewProgress) IsNew() bool {
	return p.TimesSeen == 0
}

// Accuracy returns the share of correct reviews in [0,1], or 0 when the item
// has never been seen.
func (p *ReviewProgress) Accuracy() float64 {
	if p.TimesSeen == 0 {
		return 0
	}
	return float64(p.TimesCorrect) / float64(p.TimesSeen)
}

// Validate checks the invariants of a progress record.
func (p *ReviewProgress) Validate() error {
	switch {
	case p.UserID == uuid.Nil:
		return NewValidationError("user_id", "cannot be empty", ErrEmptyUserID)
	case p.VocabularyID <= 0:
		return NewValidationError("vocabulary_id", "must be positive", ErrInvalidVocabularyID)
	case p.EaseFactor < MinEaseFactor:
		return NewValidationError("ease_factor", "must be at least 1.3", ErrEaseFactorTooLow)
	case p.Repetitions < 0:
		return NewValidationError("repetitions", "cannot be negative", ErrNegativeRepetitions)
	case p.IntervalDays < 0:
		return NewValidationError("interval_days", "cannot be negative", ErrNegativeInterval)
	case p.TimesSeen < 0 || p.TimesCorrect < 0 || p.TimesWrong < 0:
		return NewValidationError("times_seen", "counters cannot be negative", ErrNegativeCounter)
	case p.AvgResponseMs != nil && *p.AvgResponseMs < 0:
		return NewValidationError("avg_response_ms", "cannot be negative", ErrNegativeResponse)
	}
	return nil
}

// MasteryTierFor maps a repetition count to its mastery tier:
// 0 for 0, 1 for 1, 2 for 2-3, 3 for 4-5, 4 for 6-7 and 5 from 8 on.
func MasteryTierFor(repetitions int) int {
	switch {
	case repetitions <= 0:
		return 0
	case repetitions == 1:
		return 1
	case repetitions >= 8:
		return MaxMasteryTier
	default:
		return repetitions/2 + 1
	}
}
