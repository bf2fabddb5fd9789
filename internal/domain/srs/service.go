package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/hanxue/hanxue-api/internal/domain"
)

// Common errors
var (
	ErrInvalidQuality      = fmt.Errorf("%w: quality must be between 0 and 5", domain.ErrValidation)
	ErrInvalidResponseTime = fmt.Errorf("%w: response time cannot be negative", domain.ErrValidation)
	ErrNilCounters         = errors.New("user counters cannot be nil")
	ErrNilParams           = errors.New("srs params cannot be nil")
)

// StreakResult is the outcome of counting a study day.
type StreakResult struct {
	State   domain.StreakState
	Changed bool
}

// Reward is what a single review contributed to the user's counters.
type Reward struct {
	XPAwarded     int
	StreakChanged bool
}

// Service defines the interface for SRS algorithm operations. All methods are
// pure: they never touch storage and never modify their arguments, except
// ApplyReview which updates the counters it is handed.
type Service interface {
	// ScheduleReview computes the progress after a review. prior is nil for an
	// item seen for the first time; the result then carries no user or
	// vocabulary ID.
	ScheduleReview(
		prior *domain.ReviewProgress,
		quality int,
		responseMs *int,
		now time.Time,
	) (*domain.ReviewProgress, error)

	// AdvanceStreak counts today as a study day. prior may be nil.
	AdvanceStreak(today domain.Date, prior *domain.StreakState) StreakResult

	// XPForQuality returns the XP earned by a rating.
	XPForQuality(quality int) int

	// ApplyReview advances the streak and adds the XP of one review to
	// counters in place.
	ApplyReview(counters *domain.UserCounters, quality int, today domain.Date) (Reward, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

var _ Service = (*defaultService)(nil)

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrNilParams
	}
	return &defaultService{params: params}, nil
}

// ValidateQuality reports ErrInvalidQuality for ratings outside [0,5].
func ValidateQuality(quality int) error {
	if quality < MinQuality || quality > MaxQuality {
		return ErrInvalidQuality
	}
	return nil
}

// ScheduleReview implements Service.
func (s *defaultService) ScheduleReview(
	prior *domain.ReviewProgress,
	quality int,
	responseMs *int,
	now time.Time,
) (*domain.ReviewProgress, error) {
	if err := ValidateQuality(quality); err != nil {
		return nil, err
	}
	if responseMs != nil && *responseMs < 0 {
		return nil, ErrInvalidResponseTime
	}

	return calculateNextProgress(prior, quality, responseMs, now, s.params), nil
}

// AdvanceStreak implements Service.
func (s *defaultService) AdvanceStreak(today domain.Date, prior *domain.StreakState) StreakResult {
	var state domain.StreakState
	if prior != nil {
		state = *prior
	}
	next, changed := advanceStreak(state, today)
	return StreakResult{State: next, Changed: changed}
}

// XPForQuality implements Service.
func (s *defaultService) XPForQuality(quality int) int {
	return xpForQuality(quality, s.params)
}

// ApplyReview implements Service.
func (s *defaultService) ApplyReview(
	counters *domain.UserCounters,
	quality int,
	today domain.Date,
) (Reward, error) {
	if counters == nil {
		return Reward{}, ErrNilCounters
	}
	if err := ValidateQuality(quality); err != nil {
		return Reward{}, err
	}

	streak := s.AdvanceStreak(today, &counters.Streak)
	xp := s.XPForQuality(quality)
	if err := counters.AddXP(xp); err != nil {
		return Reward{}, err
	}
	counters.Streak = streak.State

	return Reward{XPAwarded: xp, StreakChanged: streak.Changed}, nil
}
