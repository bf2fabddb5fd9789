package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceWithParams(t *testing.T) {
	t.Parallel()

	_, err := NewServiceWithParams(nil)
	assert.ErrorIs(t, err, ErrNilParams)

	svc, err := NewServiceWithParams(NewParams(ParamsConfig{LapseInterval: 2}))
	require.NoError(t, err)
	next, err := svc.ScheduleReview(nil, 0, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, next.IntervalDays)
}

func TestScheduleReview_InvalidInput(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	for _, q := range []int{-1, 6, 100} {
		next, err := svc.ScheduleReview(nil, q, nil, time.Now())
		assert.Nil(t, next)
		assert.ErrorIs(t, err, ErrInvalidQuality, "quality=%d", q)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	next, err := svc.ScheduleReview(nil, 3, intPtr(-5), time.Now())
	assert.Nil(t, next)
	assert.ErrorIs(t, err, ErrInvalidResponseTime)
}

func TestScheduleReview_ThreePerfectReviews(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	progress, err := domain.NewReviewProgress(uuid.New(), 1, now)
	require.NoError(t, err)

	var reps, intervals []int
	var efs []float64
	for i := 0; i < 3; i++ {
		progress, err = svc.ScheduleReview(progress, 5, nil, now)
		require.NoError(t, err)
		reps = append(reps, progress.Repetitions)
		intervals = append(intervals, progress.IntervalDays)
		efs = append(efs, progress.EaseFactor)
		now = progress.NextReviewAt
	}

	assert.Equal(t, []int{1, 2, 3}, reps)
	assert.Equal(t, []int{1, 6, 16}, intervals)
	assert.InDeltaSlice(t, []float64{2.6, 2.7, 2.8}, efs, 1e-9)
}

func TestScheduleReview_LapseScenario(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	progress, err := domain.NewReviewProgress(userID, 99, now)
	require.NoError(t, err)

	type snapshot struct {
		reps, interval, tier int
		ef                   float64
	}
	want := []snapshot{
		{reps: 1, interval: 1, tier: 1, ef: 2.6},
		{reps: 2, interval: 6, tier: 2, ef: 2.7},
		{reps: 3, interval: 16, tier: 2, ef: 2.8},
		{reps: 0, interval: 1, tier: 0, ef: 2.48},
		{reps: 1, interval: 1, tier: 1, ef: 2.58},
	}

	for i, q := range []int{5, 5, 5, 2, 5} {
		progress, err = svc.ScheduleReview(progress, q, nil, now)
		require.NoError(t, err)

		assert.Equal(t, want[i].reps, progress.Repetitions, "review %d repetitions", i+1)
		assert.Equal(t, want[i].interval, progress.IntervalDays, "review %d interval", i+1)
		assert.Equal(t, want[i].tier, progress.MasteryTier(), "review %d tier", i+1)
		assert.InDelta(t, want[i].ef, progress.EaseFactor, 1e-9, "review %d ease factor", i+1)
		assert.GreaterOrEqual(t, progress.EaseFactor, domain.MinEaseFactor)
		now = progress.NextReviewAt
	}

	assert.Equal(t, userID, progress.UserID)
	assert.Equal(t, int64(99), progress.VocabularyID)
	assert.Equal(t, 5, progress.TimesSeen)
	assert.Equal(t, 4, progress.TimesCorrect)
	assert.Equal(t, 1, progress.TimesWrong)
	require.NoError(t, progress.Validate())
}

func TestScheduleReview_EaseFactorFloorUnderRepeatedBlackouts(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	var progress *domain.ReviewProgress
	var err error
	for i := 0; i < 10; i++ {
		progress, err = svc.ScheduleReview(progress, 0, nil, time.Now())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, progress.EaseFactor, 1.3)
		assert.Zero(t, progress.Repetitions)
		assert.Equal(t, 1, progress.IntervalDays)
	}
	assert.InDelta(t, 1.3, progress.EaseFactor, 1e-9)
}

func TestApplyReview(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	today := domain.NewDate(2024, 5, 17)

	counters := domain.NewUserCounters(uuid.New())

	reward, err := svc.ApplyReview(counters, 5, today)
	require.NoError(t, err)
	assert.Equal(t, Reward{XPAwarded: 10, StreakChanged: true}, reward)
	assert.Equal(t, int64(10), counters.TotalXP)
	assert.Equal(t, 1, counters.Streak.CurrentStreak)

	// A failed recall still counts as studying but earns nothing.
	reward, err = svc.ApplyReview(counters, 1, today)
	require.NoError(t, err)
	assert.Equal(t, Reward{XPAwarded: 0, StreakChanged: false}, reward)
	assert.Equal(t, int64(10), counters.TotalXP)
	assert.Equal(t, 1, counters.Streak.TotalStudyDays)

	reward, err = svc.ApplyReview(counters, 4, today.AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, Reward{XPAwarded: 8, StreakChanged: true}, reward)
	assert.Equal(t, int64(18), counters.TotalXP)
	assert.Equal(t, 2, counters.Streak.CurrentStreak)
	assert.Equal(t, 2, counters.Streak.LongestStreak)
}

func TestApplyReview_Errors(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	_, err := svc.ApplyReview(nil, 5, domain.NewDate(2024, 1, 1))
	assert.ErrorIs(t, err, ErrNilCounters)

	counters := domain.NewUserCounters(uuid.New())
	_, err = svc.ApplyReview(counters, 7, domain.NewDate(2024, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidQuality)
	assert.Zero(t, counters.TotalXP)
	assert.Nil(t, counters.Streak.LastStudyDate)
}
