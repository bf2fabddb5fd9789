package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/config"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/domain/srs"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/hanxue/hanxue-api/internal/redact"
	"github.com/hanxue/hanxue-api/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	vocabulary store.VocabularyStore
	progress   store.ReviewProgressStore
	counters   store.UserCountersStore
	runInTx    store.TxRunner
	srsService srs.Service
	limits     config.SRSConfig
	location   *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// Option customizes a review service.
type Option func(*reviewServiceImpl)

// WithClock replaces time.Now as the source of the review timestamp and of
// the study day.
func WithClock(now func() time.Time) Option {
	return func(s *reviewServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// NewReviewService creates a new ReviewService implementation. Study days are
// counted in the time zone named by cfg.Timezone.
func NewReviewService(
	vocabulary store.VocabularyStore,
	progress store.ReviewProgressStore,
	counters store.UserCountersStore,
	runInTx store.TxRunner,
	srsService srs.Service,
	cfg config.SRSConfig,
	logger *slog.Logger,
	opts ...Option,
) (ReviewService, error) {
	if vocabulary == nil {
		panic("vocabulary store cannot be nil")
	}
	if progress == nil {
		panic("progress store cannot be nil")
	}
	if counters == nil {
		panic("counters store cannot be nil")
	}
	if runInTx == nil {
		panic("transaction runner cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid study time zone %q: %w", cfg.Timezone, err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &reviewServiceImpl{
		vocabulary: vocabulary,
		progress:   progress,
		counters:   counters,
		runInTx:    runInTx,
		srsService: srsService,
		limits:     cfg,
		location:   loc,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SubmitReview implements ReviewService.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	input ReviewInput,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.Int64("vocabulary_id", input.VocabularyID))

	if err := validateInput(userID, input); err != nil {
		log.Warn("invalid review submitted",
			slog.Int("quality", input.Quality),
			redact.ErrorAttr(err))
		return nil, err
	}

	exists, err := s.vocabulary.Exists(ctx, input.VocabularyID)
	if err != nil {
		return nil, NewServiceError("submit_review", "failed to check vocabulary", err)
	}
	if !exists {
		log.Debug("review of unknown vocabulary")
		return nil, ErrVocabularyNotFound
	}

	// One clock reading drives both the schedule and the study day.
	now := s.now().UTC()
	today := domain.DateOf(now, s.location)

	var result *ReviewResult
	err = s.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		progressStore := s.progress.WithTx(tx)
		countersStore := s.counters.WithTx(tx)

		prior, err := progressStore.GetForUpdate(ctx, userID, input.VocabularyID)
		if err != nil {
			if !errors.Is(err, store.ErrProgressNotFound) {
				return fmt.Errorf("failed to get progress: %w", err)
			}
			prior = nil
		}

		next, err := s.srsService.ScheduleReview(prior, input.Quality, input.ResponseMs, now)
		if err != nil {
			return fmt.Errorf("failed to schedule review: %w", err)
		}
		next.UserID = userID
		next.VocabularyID = input.VocabularyID

		if prior == nil {
			if err := progressStore.Create(ctx, next); err != nil {
				if errors.Is(err, store.ErrProgressExists) {
					return ErrReviewConflict
				}
				return fmt.Errorf("failed to create progress: %w", err)
			}
		} else if err := progressStore.Update(ctx, next); err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}

		counters, err := countersStore.GetForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get counters: %w", err)
		}

		reward, err := s.srsService.ApplyReview(counters, input.Quality, today)
		if err != nil {
			return fmt.Errorf("failed to apply review to counters: %w", err)
		}

		if err := countersStore.Save(ctx, counters); err != nil {
			return fmt.Errorf("failed to save counters: %w", err)
		}

		result = &ReviewResult{
			Progress:      next,
			MasteryTier:   next.MasteryTier(),
			Streak:        counters.Streak,
			StreakChanged: reward.StreakChanged,
			XPAwarded:     reward.XPAwarded,
			TotalXP:       counters.TotalXP,
			Description:   srs.QualityDescription(input.Quality),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrReviewConflict) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		log.Error("failed to submit review", redact.ErrorAttr(err))
		return nil, NewServiceError("submit_review", "failed to record review", err)
	}

	log.Debug("review recorded",
		slog.Int("quality", input.Quality),
		slog.Float64("ease_factor", result.Progress.EaseFactor),
		slog.Int("interval_days", result.Progress.IntervalDays),
		slog.Int("current_streak", result.Streak.CurrentStreak),
		slog.Int("xp_awarded", result.XPAwarded))

	return result, nil
}

func validateInput(userID uuid.UUID, input ReviewInput) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrInvalidReview, domain.ErrEmptyUserID)
	}
	if input.VocabularyID <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidReview, domain.ErrInvalidVocabularyID)
	}
	if err := srs.ValidateQuality(input.Quality); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}
	if input.ResponseMs != nil && *input.ResponseMs < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidReview, srs.ErrInvalidResponseTime)
	}
	return nil
}

// GetDue implements ReviewService.GetDue.
func (s *reviewServiceImpl) GetDue(
	ctx context.Context,
	userID uuid.UUID,
	query ListQuery,
) ([]domain.VocabularyProgress, error) {
	filter, err := s.filter(query, s.limits.DueLimitDefault, s.limits.DueLimitMax)
	if err != nil {
		return nil, err
	}

	items, err := s.progress.ListDue(ctx, userID, s.now().UTC(), filter)
	if err != nil {
		return nil, NewServiceError("get_due", "failed to list due vocabulary", err)
	}
	return items, nil
}

// GetNew implements ReviewService.GetNew.
func (s *reviewServiceImpl) GetNew(
	ctx context.Context,
	userID uuid.UUID,
	query ListQuery,
) ([]domain.Vocabulary, error) {
	filter, err := s.filter(query, s.limits.NewLimitDefault, s.limits.NewLimitMax)
	if err != nil {
		return nil, err
	}

	items, err := s.progress.ListNew(ctx, userID, filter)
	if err != nil {
		return nil, NewServiceError("get_new", "failed to list new vocabulary", err)
	}
	return items, nil
}

func (s *reviewServiceImpl) filter(query ListQuery, def, maxLimit int) (store.ListFilter, error) {
	if query.HSKLevel != nil && (*query.HSKLevel < domain.MinHSKLevel || *query.HSKLevel > domain.MaxHSKLevel) {
		return store.ListFilter{}, fmt.Errorf("%w: %w", ErrInvalidQuery, domain.ErrInvalidTargetHSK)
	}
	return store.ListFilter{Limit: clampLimit(query.Limit, def, maxLimit), HSKLevel: query.HSKLevel}, nil
}

// clampLimit maps non-positive limits to def and caps the rest at maxLimit.
func clampLimit(limit, def, maxLimit int) int {
	switch {
	case limit <= 0:
		return def
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}

// GetProgress implements ReviewService.GetProgress.
func (s *reviewServiceImpl) GetProgress(
	ctx context.Context,
	userID uuid.UUID,
	vocabularyID int64,
) (*domain.VocabularyProgress, error) {
	progress, err := s.progress.Get(ctx, userID, vocabularyID)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, NewServiceError("get_progress", "failed to get progress", err)
	}

	vocab, err := s.vocabulary.GetByID(ctx, vocabularyID)
	if err != nil {
		if errors.Is(err, store.ErrVocabularyNotFound) {
			return nil, ErrVocabularyNotFound
		}
		return nil, NewServiceError("get_progress", "failed to get vocabulary", err)
	}

	return &domain.VocabularyProgress{Vocabulary: *vocab, Progress: *progress}, nil
}

// GetStats implements ReviewService.GetStats.
func (s *reviewServiceImpl) GetStats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	raw, err := s.progress.Stats(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, NewServiceError("get_stats", "failed to aggregate progress", err)
	}

	accuracy := 0
	if raw.TotalReviews > 0 {
		accuracy = int(math.Round(float64(raw.TotalCorrect) / float64(raw.TotalReviews) * 100))
	}

	return &Stats{
		TotalLearned:        raw.TotalLearned,
		Mastered:            raw.Mastered,
		DueToday:            raw.DueNow,
		AvgMastery:          math.Round(raw.AvgMastery*10) / 10,
		TotalReviews:        raw.TotalReviews,
		Accuracy:            accuracy,
		MasteryDistribution: nonNil(raw.MasteryDistribution),
		HSKDistribution:     nonNil(raw.HSKDistribution),
	}, nil
}

func nonNil(m map[int]int) map[int]int {
	if m == nil {
		return map[int]int{}
	}
	return m
}

// GetCounters implements ReviewService.GetCounters.
func (s *reviewServiceImpl) GetCounters(ctx context.Context, userID uuid.UUID) (*domain.UserCounters, error) {
	counters, err := s.counters.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrCountersNotFound) {
			return domain.NewUserCounters(userID), nil
		}
		return nil, NewServiceError("get_counters", "failed to get counters", err)
	}
	return counters, nil
}
