package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/hanxue/hanxue-api/internal/redact"
	"github.com/hanxue/hanxue-api/internal/store"
)

// StreakSweeper resets lapsed streaks.
type StreakSweeper struct {
	counters store.UserCountersStore
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewStreakSweeper creates a sweeper counting days in loc.
func NewStreakSweeper(counters store.UserCountersStore, loc *time.Location, logger *slog.Logger) *StreakSweeper {
	if counters == nil {
		panic("counters store cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StreakSweeper{
		counters: counters,
		loc:      loc,
		now:      time.Now,
		logger:   logger.With("component", "streak_sweeper"),
	}
}

// Cutoff returns the first day a streak must include to stay alive: yesterday
// in the study time zone.
func (s *StreakSweeper) Cutoff() domain.Date {
	return domain.DateOf(s.now(), s.loc).AddDays(-1)
}

// Run performs one sweep and returns the number of streaks reset.
func (s *StreakSweeper) Run(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff()
	log := logger.FromContextOrDefault(ctx, s.logger)

	n, err := s.counters.ExpireStreaks(ctx, cutoff)
	if err != nil {
		log.Error("streak sweep failed",
			redact.ErrorAttr(err),
			slog.String("cutoff", cutoff.String()))
		return 0, fmt.Errorf("expire streaks before %s: %w", cutoff, err)
	}

	log.Info("streak sweep completed",
		slog.String("cutoff", cutoff.String()),
		slog.Int64("streaks_reset", n))
	return n, nil
}
