package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/hanxue/hanxue-api/internal/config"
)

// runTimeout bounds a single job execution.
const runTimeout = 5 * time.Minute

// StreakSweepTag identifies the streak sweep job.
const StreakSweepTag = "streak_sweep"

// Scheduler owns the gocron scheduler and the jobs registered on it.
type Scheduler struct {
	scheduler *gocron.Scheduler
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler registers the enabled jobs from cfg. Times of day are
// interpreted in loc.
func NewScheduler(
	cfg config.JobsConfig,
	loc *time.Location,
	sweeper *StreakSweeper,
	logger *slog.Logger,
) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := gocron.NewScheduler(loc)
	// A slow run must not overlap the next one.
	s.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	sched := &Scheduler{
		scheduler: s,
		logger:    logger.With("component", "scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}

	if cfg.StreakSweepEnabled {
		if sweeper == nil {
			cancel()
			return nil, fmt.Errorf("streak sweep enabled without a sweeper")
		}
		at := cfg.StreakSweepAt
		if at == "" {
			at = "00:05"
		}
		if _, err := s.Every(1).Day().At(at).Tag(StreakSweepTag).Do(sched.runSweep, sweeper); err != nil {
			cancel()
			return nil, fmt.Errorf("schedule streak sweep at %q: %w", at, err)
		}
		sched.logger.Info("scheduled streak sweep", slog.String("at", at), slog.String("tz", loc.String()))
	}

	return sched, nil
}

func (s *Scheduler) runSweep(sweeper *StreakSweeper) {
	ctx, cancel := context.WithTimeout(s.ctx, runTimeout)
	defer cancel()
	// Run logs its own outcome.
	_, _ = sweeper.Run(ctx)
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return s.scheduler.Len()
}

// NextRun returns when the job tagged tag runs next.
func (s *Scheduler) NextRun(tag string) (time.Time, bool) {
	jobs, err := s.scheduler.FindJobsByTag(tag)
	if err != nil || len(jobs) == 0 {
		return time.Time{}, false
	}
	return jobs[0].NextRun(), true
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
	s.logger.Info("job scheduler started", slog.Int("jobs", s.scheduler.Len()))
}

// Stop cancels running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
	s.logger.Info("job scheduler stopped")
}
