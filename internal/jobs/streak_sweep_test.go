package jobs

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/config"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCounters records ExpireStreaks calls.
type fakeCounters struct {
	mu      sync.Mutex
	cutoffs []domain.Date
	n       int64
	err     error
}

func (f *fakeCounters) Get(context.Context, uuid.UUID) (*domain.UserCounters, error) {
	return nil, store.ErrCountersNotFound
}

func (f *fakeCounters) GetForUpdate(context.Context, uuid.UUID) (*domain.UserCounters, error) {
	return nil, store.ErrCountersNotFound
}

func (f *fakeCounters) Save(context.Context, *domain.UserCounters) error { return nil }

func (f *fakeCounters) ExpireStreaks(_ context.Context, cutoff domain.Date) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.n, f.err
}

func (f *fakeCounters) WithTx(*sql.Tx) store.UserCountersStore { return f }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStreakSweeper_CutoffUsesStudyTimeZone(t *testing.T) {
	t.Parallel()
	hcm, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	tests := []struct {
		name string
		now  time.Time
		loc  *time.Location
		want domain.Date
	}{
		{
			name: "utc",
			now:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: domain.NewDate(2026, 3, 9),
		},
		{
			// 18:30 UTC on the 10th is already the 11th in UTC+7.
			name: "local day ahead of utc",
			now:  time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC),
			loc:  hcm,
			want: domain.NewDate(2026, 3, 10),
		},
		{
			name: "month boundary",
			now:  time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: domain.NewDate(2026, 2, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewStreakSweeper(&fakeCounters{}, tt.loc, quietLogger())
			s.now = func() time.Time { return tt.now }

			assert.True(t, tt.want.Equal(s.Cutoff()), "got %s want %s", s.Cutoff(), tt.want)
		})
	}
}

func TestStreakSweeper_Run(t *testing.T) {
	t.Parallel()

	t.Run("passes cutoff and returns count", func(t *testing.T) {
		t.Parallel()
		counters := &fakeCounters{n: 3}
		s := NewStreakSweeper(counters, time.UTC, quietLogger())
		s.now = func() time.Time { return time.Date(2026, 5, 20, 0, 5, 0, 0, time.UTC) }

		n, err := s.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		require.Len(t, counters.cutoffs, 1)
		assert.Equal(t, "2026-05-19", counters.cutoffs[0].String())
	})

	t.Run("wraps store error", func(t *testing.T) {
		t.Parallel()
		dbErr := errors.New("connection reset")
		s := NewStreakSweeper(&fakeCounters{err: dbErr}, time.UTC, quietLogger())

		_, err := s.Run(context.Background())

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestNewStreakSweeper_NilStore(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewStreakSweeper(nil, time.UTC, nil) })
}

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	t.Run("disabled registers nothing", func(t *testing.T) {
		t.Parallel()
		s, err := NewScheduler(config.JobsConfig{}, time.UTC, nil, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, 0, s.Len())
		_, ok := s.NextRun(StreakSweepTag)
		assert.False(t, ok)
	})

	t.Run("enabled registers sweep", func(t *testing.T) {
		t.Parallel()
		sweeper := NewStreakSweeper(&fakeCounters{}, time.UTC, quietLogger())
		s, err := NewScheduler(config.JobsConfig{StreakSweepEnabled: true, StreakSweepAt: "03:30"},
			time.UTC, sweeper, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("enabled without sweeper", func(t *testing.T) {
		t.Parallel()
		_, err := NewScheduler(config.JobsConfig{StreakSweepEnabled: true}, time.UTC, nil, quietLogger())
		assert.Error(t, err)
	})

	t.Run("invalid time of day", func(t *testing.T) {
		t.Parallel()
		sweeper := NewStreakSweeper(&fakeCounters{}, time.UTC, quietLogger())
		_, err := NewScheduler(config.JobsConfig{StreakSweepEnabled: true, StreakSweepAt: "25:99"},
			time.UTC, sweeper, quietLogger())
		assert.Error(t, err)
	})
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()
	sweeper := NewStreakSweeper(&fakeCounters{}, time.UTC, quietLogger())
	s, err := NewScheduler(config.JobsConfig{StreakSweepEnabled: true, StreakSweepAt: "04:00"},
		time.UTC, sweeper, quietLogger())
	require.NoError(t, err)

	s.Start()
	next, ok := s.NextRun(StreakSweepTag)
	s.Stop()

	require.True(t, ok)
	assert.Equal(t, 4, next.In(time.UTC).Hour())
}
