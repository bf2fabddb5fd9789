package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/hanxue/hanxue-api/internal/redact"
	"github.com/hanxue/hanxue-api/internal/store"
)

// PostgresUserCountersStore implements store.UserCountersStore on the
// user_counters table.
type PostgresUserCountersStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserCountersStore creates a new PostgreSQL implementation of the UserCountersStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresUserCountersStore(db store.DBTX, logger *slog.Logger) *PostgresUserCountersStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserCountersStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_counters_store")),
	}
}

var _ store.UserCountersStore = (*PostgresUserCountersStore)(nil)

// WithTx implements store.UserCountersStore.WithTx
func (s *PostgresUserCountersStore) WithTx(tx *sql.Tx) store.UserCountersStore {
	return &PostgresUserCountersStore{db: tx, logger: s.logger}
}

const countersSelect = `
	SELECT user_id, current_streak, longest_streak, total_study_days, last_study_date, total_xp, updated_at
	FROM user_counters
	WHERE user_id = $1`

// Get implements store.UserCountersStore.Get
func (s *PostgresUserCountersStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserCounters, error) {
	return s.get(ctx, countersSelect, userID)
}

// GetForUpdate implements store.UserCountersStore.GetForUpdate
// The insert is a no-op when the row exists, so concurrent first reviews of
// one user both end up locking the same row.
func (s *PostgresUserCountersStore) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserCounters, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_counters (user_id, updated_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to ensure user counters row",
			redact.ErrorAttr(err),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return s.get(ctx, countersSelect+" FOR UPDATE", userID)
}

func (s *PostgresUserCountersStore) get(ctx context.Context, query string, userID uuid.UUID) (*domain.UserCounters, error) {
	var c domain.UserCounters
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&c.UserID,
		&c.Streak.CurrentStreak,
		&c.Streak.LongestStreak,
		&c.Streak.TotalStudyDays,
		&last,
		&c.TotalXP,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCountersNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user counters",
			redact.ErrorAttr(err),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	if last.Valid {
		// DATE columns arrive as midnight UTC.
		d := domain.DateOf(last.Time, time.UTC)
		c.Streak.LastStudyDate = &d
	}
	return &c, nil
}

// Save implements store.UserCountersStore.Save
func (s *PostgresUserCountersStore) Save(ctx context.Context, c *domain.UserCounters) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		log.Warn("user counters validation failed", redact.ErrorAttr(err))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var last any
	if c.Streak.LastStudyDate != nil {
		last = c.Streak.LastStudyDate.Time()
	}
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE user_counters
		SET current_streak = $1, longest_streak = $2, total_study_days = $3,
			last_study_date = $4, total_xp = $5, updated_at = $6
		WHERE user_id = $7`,
		c.Streak.CurrentStreak,
		c.Streak.LongestStreak,
		c.Streak.TotalStudyDays,
		last,
		c.TotalXP,
		c.UpdatedAt,
		c.UserID,
	)
	if err != nil {
		log.Error("failed to save user counters",
			redact.ErrorAttr(err),
			slog.String("user_id", c.UserID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCountersNotFound)
}

// ExpireStreaks implements store.UserCountersStore.ExpireStreaks
func (s *PostgresUserCountersStore) ExpireStreaks(ctx context.Context, cutoff domain.Date) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE user_counters
		SET current_streak = 0, updated_at = $2
		WHERE current_streak > 0 AND last_study_date < $1`,
		cutoff.Time(), time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to expire streaks", redact.ErrorAttr(err))
		return 0, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("expired streaks",
		slog.String("cutoff", cutoff.String()),
		slog.Int64("users", n))
	return n, nil
}
