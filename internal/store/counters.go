package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/domain"
)

// UserCountersStore persists the per-user streak and XP aggregate.
type UserCountersStore interface {
	// Get retrieves the counters of userID.
	// Returns ErrCountersNotFound if the user has no counters row yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserCounters, error)

	// GetForUpdate returns the counters of userID locked until the surrounding
	// transaction ends, creating an empty row first if none exists. It must be
	// called on a store bound with WithTx.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.UserCounters, error)

	// Save writes the counters back.
	// Returns ErrCountersNotFound if the row does not exist.
	Save(ctx context.Context, counters *domain.UserCounters) error

	// ExpireStreaks zeroes the current streak of every user whose last study
	// date is before cutoff and returns how many users were affected.
	ExpireStreaks(ctx context.Context, cutoff domain.Date) (int64, error)

	// WithTx returns a new UserCountersStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserCountersStore
}
