package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/domain"
)

// ListFilter narrows and caps due/new listings. A nil HSKLevel means all
// levels. Limit must already be clamped by the caller.
type ListFilter struct {
	Limit    int
	HSKLevel *int
}

// ProgressStats aggregates a user's progress rows. Mastered counts items at
// mastery tier 3 or above. The distributions only contain keys with items.
type ProgressStats struct {
	TotalLearned        int
	Mastered            int
	DueNow              int
	AvgMastery          float64
	TotalReviews        int
	TotalCorrect        int
	MasteryDistribution map[int]int
	HSKDistribution     map[int]int
}

// ReviewProgressStore defines persistence for per-item review progress.
type ReviewProgressStore interface {
	// Get retrieves the progress of userID on vocabularyID.
	// Returns ErrProgressNotFound if the user has never reviewed the item.
	Get(ctx context.Context, userID uuid.UUID, vocabularyID int64) (*domain.ReviewProgress, error)

	// GetForUpdate is Get with a row lock held until the surrounding
	// transaction ends. It must be called on a store bound with WithTx.
	GetForUpdate(ctx context.Context, userID uuid.UUID, vocabularyID int64) (*domain.ReviewProgress, error)

	// Create inserts a first progress row.
	// Returns ErrProgressExists if one already exists for the pair.
	Create(ctx context.Context, progress *domain.ReviewProgress) error

	// Update overwrites an existing progress row.
	// Returns ErrProgressNotFound if the row does not exist.
	Update(ctx context.Context, progress *domain.ReviewProgress) error

	// ListDue returns items whose next review is at or before now, earliest
	// first and, on ties, least mastered first.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, filter ListFilter) ([]domain.VocabularyProgress, error)

	// ListNew returns vocabulary the user has never reviewed and that has a
	// Vietnamese meaning, most frequent first.
	ListNew(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]domain.Vocabulary, error)

	// Stats aggregates all progress of userID; "due" is relative to now.
	Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*ProgressStats, error)

	// WithTx returns a new ReviewProgressStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewProgressStore
}
