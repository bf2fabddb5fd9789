package store

import (
	"context"
	"database/sql"

	"github.com/hanxue/hanxue-api/internal/domain"
)

// VocabularyStore provides read access to the vocabulary catalogue.
type VocabularyStore interface {
	// Exists reports whether a vocabulary item with id exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// GetByID retrieves a vocabulary item.
	// Returns ErrVocabularyNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Vocabulary, error)

	// WithTx returns a new VocabularyStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) VocabularyStore
}
