package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/hanxue/hanxue-api/internal/redact"
	"github.com/hanxue/hanxue-api/internal/store"
)

// PostgresVocabularyStore implements store.VocabularyStore.
type PostgresVocabularyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabularyStore creates a new PostgreSQL implementation of the VocabularyStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresVocabularyStore(db store.DBTX, logger *slog.Logger) *PostgresVocabularyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresVocabularyStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocabulary_store")),
	}
}

var _ store.VocabularyStore = (*PostgresVocabularyStore)(nil)

// WithTx implements store.VocabularyStore.WithTx
func (s *PostgresVocabularyStore) WithTx(tx *sql.Tx) store.VocabularyStore {
	return &PostgresVocabularyStore{db: tx, logger: s.logger}
}

// Exists implements store.VocabularyStore.Exists
func (s *PostgresVocabularyStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM vocabulary WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check vocabulary",
			redact.ErrorAttr(err),
			slog.Int64("vocabulary_id", id))
		return false, MapError(err)
	}
	return exists, nil
}

// vocabularyColumns is shared with the progress listings, prefixed with the
// table alias used there.
const vocabularyColumns = `v.id, v.simplified, v.traditional, v.pinyin, v.han_viet,
		v.meaning_vi, v.meaning_en, v.hsk_level, v.audio_url, v.frequency_rank`

// GetByID implements store.VocabularyStore.GetByID
func (s *PostgresVocabularyStore) GetByID(ctx context.Context, id int64) (*domain.Vocabulary, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+vocabularyColumns+" FROM vocabulary v WHERE v.id = $1", id)

	var v domain.Vocabulary
	var n vocabularyNulls
	if err := row.Scan(n.dest(&v)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrVocabularyNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get vocabulary",
			redact.ErrorAttr(err),
			slog.Int64("vocabulary_id", id))
		return nil, MapError(err)
	}
	n.apply(&v)
	return &v, nil
}

// vocabularyNulls holds the nullable columns of a vocabulary row while it is
// scanned.
type vocabularyNulls struct {
	traditional, hanViet, meaningVI, meaningEN, audioURL sql.NullString
	frequencyRank                                        sql.NullInt32
}

// dest returns scan destinations in vocabularyColumns order.
func (n *vocabularyNulls) dest(v *domain.Vocabulary) []any {
	return []any{
		&v.ID, &v.Simplified, &n.traditional, &v.Pinyin, &n.hanViet,
		&n.meaningVI, &n.meaningEN, &v.HSKLevel, &n.audioURL, &n.frequencyRank,
	}
}

// apply copies the scanned nullable values into v.
func (n *vocabularyNulls) apply(v *domain.Vocabulary) {
	v.Traditional = n.traditional.String
	v.HanViet = n.hanViet.String
	v.MeaningVI = n.meaningVI.String
	v.MeaningEN = n.meaningEN.String
	v.AudioURL = n.audioURL.String
	if n.frequencyRank.Valid {
		rank := int(n.frequencyRank.Int32)
		v.FrequencyRank = &rank
	} else {
		v.FrequencyRank = nil
	}
}
