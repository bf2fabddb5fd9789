package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/hanxue/hanxue-api/internal/redact"
	"github.com/hanxue/hanxue-api/internal/store"
)

// PostgresReviewProgressStore implements store.ReviewProgressStore on the
// user_vocabulary_progress table.
type PostgresReviewProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewProgressStore creates a new PostgreSQL implementation of the ReviewProgressStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReviewProgressStore(db store.DBTX, logger *slog.Logger) *PostgresReviewProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_progress_store")),
	}
}

// Ensure PostgresReviewProgressStore implements store.ReviewProgressStore interface
var _ store.ReviewProgressStore = (*PostgresReviewProgressStore)(nil)

// WithTx implements store.ReviewProgressStore.WithTx
func (s *PostgresReviewProgressStore) WithTx(tx *sql.Tx) store.ReviewProgressStore {
	return &PostgresReviewProgressStore{db: tx, logger: s.logger}
}

const progressColumns = `p.user_id, p.vocabulary_id, p.ease_factor, p.repetitions, p.interval_days,
		p.next_review, p.times_seen, p.times_correct, p.times_wrong, p.avg_response_ms,
		p.last_reviewed, p.created_at, p.updated_at`

// progressDest returns scan destinations in progressColumns order.
func progressDest(p *domain.ReviewProgress, avg *sql.NullInt32) []any {
	return []any{
		&p.UserID, &p.VocabularyID, &p.EaseFactor, &p.Repetitions, &p.IntervalDays,
		&p.NextReviewAt, &p.TimesSeen, &p.TimesCorrect, &p.TimesWrong, avg,
		&p.LastReviewedAt, &p.CreatedAt, &p.UpdatedAt,
	}
}

func applyAvg(p *domain.ReviewProgress, avg sql.NullInt32) {
	if avg.Valid {
		v := int(avg.Int32)
		p.AvgResponseMs = &v
	} else {
		p.AvgResponseMs = nil
	}
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// Get implements store.ReviewProgressStore.Get
func (s *PostgresReviewProgressStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	vocabularyID int64,
) (*domain.ReviewProgress, error) {
	return s.get(ctx, userID, vocabularyID, false)
}

// GetForUpdate implements store.ReviewProgressStore.GetForUpdate
func (s *PostgresReviewProgressStore) GetForUpdate(
	ctx context.Context,
	userID uuid.UUID,
	vocabularyID int64,
) (*domain.ReviewProgress, error) {
	return s.get(ctx, userID, vocabularyID, true)
}

func (s *PostgresReviewProgressStore) get(
	ctx context.Context,
	userID uuid.UUID,
	vocabularyID int64,
	forUpdate bool,
) (*domain.ReviewProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := "SELECT " + progressColumns + `
		FROM user_vocabulary_progress p
		WHERE p.user_id = $1 AND p.vocabulary_id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var p domain.ReviewProgress
	var avg sql.NullInt32
	err := s.db.QueryRowContext(ctx, query, userID, vocabularyID).Scan(progressDest(&p, &avg)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("review progress not found",
				slog.String("user_id", userID.String()),
				slog.Int64("vocabulary_id", vocabularyID))
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get review progress",
			redact.ErrorAttr(err),
			slog.String("user_id", userID.String()),
			slog.Int64("vocabulary_id", vocabularyID))
		return nil, MapError(err)
	}
	applyAvg(&p, avg)

	return &p, nil
}

// Create implements store.ReviewProgressStore.Create
func (s *PostgresReviewProgressStore) Create(ctx context.Context, p *domain.ReviewProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("review progress validation failed during create", redact.ErrorAttr(err))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_vocabulary_progress (
			user_id, vocabulary_id, ease_factor, repetitions, interval_days, next_review,
			mastery_level, times_seen, times_correct, times_wrong, avg_response_ms,
			last_reviewed, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.UserID,
		p.VocabularyID,
		p.EaseFactor,
		p.Repetitions,
		p.IntervalDays,
		p.NextReviewAt,
		p.MasteryTier(),
		p.TimesSeen,
		p.TimesCorrect,
		p.TimesWrong,
		nullableInt(p.AvgResponseMs),
		p.LastReviewedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create review progress",
			redact.ErrorAttr(err),
			slog.String("user_id", p.UserID.String()),
			slog.Int64("vocabulary_id", p.VocabularyID))
		return MapUniqueViolation(err, store.ErrProgressExists)
	}

	log.Debug("review progress created",
		slog.String("user_id", p.UserID.String()),
		slog.Int64("vocabulary_id", p.VocabularyID))
	return nil
}

// Update implements store.ReviewProgressStore.Update
func (s *PostgresReviewProgressStore) Update(ctx context.Context, p *domain.ReviewProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("review progress validation failed during update", redact.ErrorAttr(err))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE user_vocabulary_progress
		SET ease_factor = $1, repetitions = $2, interval_days = $3, next_review = $4,
			mastery_level = $5, times_seen = $6, times_correct = $7, times_wrong = $8,
			avg_response_ms = $9, last_reviewed = $10, updated_at = $11
		WHERE user_id = $12 AND vocabulary_id = $13
	`
	result, err := s.db.ExecContext(ctx, query,
		p.EaseFactor,
		p.Repetitions,
		p.IntervalDays,
		p.NextReviewAt,
		p.MasteryTier(),
		p.TimesSeen,
		p.TimesCorrect,
		p.TimesWrong,
		nullableInt(p.AvgResponseMs),
		p.LastReviewedAt,
		p.UpdatedAt,
		p.UserID,
		p.VocabularyID,
	)
	if err != nil {
		log.Error("failed to update review progress",
			redact.ErrorAttr(err),
			slog.String("user_id", p.UserID.String()),
			slog.Int64("vocabulary_id", p.VocabularyID))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrProgressNotFound)
}

// ListDue implements store.ReviewProgressStore.ListDue
func (s *PostgresReviewProgressStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	filter store.ListFilter,
) ([]domain.VocabularyProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var q strings.Builder
	q.WriteString("SELECT " + vocabularyColumns + ", " + progressColumns + `
		FROM user_vocabulary_progress p
		JOIN vocabulary v ON v.id = p.vocabulary_id
		WHERE p.user_id = $1 AND p.next_review <= $2`)
	args := []any{userID, now.UTC()}
	if filter.HSKLevel != nil {
		args = append(args, *filter.HSKLevel)
		fmt.Fprintf(&q, " AND v.hsk_level = $%d", len(args))
	}
	args = append(args, filter.Limit)
	fmt.Fprintf(&q, " ORDER BY p.next_review ASC, p.mastery_level ASC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		log.Error("failed to list due vocabulary",
			redact.ErrorAttr(err),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]domain.VocabularyProgress, 0, filter.Limit)
	for rows.Next() {
		var item domain.VocabularyProgress
		var n vocabularyNulls
		var avg sql.NullInt32
		dest := append(n.dest(&item.Vocabulary), progressDest(&item.Progress, &avg)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, MapError(err)
		}
		n.apply(&item.Vocabulary)
		applyAvg(&item.Progress, avg)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("listed due vocabulary",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(items)))
	return items, nil
}

// ListNew implements store.ReviewProgressStore.ListNew
func (s *PostgresReviewProgressStore) ListNew(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ListFilter,
) ([]domain.Vocabulary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var q strings.Builder
	q.WriteString("SELECT " + vocabularyColumns + `
		FROM vocabulary v
		WHERE NOT EXISTS (
			SELECT 1 FROM user_vocabulary_progress p
			WHERE p.user_id = $1 AND p.vocabulary_id = v.id
		)
		AND v.meaning_vi IS NOT NULL AND v.meaning_vi <> ''`)
	args := []any{userID}
	if filter.HSKLevel != nil {
		args = append(args, *filter.HSKLevel)
		fmt.Fprintf(&q, " AND v.hsk_level = $%d", len(args))
	}
	args = append(args, filter.Limit)
	fmt.Fprintf(&q, " ORDER BY v.frequency_rank ASC NULLS LAST, v.hsk_level ASC, v.id ASC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		log.Error("failed to list new vocabulary",
			redact.ErrorAttr(err),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]domain.Vocabulary, 0, filter.Limit)
	for rows.Next() {
		var v domain.Vocabulary
		var n vocabularyNulls
		if err := rows.Scan(n.dest(&v)...); err != nil {
			return nil, MapError(err)
		}
		n.apply(&v)
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return items, nil
}

// Stats implements store.ReviewProgressStore.Stats
func (s *PostgresReviewProgressStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*store.ProgressStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stats := &store.ProgressStats{
		MasteryDistribution: map[int]int{},
		HSKDistribution:     map[int]int{},
	}

	overall := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN mastery_level >= 3 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN next_review <= $2 THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(mastery_level), 0)::DOUBLE PRECISION,
			COALESCE(SUM(times_seen), 0),
			COALESCE(SUM(times_correct), 0)
		FROM user_vocabulary_progress
		WHERE user_id = $1
	`
	err := s.db.QueryRowContext(ctx, overall, userID, now.UTC()).Scan(
		&stats.TotalLearned,
		&stats.Mastered,
		&stats.DueNow,
		&stats.AvgMastery,
		&stats.TotalReviews,
		&stats.TotalCorrect,
	)
	if err != nil {
		log.Error("failed to aggregate progress",
			redact.ErrorAttr(err),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	mastery := `
		SELECT mastery_level, COUNT(*)
		FROM user_vocabulary_progress
		WHERE user_id = $1
		GROUP BY mastery_level
	`
	if err := s.scanDistribution(ctx, mastery, userID, stats.MasteryDistribution); err != nil {
		log.Error("failed to get mastery distribution", redact.ErrorAttr(err))
		return nil, err
	}

	hsk := `
		SELECT v.hsk_level, COUNT(*)
		FROM user_vocabulary_progress p
		JOIN vocabulary v ON v.id = p.vocabulary_id
		WHERE p.user_id = $1
		GROUP BY v.hsk_level
	`
	if err := s.scanDistribution(ctx, hsk, userID, stats.HSKDistribution); err != nil {
		log.Error("failed to get HSK distribution", redact.ErrorAttr(err))
		return nil, err
	}

	return stats, nil
}

func (s *PostgresReviewProgressStore) scanDistribution(
	ctx context.Context,
	query string,
	userID uuid.UUID,
	into map[int]int,
) error {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, count int
		if err := rows.Scan(&key, &count); err != nil {
			return MapError(err)
		}
		into[key] = count
	}
	return MapError(rows.Err())
}
