// Package review orchestrates vocabulary reviews: it validates a rating, runs
// the SRS scheduler and persists progress, streak and XP in one transaction.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/store"
)

// ReviewInput is one graded recall attempt.
type ReviewInput struct {
	VocabularyID int64
	Quality      int
	ResponseMs   *int
}

// ReviewResult is everything a client needs after submitting a review.
type ReviewResult struct {
	Progress      *domain.ReviewProgress
	MasteryTier   int
	Streak        domain.StreakState
	StreakChanged bool
	XPAwarded     int
	TotalXP       int64
	Description   string
}

// ListQuery narrows due and new listings. A zero Limit selects the configured
// default; larger values are capped at the configured maximum.
type ListQuery struct {
	Limit    int
	HSKLevel *int
}

// Stats summarizes a learner's progress.
type Stats struct {
	TotalLearned        int         `json:"total_learned"`
	Mastered            int         `json:"mastered"`
	DueToday            int         `json:"due_today"`
	AvgMastery          float64     `json:"avg_mastery"`
	TotalReviews        int         `json:"total_reviews"`
	Accuracy            int         `json:"accuracy"`
	MasteryDistribution map[int]int `json:"mastery_distribution"`
	HSKDistribution     map[int]int `json:"hsk_distribution"`
}

// ReviewService is the application boundary for spaced-repetition reviews.
type ReviewService interface {
	// SubmitReview records a review of input.VocabularyID by userID.
	//
	// The rating is validated before any storage access. The progress row and
	// the user's counters are locked, updated and committed together, so either
	// the schedule, streak and XP all change or none of them do.
	//
	// Returns:
	//   - ErrInvalidReview if the quality or response time is out of range
	//   - ErrVocabularyNotFound if the vocabulary item does not exist
	//   - ErrReviewConflict if a concurrent first review of the same item won
	SubmitReview(ctx context.Context, userID uuid.UUID, input ReviewInput) (*ReviewResult, error)

	// GetDue lists items whose next review is due, earliest first.
	GetDue(ctx context.Context, userID uuid.UUID, query ListQuery) ([]domain.VocabularyProgress, error)

	// GetNew lists items the user has never reviewed, most frequent first.
	GetNew(ctx context.Context, userID uuid.UUID, query ListQuery) ([]domain.Vocabulary, error)

	// GetProgress returns the user's progress on one item.
	// Returns ErrProgressNotFound if the item has not been reviewed yet.
	GetProgress(ctx context.Context, userID uuid.UUID, vocabularyID int64) (*domain.VocabularyProgress, error)

	// GetStats aggregates the user's progress.
	GetStats(ctx context.Context, userID uuid.UUID) (*Stats, error)

	// GetCounters returns the user's streak and XP. Users without any review
	// get zero counters.
	GetCounters(ctx context.Context, userID uuid.UUID) (*domain.UserCounters, error)
}

// Common error types for ReviewService
var (
	// ErrInvalidReview indicates the submitted rating or latency is invalid.
	ErrInvalidReview = fmt.Errorf("%w: invalid review", domain.ErrValidation)

	// ErrInvalidQuery indicates an invalid listing filter.
	ErrInvalidQuery = fmt.Errorf("%w: invalid query", domain.ErrValidation)

	// ErrVocabularyNotFound indicates the reviewed item does not exist.
	ErrVocabularyNotFound = store.ErrVocabularyNotFound

	// ErrProgressNotFound indicates the user has not reviewed the item.
	ErrProgressNotFound = store.ErrProgressNotFound

	// ErrReviewConflict indicates another transaction created the progress row
	// first. Retrying the review succeeds.
	ErrReviewConflict = errors.New("concurrent review of the same item")
)

// ServiceError wraps errors from the review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review", "get_due")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
