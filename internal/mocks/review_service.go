package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/service/review"
)

// MockReviewService implements review.ReviewService for testing
type MockReviewService struct {
	// Custom behavior functions
	SubmitReviewFn func(ctx context.Context, userID uuid.UUID, input review.ReviewInput) (*review.ReviewResult, error)
	GetDueFn       func(ctx context.Context, userID uuid.UUID, query review.ListQuery) ([]domain.VocabularyProgress, error)
	GetNewFn       func(ctx context.Context, userID uuid.UUID, query review.ListQuery) ([]domain.Vocabulary, error)
	GetProgressFn  func(ctx context.Context, userID uuid.UUID, vocabularyID int64) (*domain.VocabularyProgress, error)
	GetStatsFn     func(ctx context.Context, userID uuid.UUID) (*review.Stats, error)
	GetCountersFn  func(ctx context.Context, userID uuid.UUID) (*domain.UserCounters, error)

	// Default response values
	Result   *review.ReviewResult
	Due      []domain.VocabularyProgress
	New      []domain.Vocabulary
	Progress *domain.VocabularyProgress
	Stats    *review.Stats
	Counters *domain.UserCounters
	Err      error

	// Call tracking for verification
	SubmitReviewCalls struct {
		mu      sync.Mutex
		Count   int
		UserIDs []uuid.UUID
		Inputs  []review.ReviewInput
	}

	ListCalls struct {
		mu      sync.Mutex
		Count   int
		Queries []review.ListQuery
	}
}

var _ review.ReviewService = (*MockReviewService)(nil)

// SubmitReview implements the review.ReviewService interface
func (m *MockReviewService) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	input review.ReviewInput,
) (*review.ReviewResult, error) {
	m.SubmitReviewCalls.mu.Lock()
	m.SubmitReviewCalls.Count++
	m.SubmitReviewCalls.UserIDs = append(m.SubmitReviewCalls.UserIDs, userID)
	m.SubmitReviewCalls.Inputs = append(m.SubmitReviewCalls.Inputs, input)
	m.SubmitReviewCalls.mu.Unlock()

	if m.SubmitReviewFn != nil {
		return m.SubmitReviewFn(ctx, userID, input)
	}
	return m.Result, m.Err
}

// GetDue implements the review.ReviewService interface
func (m *MockReviewService) GetDue(
	ctx context.Context,
	userID uuid.UUID,
	query review.ListQuery,
) ([]domain.VocabularyProgress, error) {
	m.trackList(query)
	if m.GetDueFn != nil {
		return m.GetDueFn(ctx, userID, query)
	}
	return m.Due, m.Err
}

// GetNew implements the review.ReviewService interface
func (m *MockReviewService) GetNew(
	ctx context.Context,
	userID uuid.UUID,
	query review.ListQuery,
) ([]domain.Vocabulary, error) {
	m.trackList(query)
	if m.GetNewFn != nil {
		return m.GetNewFn(ctx, userID, query)
	}
	return m.New, m.Err
}

// GetProgress implements the review.ReviewService interface
func (m *MockReviewService) GetProgress(
	ctx context.Context,
	userID uuid.UUID,
	vocabularyID int64,
) (*domain.VocabularyProgress, error) {
	if m.GetProgressFn != nil {
		return m.GetProgressFn(ctx, userID, vocabularyID)
	}
	return m.Progress, m.Err
}

// GetStats implements the review.ReviewService interface
func (m *MockReviewService) GetStats(ctx context.Context, userID uuid.UUID) (*review.Stats, error) {
	if m.GetStatsFn != nil {
		return m.GetStatsFn(ctx, userID)
	}
	return m.Stats, m.Err
}

// GetCounters implements the review.ReviewService interface
func (m *MockReviewService) GetCounters(ctx context.Context, userID uuid.UUID) (*domain.UserCounters, error) {
	if m.GetCountersFn != nil {
		return m.GetCountersFn(ctx, userID)
	}
	return m.Counters, m.Err
}

// SubmitReviewCount returns the number of SubmitReview calls.
func (m *MockReviewService) SubmitReviewCount() int {
	m.SubmitReviewCalls.mu.Lock()
	defer m.SubmitReviewCalls.mu.Unlock()
	return m.SubmitReviewCalls.Count
}

// LastListQuery returns the most recent GetDue or GetNew query.
func (m *MockReviewService) LastListQuery() (review.ListQuery, bool) {
	m.ListCalls.mu.Lock()
	defer m.ListCalls.mu.Unlock()
	if len(m.ListCalls.Queries) == 0 {
		return review.ListQuery{}, false
	}
	return m.ListCalls.Queries[len(m.ListCalls.Queries)-1], true
}

func (m *MockReviewService) trackList(query review.ListQuery) {
	m.ListCalls.mu.Lock()
	m.ListCalls.Count++
	m.ListCalls.Queries = append(m.ListCalls.Queries, query)
	m.ListCalls.mu.Unlock()
}
