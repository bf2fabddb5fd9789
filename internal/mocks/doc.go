// Package mocks provides shared test doubles for the service and store
// interfaces.
//
// Most mocks follow one shape: a function field per method for per-test
// behaviour, default return values used when the field is nil, and call
// tracking guarded by a mutex so handlers under test may call them from the
// request goroutine:
//
//	reviews := &mocks.MockReviewService{
//	    SubmitReviewFn: func(ctx context.Context, userID uuid.UUID, in review.ReviewInput) (*review.ReviewResult, error) {
//	        return nil, review.ErrVocabularyNotFound
//	    },
//	}
//
// TestifyMockUserStore is the exception; it embeds mock.Mock for tests that
// prefer On/Return expectations.
package mocks
