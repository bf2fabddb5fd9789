package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hanxue/hanxue-api/internal/api/shared"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/hanxue/hanxue-api/internal/service/review"
)

// ProgressHandler serves the review and progress endpoints.
type ProgressHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(reviewService review.ReviewService, logger *slog.Logger) *ProgressHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		reviewService: reviewService,
		logger:        logger.With("component", "progress_handler"),
	}
}

// SubmitReview handles POST /api/progress/review.
func (h *ProgressHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.reviewService.SubmitReview(r.Context(), userID, review.ReviewInput{
		VocabularyID: *req.VocabID,
		Quality:      *req.Quality,
		ResponseMs:   req.ResponseMs,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("review recorded",
		"user_id", userID,
		"vocabulary_id", *req.VocabID,
		"quality", *req.Quality,
		"xp_awarded", result.XPAwarded)

	shared.RespondWithJSON(w, r, http.StatusOK, reviewResultToResponse(*req.Quality, result))
}

// GetDue handles GET /api/progress/due.
func (h *ProgressHandler) GetDue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	query, err := parseListQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.reviewService.GetDue(r.Context(), userID, query)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get due vocabulary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, dueItemsToResponse(items))
}

// GetNew handles GET /api/progress/new.
func (h *ProgressHandler) GetNew(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	query, err := parseListQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.reviewService.GetNew(r.Context(), userID, query)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get new vocabulary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newItemsToResponse(items))
}

// GetStats handles GET /api/progress/stats.
func (h *ProgressHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.reviewService.GetStats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, statsToResponse(stats))
}

// GetProgress handles GET /api/progress/{vocabId}. An item the user has not
// reviewed yields 200 with learned=false.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	vocabID, err := getPathInt64(r, "vocabId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	item, err := h.reviewService.GetProgress(r.Context(), userID, vocabID)
	if err != nil {
		if errors.Is(err, review.ErrProgressNotFound) {
			shared.RespondWithJSON(w, r, http.StatusOK, ItemProgressResponse{Learned: false})
			return
		}
		HandleAPIError(w, r, err, "Failed to get progress")
		return
	}

	progress := progressToResponse(&item.Progress)
	shared.RespondWithJSON(w, r, http.StatusOK, ItemProgressResponse{
		Learned:    true,
		VocabID:    item.ID,
		Simplified: item.Simplified,
		Pinyin:     item.Pinyin,
		MeaningVI:  item.MeaningVI,
		Progress:   &progress,
	})
}
