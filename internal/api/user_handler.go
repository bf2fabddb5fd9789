package api

import (
	"log/slog"
	"net/http"

	"github.com/hanxue/hanxue-api/internal/api/shared"
	"github.com/hanxue/hanxue-api/internal/service"
	"github.com/hanxue/hanxue-api/internal/service/review"
)

// UserHandler serves the account endpoints under /api/user.
type UserHandler struct {
	userService   service.UserService
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userService service.UserService,
	reviewService review.ReviewService,
	logger *slog.Logger,
) *UserHandler {
	if userService == nil {
		panic("userService cannot be nil")
	}
	if reviewService == nil {
		panic("reviewService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		userService:   userService,
		reviewService: reviewService,
		logger:        logger.With("component", "user_handler"),
	}
}

// GetStreak handles GET /api/user/streak.
func (h *UserHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	counters, err := h.reviewService.GetCounters(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get streak")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, streakToResponse(counters))
}

// GetProfile handles GET /api/user/profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}
	counters, err := h.reviewService.GetCounters(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{
		UserResponse:  userToResponse(user),
		TotalXP:       counters.TotalXP,
		CurrentStreak: counters.Streak.CurrentStreak,
	})
}

// UpdateProfile handles PATCH /api/user/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		DisplayName: req.DisplayName,
		TargetHSK:   req.TargetHSK,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// ChangePassword handles PUT /api/user/password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount handles DELETE /api/user.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
