package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/api/shared"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/hanxue/hanxue-api/internal/service/review"
)

// getUserIDFromContext extracts the authenticated user's UUID placed in the
// context by the authentication middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}

// requireUserID returns the authenticated user or writes a 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		logger.FromContext(r.Context()).Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

// getPathInt64 parses a positive integer path parameter.
func getPathInt64(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, domain.NewValidationError(paramName, "is required", nil)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", domain.ErrInvalidID)
	}
	return id, nil
}

// parseListQuery reads the optional limit and hsk query parameters. A missing
// or zero limit selects the service default; limits above the maximum are
// capped by the service.
func parseListQuery(r *http.Request) (review.ListQuery, error) {
	var query review.ListQuery
	values := r.URL.Query()

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return review.ListQuery{}, domain.NewValidationError("limit", "must be a non-negative integer", nil)
		}
		query.Limit = limit
	}

	if raw := values.Get("hsk"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			return review.ListQuery{}, domain.NewValidationError("hsk", "must be an integer", nil)
		}
		query.HSKLevel = &level
	}

	return query, nil
}

// decodeAndValidate decodes the JSON body into v and validates it, writing a
// 400 and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		logger.FromContext(r.Context()).Debug("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return false
	}
	return true
}
