package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/api/shared"
	"github.com/hanxue/hanxue-api/internal/config"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/hanxue/hanxue-api/internal/redact"
	"github.com/hanxue/hanxue-api/internal/service"
	"github.com/hanxue/hanxue-api/internal/service/auth"
	"github.com/hanxue/hanxue-api/internal/store"
)

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	userService      service.UserService
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	authConfig       config.AuthConfig
	now              func() time.Time
	logger           *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userService service.UserService,
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	authConfig config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if userService == nil || userStore == nil || jwtService == nil || passwordVerifier == nil {
		panic("auth handler dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		userService:      userService,
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		authConfig:       authConfig,
		now:              time.Now,
		logger:           logger.With("component", "auth_handler"),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	targetHSK := 0
	if req.TargetHSK != nil {
		targetHSK = *req.TargetHSK
	}

	user, err := h.userService.RegisterUser(r.Context(), req.Email, req.Password, req.DisplayName, targetHSK)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	resp, err := h.issueTokens(r, user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
		User:         userToResponse(user),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err,
				shared.WithElevatedLogLevel())
			return
		}
		log.Error("failed to get user by email", redact.ErrorAttr(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", nil,
			shared.WithElevatedLogLevel())
		return
	}

	resp, err := h.issueTokens(r, user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	log.Info("user logged in", "user_id", user.ID)
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
		User:         userToResponse(user),
	})
}

// RefreshToken handles POST /api/auth/refresh. The refresh token is rotated:
// the response carries a new access token and a new refresh token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredRefreshToken),
			errors.Is(err, auth.ErrInvalidRefreshToken),
			errors.Is(err, auth.ErrWrongTokenType):
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid refresh token", err,
				shared.WithElevatedLogLevel())
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to refresh token", err)
		}
		return
	}

	// Deleted accounts must not keep minting tokens.
	if _, err := h.userStore.GetByID(r.Context(), claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			HandleAPIError(w, r, domain.ErrUnauthorized, "")
			return
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	resp, err := h.issueTokens(r, claims.UserID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

func (h *AuthHandler) issueTokens(r *http.Request, userID uuid.UUID) (RefreshTokenResponse, error) {
	accessToken, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		return RefreshTokenResponse{}, err
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), userID)
	if err != nil {
		return RefreshTokenResponse{}, err
	}
	expiresAt := h.now().Add(time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute)
	return RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.UTC().Format(time.RFC3339),
	}, nil
}
