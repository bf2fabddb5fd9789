package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/api/shared"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/mocks"
	"github.com/hanxue/hanxue-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthHandler(userStore *mocks.MockUserStore, jwtService *mocks.MockJWTService) *AuthHandler {
	h := NewAuthHandler(
		newTestUserService(userStore),
		userStore,
		jwtService,
		&mocks.MockPasswordVerifier{},
		testAuthConfig,
		discardLogger(),
	)
	h.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	return h
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		h := newTestAuthHandler(userStore, &mocks.MockJWTService{})

		rr := httptest.NewRecorder()
		h.Register(rr, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
			"email":       "New@Example.com",
			"password":    "password123",
			"displayName": "Lan",
			"targetHsk":   3,
		}))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		resp := decodeBody[AuthResponse](t, rr)
		assert.Equal(t, "new@example.com", resp.User.Email)
		assert.Equal(t, "Lan", resp.User.DisplayName)
		assert.Equal(t, 3, resp.User.TargetHSK)
		assert.Equal(t, "access:"+resp.User.ID.String(), resp.AccessToken)
		assert.Equal(t, "refresh:"+resp.User.ID.String(), resp.RefreshToken)
		assert.Equal(t, "2026-03-02T10:15:00Z", resp.ExpiresAt)
		assert.Len(t, userStore.Users, 1)
	})

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
	}{
		{name: "malformed json", body: `{"email":`, wantStatus: http.StatusBadRequest, wantError: "Invalid request format"},
		{
			name:       "invalid email",
			body:       map[string]any{"email": "nope", "password": "password123"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid email: invalid email format",
		},
		{
			name:       "short password",
			body:       map[string]any{"email": "a@example.com", "password": "short"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid password: must be at least 8",
		},
		{
			name:       "target out of range",
			body:       map[string]any{"email": "a@example.com", "password": "password123", "targetHsk": 10},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid targetHsk: must be at most 9",
		},
		{
			name:       "duplicate email",
			body:       map[string]any{"email": "learner@example.com", "password": "password123"},
			wantStatus: http.StatusConflict,
			wantError:  "Email already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestAuthHandler(mocks.NewMockUserStore(seededUser()), &mocks.MockJWTService{})

			rr := httptest.NewRecorder()
			h.Register(rr, jsonRequest(t, http.MethodPost, "/api/auth/register", tt.body))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantError, decodeBody[shared.ErrorResponse](t, rr).Error)
		})
	}

	t.Run("token failure", func(t *testing.T) {
		t.Parallel()
		h := newTestAuthHandler(mocks.NewMockUserStore(), &mocks.MockJWTService{Err: errors.New("signing failed")})

		rr := httptest.NewRecorder()
		h.Register(rr, jsonRequest(t, http.MethodPost, "/api/auth/register",
			map[string]any{"email": "a@example.com", "password": "password123"}))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "signing failed")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{name: "success", email: "learner@example.com", password: "password123", wantStatus: http.StatusOK},
		{name: "email is case-insensitive", email: "Learner@Example.com", password: "password123", wantStatus: http.StatusOK},
		{name: "wrong password", email: "learner@example.com", password: "wrong-password", wantStatus: http.StatusUnauthorized},
		{name: "unknown user", email: "ghost@example.com", password: "password123", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			user := seededUser()
			h := newTestAuthHandler(mocks.NewMockUserStore(user), &mocks.MockJWTService{})

			rr := httptest.NewRecorder()
			h.Login(rr, jsonRequest(t, http.MethodPost, "/api/auth/login",
				LoginRequest{Email: tt.email, Password: tt.password}))

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusOK {
				resp := decodeBody[AuthResponse](t, rr)
				assert.Equal(t, user.ID, resp.User.ID)
				assert.NotEmpty(t, resp.AccessToken)
				assert.NotEmpty(t, resp.RefreshToken)
			} else {
				// Unknown users and wrong passwords are indistinguishable.
				assert.Equal(t, "Invalid credentials", decodeBody[shared.ErrorResponse](t, rr).Error)
			}
		})
	}

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		userStore.GetByEmailFn = func(context.Context, string) (*domain.User, error) {
			return nil, errors.New("connection refused")
		}
		h := newTestAuthHandler(userStore, &mocks.MockJWTService{})

		rr := httptest.NewRecorder()
		h.Login(rr, jsonRequest(t, http.MethodPost, "/api/auth/login",
			LoginRequest{Email: "a@example.com", Password: "password123"}))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("rotates tokens", func(t *testing.T) {
		t.Parallel()
		user := seededUser()
		jwtService := &mocks.MockJWTService{}
		h := newTestAuthHandler(mocks.NewMockUserStore(user), jwtService)

		rr := httptest.NewRecorder()
		h.RefreshToken(rr, jsonRequest(t, http.MethodPost, "/api/auth/refresh",
			RefreshTokenRequest{RefreshToken: "refresh:" + user.ID.String()}))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decodeBody[RefreshTokenResponse](t, rr)
		assert.Equal(t, "access:"+user.ID.String(), resp.AccessToken)
		assert.Equal(t, "refresh:"+user.ID.String(), resp.RefreshToken)
		assert.Equal(t, "2026-03-02T10:15:00Z", resp.ExpiresAt)
		assert.Equal(t, []uuid.UUID{user.ID}, jwtService.GeneratedFor)
	})

	tests := []struct {
		name       string
		token      string
		validate   func(context.Context, string) (*auth.Claims, error)
		wantStatus int
	}{
		{name: "access token rejected", token: "access:" + uuid.NewString(), wantStatus: http.StatusUnauthorized},
		{name: "garbage", token: "garbage", wantStatus: http.StatusUnauthorized},
		{
			name:  "expired",
			token: "anything",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, auth.ErrExpiredRefreshToken
			},
			wantStatus: http.StatusUnauthorized,
		},
		{name: "deleted user", token: "refresh:" + uuid.NewString(), wantStatus: http.StatusUnauthorized},
		{
			name:  "unexpected failure",
			token: "anything",
			validate: func(context.Context, string) (*auth.Claims, error) {
				return nil, errors.New("boom")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			jwtService := &mocks.MockJWTService{ValidateRefreshTokenFn: tt.validate}
			h := newTestAuthHandler(mocks.NewMockUserStore(seededUser()), jwtService)

			rr := httptest.NewRecorder()
			h.RefreshToken(rr, jsonRequest(t, http.MethodPost, "/api/auth/refresh",
				RefreshTokenRequest{RefreshToken: tt.token}))

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		h := newTestAuthHandler(mocks.NewMockUserStore(), &mocks.MockJWTService{})

		rr := httptest.NewRecorder()
		h.RefreshToken(rr, jsonRequest(t, http.MethodPost, "/api/auth/refresh", map[string]string{}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid refreshToken: required field", decodeBody[shared.ErrorResponse](t, rr).Error)
	})
}
