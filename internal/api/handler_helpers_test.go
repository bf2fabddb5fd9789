package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hanxue/hanxue-api/internal/api/shared"
	"github.com/hanxue/hanxue-api/internal/config"
	"github.com/hanxue/hanxue-api/internal/domain"
	"github.com/hanxue/hanxue-api/internal/mocks"
	"github.com/hanxue/hanxue-api/internal/service"
	"github.com/hanxue/hanxue-api/internal/store"
	"github.com/stretchr/testify/require"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:                   "0123456789abcdef0123456789abcdef",
	TokenLifetimeMinutes:        15,
	RefreshTokenLifetimeMinutes: 60 * 24 * 7,
	BCryptCost:                  4,
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runDirect(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, (*sql.Tx)(nil))
}

func newTestUserService(userStore store.UserStore) service.UserService {
	return service.NewUserService(userStore, &mocks.MockPasswordVerifier{}, runDirect, discardLogger())
}

func seededUser() *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Email:          "learner@example.com",
		DisplayName:    "learner",
		TargetHSK:      2,
		HashedPassword: mocks.HashPrefix + "password123",
		CreatedAt:      time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authenticated(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(shared.WithUserID(req.Context(), userID))
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}
