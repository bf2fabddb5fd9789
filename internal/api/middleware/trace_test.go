package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hanxue/hanxue-api/internal/api/shared"
	"github.com/hanxue/hanxue-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware_GeneratesTraceAndLogger(t *testing.T) {
	t.Parallel()
	buf, log := logger.NewTestLogger(t)

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	NewTraceMiddleware(log)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Len(t, traceID, 32)
	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "inside handler", entries[0]["msg"])
	assert.Equal(t, traceID, entries[0]["trace_id"])
	assert.Equal(t, "request completed", entries[1]["msg"])
	assert.EqualValues(t, http.StatusTeapot, entries[1]["status"])
}

func TestTraceMiddleware_ReusesChiRequestID(t *testing.T) {
	t.Parallel()
	_, log := logger.NewTestLogger(t)

	var traceID, reqID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		reqID = chimw.GetReqID(r.Context())
	})

	handler := chimw.RequestID(NewTraceMiddleware(log)(next))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, reqID)
	assert.Equal(t, reqID, traceID)
}
