package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithActorKey(r.Context(), "user:alice")))
		})
	})
	r.Use(LoggingMiddleware(logger))
	r.Post("/api/deals/{id}/view", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/deals/d42/view", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, logs.Len())

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/deals/{id}/view", fields["route"])
	assert.Equal(t, "user:alice", fields["actor"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, int64(len(`{"success":true}`)), fields["size"])
}

func TestLoggingMiddleware_DifferentStatusCodes(t *testing.T) {
	statusCodes := []struct {
		code  int
		level zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusCreated, zapcore.InfoLevel},
		{http.StatusBadRequest, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.InfoLevel},
		{http.StatusInternalServerError, zapcore.WarnLevel},
	}

	for _, tt := range statusCodes {
		t.Run("Status"+strconv.Itoa(tt.code), func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			})

			req := httptest.NewRequest(http.MethodGet, "/unrouted", nil)
			w := httptest.NewRecorder()
			LoggingMiddleware(zap.New(core))(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, "/unrouted", entry.ContextMap()["route"])
			_, hasActor := entry.ContextMap()["actor"]
			assert.False(t, hasActor)
		})
	}
}

func TestLoggingResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	lw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	lw.WriteHeader(http.StatusAccepted)
	n, err := lw.Write([]byte("hello"))

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusAccepted, lw.statusCode)
	assert.Equal(t, 5, lw.size)
}
