package logging_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pontaj/logging"
)

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			// GIVEN a JSON logger behind RequestID
			var buf bytes.Buffer
			logger := logging.New(logging.Config{Format: "json", Output: &buf})
			h := middleware.RequestID(logging.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})))

			// WHEN a request is served
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

			// THEN one line is logged at the matching level
			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.level, line["level"])
			assert.Equal(t, "HTTP request completed", line["msg"])
			assert.Equal(t, float64(tt.status), line["status"])
			assert.Equal(t, "/api/health", line["path"])
			assert.NotEmpty(t, line[logging.FieldRequestID])
		})
	}
}

func TestFromContext_FallsBackWithoutRequestLogger(t *testing.T) {
	// GIVEN a handler that reads the request logger
	fallback := logging.Discard()
	var got *logging.Logger
	h := logging.RequestLogger(fallback)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = logging.FromContext(r.Context(), nil)
	}))

	// WHEN served through the middleware
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// THEN the scoped logger is found, and a bare context yields the fallback
	require.NotNil(t, got)
	assert.Equal(t, logging.ComponentHTTP, got.Component())
	assert.Same(t, fallback, logging.FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context(), fallback))
}
