package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetTenantFromContext(r.Context())))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth(map[string]string{"acme": "secret-1", "globex": "secret-2"})(okHandler())

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"bearer", "/v1/acme/analyze", "Bearer secret-1", http.StatusOK, "acme"},
		{"bare key", "/v1/globex/analyze", "secret-2", http.StatusOK, "globex"},
		{"missing", "/v1/acme/analyze", "", http.StatusUnauthorized, ""},
		{"wrong", "/v1/acme/analyze", "Bearer nope", http.StatusUnauthorized, ""},
		{"probe skips auth", "/health", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAPIKeyAuth_DisabledWithoutKeys(t *testing.T) {
	h := APIKeyAuth(nil)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/acme/analyze", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTenantAllowed(t *testing.T) {
	assert.True(t, TenantAllowed(context.Background(), "anyone"))

	ctx := context.WithValue(context.Background(), TenantKey, "acme")
	assert.True(t, TenantAllowed(ctx, "acme"))
	assert.False(t, TenantAllowed(ctx, "globex"))
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(0.001, 2)(okHandler())

	do := func(path, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("/v1/a/analyze", "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, do("/v1/a/analyze", "10.0.0.1:1001").Code)
	rec := do("/v1/a/analyze", "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// other clients keep their own bucket
	assert.Equal(t, http.StatusOK, do("/v1/a/analyze", "10.0.0.2:1000").Code)
	// probes are never limited
	assert.Equal(t, http.StatusOK, do("/health", "10.0.0.1:1003").Code)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/acme/analyze", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http.request", line["msg"])
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.Equal(t, float64(5), line["bytes"])
	assert.Equal(t, "/v1/acme/analyze", line["path"])
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := HealthHandler(map[string]HealthChecker{
			"archive": CheckFunc(func(context.Context) error { return nil }),
			"db":      nil,
		})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "healthy", got.Status)
		assert.Contains(t, got.Checks, "archive")
		assert.NotContains(t, got.Checks, "db")
	})

	t.Run("unhealthy", func(t *testing.T) {
		h := HealthHandler(map[string]HealthChecker{
			"db": CheckFunc(func(context.Context) error { return errors.New("connection refused") }),
		})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var got HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "unhealthy", got.Checks["db"].Status)
		assert.Equal(t, "connection refused", got.Checks["db"].Message)
	})
}

func TestMetrics(t *testing.T) {
	before := GetMetrics()

	done := IncrementAnalyses()
	IncrementModelFailures("parse")
	IncrementModelFailures("parse")
	done(true)

	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	after := GetMetrics()
	assert.Equal(t, before["analyses_total"].(uint64)+1, after["analyses_total"])
	assert.Equal(t, before["analyses_failed"].(uint64)+1, after["analyses_failed"])
	assert.Equal(t, before["analyses_running"], after["analyses_running"])
	assert.Equal(t, before["requests_failed"].(uint64)+1, after["requests_failed"])
	assert.GreaterOrEqual(t, after["model_failures"].(map[string]uint64)["parse"], uint64(2))
}
