package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/internal/api/handlers"
	"phishguard/internal/config"
	"phishguard/internal/domain/services"
	"phishguard/internal/domain/services/ai"
	"phishguard/pkg/logger"
)

type denyAll struct{}

func (denyAll) CheckRateLimit(context.Context, string, int64, time.Duration) (bool, int64, time.Time, error) {
	return false, 0, time.Now().Add(time.Minute), nil
}

func testConfig() config.Config {
	return config.Config{
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 60},
	}
}

func newTestRouter(cfg config.Config, opts ...RouterOption) http.Handler {
	log := logger.NewNop()
	analyzer := services.NewAnalyzer(
		services.NewURLAnalyzer(services.NewFeatureExtractor(log), log),
		services.NewMessageAnalyzer(&ai.StaticZeroShot{Err: ai.ErrModelUnavailable}, &ai.StaticSentiment{}, log),
		log,
	)
	svc := services.NewAnalysisService(analyzer, services.AnalysisServiceConfig{MaxInputLength: 5000}, log)
	h := handlers.NewHandlers(handlers.Dependencies{Service: svc, Version: "test", Logger: log})
	return NewRouter(cfg, h, log, opts...).Setup()
}

func serve(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(testConfig())

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/ready", "", http.StatusOK},
		{http.MethodPost, "/api/v1/analyze", `{"content":"https://example.com"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/analyze/url", `{"url":"https://example.com"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/analyze/message", `{"message":"lunch at noon tomorrow?"}`, http.StatusServiceUnavailable},
		{http.MethodPost, "/api/v1/detect", `{"content":"hello"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/features?url=example.com", "", http.StatusOK},
		{http.MethodGet, "/api/v1/analyses", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/stats", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/samples", "", http.StatusOK},
		{http.MethodGet, "/ws/analyses", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/analyze", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(router, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouterAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"k1"}}
	router := newTestRouter(cfg)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/v1/samples", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/v1/samples", "", map[string]string{"Authorization": "Bearer k1"}).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "", nil).Code)
}

func TestRouterRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true

	limited := newTestRouter(cfg, WithRateLimitStore(denyAll{}))
	assert.Equal(t, http.StatusTooManyRequests, serve(limited, http.MethodGet, "/api/v1/samples", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(limited, http.MethodGet, "/health", "", nil).Code)

	// enabled without a store is a no-op
	open := newTestRouter(cfg)
	assert.Equal(t, http.StatusOK, serve(open, http.MethodGet, "/api/v1/samples", "", nil).Code)
}

func TestRouterLiveFeed(t *testing.T) {
	feed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router := newTestRouter(testConfig(), WithLiveFeed(feed))
	assert.Equal(t, http.StatusTeapot, serve(router, http.MethodGet, "/ws/analyses", "", nil).Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(testConfig())

	rec := serve(router, http.MethodOptions, "/api/v1/analyze", "", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": "POST",
	})
	require.Contains(t, []int{http.StatusOK, http.StatusNoContent}, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
