package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/internal/domain/models"
	"phishguard/internal/domain/services"
	"phishguard/internal/domain/services/ai"
	"phishguard/pkg/logger"
)

func benignScores(score float64) map[string]float64 {
	out := map[string]float64{}
	for _, l := range append(append([]string{}, services.PhishingLabels...), services.BenignLabels...) {
		out[l] = (1 - score) / 5
	}
	out[services.BenignLabels[0]] = score
	return out
}

func newTestHandler(zs ai.ZeroShotClassifier) *AnalysisHandler {
	log := logger.NewNop()
	sentiment := &ai.StaticSentiment{Result: models.SentimentResult{Label: models.SentimentPositive, Score: 0.9}}
	analyzer := services.NewAnalyzer(
		services.NewURLAnalyzer(services.NewFeatureExtractor(log), log),
		services.NewMessageAnalyzer(zs, sentiment, log),
		log,
	)
	svc := services.NewAnalysisService(analyzer, services.AnalysisServiceConfig{
		MaxInputLength: 200,
		CacheTTL:       time.Minute,
	}, log)
	return NewAnalysisHandler(svc, log)
}

func do(t *testing.T, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAnalyzeURL(t *testing.T) {
	h := newTestHandler(&ai.StaticZeroShot{Scores: benignScores(0.9)})

	rec := do(t, h.Analyze, http.MethodPost, "/api/v1/analyze", `{"content":"https://firebase.google.com/docs/genkit"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, models.ContentTypeURL, report.ContentType)
	assert.Equal(t, models.ClassificationLegitimate, report.Result.Classification)
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.Degraded)
}

func TestAnalyzeValidation(t *testing.T) {
	h := newTestHandler(&ai.StaticZeroShot{Scores: benignScores(0.9)})

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"malformed body", `{"content":`, http.StatusBadRequest, "invalid request body"},
		{"too short", `{"content":"  hi  "}`, http.StatusBadRequest, services.InputTooShortMessage},
		{"too long", `{"content":"` + strings.Repeat("a", 201) + `"}`, http.StatusRequestEntityTooLarge, "input exceeds the maximum length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h.Analyze, http.MethodPost, "/api/v1/analyze", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
		})
	}
}

func TestAnalyzeMessageFallsBackWhenModelsFail(t *testing.T) {
	h := newTestHandler(&ai.StaticZeroShot{Err: errors.New("connection refused")})

	rec := do(t, h.Analyze, http.MethodPost, "/api/v1/analyze", `{"content":"Please call me back when you get this message"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Degraded)
	assert.Equal(t, models.ClassificationSuspicious, report.Result.Classification)
	assert.Equal(t, 50, report.Result.RiskScore)
}

func TestAnalyzeMessageDetail(t *testing.T) {
	h := newTestHandler(&ai.StaticZeroShot{Scores: benignScores(0.9)})

	rec := do(t, h.AnalyzeMessage, http.MethodPost, "/api/v1/analyze/message", `{"message":"See you at lunch tomorrow"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis models.MessageAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, models.ClassificationLegitimate, analysis.Verdict)
	assert.Equal(t, services.BenignLabels[0], analysis.Classification.Category)
}

func TestAnalyzeMessageModelUnavailable(t *testing.T) {
	h := newTestHandler(&ai.StaticZeroShot{Err: ai.ErrModelUnavailable})

	rec := do(t, h.AnalyzeMessage, http.MethodPost, "/api/v1/analyze/message", `{"message":"See you at lunch tomorrow"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, errorBody(t, rec), "models unavailable")
}

func TestAnalyzeURLDetail(t *testing.T) {
	h := newTestHandler(nil)

	rec := do(t, h.AnalyzeURL, http.MethodPost, "/api/v1/analyze/url", `{"url":"http://192.168.1.1/login"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis models.URLAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "http://192.168.1.1/login", analysis.URL)
	assert.Positive(t, analysis.Points)
	assert.GreaterOrEqual(t, analysis.Confidence, 0.6)
}

func TestDetect(t *testing.T) {
	h := newTestHandler(nil)

	rec := do(t, h.Detect, http.MethodPost, "/api/v1/detect", `{"content":"www.example.com/path"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"content_type":"url"}`, rec.Body.String())

	rec = do(t, h.Detect, http.MethodPost, "/api/v1/detect", `{"content":"hello there, how are you doing today"}`)
	assert.JSONEq(t, `{"content_type":"message"}`, rec.Body.String())
}

func TestFeatures(t *testing.T) {
	h := newTestHandler(nil)

	rec := do(t, h.Features, http.MethodGet, "/api/v1/features", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h.Features, http.MethodGet, "/api/v1/features?url=https://login.example.com/a/b.php?x=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var features models.FeaturesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &features))
	assert.Len(t, features.Vector, models.FeatureCount)
	assert.Len(t, features.Named, models.FeatureCount)
	assert.False(t, features.Degraded)
}

func TestHistoryDisabled(t *testing.T) {
	h := newTestHandler(nil)

	rec := do(t, h.Recent, http.MethodGet, "/api/v1/analyses", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, h.Recent, http.MethodGet, "/api/v1/analyses?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h.Stats, http.MethodGet, "/api/v1/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "analysis history is not enabled", errorBody(t, rec))
}

func TestSamples(t *testing.T) {
	h := newTestHandler(nil)

	rec := do(t, h.Samples, http.MethodGet, "/api/v1/samples", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Samples []services.Sample `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Samples, 6)
}

type modelStatus bool

func (m modelStatus) ModelsAvailable(context.Context) bool { return bool(m) }

func TestHealth(t *testing.T) {
	h := NewHealthHandler("1.2.3", nil, nil, logger.NewNop())

	rec := do(t, h.Check, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestReady(t *testing.T) {
	healthy := ReadinessCheck{Name: "redis", Check: func(context.Context) error { return nil }}
	failing := ReadinessCheck{Name: "postgres", Check: func(context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name   string
		models ModelReporter
		checks []ReadinessCheck
		status int
		state  string
	}{
		{"all healthy", modelStatus(true), []ReadinessCheck{healthy}, http.StatusOK, "ready"},
		{"models unavailable", modelStatus(false), []ReadinessCheck{healthy}, http.StatusOK, "degraded"},
		{"dependency down", modelStatus(true), []ReadinessCheck{healthy, failing}, http.StatusServiceUnavailable, "not ready"},
		{"no models", nil, nil, http.StatusOK, "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("dev", tt.models, tt.checks, logger.NewNop())
			rec := do(t, h.Ready, http.MethodGet, "/ready", "")
			assert.Equal(t, tt.status, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.state, resp.Status)
		})
	}
}
