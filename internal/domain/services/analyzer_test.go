package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/internal/domain/models"
	"phishguard/internal/domain/services/ai"
	"phishguard/pkg/logger"
)

func newTestAnalyzer(zs ai.ZeroShotClassifier, s ai.SentimentClassifier) *Analyzer {
	log := logger.NewNop()
	return NewAnalyzer(newURLAnalyzer(), NewMessageAnalyzer(zs, s, log), log)
}

func healthyModels() (*ai.StaticZeroShot, *ai.StaticSentiment) {
	return &ai.StaticZeroShot{Scores: scores(PhishingLabels[0], 0.8)},
		&ai.StaticSentiment{Result: models.SentimentResult{Label: models.SentimentNegative, Score: 0.9}}
}

func TestAnalyzeRejectsShortInput(t *testing.T) {
	a := newTestAnalyzer(healthyModels())

	for _, in := range []string{"", "abcd", "   abc   ", "\n\t"} {
		_, err := a.Analyze(context.Background(), in)
		assert.ErrorIs(t, err, ErrInputTooShort, "input %q", in)
	}

	v, err := a.Analyze(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypeMessage, v.ContentType)
}

func TestAnalyzeCountsRunesNotBytes(t *testing.T) {
	// four characters, twelve bytes
	_, err := ValidateInput("ééé€")
	assert.ErrorIs(t, err, ErrInputTooShort)
}

func TestAnalyzeRoutesURL(t *testing.T) {
	zs, s := healthyModels()
	a := newTestAnalyzer(zs, s)

	v, err := a.Analyze(context.Background(), "  http://bit.ly/2s3d4f5  ")
	require.NoError(t, err)

	assert.Equal(t, models.ContentTypeURL, v.ContentType)
	assert.Equal(t, 28, v.Result.RiskScore)
	assert.False(t, v.Degraded)
	assert.Equal(t, int64(0), zs.Calls())
}

func TestAnalyzeRoutesMessage(t *testing.T) {
	zs, s := healthyModels()
	a := newTestAnalyzer(zs, s)

	v, err := a.Analyze(context.Background(), phishingMessage)
	require.NoError(t, err)

	assert.Equal(t, models.ContentTypeMessage, v.ContentType)
	assert.Equal(t, models.ClassificationPhishing, v.Result.Classification)
	assert.InDelta(t, 0.8, v.Confidence, 1e-9)
	assert.Equal(t, int64(1), zs.Calls())
}

func TestAnalyzeFallsBackOnModelFailure(t *testing.T) {
	a := newTestAnalyzer(&ai.StaticZeroShot{Err: ai.ErrModelUnavailable}, &ai.StaticSentiment{})

	v, err := a.Analyze(context.Background(), "Please call me back when you can")
	require.NoError(t, err)

	assert.True(t, v.Degraded)
	assert.Equal(t, models.ClassificationSuspicious, v.Result.Classification)
	assert.Equal(t, 50, v.Result.RiskScore)
	assert.Equal(t, "Unable to complete AI analysis", v.Result.Summary)
	assert.Equal(t, []string{"AI analysis temporarily unavailable"}, v.Result.Indicators)
	assert.Contains(t, v.Result.Explanation, "failed to analyze message")
	assert.Contains(t, v.Result.Explanation, ai.ErrModelUnavailable.Error())
}

func TestAnalyzeWithoutMessageAnalyzer(t *testing.T) {
	log := logger.NewNop()
	a := NewAnalyzer(newURLAnalyzer(), nil, log)

	v, err := a.Analyze(context.Background(), "Please call me back when you can")
	require.NoError(t, err)
	assert.True(t, v.Degraded)
}

func TestFallbackResultWithoutError(t *testing.T) {
	r := FallbackResult(nil)
	assert.Contains(t, r.Explanation, "Unknown error")
}
