package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/internal/config"
	"phishguard/internal/domain/models"
	"phishguard/internal/domain/services"
	"phishguard/internal/domain/services/ai"
	"phishguard/pkg/logger"
)

func staticFactory(zs ai.ZeroShotClassifier) ServiceFactory {
	return func(cfg *config.Config, log *logger.Logger) (*services.AnalysisService, error) {
		sent := &ai.StaticSentiment{Result: models.SentimentResult{Label: models.SentimentPositive, Score: 0.9}}
		analyzer := services.NewAnalyzer(
			services.NewURLAnalyzer(services.NewFeatureExtractor(log), log),
			services.NewMessageAnalyzer(zs, sent, log),
			log,
		)
		return services.NewAnalysisService(analyzer, services.AnalysisServiceConfig{}, log), nil
	}
}

func benign() *ai.StaticZeroShot {
	return &ai.StaticZeroShot{Scores: map[string]float64{services.BenignLabels[0]: 0.9}}
}

func run(t *testing.T, factory ServiceFactory, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	cmd := NewRootCommand(factory)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeURL(t *testing.T) {
	out, err := run(t, staticFactory(benign()), "analyze", "https://firebase.google.com/docs/genkit")
	require.NoError(t, err)

	assert.Contains(t, out, "Legitimate")
	assert.Contains(t, out, "risk 0/100")
	assert.Contains(t, out, "(url)")
}

func TestAnalyzeJSON(t *testing.T) {
	out, err := run(t, staticFactory(benign()), "--json", "analyze", "--sample", "legitimate-url")
	require.NoError(t, err)

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, models.ContentTypeURL, report.ContentType)
	assert.Equal(t, models.ClassificationLegitimate, report.Result.Classification)
	assert.Equal(t, 0, report.Result.RiskScore)
}

func TestAnalyzeJoinsArguments(t *testing.T) {
	out, err := run(t, staticFactory(benign()), "--json", "analyze", "see", "you", "at", "lunch")
	require.NoError(t, err)

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, models.ContentTypeMessage, report.ContentType)
	assert.False(t, report.Degraded)
}

func TestAnalyzeDegradedMessage(t *testing.T) {
	zs := &ai.StaticZeroShot{Err: ai.ErrModelUnavailable}
	out, err := run(t, staticFactory(zs), "analyze", "please call me back later today")
	require.NoError(t, err)

	assert.Contains(t, out, "Suspicious")
	assert.Contains(t, out, "risk 50/100")
	assert.Contains(t, out, "fallback verdict")
}

func TestAnalyzeShortInput(t *testing.T) {
	_, err := run(t, staticFactory(benign()), "analyze", "abc")
	require.Error(t, err)
	assert.Equal(t, services.InputTooShortMessage, err.Error())
}

func TestAnalyzeUnknownSample(t *testing.T) {
	_, err := run(t, staticFactory(benign()), "analyze", "--sample", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sample")
}

func TestFeatures(t *testing.T) {
	out, err := run(t, staticFactory(benign()), "--json", "features", "http://login-secure.example.tk/verify")
	require.NoError(t, err)

	var resp models.FeaturesResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Degraded)
	assert.Len(t, resp.Vector, models.FeatureCount)
	assert.Equal(t, 2.0, resp.Named["qty_dot_url"])

	out, err = run(t, staticFactory(benign()), "features", "http://login-secure.example.tk/verify")
	require.NoError(t, err)
	assert.Contains(t, out, "qty_dot_url")
	assert.Contains(t, out, "features non-zero")
}

func TestFeaturesRequiresArgument(t *testing.T) {
	_, err := run(t, staticFactory(benign()), "features")
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	out, err := run(t, nil, "detect", "www.example.com")
	require.NoError(t, err)
	assert.Equal(t, "url\n", out)

	out, err = run(t, nil, "--json", "detect", "hello", "there")
	require.NoError(t, err)
	assert.JSONEq(t, `{"content_type":"message"}`, out)
}

func TestSamples(t *testing.T) {
	out, err := run(t, nil, "samples")
	require.NoError(t, err)
	for _, s := range services.Samples() {
		assert.Contains(t, out, s.Name)
	}

	out, err = run(t, nil, "--json", "samples")
	require.NoError(t, err)
	var samples []services.Sample
	require.NoError(t, json.Unmarshal([]byte(out), &samples))
	assert.Len(t, samples, len(services.Samples()))
}
