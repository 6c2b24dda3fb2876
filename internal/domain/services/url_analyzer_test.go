package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/internal/domain/models"
	"phishguard/pkg/logger"
)

func newURLAnalyzer() *URLAnalyzer {
	log := logger.NewNop()
	return NewURLAnalyzer(NewFeatureExtractor(log), log)
}

func TestAnalyzeIPLiteralURL(t *testing.T) {
	a := newURLAnalyzer().Analyze("http://123.45.67.89/wp-admin/login.php?redirect_to=https://official-site.com")

	assert.Equal(t, 12, a.Points)
	assert.Equal(t, 48, a.RiskScore)
	assert.False(t, a.IsPhishingFlag)
	assert.Equal(t, models.ClassificationSuspicious, a.Classification)
	assert.InDelta(t, 0.74, a.Confidence, 1e-9)
	assert.Equal(t, []string{
		"IP address detected: The URL uses 123.45.67.89 instead of a domain name, which is highly suspicious",
		"No HTTPS encryption: The connection is not secure and vulnerable to interception",
	}, a.Indicators)
	assert.True(t, strings.HasPrefix(a.Explanation, "This URL appears legitimate with 74.0% confidence"))
	assert.Contains(t, a.Explanation, "1. IP address detected")
	assert.Equal(t, "This URL shows some concerning characteristics and should be approached with caution.", a.Summary)
}

func TestAnalyzeCleanHTTPSURL(t *testing.T) {
	a := newURLAnalyzer().Analyze("https://firebase.google.com/docs/genkit")

	assert.Equal(t, 0, a.Points)
	assert.Equal(t, 0, a.RiskScore)
	assert.Equal(t, models.ClassificationLegitimate, a.Classification)
	assert.Empty(t, a.Indicators)
	assert.InDelta(t, 0.95, a.Confidence, 1e-9)
	assert.Equal(t, "This URL appears legitimate with 95.0% confidence based on security pattern analysis. The URL structure matches typical patterns of legitimate websites.", a.Explanation)
}

func TestAnalyzeShortener(t *testing.T) {
	a := newURLAnalyzer().Analyze("http://bit.ly/2s3d4f5")

	assert.Equal(t, 7, a.Points)
	assert.Equal(t, 28, a.RiskScore)
	assert.Equal(t, models.ClassificationLegitimate, a.Classification)
	require.Len(t, a.Indicators, 2)
	assert.Equal(t, "URL shortener detected: This service hides the true destination, commonly used in phishing", a.Indicators[0])
	assert.Contains(t, a.Explanation, "Despite these flags")
}

func TestAnalyzeSuspiciousSample(t *testing.T) {
	a := newURLAnalyzer().Analyze("http://secure-bank-verify.com-login.tk/update.php?user=account&verify=true&session=x7h2k9")

	assert.Equal(t, 18, a.Points)
	assert.Equal(t, 72, a.RiskScore)
	assert.True(t, a.IsPhishingFlag)
	assert.Equal(t, models.ClassificationPhishing, a.Classification)
	assert.Equal(t, []string{
		"No HTTPS encryption: The connection is not secure and vulnerable to interception",
		"Excessive hyphens detected (3): Often used to mimic legitimate brand names",
		"Suspicious domain extension: .tk is commonly associated with phishing and malicious sites",
		`Suspicious keywords detected: "login", "verify", "secure", "account", "update" - commonly used in phishing URLs`,
	}, a.Indicators)
	assert.True(t, strings.HasPrefix(a.Explanation, "This URL has been classified as phishing with 86.0% confidence"))
	assert.Contains(t, a.Explanation, "Key concerns identified:\n1. No HTTPS encryption")
}

func TestAnalyzeAtObfuscation(t *testing.T) {
	a := newURLAnalyzer().Analyze("http://paypal.com@evil.example/login")

	// @ +8, no https +3, two keywords +3
	assert.Equal(t, 14, a.Points)
	assert.Equal(t, 56, a.RiskScore)
	assert.True(t, a.IsPhishingFlag)
	assert.Equal(t, models.ClassificationPhishing, a.Classification)
	assert.Contains(t, a.Indicators, "URL obfuscation detected: Contains '@' symbol which can hide the true destination")
}

func TestAnalyzeExplicitPort(t *testing.T) {
	a := newURLAnalyzer().Analyze("http://example.com:8080/")

	assert.Equal(t, 5, a.Points)
	assert.Contains(t, a.Indicators, "Non-standard port detected: 8080 - unusual for legitimate websites")
}

func TestAnalyzeRandomDomain(t *testing.T) {
	a := newURLAnalyzer().Analyze("http://xkcdqrstvwpl.com")

	// no https +3, 12 letter main domain without vowels +2
	assert.Equal(t, 5, a.Points)
	assert.Contains(t, a.Indicators, "Random character pattern detected: Domain has very few vowels (0%) - typical of auto-generated phishing domains")
}

func TestAnalyzeLongMainDomain(t *testing.T) {
	main := strings.Repeat("ab", 16)
	a := newURLAnalyzer().Analyze("https://" + main + ".com")

	assert.Equal(t, 5, a.Points)
	assert.Contains(t, a.Indicators, `Extremely long domain name (32 characters): "`+main+`" - likely random character spam`)
}

func TestAnalyzeSubstringShortenerMatch(t *testing.T) {
	// "t.co" matches inside "microsoft.com"
	a := newURLAnalyzer().Analyze("https://microsoft.com")
	assert.Equal(t, 4, a.Points)
	assert.Contains(t, a.Indicators, "URL shortener detected: This service hides the true destination, commonly used in phishing")
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	u := newURLAnalyzer()
	for _, s := range Samples() {
		if s.ContentType != models.ContentTypeURL {
			continue
		}
		assert.Equal(t, u.Analyze(s.Content), u.Analyze(s.Content), s.Name)
	}
}

func TestAnalyzeBounds(t *testing.T) {
	u := newURLAnalyzer()
	inputs := []string{
		"http://a-b-c-d-e.x.y.z.w.tk:81/login/verify/secure/account?a=1&b=2&c=3&d=4&e=5&f=6&g=7@bit.ly",
		"https://example.com",
		"http://exa mple.com",
	}
	for _, in := range inputs {
		a := u.Analyze(in)
		assert.GreaterOrEqual(t, a.RiskScore, 0)
		assert.LessOrEqual(t, a.RiskScore, 100)
		assert.GreaterOrEqual(t, a.Confidence, 0.6)
		assert.LessOrEqual(t, a.Confidence, 0.99)
		assert.Equal(t, ClassifyURLScore(a.RiskScore), a.Classification)
	}
}

func TestClassifyURLScoreThresholds(t *testing.T) {
	assert.Equal(t, models.ClassificationLegitimate, ClassifyURLScore(0))
	assert.Equal(t, models.ClassificationLegitimate, ClassifyURLScore(29))
	assert.Equal(t, models.ClassificationSuspicious, ClassifyURLScore(30))
	assert.Equal(t, models.ClassificationSuspicious, ClassifyURLScore(54))
	assert.Equal(t, models.ClassificationPhishing, ClassifyURLScore(55))
	assert.Equal(t, models.ClassificationPhishing, ClassifyURLScore(100))
}

func TestURLConfidenceBands(t *testing.T) {
	assert.InDelta(t, 0.95, urlConfidence(0), 1e-9)
	assert.InDelta(t, 0.60+0.04*0.5, urlConfidence(6), 1e-9)
	assert.InDelta(t, 0.70+0.08*0.5, urlConfidence(12), 1e-9)
	assert.InDelta(t, 0.99, urlConfidence(25), 1e-9)
	assert.InDelta(t, 0.99, urlConfidence(40), 1e-9)
}

func TestAnalyzeNonASCIIPathLength(t *testing.T) {
	a := newURLAnalyzer().Analyze("https://example.com/" + strings.Repeat("é", 50))

	assert.Equal(t, 0, a.Points)
	assert.Equal(t, models.ClassificationLegitimate, a.Classification)
	for _, indicator := range a.Indicators {
		assert.NotContains(t, indicator, "Long URL")
	}
}
