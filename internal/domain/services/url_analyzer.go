package services

import (
	"fmt"
	"math"
	"strings"

	"phishguard/internal/domain/models"
	"phishguard/pkg/logger"
)

// urlMaxPoints is the point total that maps to a risk score of 100
const urlMaxPoints = 25

var (
	scoredTLDs = []string{".tk", ".ml", ".ga", ".cf", ".gq", ".pw", ".cc", ".xyz", ".top", ".work"}
	// indicators also name a few extensions that carry no points
	reportedTLDs = append(append([]string{}, scoredTLDs...), ".zip", ".review", ".link", ".buzz")

	scoredShorteners   = []string{"bit.ly", "tinyurl", "goo.gl", "t.co", "ow.ly", "short.link"}
	reportedShorteners = []string{"bit.ly", "tinyurl", "goo.gl", "t.co", "ow.ly"}

	urlKeywords = []string{"login", "verify", "secure", "account", "update", "confirm", "banking", "paypal", "signin"}
)

var urlSummaries = map[models.Classification]string{
	models.ClassificationLegitimate: "This URL appears to be safe based on our pattern analysis of its structural features.",
	models.ClassificationSuspicious: "This URL shows some concerning characteristics and should be approached with caution.",
	models.ClassificationPhishing:   "This URL is very likely malicious and should be avoided.",
}

// URLAnalyzer scores URLs with structural heuristics over the feature vector
type URLAnalyzer struct {
	extractor *FeatureExtractor
	logger    *logger.Logger
}

// NewURLAnalyzer creates a new URL analyzer
func NewURLAnalyzer(extractor *FeatureExtractor, log *logger.Logger) *URLAnalyzer {
	return &URLAnalyzer{
		extractor: extractor,
		logger:    log.WithComponent("url-analyzer"),
	}
}

// ExtractFeatures exposes the underlying feature extractor
func (a *URLAnalyzer) ExtractFeatures(rawURL string) models.FeatureVector {
	return a.extractor.Extract(rawURL)
}

// Analyze scores rawURL. It is deterministic and never fails.
func (a *URLAnalyzer) Analyze(rawURL string) *models.URLAnalysis {
	features := a.extractor.Extract(rawURL)
	parsed, _ := parseURL(rawURL)

	points := scoreURL(rawURL, features, parsed)

	raw := math.Min(float64(points)/urlMaxPoints*100, 100)
	score := int(math.Round(raw))
	flag := float64(points) >= urlMaxPoints*0.5
	confidence := urlConfidence(points)
	classification := ClassifyURLScore(score)
	indicators := urlIndicators(rawURL, features, parsed)

	a.logger.Debug().
		Str("url", rawURL).
		Int("points", points).
		Int("risk_score", score).
		Bool("phishing_flag", flag).
		Msg("url scored")

	return &models.URLAnalysis{
		URL:            rawURL,
		Points:         points,
		MaxPoints:      urlMaxPoints,
		RawRiskScore:   raw,
		RiskScore:      score,
		Confidence:     confidence,
		IsPhishingFlag: flag,
		Classification: classification,
		Summary:        urlSummaries[classification],
		Explanation:    urlExplanation(flag, confidence, indicators),
		Indicators:     indicators,
		Features:       features,
	}
}

// ClassifyURLScore maps a rounded URL risk score to a verdict
func ClassifyURLScore(score int) models.Classification {
	switch {
	case score < 30:
		return models.ClassificationLegitimate
	case score < 55:
		return models.ClassificationSuspicious
	default:
		return models.ClassificationPhishing
	}
}

// scoreURL accumulates suspicion points. parsed may be nil.
func scoreURL(rawURL string, f models.FeatureVector, parsed *parsedURL) int {
	points := 0
	lower := strings.ToLower(rawURL)

	// 1. IP literal host
	if f[models.FeatureDomainInIP] == 1 {
		points += 8
	}

	// 2. no TLS
	if !strings.HasPrefix(rawURL, "https://") {
		points += 3
	}

	// 3. hyphens in host
	switch hyphens := f[models.FeatureHyphenDomain]; {
	case hyphens >= 4:
		points += 6
	case hyphens >= 3:
		points += 4
	case hyphens >= 2:
		points += 2
	}

	// 4. subdomain depth
	switch dots := f[models.FeatureDotDomain]; {
	case dots >= 5:
		points += 4
	case dots >= 3:
		points += 2
	}

	// 5. @ obfuscation
	if f[models.FeatureAtURL] > 0 {
		points += 8
	}

	// 6. TLD
	if parsed != nil && suffixIn(parsed.hostname, scoredTLDs) != "" {
		points += 6
	}

	// 7. shorteners, plain substring match
	for _, s := range scoredShorteners {
		if strings.Contains(rawURL, s) {
			points += 4
			break
		}
	}

	// 8. length
	switch length := f[models.FeatureLengthURL]; {
	case length > 150:
		points += 3
	case length > 100:
		points += 2
	}

	// 9. special characters
	special := f[models.FeatureQuestionMarkURL] + f[models.FeatureEqualURL] + f[models.FeatureAtURL] + f[models.FeatureTildeURL]
	switch {
	case special > 8:
		points += 3
	case special > 5:
		points += 2
	}

	// 10. keywords
	switch matched := len(matchedKeywords(lower)); {
	case matched >= 3:
		points += 5
	case matched >= 2:
		points += 3
	case matched >= 1:
		points += 1
	}

	if parsed == nil {
		return points
	}

	// 11. explicit port
	if parsed.port != "" {
		points += 2
	}

	// 12. main domain shape
	if main := parsed.mainDomain(); main != "" {
		switch {
		case runeLen(main) > 30:
			points += 5
		case runeLen(main) > 20:
			points += 3
		}

		ratio := vowelRatio(main)
		switch {
		case ratio < 0.15 && runeLen(main) > 15:
			points += 4
		case ratio < 0.20 && runeLen(main) > 10:
			points += 2
		}
	}

	return points
}

// urlConfidence maps points to a confidence in [0.6, 0.99]
func urlConfidence(points int) float64 {
	s := math.Min(float64(points)/urlMaxPoints, 1)

	var c float64
	switch {
	case s > 0.7:
		c = 0.85 + (s-0.7)*0.5
	case s > 0.4:
		c = 0.70 + (s-0.4)*0.5
	case s > 0.2:
		c = 0.60 + (s-0.2)*0.5
	default:
		c = 0.75 + (1-s)*0.2
	}
	return clamp(c, 0.6, 0.99)
}

// urlIndicators re-derives human readable findings in a fixed order. parsed may be nil.
func urlIndicators(rawURL string, f models.FeatureVector, parsed *parsedURL) []string {
	indicators := []string{}
	lower := strings.ToLower(rawURL)

	if f[models.FeatureDomainInIP] == 1 && parsed != nil {
		indicators = append(indicators, fmt.Sprintf("IP address detected: The URL uses %s instead of a domain name, which is highly suspicious", parsed.hostname))
	}

	shortened := f[models.FeatureURLShortened] == 1
	for _, s := range reportedShorteners {
		if strings.Contains(rawURL, s) {
			shortened = true
			break
		}
	}
	if shortened {
		indicators = append(indicators, "URL shortener detected: This service hides the true destination, commonly used in phishing")
	}

	if !strings.HasPrefix(rawURL, "https://") {
		indicators = append(indicators, "No HTTPS encryption: The connection is not secure and vulnerable to interception")
	}

	if f[models.FeatureHyphenURL] > 3 || f[models.FeatureHyphenDomain] > 2 {
		count := math.Max(f[models.FeatureHyphenURL], f[models.FeatureHyphenDomain])
		indicators = append(indicators, fmt.Sprintf("Excessive hyphens detected (%d): Often used to mimic legitimate brand names", int(count)))
	}

	if f[models.FeatureDotDomain] > 3 {
		indicators = append(indicators, fmt.Sprintf("Multiple subdomains (%d dots in domain): May indicate subdomain abuse or spoofing", int(f[models.FeatureDotDomain])))
	}

	if f[models.FeatureAtURL] > 0 {
		indicators = append(indicators, "URL obfuscation detected: Contains '@' symbol which can hide the true destination")
	}

	switch length := int(f[models.FeatureLengthURL]); {
	case length > 150:
		indicators = append(indicators, fmt.Sprintf("Unusually long URL (%d characters): Common in phishing to hide malicious parameters", length))
	case length > 100:
		indicators = append(indicators, fmt.Sprintf("Long URL (%d characters): May contain excessive tracking or malicious parameters", length))
	}

	if parsed != nil {
		if tld := suffixIn(parsed.hostname, reportedTLDs); tld != "" {
			indicators = append(indicators, fmt.Sprintf("Suspicious domain extension: %s is commonly associated with phishing and malicious sites", tld))
		}
	}

	if found := matchedKeywords(lower); len(found) >= 2 {
		indicators = append(indicators, fmt.Sprintf(`Suspicious keywords detected: "%s" - commonly used in phishing URLs`, strings.Join(found, `", "`)))
	}

	if parsed == nil {
		return indicators
	}

	if parsed.port != "" {
		indicators = append(indicators, fmt.Sprintf("Non-standard port detected: %s - unusual for legitimate websites", parsed.port))
	}

	main := parsed.mainDomain()
	switch {
	case runeLen(main) > 30:
		indicators = append(indicators, fmt.Sprintf(`Extremely long domain name (%d characters): "%s" - likely random character spam`, runeLen(main), main))
	case runeLen(main) > 20:
		indicators = append(indicators, fmt.Sprintf(`Very long domain name (%d characters): "%s" - uncommon for legitimate sites`, runeLen(main), main))
	}

	if runeLen(main) > 10 {
		ratio := vowelRatio(main)
		switch {
		case ratio < 0.15:
			indicators = append(indicators, fmt.Sprintf("Random character pattern detected: Domain has very few vowels (%.0f%%) - typical of auto-generated phishing domains", ratio*100))
		case ratio < 0.20:
			indicators = append(indicators, fmt.Sprintf("Unusual character pattern: Domain has low vowel count (%.0f%%) - may be randomly generated", ratio*100))
		}
	}

	return indicators
}

func urlExplanation(flag bool, confidence float64, indicators []string) string {
	var b strings.Builder

	if flag {
		fmt.Fprintf(&b, "This URL has been classified as phishing with %.1f%% confidence based on pattern analysis of multiple security indicators. ", confidence*100)
		if len(indicators) == 0 {
			b.WriteString("The URL's structural patterns closely match known phishing characteristics.")
			return b.String()
		}
		b.WriteString("\n\nKey concerns identified:\n")
		writeNumbered(&b, indicators)
		return b.String()
	}

	fmt.Fprintf(&b, "This URL appears legitimate with %.1f%% confidence based on security pattern analysis. ", confidence*100)
	if len(indicators) == 0 {
		b.WriteString("The URL structure matches typical patterns of legitimate websites.")
		return b.String()
	}
	b.WriteString("\n\nHowever, note these observations:\n")
	writeNumbered(&b, indicators)
	b.WriteString("\nDespite these flags, the overall pattern suggests legitimacy. Always verify URLs through official channels.")
	return b.String()
}

func matchedKeywords(lowerURL string) []string {
	var found []string
	for _, k := range urlKeywords {
		if strings.Contains(lowerURL, k) {
			found = append(found, k)
		}
	}
	return found
}

func suffixIn(host string, suffixes []string) string {
	for _, s := range suffixes {
		if strings.HasSuffix(host, s) {
			return s
		}
	}
	return ""
}

func vowelRatio(s string) float64 {
	if s == "" {
		return 0
	}
	return float64(len(vowelPattern.FindAllString(s, -1))) / float64(runeLen(s))
}
