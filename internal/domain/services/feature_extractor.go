package services

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"phishguard/internal/domain/models"
	"phishguard/pkg/logger"
)

// countedChars are tallied, in this order, for each URL segment
var countedChars = []string{".", "-", "_", "/", "?", "=", "@", "&", "!", " ", "~", ",", "+", "*", "#", "$", "%"}

var (
	protocolPrefix  = regexp.MustCompile(`^https?://`)
	tldPattern      = regexp.MustCompile(`(?i)\.[a-z]{2,}`)
	ipv4Host        = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)
	vowelPattern    = regexp.MustCompile(`(?i)[aeiou]`)
	paramsTLD       = regexp.MustCompile(`(?i)\.(com|org|net|edu)`)
	shortenedMarker = regexp.MustCompile(`(?i)(bit\.ly|tinyurl|t\.co)`)
)

// FeatureExtractor turns a URL into a fixed 111-slot feature vector
type FeatureExtractor struct {
	logger *logger.Logger
}

// NewFeatureExtractor creates a new feature extractor
func NewFeatureExtractor(log *logger.Logger) *FeatureExtractor {
	return &FeatureExtractor{
		logger: log.WithComponent("feature-extractor"),
	}
}

// parsedURL holds the segments the vector is computed from
type parsedURL struct {
	raw         string
	withoutProt string
	hostname    string
	port        string
	directory   string
	file        string
	params      string
	paramCount  int
}

// parseURL splits raw into the segments used for feature extraction.
// Inputs without a scheme are parsed as http.
func parseURL(raw string) (*parsedURL, error) {
	target := raw
	if !strings.HasPrefix(target, "http") {
		target = "http://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.Hostname() == "" {
		return nil, errEmptyHost
	}

	pathname := u.EscapedPath()
	if pathname == "" {
		pathname = "/"
	}
	cut := strings.LastIndex(pathname, "/")

	p := &parsedURL{
		raw:         raw,
		withoutProt: protocolPrefix.ReplaceAllString(raw, ""),
		hostname:    asciiHost(u.Hostname()),
		port:        u.Port(),
		directory:   pathname[:cut],
		file:        pathname[cut+1:],
	}
	if u.RawQuery != "" {
		p.params = "?" + u.RawQuery
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair != "" {
			p.paramCount++
		}
	}
	return p, nil
}

// asciiHost lower-cases host and converts internationalized labels to punycode
func asciiHost(host string) string {
	host = strings.ToLower(host)
	if ascii, err := idna.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

// runeLen is the character length of s
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// mainDomain returns the label before the TLD, or "" when there is none
func (p *parsedURL) mainDomain() string {
	parts := strings.Split(p.hostname, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

// Extract computes the feature vector for raw. An unparseable URL yields the zero vector.
func (fe *FeatureExtractor) Extract(raw string) models.FeatureVector {
	p, err := parseURL(raw)
	if err != nil {
		fe.logger.Debug().Err(err).Str("url", raw).Msg("could not parse url, returning empty feature vector")
		return models.FeatureVector{}
	}
	return p.features()
}

func (p *parsedURL) features() models.FeatureVector {
	var f models.FeatureVector

	// whole url without protocol: 0-18
	fillCounts(f[0:17], p.withoutProt)
	f[17] = float64(len(tldPattern.FindAllString(p.withoutProt, -1)))
	f[18] = float64(runeLen(p.withoutProt))

	// hostname: 19-39, only dots, hyphens and underscores are counted
	f[19] = float64(strings.Count(p.hostname, "."))
	f[20] = float64(strings.Count(p.hostname, "-"))
	f[21] = float64(strings.Count(p.hostname, "_"))
	f[36] = float64(len(vowelPattern.FindAllString(p.hostname, -1)))
	f[37] = float64(runeLen(p.hostname))
	if ipv4Host.MatchString(p.hostname) {
		f[38] = 1
	}

	// directory: 40-57
	fillCounts(f[40:57], p.directory)
	f[57] = float64(runeLen(p.directory))

	// file: 58-75, a file never contains a slash
	fillCounts(f[58:75], p.file)
	f[61] = 0
	f[75] = float64(runeLen(p.file))

	// params: 76-95
	fillCounts(f[76:93], p.params)
	f[93] = float64(runeLen(p.params))
	if paramsTLD.MatchString(p.params) {
		f[94] = 1
	}
	f[95] = float64(p.paramCount)

	// 96-110, network derived slots stay zero
	if strings.Contains(p.raw, "@") {
		f[96] = 1
	}
	if strings.HasPrefix(p.raw, "https://") {
		f[106] = 1
	}
	if shortenedMarker.MatchString(p.raw) {
		f[110] = 1
	}

	return f
}

func fillCounts(dst []float64, s string) {
	for i, c := range countedChars {
		dst[i] = float64(strings.Count(s, c))
	}
}
