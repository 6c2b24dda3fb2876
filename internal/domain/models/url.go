package models

// FeatureCount is the number of slots in a URL feature vector
const FeatureCount = 111

// Feature vector slots referenced by name
const (
	FeatureDotURL               = 0
	FeatureHyphenURL            = 1
	FeatureQuestionMarkURL      = 4
	FeatureEqualURL             = 5
	FeatureAtURL                = 6
	FeatureTildeURL             = 10
	FeatureTLDCountURL          = 17
	FeatureLengthURL            = 18
	FeatureDotDomain            = 19
	FeatureHyphenDomain         = 20
	FeatureVowelsDomain         = 36
	FeatureDomainLength         = 37
	FeatureDomainInIP           = 38
	FeatureDirectoryLength      = 57
	FeatureFileLength           = 75
	FeatureParamsLength         = 93
	FeatureTLDPresentParams     = 94
	FeatureQtyParams            = 95
	FeatureEmailInURL           = 96
	FeatureTimeDomainActivation = 100
	FeatureTimeDomainExpiration = 101
	FeatureTLSCertificate       = 106
	FeatureURLShortened         = 110
)

// FeatureNames names every slot of a FeatureVector, in order
var FeatureNames = [FeatureCount]string{
	"qty_dot_url", "qty_hyphen_url", "qty_underline_url", "qty_slash_url",
	"qty_questionmark_url", "qty_equal_url", "qty_at_url", "qty_and_url",
	"qty_exclamation_url", "qty_space_url", "qty_tilde_url", "qty_comma_url",
	"qty_plus_url", "qty_asterisk_url", "qty_hashtag_url", "qty_dollar_url",
	"qty_percent_url", "qty_tld_url", "length_url", "qty_dot_domain",
	"qty_hyphen_domain", "qty_underline_domain", "qty_slash_domain",
	"qty_questionmark_domain", "qty_equal_domain", "qty_at_domain",
	"qty_and_domain", "qty_exclamation_domain", "qty_space_domain",
	"qty_tilde_domain", "qty_comma_domain", "qty_plus_domain",
	"qty_asterisk_domain", "qty_hashtag_domain", "qty_dollar_domain",
	"qty_percent_domain", "qty_vowels_domain", "domain_length",
	"domain_in_ip", "server_client_domain", "qty_dot_directory",
	"qty_hyphen_directory", "qty_underline_directory", "qty_slash_directory",
	"qty_questionmark_directory", "qty_equal_directory", "qty_at_directory",
	"qty_and_directory", "qty_exclamation_directory", "qty_space_directory",
	"qty_tilde_directory", "qty_comma_directory", "qty_plus_directory",
	"qty_asterisk_directory", "qty_hashtag_directory", "qty_dollar_directory",
	"qty_percent_directory", "directory_length", "qty_dot_file",
	"qty_hyphen_file", "qty_underline_file", "qty_slash_file",
	"qty_questionmark_file", "qty_equal_file", "qty_at_file",
	"qty_and_file", "qty_exclamation_file", "qty_space_file",
	"qty_tilde_file", "qty_comma_file", "qty_plus_file",
	"qty_asterisk_file", "qty_hashtag_file", "qty_dollar_file",
	"qty_percent_file", "file_length", "qty_dot_params",
	"qty_hyphen_params", "qty_underline_params", "qty_slash_params",
	"qty_questionmark_params", "qty_equal_params", "qty_at_params",
	"qty_and_params", "qty_exclamation_params", "qty_space_params",
	"qty_tilde_params", "qty_comma_params", "qty_plus_params",
	"qty_asterisk_params", "qty_hashtag_params", "qty_dollar_params",
	"qty_percent_params", "params_length", "tld_present_params",
	"qty_params", "email_in_url", "time_response", "domain_spf",
	"asn_ip", "time_domain_activation", "time_domain_expiration",
	"qty_ip_resolved", "qty_nameservers", "qty_mx_servers",
	"ttl_hostname", "tls_ssl_certificate", "qty_redirects",
	"url_google_index", "domain_google_index", "url_shortened",
}

// FeatureVector is the fixed-size numeric description of a URL
type FeatureVector [FeatureCount]float64

// Named returns the vector keyed by slot name
func (v FeatureVector) Named() map[string]float64 {
	out := make(map[string]float64, FeatureCount)
	for i, name := range FeatureNames {
		out[name] = v[i]
	}
	return out
}

// IsZero reports whether every slot is zero, which marks a URL that could not be parsed
func (v FeatureVector) IsZero() bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// URLAnalysis is the detailed output of the URL scorer
type URLAnalysis struct {
	URL            string         `json:"url"`
	Points         int            `json:"points"`
	MaxPoints      int            `json:"max_points"`
	RawRiskScore   float64        `json:"raw_risk_score"`
	RiskScore      int            `json:"risk_score"`
	Confidence     float64        `json:"confidence"`
	IsPhishingFlag bool           `json:"is_phishing_flag"`
	Classification Classification `json:"classification"`
	Summary        string         `json:"summary"`
	Explanation    string         `json:"explanation"`
	Indicators     []string       `json:"indicators"`
	Features       FeatureVector  `json:"-"`
}

// Result maps the detailed analysis to the common verdict shape
func (a *URLAnalysis) Result() AnalysisResult {
	return AnalysisResult{
		Classification: a.Classification,
		RiskScore:      a.RiskScore,
		Summary:        a.Summary,
		Explanation:    a.Explanation,
		Indicators:     a.Indicators,
	}
}

// FeaturesResponse is the response for feature extraction requests
type FeaturesResponse struct {
	URL      string             `json:"url"`
	Degraded bool               `json:"degraded"`
	Vector   []float64          `json:"vector"`
	Named    map[string]float64 `json:"named"`
}
