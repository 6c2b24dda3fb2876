package models

// ZeroShotResult is the ranked output of a zero-shot classifier
type ZeroShotResult struct {
	Sequence string    `json:"sequence,omitempty"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Top returns the highest scoring label
func (r *ZeroShotResult) Top() (string, float64, bool) {
	if r == nil || len(r.Labels) == 0 || len(r.Labels) != len(r.Scores) {
		return "", 0, false
	}
	best := 0
	for i := 1; i < len(r.Scores); i++ {
		if r.Scores[i] > r.Scores[best] {
			best = i
		}
	}
	return r.Labels[best], r.Scores[best], true
}

// Sentiment labels produced by the binary sentiment model
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
)

// SentimentResult is the output of the binary sentiment model
type SentimentResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NeutralSentiment is substituted when the sentiment model fails
func NeutralSentiment() SentimentResult {
	return SentimentResult{Label: SentimentNeutral, Score: 0.5}
}

// MessageClassification is the interpreted classifier output
type MessageClassification struct {
	IsPhishing bool    `json:"is_phishing"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
}

// MessageAnalysis is the detailed output of the message analyzer
type MessageAnalysis struct {
	Classification MessageClassification `json:"model_classification"`
	Sentiment      SentimentResult       `json:"sentiment"`
	RawRiskScore   float64               `json:"raw_risk_score"`
	RiskScore      int                   `json:"risk_score"`
	Verdict        Classification        `json:"classification"`
	Summary        string                `json:"summary"`
	Explanation    string                `json:"explanation"`
	Indicators     []string              `json:"indicators"`
}

// Result maps the detailed analysis to the common verdict shape
func (a *MessageAnalysis) Result() AnalysisResult {
	return AnalysisResult{
		Classification: a.Verdict,
		RiskScore:      a.RiskScore,
		Summary:        a.Summary,
		Explanation:    a.Explanation,
		Indicators:     a.Indicators,
	}
}
