package models

import (
	"time"

	"github.com/google/uuid"
)

// Classification is the verdict returned to callers
type Classification string

const (
	ClassificationLegitimate Classification = "Legitimate"
	ClassificationSuspicious Classification = "Suspicious"
	ClassificationPhishing   Classification = "Phishing"
)

// ContentType says which analyzer handled an input
type ContentType string

const (
	ContentTypeURL     ContentType = "url"
	ContentTypeMessage ContentType = "message"
)

// AnalysisResult is the common verdict shape produced by both analyzers
type AnalysisResult struct {
	Classification Classification `json:"classification"`
	RiskScore      int            `json:"riskScore"`
	Summary        string         `json:"summary"`
	Explanation    string         `json:"explanation"`
	Indicators     []string       `json:"indicators"`
}

// AnalysisReport wraps an AnalysisResult with request metadata
type AnalysisReport struct {
	ID          uuid.UUID      `json:"id"`
	ContentType ContentType    `json:"content_type"`
	Result      AnalysisResult `json:"result"`
	Confidence  float64        `json:"confidence"`
	Degraded    bool           `json:"degraded"`
	CacheHit    bool           `json:"cache_hit"`
	AnalyzedAt  time.Time      `json:"analyzed_at"`
}

// AnalyzeRequest is the request body for content analysis
type AnalyzeRequest struct {
	Content string `json:"content"`
}

// AnalysisRecord is a persisted history entry
type AnalysisRecord struct {
	ID             uuid.UUID      `json:"id"`
	ContentType    ContentType    `json:"content_type"`
	ContentHash    string         `json:"content_hash"`
	Preview        string         `json:"preview"`
	Classification Classification `json:"classification"`
	RiskScore      int            `json:"risk_score"`
	Confidence     float64        `json:"confidence"`
	Degraded       bool           `json:"degraded"`
	IndicatorCount int            `json:"indicator_count"`
	AnalyzedAt     time.Time      `json:"analyzed_at"`
}

// AnalysisStats summarises recorded analyses
type AnalysisStats struct {
	Total            int64            `json:"total"`
	ByClassification map[string]int64 `json:"by_classification"`
	ByContentType    map[string]int64 `json:"by_content_type"`
	Degraded         int64            `json:"degraded"`
	AverageRiskScore float64          `json:"average_risk_score"`
}
