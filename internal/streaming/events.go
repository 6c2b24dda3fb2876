package streaming

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"phishguard/internal/domain/models"
)

// EventType represents the type of analysis event
type EventType string

const (
	EventTypeAnalysisCompleted EventType = "analysis.completed"
)

// AnalysisEvent announces a completed analysis. Content is never included.
type AnalysisEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	AnalysisID     string                `json:"analysis_id"`
	ContentType    models.ContentType    `json:"content_type"`
	Classification models.Classification `json:"classification"`
	RiskScore      int                   `json:"risk_score"`
	Confidence     float64               `json:"confidence"`
	Summary        string                `json:"summary"`
	IndicatorCount int                   `json:"indicator_count"`
	Degraded       bool                  `json:"degraded,omitempty"`
	CacheHit       bool                  `json:"cache_hit,omitempty"`
}

// NewAnalysisEvent creates an event from a report
func NewAnalysisEvent(report *models.AnalysisReport) *AnalysisEvent {
	ts := report.AnalyzedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &AnalysisEvent{
		ID:             uuid.New().String(),
		Type:           EventTypeAnalysisCompleted,
		Timestamp:      ts,
		AnalysisID:     report.ID.String(),
		ContentType:    report.ContentType,
		Classification: report.Result.Classification,
		RiskScore:      report.Result.RiskScore,
		Confidence:     report.Confidence,
		Summary:        report.Result.Summary,
		IndicatorCount: len(report.Result.Indicators),
		Degraded:       report.Degraded,
		CacheHit:       report.CacheHit,
	}
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter by verdict (empty = all)
	Classifications []models.Classification `json:"classifications,omitempty"`

	// Filter by content type (empty = all)
	ContentTypes []models.ContentType `json:"content_types,omitempty"`

	// Only events at or above this risk score
	MinRiskScore int `json:"min_risk_score,omitempty"`

	// Skip fallback verdicts
	ExcludeDegraded bool `json:"exclude_degraded,omitempty"`
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *AnalysisEvent) bool {
	if s == nil {
		return true
	}
	if len(s.Classifications) > 0 && !slices.Contains(s.Classifications, event.Classification) {
		return false
	}
	if len(s.ContentTypes) > 0 && !slices.Contains(s.ContentTypes, event.ContentType) {
		return false
	}
	if event.RiskScore < s.MinRiskScore {
		return false
	}
	if s.ExcludeDegraded && event.Degraded {
		return false
	}
	return true
}
