package streaming

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"phishguard/internal/domain/models"
)

func testReport() *models.AnalysisReport {
	return &models.AnalysisReport{
		ID:          uuid.MustParse("7f9c2ba4-e88f-4c6e-9a2b-7d8d2f1e5c3a"),
		ContentType: models.ContentTypeURL,
		Result: models.AnalysisResult{
			Classification: models.ClassificationPhishing,
			RiskScore:      72,
			Summary:        "This URL is very likely a phishing attempt and should be avoided.",
			Indicators:     []string{"a", "b", "c", "d"},
		},
		Confidence: 0.86,
		AnalyzedAt: time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

func TestNewAnalysisEvent(t *testing.T) {
	event := NewAnalysisEvent(testReport())

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventTypeAnalysisCompleted, event.Type)
	assert.Equal(t, "7f9c2ba4-e88f-4c6e-9a2b-7d8d2f1e5c3a", event.AnalysisID)
	assert.Equal(t, models.ClassificationPhishing, event.Classification)
	assert.Equal(t, 72, event.RiskScore)
	assert.Equal(t, 4, event.IndicatorCount)
	assert.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), event.Timestamp)
}

func TestSubscriptionMatches(t *testing.T) {
	event := NewAnalysisEvent(testReport())

	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{"nil", nil, true},
		{"empty", &Subscription{}, true},
		{"classification hit", &Subscription{Classifications: []models.Classification{models.ClassificationPhishing}}, true},
		{"classification miss", &Subscription{Classifications: []models.Classification{models.ClassificationLegitimate}}, false},
		{"content type miss", &Subscription{ContentTypes: []models.ContentType{models.ContentTypeMessage}}, false},
		{"risk at threshold", &Subscription{MinRiskScore: 72}, true},
		{"risk below threshold", &Subscription{MinRiskScore: 73}, false},
		{"exclude degraded", &Subscription{ExcludeDegraded: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Matches(event))
		})
	}

	degraded := *event
	degraded.Degraded = true
	assert.False(t, (&Subscription{ExcludeDegraded: true}).Matches(&degraded))
}

func TestSubjectFor(t *testing.T) {
	event := NewAnalysisEvent(testReport())
	assert.Equal(t, "analyses.url.phishing", SubjectFor("analyses", event))
	assert.Equal(t, "analyses.unknown.unknown", SubjectFor("analyses", &AnalysisEvent{}))
}
