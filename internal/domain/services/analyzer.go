package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"phishguard/internal/domain/models"
	"phishguard/pkg/logger"
)

// MinInputLength is the shortest trimmed input accepted for analysis
const MinInputLength = 5

const (
	fallbackSummary   = "Unable to complete AI analysis"
	fallbackIndicator = "AI analysis temporarily unavailable"
)

// Verdict is an AnalysisResult plus what produced it
type Verdict struct {
	ContentType models.ContentType
	Result      models.AnalysisResult
	Confidence  float64
	// Degraded is set when the result is the fixed fallback
	Degraded bool
}

// Analyzer routes content to the URL or message path and normalises the result
type Analyzer struct {
	urls     *URLAnalyzer
	messages *MessageAnalyzer
	logger   *logger.Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(urls *URLAnalyzer, messages *MessageAnalyzer, log *logger.Logger) *Analyzer {
	return &Analyzer{
		urls:     urls,
		messages: messages,
		logger:   log.WithComponent("analyzer"),
	}
}

// URLs returns the URL path
func (a *Analyzer) URLs() *URLAnalyzer {
	return a.urls
}

// Messages returns the message path
func (a *Analyzer) Messages() *MessageAnalyzer {
	return a.messages
}

// ValidateInput trims content and rejects inputs shorter than MinInputLength
func ValidateInput(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if utf8.RuneCountInString(trimmed) < MinInputLength {
		return "", ErrInputTooShort
	}
	return trimmed, nil
}

// Analyze classifies content. Only ErrInputTooShort is returned; any failure
// inside a path yields the fallback verdict.
func (a *Analyzer) Analyze(ctx context.Context, content string) (*Verdict, error) {
	trimmed, err := ValidateInput(content)
	if err != nil {
		return nil, err
	}

	contentType := DetectContentType(trimmed)
	a.logger.Debug().Str("content_type", string(contentType)).Msg("analyzing content")

	switch contentType {
	case models.ContentTypeURL:
		analysis := a.urls.Analyze(trimmed)
		return &Verdict{
			ContentType: contentType,
			Result:      analysis.Result(),
			Confidence:  analysis.Confidence,
		}, nil
	default:
		analysis, err := a.analyzeMessage(ctx, trimmed)
		if err != nil {
			a.logger.Error().Err(err).Msg("message analysis failed, returning fallback")
			return &Verdict{
				ContentType: contentType,
				Result:      FallbackResult(err),
				Degraded:    true,
			}, nil
		}
		return &Verdict{
			ContentType: contentType,
			Result:      analysis.Result(),
			Confidence:  analysis.Classification.Confidence,
		}, nil
	}
}

func (a *Analyzer) analyzeMessage(ctx context.Context, content string) (*models.MessageAnalysis, error) {
	if a.messages == nil {
		return nil, fmt.Errorf("failed to analyze message: no message analyzer configured")
	}
	analysis, err := a.messages.Analyze(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze message: %w", err)
	}
	return analysis, nil
}

// FallbackResult is the fixed verdict returned when analysis cannot complete
func FallbackResult(err error) models.AnalysisResult {
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}
	return models.AnalysisResult{
		Classification: models.ClassificationSuspicious,
		RiskScore:      50,
		Summary:        fallbackSummary,
		Explanation:    fmt.Sprintf("Our AI models encountered an error: %s. This could be due to model loading issues or an unreachable inference service. Please try again, and if the problem persists, check that the model endpoint is configured and reachable.", msg),
		Indicators:     []string{fallbackIndicator},
	}
}
