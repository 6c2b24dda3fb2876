package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"phishguard/internal/domain/models"
	"phishguard/internal/domain/services/ai"
	"phishguard/pkg/logger"
)

// Candidate labels offered to the zero-shot classifier
var (
	PhishingLabels = []string{
		"phishing scam attempting to steal personal information",
		"urgent security threat requiring immediate action",
		"fraudulent prize or lottery winning notification",
	}
	BenignLabels = []string{
		"legitimate business communication",
		"normal personal message",
		"official company notification",
	}
)

// negativeSentimentThreshold is the NEGATIVE score above which sentiment adds risk
const negativeSentimentThreshold = 0.7

var messageSummaries = map[models.Classification]string{
	models.ClassificationLegitimate: "This message appears to be safe based on advanced AI analysis.",
	models.ClassificationSuspicious: "This message shows some warning signs and should be treated with caution.",
	models.ClassificationPhishing:   "This message is very likely a phishing attempt and should be avoided.",
}

// MessageAnalyzer scores free text with a zero-shot classifier, a sentiment
// model and a pattern table
type MessageAnalyzer struct {
	classifier ai.ZeroShotClassifier
	sentiment  ai.SentimentClassifier
	patterns   *PatternExtractor
	labels     []string
	phishing   map[string]bool
	logger     *logger.Logger
}

// MessageAnalyzerOption configures a MessageAnalyzer
type MessageAnalyzerOption func(*MessageAnalyzer)

// WithPatternExtractor replaces the default pattern table
func WithPatternExtractor(p *PatternExtractor) MessageAnalyzerOption {
	return func(a *MessageAnalyzer) {
		a.patterns = p
	}
}

// NewMessageAnalyzer creates a new message analyzer
func NewMessageAnalyzer(classifier ai.ZeroShotClassifier, sentiment ai.SentimentClassifier, log *logger.Logger, opts ...MessageAnalyzerOption) *MessageAnalyzer {
	a := &MessageAnalyzer{
		classifier: classifier,
		sentiment:  sentiment,
		patterns:   NewPatternExtractor(nil, nil),
		labels:     append(append([]string{}, PhishingLabels...), BenignLabels...),
		phishing:   make(map[string]bool, len(PhishingLabels)),
		logger:     log.WithComponent("message-analyzer"),
	}
	for _, l := range PhishingLabels {
		a.phishing[l] = true
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze classifies content. Classifier failures are returned; sentiment
// failures fall back to a neutral sentiment.
func (a *MessageAnalyzer) Analyze(ctx context.Context, content string) (*models.MessageAnalysis, error) {
	var (
		classification models.MessageClassification
		sentiment      models.SentimentResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := a.classify(gctx, content)
		if err != nil {
			return err
		}
		classification = c
		return nil
	})
	g.Go(func() error {
		sentiment = a.analyzeSentiment(gctx, content)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	indicators := a.patterns.Extract(content)

	raw := messageRisk(classification, sentiment, len(indicators))
	score := int(math.Round(raw))
	verdict := ClassifyMessageScore(raw)

	a.logger.Debug().
		Str("category", classification.Category).
		Float64("confidence", classification.Confidence).
		Str("sentiment", sentiment.Label).
		Int("indicators", len(indicators)).
		Int("risk_score", score).
		Msg("message scored")

	return &models.MessageAnalysis{
		Classification: classification,
		Sentiment:      sentiment,
		RawRiskScore:   raw,
		RiskScore:      score,
		Verdict:        verdict,
		Summary:        messageSummaries[verdict],
		Explanation:    messageExplanation(classification, sentiment, indicators),
		Indicators:     indicators,
	}, nil
}

func (a *MessageAnalyzer) classify(ctx context.Context, content string) (models.MessageClassification, error) {
	result, err := a.classifier.Classify(ctx, content, a.labels)
	if err != nil {
		return models.MessageClassification{}, fmt.Errorf("failed to classify message: %w", err)
	}
	label, score, ok := result.Top()
	if !ok {
		return models.MessageClassification{}, ErrEmptyClassification
	}
	return models.MessageClassification{
		IsPhishing: a.phishing[label],
		Confidence: score,
		Category:   label,
	}, nil
}

func (a *MessageAnalyzer) analyzeSentiment(ctx context.Context, content string) models.SentimentResult {
	result, err := a.sentiment.Sentiment(ctx, content)
	if err != nil || result == nil {
		a.logger.Warn().Err(err).Msg("sentiment analysis failed, using neutral sentiment")
		return models.NeutralSentiment()
	}
	return *result
}

// Preload loads both models ahead of the first request. Failures are logged.
func (a *MessageAnalyzer) Preload(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	for name, capability := range map[string]any{"classifier": a.classifier, "sentiment": a.sentiment} {
		p, ok := capability.(ai.Preloader)
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := p.Load(gctx); err != nil {
				a.logger.Error().Err(err).Str("model", name).Msg("failed to preload model")
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err == nil {
		a.logger.Info().Msg("models preloaded")
	}
}

// ModelsAvailable reports whether the classifier model can be loaded
func (a *MessageAnalyzer) ModelsAvailable(ctx context.Context) bool {
	p, ok := a.classifier.(ai.Preloader)
	if !ok {
		return a.classifier != nil
	}
	return p.Load(ctx) == nil
}

// ClassifyMessageScore maps an unrounded message risk score to a verdict
func ClassifyMessageScore(score float64) models.Classification {
	switch {
	case score < 30:
		return models.ClassificationLegitimate
	case score < 60:
		return models.ClassificationSuspicious
	default:
		return models.ClassificationPhishing
	}
}

func messageRisk(c models.MessageClassification, s models.SentimentResult, indicators int) float64 {
	var risk float64
	if c.IsPhishing {
		risk = c.Confidence * 80
		risk += math.Min(float64(indicators*5), 20)
		if isStronglyNegative(s) {
			risk += 10
		}
	} else {
		risk = (1-c.Confidence)*30 + float64(indicators*3)
	}
	return clamp(risk, 0, 100)
}

func isStronglyNegative(s models.SentimentResult) bool {
	return s.Label == models.SentimentNegative && s.Score > negativeSentimentThreshold
}

func messageExplanation(c models.MessageClassification, s models.SentimentResult, indicators []string) string {
	var b strings.Builder

	if c.IsPhishing {
		fmt.Fprintf(&b, "This message has been classified as %q with %.1f%% confidence. ", c.Category, c.Confidence*100)
		if len(indicators) > 0 {
			b.WriteString("Our language model identified the following concerning elements:\n\n")
			writeNumbered(&b, indicators)
		} else {
			b.WriteString("The language patterns and structure strongly resemble known phishing attempts, even without obvious red flags.")
		}
		if isStronglyNegative(s) {
			fmt.Fprintf(&b, "\nThe message also uses negative emotional language (%.1f%% confidence) which is a common manipulation tactic.", s.Score*100)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "This message appears to be %q with %.1f%% confidence. ", c.Category, c.Confidence*100)
	if len(indicators) > 0 {
		b.WriteString("While some elements were flagged for caution:\n\n")
		writeNumbered(&b, indicators)
		b.WriteString("\nThe overall context suggests this is likely legitimate. However, always verify unexpected messages through official channels.")
	} else {
		b.WriteString("The message doesn't exhibit typical phishing characteristics, but always exercise caution with unsolicited communications.")
	}
	return b.String()
}
