package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"phishguard/internal/domain/models"
	"phishguard/pkg/logger"
)

var (
	// ErrInputTooLong is returned for content above the configured maximum length
	ErrInputTooLong = errors.New("input too long")

	// ErrHistoryDisabled is returned by history queries when no store is configured
	ErrHistoryDisabled = errors.New("analysis history is not enabled")
)

const (
	previewLength  = 120
	cacheKeyPrefix = "analysis:url:"
)

// ResultCache stores URL reports by content hash. Get returns nil, nil on a miss.
type ResultCache interface {
	GetAnalysis(ctx context.Context, key string) (*models.AnalysisReport, error)
	SetAnalysis(ctx context.Context, key string, report *models.AnalysisReport, ttl time.Duration) error
}

// HistoryStore persists analysis records
type HistoryStore interface {
	Record(ctx context.Context, record *models.AnalysisRecord) error
	ListRecent(ctx context.Context, limit int) ([]*models.AnalysisRecord, error)
	Stats(ctx context.Context) (*models.AnalysisStats, error)
}

// EventPublisher announces completed analyses
type EventPublisher interface {
	PublishAnalysis(ctx context.Context, report *models.AnalysisReport) error
}

// DomainEnricher fills network derived feature slots for a hostname
type DomainEnricher interface {
	Enrich(ctx context.Context, hostname string, features *models.FeatureVector) error
}

// AnalysisServiceConfig holds AnalysisService settings
type AnalysisServiceConfig struct {
	MaxInputLength int
	CacheTTL       time.Duration
	HistoryLimit   int
}

// AnalysisService wraps the Analyzer with IDs, caching, history and events.
// Cache, history and event failures are logged and never change a result.
type AnalysisService struct {
	analyzer *Analyzer
	config   AnalysisServiceConfig
	logger   *logger.Logger

	cache     ResultCache
	history   HistoryStore
	publisher EventPublisher
	enricher  DomainEnricher

	now func() time.Time
}

// AnalysisServiceOption configures an AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// WithResultCache enables URL result caching
func WithResultCache(c ResultCache) AnalysisServiceOption {
	return func(s *AnalysisService) { s.cache = c }
}

// WithHistory enables analysis history
func WithHistory(h HistoryStore) AnalysisServiceOption {
	return func(s *AnalysisService) { s.history = h }
}

// WithPublisher enables analysis events
func WithPublisher(p EventPublisher) AnalysisServiceOption {
	return func(s *AnalysisService) { s.publisher = p }
}

// WithDomainEnricher enables feature enrichment on request
func WithDomainEnricher(e DomainEnricher) AnalysisServiceOption {
	return func(s *AnalysisService) { s.enricher = e }
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(analyzer *Analyzer, cfg AnalysisServiceConfig, log *logger.Logger, opts ...AnalysisServiceOption) *AnalysisService {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	s := &AnalysisService{
		analyzer: analyzer,
		config:   cfg,
		logger:   log.WithComponent("analysis-service"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HistoryEnabled reports whether a history store is configured
func (s *AnalysisService) HistoryEnabled() bool {
	return s.history != nil
}

func (s *AnalysisService) validate(content string) (string, error) {
	trimmed, err := ValidateInput(content)
	if err != nil {
		return "", err
	}
	if s.config.MaxInputLength > 0 && utf8.RuneCountInString(trimmed) > s.config.MaxInputLength {
		return "", ErrInputTooLong
	}
	return trimmed, nil
}

// Analyze classifies content and returns a report
func (s *AnalysisService) Analyze(ctx context.Context, content string) (*models.AnalysisReport, error) {
	trimmed, err := s.validate(content)
	if err != nil {
		return nil, err
	}

	hash := contentHash(trimmed)
	contentType := DetectContentType(trimmed)

	var report *models.AnalysisReport
	if contentType == models.ContentTypeURL {
		report = s.cached(ctx, hash)
	}

	if report == nil {
		verdict, err := s.analyzer.Analyze(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		report = &models.AnalysisReport{
			ContentType: verdict.ContentType,
			Result:      verdict.Result,
			Confidence:  verdict.Confidence,
			Degraded:    verdict.Degraded,
		}
		if report.ContentType == models.ContentTypeURL && !report.Degraded {
			s.store(ctx, hash, report)
		}
	}

	report.ID = uuid.New()
	report.AnalyzedAt = s.now().UTC()

	log := s.logger.WithAnalysisID(report.ID.String())
	log.Info().
		Str("content_type", string(report.ContentType)).
		Str("classification", string(report.Result.Classification)).
		Int("risk_score", report.Result.RiskScore).
		Bool("degraded", report.Degraded).
		Bool("cache_hit", report.CacheHit).
		Msg("analysis completed")

	s.record(ctx, log, hash, trimmed, report)
	s.publish(ctx, log, report)

	return report, nil
}

func (s *AnalysisService) cached(ctx context.Context, hash string) *models.AnalysisReport {
	if s.cache == nil {
		return nil
	}
	report, err := s.cache.GetAnalysis(ctx, cacheKeyPrefix+hash)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read cached analysis")
		return nil
	}
	if report == nil {
		return nil
	}
	report.CacheHit = true
	return report
}

func (s *AnalysisService) store(ctx context.Context, hash string, report *models.AnalysisReport) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetAnalysis(ctx, cacheKeyPrefix+hash, report, s.config.CacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache analysis")
	}
}

func (s *AnalysisService) record(ctx context.Context, log *logger.Logger, hash, content string, report *models.AnalysisReport) {
	if s.history == nil {
		return
	}
	record := &models.AnalysisRecord{
		ID:             report.ID,
		ContentType:    report.ContentType,
		ContentHash:    hash,
		Preview:        preview(content),
		Classification: report.Result.Classification,
		RiskScore:      report.Result.RiskScore,
		Confidence:     report.Confidence,
		Degraded:       report.Degraded,
		IndicatorCount: len(report.Result.Indicators),
		AnalyzedAt:     report.AnalyzedAt,
	}
	if err := s.history.Record(ctx, record); err != nil {
		log.Warn().Err(err).Msg("failed to record analysis")
	}
}

func (s *AnalysisService) publish(ctx context.Context, log *logger.Logger, report *models.AnalysisReport) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAnalysis(ctx, report); err != nil {
		log.Warn().Err(err).Msg("failed to publish analysis event")
	}
}

// AnalyzeURL returns the detailed URL analysis
func (s *AnalysisService) AnalyzeURL(ctx context.Context, rawURL string) (*models.URLAnalysis, error) {
	trimmed, err := s.validate(rawURL)
	if err != nil {
		return nil, err
	}
	return s.analyzer.URLs().Analyze(trimmed), nil
}

// AnalyzeMessage returns the detailed message analysis. Model failures are returned.
func (s *AnalysisService) AnalyzeMessage(ctx context.Context, message string) (*models.MessageAnalysis, error) {
	trimmed, err := s.validate(message)
	if err != nil {
		return nil, err
	}
	return s.analyzer.analyzeMessage(ctx, trimmed)
}

// ExtractFeatures returns the feature vector for rawURL, optionally enriched
// with domain registration data
func (s *AnalysisService) ExtractFeatures(ctx context.Context, rawURL string, enrich bool) (*models.FeaturesResponse, error) {
	trimmed, err := s.validate(rawURL)
	if err != nil {
		return nil, err
	}

	vector := s.analyzer.URLs().ExtractFeatures(trimmed)
	degraded := vector.IsZero()

	if enrich && !degraded && s.enricher != nil {
		if parsed, err := parseURL(trimmed); err == nil {
			if err := s.enricher.Enrich(ctx, parsed.hostname, &vector); err != nil {
				s.logger.Warn().Err(err).Str("host", parsed.hostname).Msg("failed to enrich features")
			}
		}
	}

	return &models.FeaturesResponse{
		URL:      trimmed,
		Degraded: degraded,
		Vector:   vector[:],
		Named:    vector.Named(),
	}, nil
}

// Detect returns the content type for content
func (s *AnalysisService) Detect(content string) models.ContentType {
	return DetectContentType(content)
}

// Recent returns up to limit recent analyses, capped at the configured history limit
func (s *AnalysisService) Recent(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 || limit > s.config.HistoryLimit {
		limit = s.config.HistoryLimit
	}
	records, err := s.history.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return records, nil
}

// Stats summarises recorded analyses
func (s *AnalysisService) Stats(ctx context.Context) (*models.AnalysisStats, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	stats, err := s.history.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return stats, nil
}

// ModelsAvailable reports whether the message path can load its classifier
func (s *AnalysisService) ModelsAvailable(ctx context.Context) bool {
	if s.analyzer.Messages() == nil {
		return false
	}
	return s.analyzer.Messages().ModelsAvailable(ctx)
}

// Preload loads the message models ahead of first use
func (s *AnalysisService) Preload(ctx context.Context) {
	if s.analyzer.Messages() != nil {
		s.analyzer.Messages().Preload(ctx)
	}
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	return string([]rune(content)[:previewLength]) + "..."
}
