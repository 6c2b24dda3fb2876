package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"phishguard/internal/domain/models"
	"phishguard/internal/infrastructure/database"
)

// AnalysisRepository handles analysis history persistence
type AnalysisRepository struct {
	db database.DBTX
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db database.DBTX) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Record inserts an analysis record
func (r *AnalysisRepository) Record(ctx context.Context, a *models.AnalysisRecord) error {
	query := `
		INSERT INTO analyses (
			id, content_type, content_hash, preview, classification,
			risk_score, confidence, degraded, indicator_count, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		a.ID, string(a.ContentType), a.ContentHash, a.Preview, string(a.Classification),
		a.RiskScore, floatToFloat8(a.Confidence), a.Degraded, a.IndicatorCount,
		timeToTimestamptz(a.AnalyzedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record analysis: %w", err)
	}
	return nil
}

// ListRecent returns the newest records first
func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	query := `
		SELECT id, content_type, content_hash, preview, classification,
			   risk_score, confidence, degraded, indicator_count, analyzed_at
		FROM analyses
		ORDER BY analyzed_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	records := []*models.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return records, nil
}

// Stats aggregates recorded analyses
func (r *AnalysisRepository) Stats(ctx context.Context) (*models.AnalysisStats, error) {
	stats := &models.AnalysisStats{
		ByClassification: map[string]int64{},
		ByContentType:    map[string]int64{},
	}

	var avg pgtype.Float8
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE degraded), AVG(risk_score)::float8
		FROM analyses`,
	).Scan(&stats.Total, &stats.Degraded, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis totals: %w", err)
	}
	stats.AverageRiskScore = float8ToFloat(avg)

	if err := r.countBy(ctx, "classification", stats.ByClassification); err != nil {
		return nil, err
	}
	if err := r.countBy(ctx, "content_type", stats.ByContentType); err != nil {
		return nil, err
	}

	return stats, nil
}

// countBy fills dst with row counts grouped by column. column is never user input.
func (r *AnalysisRepository) countBy(ctx context.Context, column string, dst map[string]int64) error {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM analyses GROUP BY %s`, column, column))
	if err != nil {
		return fmt.Errorf("failed to count analyses by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		dst[key] = count
	}
	return rows.Err()
}

func scanAnalysis(rows pgx.Rows) (*models.AnalysisRecord, error) {
	var (
		rec            models.AnalysisRecord
		contentType    string
		classification string
		confidence     pgtype.Float8
		analyzedAt     pgtype.Timestamptz
	)

	err := rows.Scan(
		&rec.ID, &contentType, &rec.ContentHash, &rec.Preview, &classification,
		&rec.RiskScore, &confidence, &rec.Degraded, &rec.IndicatorCount, &analyzedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	rec.ContentType = models.ContentType(contentType)
	rec.Classification = models.Classification(classification)
	rec.Confidence = float8ToFloat(confidence)
	rec.AnalyzedAt = timestamptzToTime(analyzedAt)
	return &rec, nil
}
