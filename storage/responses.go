package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sourcing/models"
)

const responseColumns = `id, submission_id, COALESCE(partner_id, ''), raw_text, pricing_data, extracted_metrics, ai_analysis, analyzed_at, created_at`

func scanResponse(row rowScanner) (models.RFQResponse, error) {
	var r models.RFQResponse
	var pricing, metrics, analysis []byte
	var analyzedAt sql.NullTime
	if err := row.Scan(&r.ID, &r.SubmissionID, &r.PartnerID, &r.RawText,
		&pricing, &metrics, &analysis, &analyzedAt, &r.CreatedAt); err != nil {
		return r, err
	}
	if len(pricing) > 0 {
		r.PricingData = json.RawMessage(pricing)
	}
	if len(metrics) > 0 && len(analysis) > 0 {
		r.ExtractedMetrics = &models.QuoteMetrics{}
		if err := json.Unmarshal(metrics, r.ExtractedMetrics); err != nil {
			return r, fmt.Errorf("failed to decode extracted_metrics: %w", err)
		}
		r.AIAnalysis = &models.QuoteAnalysis{}
		if err := json.Unmarshal(analysis, r.AIAnalysis); err != nil {
			return r, fmt.Errorf("failed to decode ai_analysis: %w", err)
		}
	}
	if analyzedAt.Valid {
		t := analyzedAt.Time
		r.AnalyzedAt = &t
	}
	return r, nil
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (p *Postgres) CreateResponse(ctx context.Context, resp *models.RFQResponse) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO rfq_responses (id, submission_id, partner_id, raw_text, pricing_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		resp.ID, resp.SubmissionID, nullableString(resp.PartnerID), resp.RawText,
		nullableJSON(resp.PricingData), resp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rfq response: %w", err)
	}
	return nil
}

func (p *Postgres) GetResponse(ctx context.Context, id string) (*models.RFQResponse, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	resp, err := scanResponse(p.db.QueryRowContext(ctx,
		`SELECT `+responseColumns+` FROM rfq_responses WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rfq response: %w", err)
	}
	return &resp, nil
}

func (p *Postgres) ListResponses(ctx context.Context, submissionID string) ([]models.RFQResponse, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := p.db.QueryContext(ctx,
		`SELECT `+responseColumns+` FROM rfq_responses WHERE submission_id = $1 ORDER BY created_at, id`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rfq responses: %w", err)
	}
	defer rows.Close()

	responses := []models.RFQResponse{}
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rfq response: %w", err)
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

func (p *Postgres) ReplaceQuoteAnalysis(ctx context.Context, id string, metrics models.QuoteMetrics, analysis models.QuoteAnalysis, analyzedAt time.Time) error {
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to encode extracted_metrics: %w", err)
	}
	if analysis.Flags == nil {
		analysis.Flags = []string{}
	}
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode ai_analysis: %w", err)
	}

	ctx, cancel := queryContext(ctx)
	defer cancel()

	res, err := p.db.ExecContext(ctx, `
		UPDATE rfq_responses
		SET extracted_metrics = $2, ai_analysis = $3, analyzed_at = $4
		WHERE id = $1`, id, metricsJSON, analysisJSON, analyzedAt)
	if err != nil {
		return fmt.Errorf("failed to replace quote analysis: %w", err)
	}
	return expectOneRow(res)
}
