package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"sourcing/models"
)

const submissionColumns = `id, reference, project_id, user_id, rfq_data, status, matched_partner_ids, created_at, updated_at`

func scanSubmission(row rowScanner) (models.RFQSubmission, error) {
	var s models.RFQSubmission
	var data []byte
	var matched pq.StringArray
	if err := row.Scan(&s.ID, &s.Reference, &s.ProjectID, &s.UserID, &data, &s.Status,
		&matched, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s.RFQData); err != nil {
		return s, fmt.Errorf("failed to decode rfq_data: %w", err)
	}
	s.MatchedPartnerIDs = []string(matched)
	if s.MatchedPartnerIDs == nil {
		s.MatchedPartnerIDs = []string{}
	}
	return s, nil
}

func (p *Postgres) CreateSubmission(ctx context.Context, sub *models.RFQSubmission) error {
	data, err := json.Marshal(sub.RFQData)
	if err != nil {
		return fmt.Errorf("failed to encode rfq_data: %w", err)
	}

	ctx, cancel := queryContext(ctx)
	defer cancel()

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO rfq_submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sub.ID, sub.Reference, sub.ProjectID, sub.UserID, data, sub.Status,
		pq.Array(sub.MatchedPartnerIDs), sub.CreatedAt, sub.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert rfq submission: %w", err)
	}
	return nil
}

func (p *Postgres) GetSubmission(ctx context.Context, id string) (*models.RFQSubmission, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	sub, err := scanSubmission(p.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM rfq_submissions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rfq submission: %w", err)
	}
	return &sub, nil
}

func (p *Postgres) ListSubmissions(ctx context.Context, projectID, userID string) ([]models.RFQSubmission, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	query := `SELECT ` + submissionColumns + ` FROM rfq_submissions WHERE user_id = $1 ORDER BY created_at DESC`
	arg := userID
	if projectID != "" {
		query = `SELECT ` + submissionColumns + ` FROM rfq_submissions WHERE project_id = $1 ORDER BY created_at DESC`
		arg = projectID
	}

	rows, err := p.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list rfq submissions: %w", err)
	}
	defer rows.Close()

	subs := []models.RFQSubmission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rfq submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (p *Postgres) UpdateSubmissionStatus(ctx context.Context, id string, status models.RFQStatus) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	res, err := p.db.ExecContext(ctx,
		`UPDATE rfq_submissions SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update rfq status: %w", err)
	}
	return expectOneRow(res)
}

func (p *Postgres) ReplaceMatchedPartners(ctx context.Context, id string, partnerIDs []string) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	if partnerIDs == nil {
		partnerIDs = []string{}
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE rfq_submissions SET matched_partner_ids = $2, updated_at = $3 WHERE id = $1`,
		id, pq.Array(partnerIDs), time.Now())
	if err != nil {
		return fmt.Errorf("failed to replace matched partners: %w", err)
	}
	return expectOneRow(res)
}
