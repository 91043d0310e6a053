package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sourcing/models"
)

const partnerColumns = `id, name, type, description, capabilities, country, email, website, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPartner(row rowScanner) (models.Partner, error) {
	var p models.Partner
	var capabilities pq.StringArray
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Description, &capabilities,
		&p.Country, &p.Email, &p.Website, &p.CreatedAt, &p.UpdatedAt)
	p.Capabilities = []string(capabilities)
	return p, err
}

func (p *Postgres) CreatePartner(ctx context.Context, partner *models.Partner) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO partners (`+partnerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		partner.ID, partner.Name, partner.Type, partner.Description, pq.Array(partner.Capabilities),
		partner.Country, partner.Email, partner.Website, partner.CreatedAt, partner.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert partner: %w", err)
	}
	return nil
}

func (p *Postgres) GetPartner(ctx context.Context, id string) (*models.Partner, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	partner, err := scanPartner(p.db.QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query partner: %w", err)
	}
	return &partner, nil
}

func (p *Postgres) ListPartners(ctx context.Context, filter models.PartnerFilter) ([]models.Partner, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	query := `SELECT ` + partnerColumns + ` FROM partners`
	var args []interface{}
	if filter.Type != "" {
		query += ` WHERE type = $1`
		args = append(args, filter.Type)
	}
	query += ` ORDER BY created_at, id`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	partners := []models.Partner{}
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, partner)
	}
	return partners, rows.Err()
}

func (p *Postgres) UpdatePartner(ctx context.Context, partner *models.Partner) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	res, err := p.db.ExecContext(ctx, `
		UPDATE partners
		SET name = $2, type = $3, description = $4, capabilities = $5,
		    country = $6, email = $7, website = $8, updated_at = $9
		WHERE id = $1`,
		partner.ID, partner.Name, partner.Type, partner.Description, pq.Array(partner.Capabilities),
		partner.Country, partner.Email, partner.Website, partner.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}
	return expectOneRow(res)
}

func (p *Postgres) DeletePartner(ctx context.Context, id string) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	res, err := p.db.ExecContext(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete partner: %w", err)
	}
	return expectOneRow(res)
}
