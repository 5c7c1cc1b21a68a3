package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clearbooks/backend/internal/models"
)

// PayeeService provides organization-scoped payee persistence.
type PayeeService struct {
	db *sql.DB
}

func NewPayeeService(db *sql.DB) *PayeeService {
	return &PayeeService{db: db}
}

const payeeColumns = `id, name, address1, address2, city, state, zip, phone, email, is_w9_vendor, w9_attachment, organization_id, created_at, updated_at`

// GetPayees returns the organization's payees, name ascending.
func (s *PayeeService) GetPayees(ctx context.Context, organizationID string) ([]models.Payee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+payeeColumns+`
		FROM payees
		WHERE organization_id = $1
		ORDER BY name ASC`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("querying payees: %w", err)
	}
	defer rows.Close()

	var payees []models.Payee
	for rows.Next() {
		payee, err := scanPayee(rows)
		if err != nil {
			return nil, err
		}
		payees = append(payees, payee)
	}
	return payees, rows.Err()
}

// InsertPayees bulk-inserts payees in one database transaction.
func (s *PayeeService) InsertPayees(ctx context.Context, payees []models.Payee) error {
	if len(payees) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, p := range payees {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO payees (`+payeeColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			p.ID, p.Name, p.Address1, p.Address2, p.City, p.State, p.Zip,
			p.Phone, p.Email, p.IsW9Vendor, p.W9Attachment,
			p.OrganizationID, now, now); err != nil {
			return fmt.Errorf("inserting payee %q: %w", p.Name, err)
		}
	}

	return tx.Commit()
}

// CreatePayee inserts a single payee, generating its id when unset.
func (s *PayeeService) CreatePayee(ctx context.Context, payee models.Payee) (*models.Payee, error) {
	if payee.ID == "" {
		payee.ID = uuid.New().String()
	}
	now := time.Now()
	payee.CreatedAt = now
	payee.UpdatedAt = now

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO payees (`+payeeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		payee.ID, payee.Name, payee.Address1, payee.Address2, payee.City, payee.State,
		payee.Zip, payee.Phone, payee.Email, payee.IsW9Vendor, payee.W9Attachment,
		payee.OrganizationID, now, now); err != nil {
		return nil, fmt.Errorf("inserting payee: %w", err)
	}
	return &payee, nil
}

// UpdatePayee updates a payee's fields, scoped to the organization.
func (s *PayeeService) UpdatePayee(ctx context.Context, payee models.Payee) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE payees
		SET name = $1, address1 = $2, address2 = $3, city = $4, state = $5, zip = $6,
			phone = $7, email = $8, is_w9_vendor = $9, w9_attachment = $10, updated_at = $11
		WHERE id = $12 AND organization_id = $13`,
		payee.Name, payee.Address1, payee.Address2, payee.City, payee.State, payee.Zip,
		payee.Phone, payee.Email, payee.IsW9Vendor, payee.W9Attachment, time.Now(),
		payee.ID, payee.OrganizationID)
	if err != nil {
		return fmt.Errorf("updating payee: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPayeeNotFound
	}
	return nil
}

func scanPayee(row rowScanner) (models.Payee, error) {
	var p models.Payee
	var attachment sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Address1, &p.Address2, &p.City, &p.State,
		&p.Zip, &p.Phone, &p.Email, &p.IsW9Vendor, &attachment,
		&p.OrganizationID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Payee{}, fmt.Errorf("scanning payee: %w", err)
	}
	if attachment.Valid {
		p.W9Attachment = &attachment.String
	}
	return p, nil
}
