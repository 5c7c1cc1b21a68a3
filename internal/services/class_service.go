package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clearbooks/backend/internal/models"
)

// ClassService provides organization-scoped class persistence.
type ClassService struct {
	db *sql.DB
}

func NewClassService(db *sql.DB) *ClassService {
	return &ClassService{db: db}
}

const classColumns = `id, name, description, organization_id, created_at, updated_at`

// GetClasses returns the organization's classes, name ascending.
func (s *ClassService) GetClasses(ctx context.Context, organizationID string) ([]models.Class, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+classColumns+`
		FROM classes
		WHERE organization_id = $1
		ORDER BY name ASC`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("querying classes: %w", err)
	}
	defer rows.Close()

	var classes []models.Class
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Description,
			&c.OrganizationID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning class: %w", err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// InsertClasses bulk-inserts classes in one database transaction. A class
// carrying its own CreatedAt keeps it, so imports preserve source timestamps.
func (s *ClassService) InsertClasses(ctx context.Context, classes []models.Class) error {
	if len(classes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, c := range classes {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO classes (`+classColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.Name, c.Description, c.OrganizationID, createdAt, now); err != nil {
			return fmt.Errorf("inserting class %q: %w", c.Name, err)
		}
	}

	return tx.Commit()
}

// CreateClass inserts a single class, generating its id when unset.
func (s *ClassService) CreateClass(ctx context.Context, class models.Class) (*models.Class, error) {
	if class.ID == "" {
		class.ID = uuid.New().String()
	}
	now := time.Now()
	class.CreatedAt = now
	class.UpdatedAt = now

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO classes (`+classColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		class.ID, class.Name, class.Description, class.OrganizationID, now, now); err != nil {
		return nil, fmt.Errorf("inserting class: %w", err)
	}
	return &class, nil
}

// UpdateClass updates a class's fields, scoped to the organization.
func (s *ClassService) UpdateClass(ctx context.Context, class models.Class) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE classes
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4 AND organization_id = $5`,
		class.Name, class.Description, time.Now(), class.ID, class.OrganizationID)
	if err != nil {
		return fmt.Errorf("updating class: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClassNotFound
	}
	return nil
}
