package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/clearbooks/backend/internal/models"
)

// AccountService provides organization-scoped chart-of-accounts persistence.
type AccountService struct {
	db *sql.DB
}

func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{db: db}
}

const accountColumns = `id, name, number, type, sub_type, description, parent_account_id, organization_id, created_at, updated_at`

// GetAccounts returns the organization's chart of accounts, name ascending.
func (s *AccountService) GetAccounts(ctx context.Context, organizationID string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE organization_id = $1
		ORDER BY name ASC`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// GetAccountsByType returns the organization's accounts of the given types,
// name ascending. Reporting uses this to select the statement's side of the
// chart.
func (s *AccountService) GetAccountsByType(ctx context.Context, organizationID string, types ...models.AccountType) ([]models.Account, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE organization_id = $1 AND type = ANY($2)
		ORDER BY name ASC`, organizationID, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("querying accounts by type: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// InsertAccounts bulk-inserts accounts in one database transaction.
func (s *AccountService) InsertAccounts(ctx context.Context, accounts []models.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, a := range accounts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (`+accountColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			a.ID, a.Name, a.Number, a.Type, a.SubType, a.Description,
			a.ParentAccountID, a.OrganizationID, now, now); err != nil {
			return fmt.Errorf("inserting account %q: %w", a.Name, err)
		}
	}

	return tx.Commit()
}

// CreateAccount inserts a single account, generating its id when unset.
func (s *AccountService) CreateAccount(ctx context.Context, account models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.SubType == "" {
		account.SubType = models.AccountSubTypeOther
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		account.ID, account.Name, account.Number, account.Type, account.SubType,
		account.Description, account.ParentAccountID, account.OrganizationID, now, now); err != nil {
		return nil, fmt.Errorf("inserting account: %w", err)
	}
	return &account, nil
}

// UpdateAccount updates an account's editable fields, scoped to the
// organization. The account's type is fixed at creation and not updatable.
func (s *AccountService) UpdateAccount(ctx context.Context, account models.Account) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = $1, number = $2, sub_type = $3, description = $4, parent_account_id = $5, updated_at = $6
		WHERE id = $7 AND organization_id = $8`,
		account.Name, account.Number, account.SubType, account.Description,
		account.ParentAccountID, time.Now(), account.ID, account.OrganizationID)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var a models.Account
	var parent sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.Number, &a.Type, &a.SubType, &a.Description,
		&parent, &a.OrganizationID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return models.Account{}, fmt.Errorf("scanning account: %w", err)
	}
	if parent.Valid {
		a.ParentAccountID = &parent.String
	}
	return a, nil
}
