package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clearbooks/backend/internal/models"
)

// LedgerService owns transactions and their entries. Entries never change
// independently: creating writes header plus entries atomically, updating
// replaces the whole entry set.
type LedgerService struct {
	db    *sql.DB
	cache *ReportCache
}

func NewLedgerService(db *sql.DB, cache *ReportCache) *LedgerService {
	return &LedgerService{db: db, cache: cache}
}

// TransactionInput is the header of a transaction to be written.
type TransactionInput struct {
	Date            time.Time
	TransactionType models.TransactionType
	Description     string
	Attachments     *string
}

// EntryInput is one entry of a transaction to be written. Exactly one of
// Debit/Credit must be positive.
type EntryInput struct {
	AccountID string
	PayeeID   *string
	ClassID   *string
	Number    string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}

// validateEntries enforces the double-entry contract: at least two entries,
// debits equal credits within tolerance, and each entry carries exactly one
// side.
func validateEntries(entries []EntryInput) error {
	if len(entries) < 2 {
		return ErrInsufficientEntries
	}

	var debits, credits decimal.Decimal
	for _, e := range entries {
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	if debits.Sub(credits).Abs().GreaterThanOrEqual(balanceTolerance) {
		return &UnbalancedTransactionError{Debits: debits, Credits: credits}
	}

	for i, e := range entries {
		debitSet := e.Debit.IsPositive()
		creditSet := e.Credit.IsPositive()
		if debitSet == creditSet {
			return &InvalidEntrySideError{Index: i, BothSet: debitSet}
		}
	}
	return nil
}

// CreateTransactionWithEntries validates and writes a transaction and its
// entries in one database transaction.
func (s *LedgerService) CreateTransactionWithEntries(ctx context.Context, organizationID string, input TransactionInput, entries []EntryInput) (*models.Transaction, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	transaction := models.Transaction{
		ID:              uuid.New().String(),
		Date:            input.Date,
		TransactionType: input.TransactionType,
		Description:     input.Description,
		Attachments:     input.Attachments,
		OrganizationID:  organizationID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, date, transaction_type, description, attachments, organization_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		transaction.ID, transaction.Date, transaction.TransactionType, transaction.Description,
		transaction.Attachments, organizationID, now, now); err != nil {
		return nil, fmt.Errorf("inserting transaction: %w", err)
	}

	inserted, err := insertEntries(ctx, tx, transaction.ID, organizationID, entries, now)
	if err != nil {
		return nil, err
	}
	transaction.Entries = inserted

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.invalidate(ctx, organizationID)
	return &transaction, nil
}

// UpdateTransactionWithEntries validates and rewrites a transaction: the
// header is updated in place and the entry set is replaced wholesale.
func (s *LedgerService) UpdateTransactionWithEntries(ctx context.Context, organizationID, transactionID string, input TransactionInput, entries []EntryInput) (*models.Transaction, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET date = $1, transaction_type = $2, description = $3, attachments = $4, updated_at = $5
		WHERE id = $6 AND organization_id = $7`,
		input.Date, input.TransactionType, input.Description, input.Attachments,
		now, transactionID, organizationID)
	if err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrTransactionNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM entries WHERE transaction_id = $1 AND organization_id = $2`,
		transactionID, organizationID); err != nil {
		return nil, fmt.Errorf("deleting entries: %w", err)
	}

	inserted, err := insertEntries(ctx, tx, transactionID, organizationID, entries, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.invalidate(ctx, organizationID)
	return &models.Transaction{
		ID:              transactionID,
		Date:            input.Date,
		TransactionType: input.TransactionType,
		Description:     input.Description,
		Attachments:     input.Attachments,
		OrganizationID:  organizationID,
		UpdatedAt:       now,
		Entries:         inserted,
	}, nil
}

// DeleteTransaction removes a transaction; its entries go with it via the
// foreign key cascade.
func (s *LedgerService) DeleteTransaction(ctx context.Context, organizationID, transactionID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM transactions WHERE id = $1 AND organization_id = $2`,
		transactionID, organizationID)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTransactionNotFound
	}

	s.invalidate(ctx, organizationID)
	return nil
}

// GetTransaction fetches one transaction with its entries.
func (s *LedgerService) GetTransaction(ctx context.Context, organizationID, transactionID string) (*models.Transaction, error) {
	var t models.Transaction
	var attachments sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, transaction_type, description, attachments, organization_id, created_at, updated_at
		FROM transactions
		WHERE id = $1 AND organization_id = $2`,
		transactionID, organizationID).Scan(
		&t.ID, &t.Date, &t.TransactionType, &t.Description, &attachments,
		&t.OrganizationID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying transaction: %w", err)
	}
	if attachments.Valid {
		t.Attachments = &attachments.String
	}

	entries, err := s.queryEntriesByTransaction(ctx, organizationID, transactionID)
	if err != nil {
		return nil, err
	}
	t.Entries = entries[transactionID]
	return &t, nil
}

// ListTransactions returns the organization's transactions newest first, each
// with its entries attached.
func (s *LedgerService) ListTransactions(ctx context.Context, organizationID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, transaction_type, description, attachments, organization_id, created_at, updated_at
		FROM transactions
		WHERE organization_id = $1
		ORDER BY date DESC, created_at DESC`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var attachments sql.NullString
		if err := rows.Scan(&t.ID, &t.Date, &t.TransactionType, &t.Description, &attachments,
			&t.OrganizationID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if attachments.Valid {
			t.Attachments = &attachments.String
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return transactions, nil
	}

	entriesByTx, err := s.queryEntriesByTransaction(ctx, organizationID, "")
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		transactions[i].Entries = entriesByTx[transactions[i].ID]
	}
	return transactions, nil
}

func (s *LedgerService) queryEntriesByTransaction(ctx context.Context, organizationID, transactionID string) (map[string][]models.Entry, error) {
	query := `
		SELECT id, transaction_id, account_id, payee_id, class_id, number, debit, credit, memo, organization_id, created_at, updated_at
		FROM entries
		WHERE organization_id = $1`
	args := []any{organizationID}
	if transactionID != "" {
		query += ` AND transaction_id = $2`
		args = append(args, transactionID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	byTx := make(map[string][]models.Entry)
	for rows.Next() {
		var e models.Entry
		var payeeID, classID sql.NullString
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &payeeID, &classID,
			&e.Number, &e.Debit, &e.Credit, &e.Memo,
			&e.OrganizationID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if payeeID.Valid {
			e.PayeeID = &payeeID.String
		}
		if classID.Valid {
			e.ClassID = &classID.String
		}
		byTx[e.TransactionID] = append(byTx[e.TransactionID], e)
	}
	return byTx, rows.Err()
}

func insertEntries(ctx context.Context, tx *sql.Tx, transactionID, organizationID string, entries []EntryInput, now time.Time) ([]models.Entry, error) {
	inserted := make([]models.Entry, 0, len(entries))
	for _, in := range entries {
		entry := models.Entry{
			ID:             uuid.New().String(),
			TransactionID:  transactionID,
			AccountID:      in.AccountID,
			PayeeID:        in.PayeeID,
			ClassID:        in.ClassID,
			Number:         in.Number,
			Debit:          in.Debit,
			Credit:         in.Credit,
			Memo:           in.Memo,
			OrganizationID: organizationID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO entries (id, transaction_id, account_id, payee_id, class_id, number, debit, credit, memo, organization_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			entry.ID, entry.TransactionID, entry.AccountID, entry.PayeeID, entry.ClassID,
			entry.Number, entry.Debit, entry.Credit, entry.Memo,
			entry.OrganizationID, now, now); err != nil {
			return nil, fmt.Errorf("inserting entry: %w", err)
		}
		inserted = append(inserted, entry)
	}
	return inserted, nil
}

func (s *LedgerService) invalidate(ctx context.Context, organizationID string) {
	if err := s.cache.InvalidateOrganization(ctx, organizationID); err != nil {
		log.Printf("Failed to invalidate report cache for organization %s: %v", organizationID, err)
	}
}
