package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clearbooks/backend/internal/models"
	"github.com/clearbooks/backend/internal/quickbooks"
)

// The importer depends on narrow store interfaces so each import path can be
// exercised against fakes without a database.

type accountStore interface {
	GetAccounts(ctx context.Context, organizationID string) ([]models.Account, error)
	InsertAccounts(ctx context.Context, accounts []models.Account) error
}

type payeeStore interface {
	GetPayees(ctx context.Context, organizationID string) ([]models.Payee, error)
	InsertPayees(ctx context.Context, payees []models.Payee) error
}

type classStore interface {
	GetClasses(ctx context.Context, organizationID string) ([]models.Class, error)
	InsertClasses(ctx context.Context, classes []models.Class) error
}

type transactionWriter interface {
	CreateTransactionWithEntries(ctx context.Context, organizationID string, input TransactionInput, entries []EntryInput) (*models.Transaction, error)
}

// ImportService turns QuickBooks CSV exports into persisted records.
type ImportService struct {
	accounts accountStore
	payees   payeeStore
	classes  classStore
	ledger   transactionWriter
}

func NewImportService(accounts *AccountService, payees *PayeeService, classes *ClassService, ledger *LedgerService) *ImportService {
	return &ImportService{accounts: accounts, payees: payees, classes: classes, ledger: ledger}
}

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// LedgerImportResult summarizes a general-ledger import. Imported and Errors
// count transactions, not CSV lines.
type LedgerImportResult struct {
	Success       bool     `json:"success"`
	Imported      int      `json:"imported"`
	Errors        int      `json:"errors"`
	Total         int      `json:"total"`
	ErrorMessages []string `json:"errorMessages,omitempty"`
}

// ImportAccounts imports a chart-of-accounts export. Rows are sorted by name
// before insertion so a parent's "Parent:Child" descendants resolve against
// parents created in the same batch.
func (s *ImportService) ImportAccounts(ctx context.Context, organizationID, csvData string) (*ImportResult, error) {
	rows, err := quickbooks.ParseAccounts(csvData)
	if err != nil {
		return nil, err
	}

	existing, err := s.accounts.GetAccounts(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	nameToID := make(map[string]string, len(existing))
	for _, a := range existing {
		nameToID[a.Name] = a.ID
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	var toInsert []models.Account
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		if _, exists := nameToID[row.Name]; exists {
			continue
		}
		accountType, subType, ok := quickbooks.ConvertAccountType(row.Type)
		if !ok {
			continue
		}

		var parentID *string
		if i := strings.LastIndex(row.Name, ":"); i > 0 {
			parentName := row.Name[:i]
			if id, ok := nameToID[strings.TrimSpace(parentName)]; ok {
				parentID = &id
			} else if id, ok := nameToID[parentName]; ok {
				parentID = &id
			}
		}

		id := uuid.New().String()
		nameToID[row.Name] = id
		toInsert = append(toInsert, models.Account{
			ID:              id,
			Name:            row.Name,
			Number:          row.Number,
			Type:            accountType,
			SubType:         subType,
			Description:     row.Description,
			ParentAccountID: parentID,
			OrganizationID:  organizationID,
		})
	}

	if err := s.accounts.InsertAccounts(ctx, toInsert); err != nil {
		return nil, err
	}
	return &ImportResult{Success: true, Count: len(toInsert)}, nil
}

// ImportPayees imports a vendor or customer export. A vendor row with an
// attachment on file is flagged as a W9 vendor.
func (s *ImportService) ImportPayees(ctx context.Context, organizationID, csvData string) (*ImportResult, error) {
	rows, _, err := quickbooks.ParsePayees(csvData)
	if err != nil {
		return nil, err
	}

	var toInsert []models.Payee
	for _, row := range rows {
		name := row.DisplayName()
		if name == "" {
			continue
		}
		payee := models.Payee{
			ID:             uuid.New().String(),
			Name:           name,
			Address1:       row.Address1,
			City:           row.City,
			State:          row.State,
			Zip:            row.Zip,
			Phone:          row.Phone,
			Email:          row.Email,
			OrganizationID: organizationID,
		}
		if row.IsW9Vendor() {
			payee.IsW9Vendor = true
			attachment := "Yes"
			payee.W9Attachment = &attachment
		}
		toInsert = append(toInsert, payee)
	}

	if err := s.payees.InsertPayees(ctx, toInsert); err != nil {
		return nil, err
	}
	return &ImportResult{Success: true, Count: len(toInsert)}, nil
}

// ImportClasses imports a classes export, preserving the source's created
// date when it parses.
func (s *ImportService) ImportClasses(ctx context.Context, organizationID, csvData string) (*ImportResult, error) {
	rows, err := quickbooks.ParseClasses(csvData)
	if err != nil {
		return nil, err
	}

	var toInsert []models.Class
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		class := models.Class{
			ID:             uuid.New().String(),
			Name:           row.Name,
			Description:    row.Description,
			OrganizationID: organizationID,
		}
		if createdAt, ok := quickbooks.ParseDate(row.CreatedDate); ok {
			class.CreatedAt = createdAt
		}
		toInsert = append(toInsert, class)
	}

	if err := s.classes.InsertClasses(ctx, toInsert); err != nil {
		return nil, err
	}
	return &ImportResult{Success: true, Count: len(toInsert)}, nil
}

// pendingTransaction is a grouped, balanced transaction awaiting persistence.
type pendingTransaction struct {
	key     quickbooks.TransactionKey
	input   TransactionInput
	entries []EntryInput
}

// ImportLedger imports a general-ledger export. The chart of accounts must
// already exist; lines are grouped into transactions by (date, type, num),
// validated per group, and persisted one transaction at a time so a bad
// group never blocks the rest of the file.
func (s *ImportService) ImportLedger(ctx context.Context, organizationID, csvData string) (*LedgerImportResult, error) {
	accounts, err := s.accounts.GetAccounts(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrEmptyChartOfAccounts
	}
	resolver := newChartResolver(accounts)

	payees, err := s.payees.GetPayees(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	payeeIDs := make(map[string]string, len(payees))
	for _, p := range payees {
		payeeIDs[p.Name] = p.ID
	}

	classes, err := s.classes.GetClasses(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	classIDs := make(map[string]string, len(classes))
	for _, c := range classes {
		classIDs[c.Name] = c.ID
	}

	parse, err := quickbooks.ParseLedger(csvData, resolver)
	if err != nil {
		return nil, err
	}

	result := &LedgerImportResult{ErrorMessages: parse.Warnings}

	var pending []pendingTransaction
	for _, group := range quickbooks.GroupLedgerRows(parse.Rows) {
		date, ok := quickbooks.ParseDate(group.Key.Date)
		if !ok {
			result.Errors++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("transaction %s: invalid date %q", group.Key, group.Key.Date))
			continue
		}

		var entries []EntryInput
		var descriptions []string
		seen := make(map[string]bool)
		for _, row := range group.Rows {
			accountID, ok := resolver.Resolve(row.Account)
			if !ok {
				continue
			}
			debit := quickbooks.ParseAmount(row.Debit)
			credit := quickbooks.ParseAmount(row.Credit)
			if debit.IsZero() && credit.IsZero() {
				continue
			}

			memo := row.Memo
			if memo == "" {
				memo = row.Name
			}
			if memo != "" && !seen[memo] {
				seen[memo] = true
				descriptions = append(descriptions, memo)
			}

			entry := EntryInput{
				AccountID: accountID,
				PayeeID:   lookup(payeeIDs, row.Name),
				ClassID:   lookup(classIDs, row.Class),
				Number:    row.Num,
				Memo:      memo,
			}
			// Negative amounts belong on the opposite side.
			switch {
			case debit.IsPositive():
				entry.Debit = debit
			case credit.IsPositive():
				entry.Credit = credit
			case debit.IsNegative():
				entry.Credit = debit.Neg()
			default:
				entry.Debit = credit.Neg()
			}
			entries = append(entries, entry)

			if splitID, ok := resolver.Resolve(row.SplitAccount); ok && row.SplitAccount != row.Account {
				mirror := entry
				mirror.AccountID = splitID
				mirror.Debit, mirror.Credit = entry.Credit, entry.Debit
				entries = append(entries, mirror)
			}
		}

		// A group that resolves to fewer than two entries cannot post, but
		// the skip still has to surface in the result.
		if len(entries) < 2 {
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("transaction %s: skipped, resolved to %d entries", group.Key, len(entries)))
			continue
		}

		var debits, credits decimal.Decimal
		for _, e := range entries {
			debits = debits.Add(e.Debit)
			credits = credits.Add(e.Credit)
		}
		if debits.Sub(credits).Abs().GreaterThanOrEqual(balanceTolerance) {
			result.Errors++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("transaction %s is not balanced: debits %s != credits %s",
					group.Key, debits.StringFixed(2), credits.StringFixed(2)))
			continue
		}

		pending = append(pending, pendingTransaction{
			key: group.Key,
			input: TransactionInput{
				Date:            date,
				TransactionType: quickbooks.NormalizeTransactionType(group.Key.Type),
				Description:     strings.Join(descriptions, "; "),
			},
			entries: entries,
		})
	}

	result.Total = len(pending)
	for _, p := range pending {
		if _, err := s.ledger.CreateTransactionWithEntries(ctx, organizationID, p.input, p.entries); err != nil {
			result.Errors++
			result.ErrorMessages = append(result.ErrorMessages,
				fmt.Sprintf("transaction %s: %v", p.key, err))
			continue
		}
		result.Imported++
	}

	result.Success = result.Errors == 0
	return result, nil
}

// chartResolver indexes the chart of accounts for the ledger scan: full-name
// lookups plus a set of every name that has descendants.
type chartResolver struct {
	byName  map[string]string
	parents map[string]bool
}

func newChartResolver(accounts []models.Account) *chartResolver {
	r := &chartResolver{
		byName:  make(map[string]string, len(accounts)),
		parents: make(map[string]bool),
	}
	for _, a := range accounts {
		r.byName[a.Name] = a.ID
		name := a.Name
		for {
			i := strings.LastIndex(name, ":")
			if i < 0 {
				break
			}
			name = name[:i]
			r.parents[name] = true
			r.parents[strings.TrimSpace(name)] = true
		}
	}
	return r
}

func (r *chartResolver) Resolve(name string) (string, bool) {
	id, ok := r.byName[name]
	return id, ok
}

func (r *chartResolver) HasChildren(name string) bool {
	return r.parents[name]
}

func lookup(m map[string]string, name string) *string {
	if name == "" {
		return nil
	}
	if id, ok := m[name]; ok {
		return &id
	}
	return nil
}
