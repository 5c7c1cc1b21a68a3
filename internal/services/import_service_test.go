package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clearbooks/backend/internal/models"
	"github.com/clearbooks/backend/internal/quickbooks"
)

func accountsCSV(dataRows ...string) string {
	lines := []string{
		"My Company",
		"Account List",
		"Account #,Full name,Type,Detail type,Description",
	}
	lines = append(lines, dataRows...)
	lines = append(lines, ",,,,", ",,,,", ",,,,", ",,,,", ",,,,")
	return strings.Join(lines, "\n")
}

func TestImportService_ImportAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves parents within the batch", func(t *testing.T) {
		accounts := new(MockAccountStore)
		accounts.On("GetAccounts", ctx, "org-1").Return([]models.Account{}, nil)

		var inserted []models.Account
		accounts.On("InsertAccounts", ctx, mock.Anything).
			Run(func(args mock.Arguments) {
				inserted = args.Get(1).([]models.Account)
			}).
			Return(nil)

		service := &ImportService{accounts: accounts}
		result, err := service.ImportAccounts(ctx, "org-1", accountsCSV(
			"6100,Utilities:Electric,Expenses,Utilities,",
			"6000,Utilities,Expenses,Utilities,",
			"1000,Checking,Bank,Checking,",
		))
		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 3, result.Count)

		byName := make(map[string]models.Account)
		for _, a := range inserted {
			byName[a.Name] = a
		}
		assert.Equal(t, models.AccountTypeAsset, byName["Checking"].Type)
		assert.Equal(t, models.AccountSubTypeBank, byName["Checking"].SubType)
		assert.Nil(t, byName["Utilities"].ParentAccountID)
		if assert.NotNil(t, byName["Utilities:Electric"].ParentAccountID) {
			assert.Equal(t, byName["Utilities"].ID, *byName["Utilities:Electric"].ParentAccountID)
		}
		accounts.AssertExpectations(t)
	})

	t.Run("skips unmapped types and existing names", func(t *testing.T) {
		accounts := new(MockAccountStore)
		accounts.On("GetAccounts", ctx, "org-1").Return([]models.Account{
			{ID: "existing", Name: "Checking", OrganizationID: "org-1"},
		}, nil)

		var inserted []models.Account
		accounts.On("InsertAccounts", ctx, mock.Anything).
			Run(func(args mock.Arguments) {
				inserted = args.Get(1).([]models.Account)
			}).
			Return(nil)

		service := &ImportService{accounts: accounts}
		result, err := service.ImportAccounts(ctx, "org-1", accountsCSV(
			"1000,Checking,Bank,Checking,",
			"1200,Receivables,Accounts Receivable (A/R),,",
			"6000,Rent,Expenses,Rent,",
		))
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Count)
		assert.Equal(t, "Rent", inserted[0].Name)
		accounts.AssertExpectations(t)
	})
}

func TestImportService_ImportPayees(t *testing.T) {
	ctx := context.Background()
	payees := new(MockPayeeStore)

	var inserted []models.Payee
	payees.On("InsertPayees", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).([]models.Payee)
		}).
		Return(nil)

	// The nameless company row sits above a named row: the trailing trim
	// keys on the name field, so a nameless final row would be cut as footer.
	csvData := "Vendor,Company name,Street Address,City,State,Zip,Phone,Email,Attachments,1099 Tracking\n" +
		",No Name Co,,,,,,,0,\n" +
		"Acme Supplies,,1 Main St,Springfield,IL,62704,555-0101,ap@acme.test,1,Yes\n" +
		",,,,,,,,,\n"

	service := &ImportService{payees: payees}
	result, err := service.ImportPayees(ctx, "org-1", csvData)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Count)

	assert.Equal(t, "No Name Co", inserted[0].Name, "company name fallback")
	assert.False(t, inserted[0].IsW9Vendor)
	assert.Equal(t, "Acme Supplies", inserted[1].Name)
	assert.True(t, inserted[1].IsW9Vendor)
	if assert.NotNil(t, inserted[1].W9Attachment) {
		assert.Equal(t, "Yes", *inserted[1].W9Attachment)
	}
	payees.AssertExpectations(t)
}

func TestImportService_ImportClasses(t *testing.T) {
	ctx := context.Background()
	classes := new(MockClassStore)

	var inserted []models.Class
	classes.On("InsertClasses", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).([]models.Class)
		}).
		Return(nil)

	csvData := "Class full name,Created date,Description\n" +
		"Programs,1/15/2023,Program spending\n" +
		"Admin,not a date,\n"

	service := &ImportService{classes: classes}
	result, err := service.ImportClasses(ctx, "org-1", csvData)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "Programs", inserted[0].Name)
	assert.Equal(t, 2023, inserted[0].CreatedAt.Year())
	assert.True(t, inserted[1].CreatedAt.IsZero(), "unparseable created date is dropped")
	classes.AssertExpectations(t)
}

func ledgerCSV(rows ...string) string {
	lines := []string{
		"My Company",
		"General Ledger",
		",Transaction date,Transaction type,Num,Name,Memo/Description,Split account,Debit,Credit,Balance",
	}
	return strings.Join(append(lines, rows...), "\n")
}

func importChart() []models.Account {
	return []models.Account{
		{ID: "acc-checking", Name: "Checking", Type: models.AccountTypeAsset},
		{ID: "acc-rent", Name: "Rent", Type: models.AccountTypeExpense},
		{ID: "acc-sales", Name: "Sales", Type: models.AccountTypeRevenue},
	}
}

func newLedgerImportService(t *testing.T, chart []models.Account) (*ImportService, *MockTransactionWriter) {
	t.Helper()
	ctx := context.Background()

	accounts := new(MockAccountStore)
	accounts.On("GetAccounts", ctx, "org-1").Return(chart, nil)
	payees := new(MockPayeeStore)
	payees.On("GetPayees", ctx, "org-1").Return([]models.Payee{
		{ID: "payee-acme", Name: "Acme Supplies"},
	}, nil)
	classes := new(MockClassStore)
	classes.On("GetClasses", ctx, "org-1").Return([]models.Class{}, nil)
	writer := new(MockTransactionWriter)

	return &ImportService{
		accounts: accounts,
		payees:   payees,
		classes:  classes,
		ledger:   writer,
	}, writer
}

func TestImportService_ImportLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("empty chart of accounts", func(t *testing.T) {
		accounts := new(MockAccountStore)
		accounts.On("GetAccounts", ctx, "org-1").Return([]models.Account{}, nil)

		service := &ImportService{accounts: accounts}
		_, err := service.ImportLedger(ctx, "org-1", "anything")
		assert.ErrorIs(t, err, ErrEmptyChartOfAccounts)
	})

	t.Run("header not found", func(t *testing.T) {
		service, _ := newLedgerImportService(t, importChart())
		_, err := service.ImportLedger(ctx, "org-1", "My Company\nnot a ledger\n")
		assert.ErrorIs(t, err, quickbooks.ErrHeaderNotFound)
	})

	t.Run("single line with split becomes a mirrored pair", func(t *testing.T) {
		service, writer := newLedgerImportService(t, importChart())

		var gotInput TransactionInput
		var gotEntries []EntryInput
		writer.On("CreateTransactionWithEntries", ctx, "org-1", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				gotInput = args.Get(2).(TransactionInput)
				gotEntries = args.Get(3).([]EntryInput)
			}).
			Return(&models.Transaction{ID: "tx-1"}, nil)

		result, err := service.ImportLedger(ctx, "org-1", ledgerCSV(
			"Rent,,,,,,,,,",
			`,1/5/2024,Check,101,Acme Supplies,January rent,Checking,"1,200.00",,`,
		))
		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, 0, result.Errors)

		assert.Equal(t, models.TransactionTypeCheck, gotInput.TransactionType)
		assert.Equal(t, 2024, gotInput.Date.Year())
		assert.Equal(t, "January rent", gotInput.Description)

		if assert.Len(t, gotEntries, 2) {
			assert.Equal(t, "acc-rent", gotEntries[0].AccountID)
			assert.True(t, gotEntries[0].Debit.Equal(decimal.NewFromInt(1200)))
			if assert.NotNil(t, gotEntries[0].PayeeID) {
				assert.Equal(t, "payee-acme", *gotEntries[0].PayeeID)
			}
			assert.Equal(t, "acc-checking", gotEntries[1].AccountID)
			assert.True(t, gotEntries[1].Credit.Equal(decimal.NewFromInt(1200)))
		}
		writer.AssertExpectations(t)
	})

	t.Run("unbalanced group is reported and skipped", func(t *testing.T) {
		service, writer := newLedgerImportService(t, importChart())

		result, err := service.ImportLedger(ctx, "org-1", ledgerCSV(
			"Rent,,,,,,,,,",
			",1/5/2024,Check,101,,,,"+"500.00,,",
			"Sales,,,,,,,,,",
			",1/5/2024,Check,101,,,,,300.00,",
		))
		assert.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 0, result.Imported)
		assert.Equal(t, 1, result.Errors)
		if assert.Len(t, result.ErrorMessages, 1) {
			assert.Contains(t, result.ErrorMessages[0], "not balanced")
		}
		writer.AssertNotCalled(t, "CreateTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid date is reported and skipped", func(t *testing.T) {
		service, writer := newLedgerImportService(t, importChart())

		result, err := service.ImportLedger(ctx, "org-1", ledgerCSV(
			"Rent,,,,,,,,,",
			",13/45/9999,Check,101,,,Checking,500.00,,",
		))
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Errors)
		if assert.Len(t, result.ErrorMessages, 1) {
			assert.Contains(t, result.ErrorMessages[0], "invalid date")
		}
		writer.AssertNotCalled(t, "CreateTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown account section surfaces a warning", func(t *testing.T) {
		service, writer := newLedgerImportService(t, importChart())
		writer.On("CreateTransactionWithEntries", ctx, "org-1", mock.Anything, mock.Anything).
			Return(&models.Transaction{ID: "tx-1"}, nil)

		result, err := service.ImportLedger(ctx, "org-1", ledgerCSV(
			"Mystery,,,,,,,,,",
			",1/5/2024,Check,9,,,Checking,25.00,,",
			"Rent,,,,,,,,,",
			",1/6/2024,Check,102,,,Checking,80.00,,",
		))
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		assert.Contains(t, result.ErrorMessages, "account not found: Mystery")
		writer.AssertExpectations(t)
	})

	t.Run("group with a lone entry surfaces a skip message", func(t *testing.T) {
		service, writer := newLedgerImportService(t, importChart())

		// No split account, so the line resolves to a single entry.
		result, err := service.ImportLedger(ctx, "org-1", ledgerCSV(
			"Rent,,,,,,,,,",
			",1/5/2024,Check,101,,,,"+"500.00,,",
		))
		assert.NoError(t, err)
		assert.Equal(t, 0, result.Total)
		assert.Equal(t, 0, result.Imported)
		if assert.Len(t, result.ErrorMessages, 1) {
			assert.Contains(t, result.ErrorMessages[0], "resolved to 1 entries")
		}
		writer.AssertNotCalled(t, "CreateTransactionWithEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("persistence failure counts as an error", func(t *testing.T) {
		service, writer := newLedgerImportService(t, importChart())
		writer.On("CreateTransactionWithEntries", ctx, "org-1", mock.Anything, mock.Anything).
			Return(nil, assert.AnError)

		result, err := service.ImportLedger(ctx, "org-1", ledgerCSV(
			"Rent,,,,,,,,,",
			",1/5/2024,Check,101,,,Checking,500.00,,",
		))
		assert.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, 0, result.Imported)
		assert.Equal(t, 1, result.Errors)
		writer.AssertExpectations(t)
	})
}
