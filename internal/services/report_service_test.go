package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/clearbooks/backend/internal/models"
)

func TestRollUpTotals(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	t.Run("three levels in scrambled order", func(t *testing.T) {
		// grandchild listed before its ancestors
		ids := []string{"grandchild", "child", "root", "sibling"}
		parents := map[string]*string{
			"root":       nil,
			"child":      strPtr("root"),
			"grandchild": strPtr("child"),
			"sibling":    strPtr("root"),
		}
		own := map[string]decimal.Decimal{
			"root":       decimal.NewFromInt(50),
			"child":      decimal.NewFromInt(1000),
			"grandchild": decimal.NewFromInt(-200),
			"sibling":    decimal.NewFromInt(10),
		}

		totals := rollUpTotals(ids, parents, own)
		assert.True(t, totals["grandchild"].Equal(decimal.NewFromInt(-200)))
		assert.True(t, totals["child"].Equal(decimal.NewFromInt(800)))
		assert.True(t, totals["root"].Equal(decimal.NewFromInt(860)))
		assert.True(t, totals["sibling"].Equal(decimal.NewFromInt(10)))
	})

	t.Run("parent outside the set makes a root", func(t *testing.T) {
		ids := []string{"orphan"}
		parents := map[string]*string{"orphan": strPtr("absent")}
		own := map[string]decimal.Decimal{"orphan": decimal.NewFromInt(5)}

		totals := rollUpTotals(ids, parents, own)
		assert.True(t, totals["orphan"].Equal(decimal.NewFromInt(5)))
	})
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "number", "type", "sub_type", "description",
		"parent_account_id", "organization_id", "created_at", "updated_at",
	})
}

func entryAmountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"account_id", "debit", "credit"})
}

func TestReportService_BalanceSheet(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewReportService(db, NewAccountService(db), NewReportCache(nil))
	now := time.Now()
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("empty chart of accounts", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows())

		_, err := service.BalanceSheet(context.Background(), "org-1", &asOf)
		assert.ErrorIs(t, err, ErrEmptyChartOfAccounts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("accounting equation holds", func(t *testing.T) {
		// Balance sheet side of the chart.
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows().
				AddRow("acc-checking", "Checking", "1000", "asset", "bank", "", nil, "org-1", now, now).
				AddRow("acc-card", "Credit Card", "2000", "liability", "credit_card", "", nil, "org-1", now, now).
				AddRow("acc-opening", "Opening Balance Equity", "3000", "equity", "other", "", nil, "org-1", now, now))

		// Entries against those accounts. Checking holds 5000 - 1200,
		// the card owes 300, opening equity funded 3500.
		mock.ExpectQuery("SELECT (.+) FROM entries").
			WillReturnRows(entryAmountRows().
				AddRow("acc-checking", "5000", "1200").
				AddRow("acc-card", "0", "300").
				AddRow("acc-opening", "0", "3500"))

		// Net income: revenue accounts, then their entries.
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows().
				AddRow("acc-sales", "Sales", "4000", "revenue", "other", "", nil, "org-1", now, now))
		mock.ExpectQuery("SELECT (.+) FROM entries").
			WillReturnRows(entryAmountRows().
				AddRow("acc-sales", "0", "1200"))

		// Expense accounts, then their entries.
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows().
				AddRow("acc-office", "Office", "6000", "expense", "other", "", nil, "org-1", now, now))
		mock.ExpectQuery("SELECT (.+) FROM entries").
			WillReturnRows(entryAmountRows().
				AddRow("acc-office", "1200", "0"))

		report, err := service.BalanceSheet(context.Background(), "org-1", &asOf)
		assert.NoError(t, err)
		assert.Len(t, report.Accounts, 3)

		assert.True(t, report.TotalAssets.Equal(decimal.NewFromInt(3800)), "assets: %s", report.TotalAssets)
		assert.True(t, report.TotalLiabilities.Equal(decimal.NewFromInt(300)), "liabilities: %s", report.TotalLiabilities)
		assert.True(t, report.TotalEquity.Equal(decimal.NewFromInt(3500)), "equity: %s", report.TotalEquity)
		assert.True(t, report.NetIncome.Equal(decimal.NewFromInt(0)), "net income: %s", report.NetIncome)

		// Assets = Liabilities + Equity + NetIncome
		assert.True(t, report.TotalAssets.Equal(
			report.TotalLiabilities.Add(report.TotalEquity).Add(report.NetIncome)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("liability balances are sign flipped", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows().
				AddRow("acc-card", "Credit Card", "2000", "liability", "credit_card", "", nil, "org-1", now, now))
		mock.ExpectQuery("SELECT (.+) FROM entries").
			WillReturnRows(entryAmountRows().
				AddRow("acc-card", "100", "400"))
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows())
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows())

		report, err := service.BalanceSheet(context.Background(), "org-1", &asOf)
		assert.NoError(t, err)
		assert.True(t, report.Accounts[0].Balance.Equal(decimal.NewFromInt(300)),
			"credit-heavy liability should read positive, got %s", report.Accounts[0].Balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil asOf puts no date bound on the query", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows().
				AddRow("acc-checking", "Checking", "1000", "asset", "bank", "", nil, "org-1", now, now))
		// Exactly two arguments: organization and account set. A cutoff
		// would show up as a third.
		mock.ExpectQuery("SELECT (.+) FROM entries").
			WithArgs("org-1", sqlmock.AnyArg()).
			WillReturnRows(entryAmountRows().
				AddRow("acc-checking", "250", "0"))
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows())
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows())

		report, err := service.BalanceSheet(context.Background(), "org-1", nil)
		assert.NoError(t, err)
		assert.True(t, report.TotalAssets.Equal(decimal.NewFromInt(250)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReportService_ProfitAndLoss(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewReportService(db, NewAccountService(db), NewReportCache(nil))
	now := time.Now()
	dateRange := models.DateRange{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	t.Run("net income over roots", func(t *testing.T) {
		parent := "acc-program"
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows().
				AddRow("acc-donations", "Donations", "4000", "revenue", "other", "", nil, "org-1", now, now).
				AddRow(parent, "Program Expenses", "6000", "expense", "other", "", nil, "org-1", now, now).
				AddRow("acc-supplies", "Program Expenses:Supplies", "6100", "expense", "other", "", parent, "org-1", now, now).
				AddRow("acc-idle", "Idle", "6900", "expense", "other", "", nil, "org-1", now, now))

		mock.ExpectQuery("SELECT (.+) FROM entries").
			WillReturnRows(entryAmountRows().
				AddRow("acc-donations", "0", "50000").
				AddRow(parent, "40000", "0").
				AddRow("acc-supplies", "7360.72", "0"))

		report, err := service.ProfitAndLoss(context.Background(), "org-1", dateRange, "")
		assert.NoError(t, err)
		assert.Len(t, report.Accounts, 3, "account with no activity is dropped")

		byID := make(map[string]models.ProfitAndLossAccount)
		for _, a := range report.Accounts {
			byID[a.ID] = a
		}
		assert.True(t, byID["acc-donations"].Total.Equal(decimal.NewFromInt(50000)))
		assert.True(t, byID[parent].TotalBalance.Equal(decimal.RequireFromString("-47360.72")))
		assert.True(t, report.NetIncome.Equal(decimal.RequireFromString("2639.28")),
			"net income: %s", report.NetIncome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero-total parent with active children stays visible", func(t *testing.T) {
		parent := "acc-program"
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows().
				AddRow(parent, "Program", "6000", "expense", "other", "", nil, "org-1", now, now).
				AddRow("acc-grants", "Program:Grants", "6100", "expense", "other", "", parent, "org-1", now, now).
				AddRow("acc-refunds", "Program:Refunds", "6200", "expense", "other", "", parent, "org-1", now, now))

		// The children cancel, rolling the parent up to exactly zero.
		mock.ExpectQuery("SELECT (.+) FROM entries").
			WillReturnRows(entryAmountRows().
				AddRow("acc-grants", "100", "0").
				AddRow("acc-refunds", "0", "100"))

		report, err := service.ProfitAndLoss(context.Background(), "org-1", dateRange, "")
		assert.NoError(t, err)
		assert.Len(t, report.Accounts, 3)

		byID := make(map[string]models.ProfitAndLossAccount)
		for _, a := range report.Accounts {
			byID[a.ID] = a
		}
		if assert.Contains(t, byID, parent, "parent of active children must render") {
			assert.True(t, byID[parent].Total.IsZero())
			assert.True(t, byID[parent].TotalBalance.IsZero())
		}
		assert.True(t, byID["acc-grants"].Total.Equal(decimal.NewFromInt(-100)))
		assert.True(t, byID["acc-refunds"].Total.Equal(decimal.NewFromInt(100)))
		assert.True(t, report.NetIncome.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty chart of accounts", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WillReturnRows(accountRows())

		_, err := service.ProfitAndLoss(context.Background(), "org-1", dateRange, "")
		assert.ErrorIs(t, err, ErrEmptyChartOfAccounts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetDateRange(t *testing.T) {
	t.Run("last 30 days", func(t *testing.T) {
		r := GetDateRange(PresetLast30Days)
		assert.Equal(t, 30*24*time.Hour, r.EndDate.Sub(r.StartDate))
	})

	t.Run("this month covers today", func(t *testing.T) {
		r := GetDateRange(PresetThisMonth)
		assert.Equal(t, 1, r.StartDate.Day())
		assert.True(t, r.EndDate.After(r.StartDate))
		assert.Equal(t, r.StartDate.Month(), r.EndDate.Month())
	})

	t.Run("last year", func(t *testing.T) {
		r := GetDateRange(PresetLastYear)
		assert.Equal(t, time.Now().Year()-1, r.StartDate.Year())
		assert.Equal(t, time.January, r.StartDate.Month())
		assert.Equal(t, time.December, r.EndDate.Month())
		assert.Equal(t, 31, r.EndDate.Day())
	})

	t.Run("quarters are three months", func(t *testing.T) {
		r := GetDateRange(PresetThisQuarter)
		assert.Equal(t, r.StartDate.AddDate(0, 3, -1), r.EndDate)
	})

	t.Run("unknown preset falls back to all time", func(t *testing.T) {
		r := GetDateRange("bogus")
		assert.Equal(t, 1900, r.StartDate.Year())
		assert.True(t, r.EndDate.After(time.Now()))
	})
}
