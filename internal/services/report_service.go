package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/clearbooks/backend/internal/models"
)

// ReportService renders financial statements from the entries table. Reports
// are computed fresh per request and cached briefly per organization.
type ReportService struct {
	db       *sql.DB
	accounts *AccountService
	cache    *ReportCache
}

func NewReportService(db *sql.DB, accounts *AccountService, cache *ReportCache) *ReportService {
	return &ReportService{db: db, accounts: accounts, cache: cache}
}

// BalanceSheet renders the organization's balance sheet through asOf, or over
// all entries when asOf is nil. Asset balances are debit-normal; liability and
// equity balances are sign-flipped so every figure reads positive in the
// normal case.
func (s *ReportService) BalanceSheet(ctx context.Context, organizationID string, asOf *time.Time) (*models.BalanceSheetReport, error) {
	key := BalanceSheetKey(organizationID, asOf)
	var cached models.BalanceSheetReport
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	accounts, err := s.accounts.GetAccountsByType(ctx, organizationID,
		models.AccountTypeAsset, models.AccountTypeLiability, models.AccountTypeEquity)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrEmptyChartOfAccounts
	}

	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	amounts, err := s.queryEntries(ctx, organizationID, ids, nil, asOf, "")
	if err != nil {
		return nil, err
	}

	debits := make(map[string]decimal.Decimal)
	credits := make(map[string]decimal.Decimal)
	for _, ea := range amounts {
		debits[ea.AccountID] = debits[ea.AccountID].Add(ea.Debit)
		credits[ea.AccountID] = credits[ea.AccountID].Add(ea.Credit)
	}

	parents := make(map[string]*string, len(accounts))
	balances := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		parents[a.ID] = a.ParentAccountID
		raw := debits[a.ID].Sub(credits[a.ID])
		if a.Type != models.AccountTypeAsset {
			raw = raw.Neg()
		}
		balances[a.ID] = raw
	}
	totals := rollUpTotals(ids, parents, balances)

	report := &models.BalanceSheetReport{Accounts: make([]models.BalanceSheetAccount, 0, len(accounts))}
	for _, a := range accounts {
		line := models.BalanceSheetAccount{
			ID:              a.ID,
			Name:            a.Name,
			Type:            a.Type,
			SubType:         a.SubType,
			ParentAccountID: a.ParentAccountID,
			Balance:         balances[a.ID],
			TotalBalance:    totals[a.ID],
		}
		report.Accounts = append(report.Accounts, line)

		if a.ParentAccountID == nil {
			switch a.Type {
			case models.AccountTypeAsset:
				report.TotalAssets = report.TotalAssets.Add(line.TotalBalance)
			case models.AccountTypeLiability:
				report.TotalLiabilities = report.TotalLiabilities.Add(line.TotalBalance)
			case models.AccountTypeEquity:
				report.TotalEquity = report.TotalEquity.Add(line.TotalBalance)
			}
		}
	}

	netIncome, err := s.NetIncome(ctx, organizationID, asOf)
	if err != nil {
		return nil, err
	}
	report.NetIncome = netIncome

	if err := s.cache.Set(ctx, organizationID, key, report); err != nil {
		log.Printf("Failed to cache balance sheet for organization %s: %v", organizationID, err)
	}
	return report, nil
}

// NetIncome computes lifetime-to-date net income through asOf (all entries
// when nil): total revenue minus total expense. The balance sheet reports it
// standalone because income statement activity is not posted to equity
// accounts here.
func (s *ReportService) NetIncome(ctx context.Context, organizationID string, asOf *time.Time) (decimal.Decimal, error) {
	revenue, err := s.typeActivity(ctx, organizationID, models.AccountTypeRevenue, asOf)
	if err != nil {
		return decimal.Decimal{}, err
	}
	expense, err := s.typeActivity(ctx, organizationID, models.AccountTypeExpense, asOf)
	if err != nil {
		return decimal.Decimal{}, err
	}
	// Revenue is credit-normal, expense debit-normal.
	return revenue.Neg().Sub(expense), nil
}

// typeActivity sums debit-credit across all entries on accounts of one type
// through asOf.
func (s *ReportService) typeActivity(ctx context.Context, organizationID string, accountType models.AccountType, asOf *time.Time) (decimal.Decimal, error) {
	accounts, err := s.accounts.GetAccountsByType(ctx, organizationID, accountType)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(accounts) == 0 {
		return decimal.Decimal{}, nil
	}
	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	amounts, err := s.queryEntries(ctx, organizationID, ids, nil, asOf, "")
	if err != nil {
		return decimal.Decimal{}, err
	}
	var total decimal.Decimal
	for _, ea := range amounts {
		total = total.Add(ea.Debit).Sub(ea.Credit)
	}
	return total, nil
}

// ProfitAndLoss renders the P&L for a date range, optionally filtered to one
// class. Account totals are credit-debit, so revenue reads positive and
// expense negative; net income is their sum over root accounts.
func (s *ReportService) ProfitAndLoss(ctx context.Context, organizationID string, dateRange models.DateRange, classID string) (*models.ProfitAndLossReport, error) {
	key := ProfitAndLossKey(organizationID, dateRange, classID)
	var cached models.ProfitAndLossReport
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	accounts, err := s.accounts.GetAccountsByType(ctx, organizationID,
		models.AccountTypeRevenue, models.AccountTypeExpense)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrEmptyChartOfAccounts
	}

	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	amounts, err := s.queryEntries(ctx, organizationID, ids, &dateRange.StartDate, &dateRange.EndDate, classID)
	if err != nil {
		return nil, err
	}

	parents := make(map[string]*string, len(accounts))
	ownTotals := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		parents[a.ID] = a.ParentAccountID
	}
	for _, ea := range amounts {
		ownTotals[ea.AccountID] = ownTotals[ea.AccountID].Add(ea.Credit).Sub(ea.Debit)
	}
	totals := rollUpTotals(ids, parents, ownTotals)

	children := make(map[string][]string)
	for _, a := range accounts {
		if a.ParentAccountID != nil {
			children[*a.ParentAccountID] = append(children[*a.ParentAccountID], a.ID)
		}
	}
	// An account renders when it or anything in its subtree saw activity.
	// Children that cancel out leave the parent's roll-up at zero, and the
	// parent still has to appear above them.
	var hasActivity func(id string) bool
	hasActivity = func(id string) bool {
		if !ownTotals[id].IsZero() || !totals[id].IsZero() {
			return true
		}
		for _, child := range children[id] {
			if hasActivity(child) {
				return true
			}
		}
		return false
	}

	report := &models.ProfitAndLossReport{Accounts: make([]models.ProfitAndLossAccount, 0, len(accounts))}
	for _, a := range accounts {
		own := ownTotals[a.ID]
		rolled := totals[a.ID]
		if !hasActivity(a.ID) {
			continue
		}
		report.Accounts = append(report.Accounts, models.ProfitAndLossAccount{
			ID:              a.ID,
			Name:            a.Name,
			Type:            a.Type,
			ParentAccountID: a.ParentAccountID,
			Total:           own,
			TotalBalance:    rolled,
		})
		if a.ParentAccountID == nil {
			report.NetIncome = report.NetIncome.Add(rolled)
		}
	}

	if err := s.cache.Set(ctx, organizationID, key, report); err != nil {
		log.Printf("Failed to cache profit and loss for organization %s: %v", organizationID, err)
	}
	return report, nil
}

// queryEntries loads the entry amounts reporting aggregates from, restricted
// to the given accounts and optionally bounded by dates and class.
func (s *ReportService) queryEntries(ctx context.Context, organizationID string, accountIDs []string, startDate, endDate *time.Time, classID string) ([]models.EntryAmount, error) {
	query := `
		SELECT e.account_id, e.debit, e.credit
		FROM entries e
		INNER JOIN transactions t ON e.transaction_id = t.id
		WHERE e.organization_id = $1 AND e.account_id = ANY($2)`
	args := []any{organizationID, pq.Array(accountIDs)}

	if startDate != nil {
		args = append(args, *startDate)
		query += fmt.Sprintf(" AND t.date >= $%d", len(args))
	}
	if endDate != nil {
		args = append(args, *endDate)
		query += fmt.Sprintf(" AND t.date <= $%d", len(args))
	}
	if classID != "" {
		args = append(args, classID)
		query += fmt.Sprintf(" AND e.class_id = $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entry amounts: %w", err)
	}
	defer rows.Close()

	var amounts []models.EntryAmount
	for rows.Next() {
		var ea models.EntryAmount
		if err := rows.Scan(&ea.AccountID, &ea.Debit, &ea.Credit); err != nil {
			return nil, fmt.Errorf("scanning entry amount: %w", err)
		}
		amounts = append(amounts, ea)
	}
	return amounts, rows.Err()
}

// rollUpTotals computes each account's rolled-up total as its own balance
// plus all descendants', walking the hierarchy bottom-up so the result does
// not depend on input order. Accounts whose parent is missing from the set
// are treated as roots.
func rollUpTotals(ids []string, parents map[string]*string, own map[string]decimal.Decimal) map[string]decimal.Decimal {
	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}

	children := make(map[string][]string)
	var roots []string
	for _, id := range ids {
		parent := parents[id]
		if parent == nil || !inSet[*parent] {
			roots = append(roots, id)
			continue
		}
		children[*parent] = append(children[*parent], id)
	}

	totals := make(map[string]decimal.Decimal, len(ids))
	var walk func(id string) decimal.Decimal
	walk = func(id string) decimal.Decimal {
		total := own[id]
		for _, child := range children[id] {
			total = total.Add(walk(child))
		}
		totals[id] = total
		return total
	}
	for _, root := range roots {
		walk(root)
	}
	return totals
}

// DateRangePreset names a relative reporting period.
type DateRangePreset string

const (
	PresetLast30Days  DateRangePreset = "last30days"
	PresetLast90Days  DateRangePreset = "last90days"
	PresetThisMonth   DateRangePreset = "thismonth"
	PresetThisQuarter DateRangePreset = "thisquarter"
	PresetYearToDate  DateRangePreset = "yeartodate"
	PresetThisYear    DateRangePreset = "thisyear"
	PresetLastMonth   DateRangePreset = "lastmonth"
	PresetLastQuarter DateRangePreset = "lastquarter"
	PresetLastYear    DateRangePreset = "lastyear"
	PresetAll         DateRangePreset = "all"
)

// GetDateRange resolves a preset against the current clock. Unknown presets
// fall back to the all-time range.
func GetDateRange(preset DateRangePreset) models.DateRange {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch preset {
	case PresetLast30Days:
		return models.DateRange{StartDate: today.AddDate(0, 0, -30), EndDate: today}
	case PresetLast90Days:
		return models.DateRange{StartDate: today.AddDate(0, 0, -90), EndDate: today}
	case PresetThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return models.DateRange{StartDate: start, EndDate: start.AddDate(0, 1, -1)}
	case PresetThisQuarter:
		start := quarterStart(now)
		return models.DateRange{StartDate: start, EndDate: start.AddDate(0, 3, -1)}
	case PresetYearToDate:
		return models.DateRange{StartDate: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), EndDate: today}
	case PresetThisYear:
		return models.DateRange{
			StartDate: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC),
		}
	case PresetLastMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return models.DateRange{StartDate: start, EndDate: start.AddDate(0, 1, -1)}
	case PresetLastQuarter:
		start := quarterStart(now).AddDate(0, -3, 0)
		return models.DateRange{StartDate: start, EndDate: start.AddDate(0, 3, -1)}
	case PresetLastYear:
		return models.DateRange{
			StartDate: time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(now.Year()-1, 12, 31, 0, 0, 0, 0, time.UTC),
		}
	default:
		return models.DateRange{
			StartDate: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   today.AddDate(100, 0, 0),
		}
	}
}

func quarterStart(now time.Time) time.Time {
	quarterMonth := time.Month(((int(now.Month())-1)/3)*3 + 1)
	return time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)
}
