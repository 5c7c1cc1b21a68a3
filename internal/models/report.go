package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange bounds a report on transaction dates, inclusive on both ends.
type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// EntryAmount is the projection the reporting engine reads: one entry's
// debit/credit against an account, joined through its transaction.
type EntryAmount struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// BalanceSheetAccount is one account line of a balance sheet. Balance is the
// account's own figure (sign-normalized per type), TotalBalance includes all
// descendant balances.
type BalanceSheetAccount struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            AccountType     `json:"type"`
	SubType         AccountSubType  `json:"subType"`
	ParentAccountID *string         `json:"parentAccountId"`
	Balance         decimal.Decimal `json:"balance"`
	TotalBalance    decimal.Decimal `json:"totalBalance"`
}

// BalanceSheetReport is the full balance sheet. Totals are summed over
// parentless accounts per type; NetIncome is reported standalone.
type BalanceSheetReport struct {
	Accounts         []BalanceSheetAccount `json:"accounts"`
	NetIncome        decimal.Decimal       `json:"netIncome"`
	TotalAssets      decimal.Decimal       `json:"totalAssets"`
	TotalLiabilities decimal.Decimal       `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal       `json:"totalEquity"`
}

// ProfitAndLossAccount is one account line of a P&L. Total is credit-debit
// over the account's own entries, so revenue comes out positive and expenses
// negative.
type ProfitAndLossAccount struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            AccountType     `json:"type"`
	ParentAccountID *string         `json:"parentAccountId"`
	Total           decimal.Decimal `json:"total"`
	TotalBalance    decimal.Decimal `json:"totalBalance"`
}

// ProfitAndLossReport is the full P&L for a date range.
type ProfitAndLossReport struct {
	Accounts  []ProfitAndLossAccount `json:"accounts"`
	NetIncome decimal.Decimal        `json:"netIncome"`
}

// Tree accessors shared with the report renderer.

func (a BalanceSheetAccount) AccountID() string { return a.ID }
func (a BalanceSheetAccount) AccountName() string { return a.Name }
func (a BalanceSheetAccount) ParentID() *string { return a.ParentAccountID }
func (a BalanceSheetAccount) OwnAmount() decimal.Decimal { return a.Balance }
func (a BalanceSheetAccount) RolledUpAmount() decimal.Decimal { return a.TotalBalance }

func (a ProfitAndLossAccount) AccountID() string { return a.ID }
func (a ProfitAndLossAccount) AccountName() string { return a.Name }
func (a ProfitAndLossAccount) ParentID() *string { return a.ParentAccountID }
func (a ProfitAndLossAccount) OwnAmount() decimal.Decimal { return a.Total }
func (a ProfitAndLossAccount) RolledUpAmount() decimal.Decimal { return a.TotalBalance }
