package quickbooks

import (
	"strings"

	"github.com/clearbooks/backend/internal/models"
)

// AccountRow is a decoded row of a chart-of-accounts export. Name may carry
// hierarchy via the "parent:child" convention.
type AccountRow struct {
	Number      string
	Name        string
	Type        string
	SubType     string
	Description string
}

// The accounts export opens with a title block and closes with a fixed
// footer; both are positional in this format rather than content-marked.
const (
	accountsLeadingJunk  = 2
	accountsTrailingJunk = 5
)

var accountHeaderRemap = map[string]string{
	"Account #":     "number",
	"Full name":     "name",
	"Type":          "type",
	"Detail type":   "subtype",
	"Description":   "description",
	"Total balance": "balance",
}

// ParseAccounts parses a QuickBooks chart-of-accounts export. The junk trim
// happens on raw lines, before CSV parsing drops empty records, so the
// positional counts stay aligned with the file.
func ParseAccounts(csvData string) ([]AccountRow, error) {
	lines := SplitLines(csvData)
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) <= accountsLeadingJunk+accountsTrailingJunk {
		return nil, nil
	}
	lines = lines[accountsLeadingJunk : len(lines)-accountsTrailingJunk]

	t, err := ReadTable(strings.NewReader(strings.Join(lines, "\n")), accountHeaderRemap)
	if err != nil {
		return nil, err
	}

	rows := make([]AccountRow, 0, len(t.Records))
	for _, rec := range t.Records {
		rows = append(rows, AccountRow{
			Number:      t.Get(rec, "number"),
			Name:        t.Get(rec, "name"),
			Type:        t.Get(rec, "type"),
			SubType:     t.Get(rec, "subtype"),
			Description: t.Get(rec, "description"),
		})
	}
	return rows, nil
}

// ConvertAccountType maps a QuickBooks account type label to the internal
// type/subtype pair. The third return is false for unmapped labels
// (A/P, A/R, COGS and anything unknown), which the importer skips.
func ConvertAccountType(qbType string) (models.AccountType, models.AccountSubType, bool) {
	switch qbType {
	case "Bank":
		return models.AccountTypeAsset, models.AccountSubTypeBank, true
	case "Credit Card":
		return models.AccountTypeLiability, models.AccountSubTypeCreditCard, true
	case "Equity":
		return models.AccountTypeEquity, models.AccountSubTypeOther, true
	case "Expenses":
		return models.AccountTypeExpense, models.AccountSubTypeOther, true
	case "Fixed Assets":
		return models.AccountTypeAsset, models.AccountSubTypeFixedAsset, true
	case "Income":
		return models.AccountTypeRevenue, models.AccountSubTypeOther, true
	case "Other Current Assets":
		return models.AccountTypeAsset, models.AccountSubTypeOther, true
	case "Other Current Liabilities":
		return models.AccountTypeLiability, models.AccountSubTypeOther, true
	case "Other Expense":
		return models.AccountTypeExpense, models.AccountSubTypeOther, true
	}
	return "", "", false
}
