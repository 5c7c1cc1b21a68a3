package quickbooks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearbooks/backend/internal/models"
)

// accountsFixture mimics the export shape: a two-line title block, the
// header, data rows, then a five-row footer.
func accountsFixture(dataRows []string) string {
	lines := []string{
		"My Company",
		"Account List",
		"Account #,Full name,Type,Detail type,Description",
	}
	lines = append(lines, dataRows...)
	lines = append(lines,
		"Total Bank,,,,",
		"Total Expenses,,,,",
		"TOTAL,,,,",
		"Accrual basis,,,,",
		"\"Tuesday, Jan 02, 2024 08:15:30 AM GMTZ\",,,,",
	)
	return strings.Join(lines, "\n")
}

func TestParseAccounts(t *testing.T) {
	csvData := accountsFixture([]string{
		"1000,Checking,Bank,Checking,Main operating account",
		"6000,Rent,Expenses,Rent or lease,",
		"6100,Utilities:Electric,Expenses,Utilities,Power",
	})

	rows, err := ParseAccounts(csvData)
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, AccountRow{
		Number:      "1000",
		Name:        "Checking",
		Type:        "Bank",
		SubType:     "Checking",
		Description: "Main operating account",
	}, rows[0])
	assert.Equal(t, "Utilities:Electric", rows[2].Name)
}

func TestParseAccountsShortInput(t *testing.T) {
	rows, err := ParseAccounts("My Company\nAccount List")
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestConvertAccountType(t *testing.T) {
	tests := []struct {
		qbType  string
		accType models.AccountType
		subType models.AccountSubType
		ok      bool
	}{
		{"Bank", models.AccountTypeAsset, models.AccountSubTypeBank, true},
		{"Credit Card", models.AccountTypeLiability, models.AccountSubTypeCreditCard, true},
		{"Equity", models.AccountTypeEquity, models.AccountSubTypeOther, true},
		{"Expenses", models.AccountTypeExpense, models.AccountSubTypeOther, true},
		{"Fixed Assets", models.AccountTypeAsset, models.AccountSubTypeFixedAsset, true},
		{"Income", models.AccountTypeRevenue, models.AccountSubTypeOther, true},
		{"Other Current Assets", models.AccountTypeAsset, models.AccountSubTypeOther, true},
		{"Other Current Liabilities", models.AccountTypeLiability, models.AccountSubTypeOther, true},
		{"Other Expense", models.AccountTypeExpense, models.AccountSubTypeOther, true},
		{"Accounts Payable (A/P)", "", "", false},
		{"Accounts Receivable (A/R)", "", "", false},
		{"Cost of Goods Sold", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		accType, subType, ok := ConvertAccountType(tt.qbType)
		assert.Equal(t, tt.ok, ok, "ConvertAccountType(%q)", tt.qbType)
		assert.Equal(t, tt.accType, accType)
		assert.Equal(t, tt.subType, subType)
	}
}
