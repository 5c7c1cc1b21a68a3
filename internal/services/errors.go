package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// balanceTolerance is the allowed debit/credit mismatch in currency units.
var balanceTolerance = decimal.NewFromFloat(0.01)

var (
	ErrInsufficientEntries  = errors.New("transaction must have at least 2 entries")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrPayeeNotFound        = errors.New("payee not found")
	ErrClassNotFound        = errors.New("class not found")
	ErrEmptyChartOfAccounts = errors.New("chart of accounts is empty")
)

// UnbalancedTransactionError reports the offending totals so callers can show
// actionable feedback.
type UnbalancedTransactionError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *UnbalancedTransactionError) Error() string {
	return fmt.Sprintf("transaction is not balanced: debits %s != credits %s",
		e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}

// InvalidEntrySideError flags an entry with both sides set, or neither.
type InvalidEntrySideError struct {
	Index   int
	BothSet bool
}

func (e *InvalidEntrySideError) Error() string {
	if e.BothSet {
		return fmt.Sprintf("entry %d cannot have both debit and credit", e.Index)
	}
	return fmt.Sprintf("entry %d must have either debit or credit", e.Index)
}
