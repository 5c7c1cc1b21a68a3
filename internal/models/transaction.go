package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes how a transaction was recorded.
type TransactionType string

const (
	TransactionTypeJournalEntry TransactionType = "journal_entry"
	TransactionTypeCheck        TransactionType = "check"
	TransactionTypeDeposit      TransactionType = "deposit"
	TransactionTypeTransfer     TransactionType = "transfer"
	TransactionTypeExpense      TransactionType = "expense"
	TransactionTypeInvoice      TransactionType = "invoice"
)

// Transaction is an accounting transaction header. It owns its entries
// exclusively; entries are created and replaced together with the header.
type Transaction struct {
	ID              string          `json:"id" db:"id"`
	Date            time.Time       `json:"date" db:"date"`
	TransactionType TransactionType `json:"transactionType" db:"transaction_type"`
	Description     string          `json:"description,omitempty" db:"description"`
	Attachments     *string         `json:"attachments,omitempty" db:"attachments"`
	OrganizationID  string          `json:"organizationId" db:"organization_id"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`

	Entries []Entry `json:"entries,omitempty" db:"-"`
}

// Entry is one side of a double-entry. Exactly one of Debit/Credit is
// non-zero; the zero value means the side is unset.
type Entry struct {
	ID             string          `json:"id" db:"id"`
	TransactionID  string          `json:"transactionId" db:"transaction_id"`
	AccountID      string          `json:"accountId" db:"account_id"`
	PayeeID        *string         `json:"payeeId,omitempty" db:"payee_id"`
	ClassID        *string         `json:"classId,omitempty" db:"class_id"`
	Number         string          `json:"number,omitempty" db:"number"`
	Debit          decimal.Decimal `json:"debit" db:"debit"`
	Credit         decimal.Decimal `json:"credit" db:"credit"`
	Memo           string          `json:"memo,omitempty" db:"memo"`
	OrganizationID string          `json:"organizationId" db:"organization_id"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}
