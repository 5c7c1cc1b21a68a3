package models

import (
	"time"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// AccountSubType is informational detail below the main type.
type AccountSubType string

const (
	AccountSubTypeBank       AccountSubType = "bank"
	AccountSubTypeCash       AccountSubType = "cash"
	AccountSubTypeFixedAsset AccountSubType = "fixed_asset"
	AccountSubTypeCreditCard AccountSubType = "credit_card"
	AccountSubTypeOther      AccountSubType = "other"
)

// Account is a node in an organization's chart of accounts. Hierarchy is
// carried by ParentAccountID; the QuickBooks "parent:child" naming convention
// is resolved to it once at import time.
type Account struct {
	ID              string         `json:"id" db:"id"`
	Name            string         `json:"name" db:"name"`
	Number          string         `json:"number,omitempty" db:"number"`
	Type            AccountType    `json:"type" db:"type"`
	SubType         AccountSubType `json:"subType" db:"sub_type"`
	Description     string         `json:"description,omitempty" db:"description"`
	ParentAccountID *string        `json:"parentAccountId" db:"parent_account_id"`
	OrganizationID  string         `json:"organizationId" db:"organization_id"`
	CreatedAt       time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time      `json:"updatedAt" db:"updated_at"`
}
