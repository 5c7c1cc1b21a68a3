package quickbooks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clearbooks/backend/internal/models"
)

// ErrHeaderNotFound aborts a general-ledger import: without the header row
// the column contract is unknown and nothing can be trusted.
var ErrHeaderNotFound = errors.New("could not find header row in CSV")

// AccountResolver answers account-name lookups during the ledger scan.
type AccountResolver interface {
	// Resolve maps a full account name to its id.
	Resolve(name string) (string, bool)
	// HasChildren reports whether any account is named "name:...".
	HasChildren(name string) bool
}

// LedgerRow is one ledger line with its account resolved to a full name.
// Amounts stay raw; ParseAmount is applied when entries are built.
type LedgerRow struct {
	Account      string
	Date         string
	Type         string
	Num          string
	Name         string
	Memo         string
	SplitAccount string
	Debit        string
	Credit       string
	Balance      string
	Class        string
}

// LedgerParse is the outcome of scanning a general-ledger export.
type LedgerParse struct {
	Rows     []LedgerRow
	Warnings []string
}

var ledgerHeaderRemap = map[string]string{
	"Transaction date":     "date",
	"Transaction type":     "type",
	"Num":                  "num",
	"Name":                 "name",
	"Memo/Description":     "memo",
	"Split account":        "split",
	"Distribution account": "distribution",
	"Debit":                "debit",
	"Credit":               "credit",
	"Balance":              "balance",
	"Item class":           "class",
}

// cursorState tracks which account section the linear scan is inside. The
// export groups lines under account-header rows with no explicit transaction
// boundaries, so this state is the only thing tying a line to its account.
type cursorState int

const (
	cursorNone cursorState = iota
	cursorAccount
	cursorParent
)

type accountCursor struct {
	state   cursorState
	current string
	parent  string
}

// enterSection transitions the cursor on an account-header row. Inside a
// parent section a hierarchical "parent:child" name is tried first; a name
// matching no account drops the section's lines with a warning.
func (c *accountCursor) enterSection(name string, accounts AccountResolver, parse *LedgerParse) {
	if c.state == cursorParent {
		hierarchical := c.parent + ":" + name
		if _, ok := accounts.Resolve(hierarchical); ok {
			c.current = hierarchical
			return
		}
	}

	switch {
	case accounts.HasChildren(name):
		// A parent section; the parent itself can carry direct entries.
		c.state = cursorParent
		c.parent = name
		c.current = name
	default:
		if _, ok := accounts.Resolve(name); ok {
			c.state = cursorAccount
			c.current = name
			c.parent = ""
			return
		}
		parse.Warnings = append(parse.Warnings, fmt.Sprintf("account not found: %s", name))
		c.current = ""
		if c.state != cursorParent {
			c.state = cursorNone
		}
	}
}

// ParseLedger scans a QuickBooks general-ledger export: locates the header
// row by its marker columns, then streams rows through the account cursor.
// Subtotal rows and rows outside a known account section are skipped.
func ParseLedger(csvData string, accounts AccountResolver) (*LedgerParse, error) {
	lines := SplitLines(csvData)

	headerIndex := -1
	for i, line := range lines {
		if strings.Contains(line, "Distribution account") || strings.Contains(line, "Transaction date") {
			headerIndex = i
			break
		}
	}
	if headerIndex == -1 {
		return nil, ErrHeaderNotFound
	}

	t, err := ReadTable(strings.NewReader(strings.Join(lines[headerIndex:], "\n")), ledgerHeaderRemap)
	if err != nil {
		return nil, err
	}

	parse := &LedgerParse{}
	var cur accountCursor

	for _, rec := range t.Records {
		first := First(rec)
		date := t.Get(rec, "date")

		if strings.Contains(strings.ToLower(first), "total") {
			continue
		}

		if first != "" && date == "" {
			cur.enterSection(first, accounts, parse)
			continue
		}

		if cur.current == "" || date == "" {
			continue
		}

		typ := t.Get(rec, "type")
		if typ == "" {
			typ = "Journal Entry"
		}
		split := t.Get(rec, "split")
		if split == "" {
			split = t.Get(rec, "distribution")
		}

		parse.Rows = append(parse.Rows, LedgerRow{
			Account:      cur.current,
			Date:         date,
			Type:         typ,
			Num:          t.Get(rec, "num"),
			Name:         t.Get(rec, "name"),
			Memo:         t.Get(rec, "memo"),
			SplitAccount: split,
			Debit:        t.Get(rec, "debit"),
			Credit:       t.Get(rec, "credit"),
			Balance:      t.Get(rec, "balance"),
			Class:        t.Get(rec, "class"),
		})
	}

	return parse, nil
}

// TransactionKey groups ledger lines that belong to one transaction.
type TransactionKey struct {
	Date string
	Type string
	Num  string
}

func (k TransactionKey) String() string {
	return k.Date + "|" + k.Type + "|" + k.Num
}

// TransactionGroup is the set of ledger lines sharing one key.
type TransactionGroup struct {
	Key  TransactionKey
	Rows []LedgerRow
}

// GroupLedgerRows groups ledger lines by (date, type, num), preserving
// first-seen order.
func GroupLedgerRows(rows []LedgerRow) []TransactionGroup {
	index := make(map[TransactionKey]int)
	var groups []TransactionGroup
	for _, row := range rows {
		key := TransactionKey{Date: row.Date, Type: row.Type, Num: row.Num}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, TransactionGroup{Key: key})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}

// NormalizeTransactionType maps a QuickBooks transaction-type label to the
// internal type. Unrecognized labels become journal entries.
func NormalizeTransactionType(label string) models.TransactionType {
	normalized := strings.ToLower(strings.Join(strings.Fields(label), "_"))
	switch normalized {
	case "journal_entry", "journal":
		return models.TransactionTypeJournalEntry
	case "check":
		return models.TransactionTypeCheck
	case "deposit":
		return models.TransactionTypeDeposit
	case "transfer":
		return models.TransactionTypeTransfer
	case "expense", "bill":
		return models.TransactionTypeExpense
	case "invoice":
		return models.TransactionTypeInvoice
	}
	return models.TransactionTypeJournalEntry
}
