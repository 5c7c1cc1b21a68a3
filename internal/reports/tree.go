// Package reports renders account hierarchies into the flat line layout
// financial statements print: children indented under parents, with a total
// line closing each group.
package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Account is a report line's view of an account. Both statement types
// satisfy it.
type Account interface {
	AccountID() string
	AccountName() string
	ParentID() *string
	OwnAmount() decimal.Decimal
	RolledUpAmount() decimal.Decimal
}

// FindRootAccounts returns the hierarchy's roots in name order. An account
// whose parent is missing from the set counts as a root, so a filtered
// statement still renders orphaned subtrees.
func FindRootAccounts[T Account](accounts []T) []T {
	inSet := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		inSet[a.AccountID()] = true
	}

	var roots []T
	for _, a := range accounts {
		parent := a.ParentID()
		if parent == nil || !inSet[*parent] {
			roots = append(roots, a)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].AccountName() < roots[j].AccountName() })
	return roots
}

// Line is one printed row of a statement.
type Line struct {
	AccountID string          `json:"accountId"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	Level     int             `json:"level"`
	IsTotal   bool            `json:"isTotal"`
}

// Flatten walks the hierarchy depth-first and emits the printed rows: each
// account's own line, its children indented one level, and a "Total X" line
// after any account with children. Accounts with nothing on either figure
// are skipped.
func Flatten[T Account](accounts []T) []Line {
	children := make(map[string][]T)
	inSet := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		inSet[a.AccountID()] = true
	}
	for _, a := range accounts {
		parent := a.ParentID()
		if parent != nil && inSet[*parent] {
			children[*parent] = append(children[*parent], a)
		}
	}
	for _, kids := range children {
		sort.Slice(kids, func(i, j int) bool { return kids[i].AccountName() < kids[j].AccountName() })
	}

	var lines []Line
	var walk func(a T, level int)
	walk = func(a T, level int) {
		kids := children[a.AccountID()]
		if a.OwnAmount().IsZero() && a.RolledUpAmount().IsZero() && len(kids) == 0 {
			return
		}

		lines = append(lines, Line{
			AccountID: a.AccountID(),
			Label:     a.AccountName(),
			Amount:    a.OwnAmount(),
			Level:     level,
		})
		for _, kid := range kids {
			walk(kid, level+1)
		}
		if len(kids) > 0 && !a.RolledUpAmount().IsZero() {
			lines = append(lines, Line{
				AccountID: a.AccountID(),
				Label:     "Total " + a.AccountName(),
				Amount:    a.RolledUpAmount(),
				Level:     level,
				IsTotal:   true,
			})
		}
	}
	for _, root := range FindRootAccounts(accounts) {
		walk(root, 0)
	}
	return lines
}
