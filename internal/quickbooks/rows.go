package quickbooks

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// Table is a header-parsed CSV fragment. Headers are remapped to canonical
// field names as they are read, so each export format accesses its columns
// through a single remapping table instead of raw QuickBooks labels.
type Table struct {
	index   map[string]int
	Records [][]string
}

// ReadTable parses CSV with the first record as header, remapping header
// names through remap. Fully empty records are dropped. QuickBooks exports
// have ragged field counts, so records are read unvalidated.
func ReadTable(r io.Reader, remap map[string]string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return &Table{index: map[string]int{}}, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if mapped, ok := remap[h]; ok {
			h = mapped
		}
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var rows [][]string
	for _, rec := range records[1:] {
		if isEmptyRecord(rec) {
			continue
		}
		rows = append(rows, rec)
	}

	return &Table{index: index, Records: rows}, nil
}

// Get returns the named field of a record, or "" when the column is absent.
func (t *Table) Get(rec []string, field string) string {
	i, ok := t.index[field]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// First returns a record's first column, whatever its header is. The
// general-ledger export uses an unnamed first column for account names.
func First(rec []string) string {
	if len(rec) == 0 {
		return ""
	}
	return strings.TrimSpace(rec[0])
}

func isEmptyRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// footerTokens mark the timestamp/metadata rows QuickBooks appends after the
// data, e.g. "Tuesday, Jan 02, 2024 08:15:30 AM GMTZ".
var footerTokens = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "GMTZ",
}

func isFooterName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	for _, tok := range footerTokens {
		if strings.Contains(name, tok) {
			return true
		}
	}
	return false
}

// TrimTrailingJunk drops footer rows from the end until a row with a genuine
// name field appears.
func TrimTrailingJunk[T any](rows []T, name func(T) string) []T {
	for len(rows) > 0 && isFooterName(name(rows[len(rows)-1])) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// SplitLines splits export text on CRLF or LF line endings.
func SplitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"1/2/06",
}

// ParseDate parses the date formats QuickBooks exports use. The second
// return is false for empty or unrecognized input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
