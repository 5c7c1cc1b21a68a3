package quickbooks

import (
	"strings"
)

// ClassRow is a decoded row of a classes export. CreatedDate stays raw here;
// the importer drops unparseable dates without failing the row.
type ClassRow struct {
	Name        string
	CreatedDate string
	Description string
}

// classHeaderMarker locates the header row by content; the classes export
// carries a variable amount of leading junk.
const classHeaderMarker = "Class full name"

var classHeaderRemap = map[string]string{
	"Class full name": "name",
	"Created date":    "createdDate",
	"Description":     "description",
}

// ParseClasses parses a QuickBooks classes export.
func ParseClasses(csvData string) ([]ClassRow, error) {
	lines := SplitLines(csvData)
	headerIndex := 0
	for i, line := range lines {
		if strings.Contains(line, classHeaderMarker) {
			headerIndex = i
			break
		}
	}

	t, err := ReadTable(strings.NewReader(strings.Join(lines[headerIndex:], "\n")), classHeaderRemap)
	if err != nil {
		return nil, err
	}

	rows := make([]ClassRow, 0, len(t.Records))
	for _, rec := range t.Records {
		rows = append(rows, ClassRow{
			Name:        t.Get(rec, "name"),
			CreatedDate: t.Get(rec, "createdDate"),
			Description: t.Get(rec, "description"),
		})
	}

	rows = TrimTrailingJunk(rows, func(r ClassRow) string { return r.Name })
	return rows, nil
}
