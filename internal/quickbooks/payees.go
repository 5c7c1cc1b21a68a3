package quickbooks

import (
	"strings"
)

// PayeeFormat identifies which QuickBooks export shape a payee CSV uses.
type PayeeFormat string

const (
	PayeeFormatVendor   PayeeFormat = "vendor"
	PayeeFormatCustomer PayeeFormat = "customer"
	PayeeFormatUnknown  PayeeFormat = "unknown"
)

// PayeeRow is a decoded row of a vendor or customer export, normalized into
// one schema by the header remapping.
type PayeeRow struct {
	Name         string
	CompanyName  string
	Address1     string
	City         string
	State        string
	Zip          string
	Phone        string
	Email        string
	Attachments  string
	Tracking1099 string
}

// IsW9Vendor reports whether the row qualifies as a W9 vendor: an attachment
// count of 1 means a W9 is on file.
func (r PayeeRow) IsW9Vendor() bool {
	return r.Attachments == "1"
}

// DisplayName is the imported payee name, falling back to the company name.
func (r PayeeRow) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.CompanyName
}

var payeeHeaderRemap = map[string]string{
	"Vendor":         "name",
	"Name":           "name",
	"Company name":   "companyName",
	"Street Address": "address1",
	"City":           "city",
	"State":          "state",
	"Zip":            "zip",
	"Phone":          "phone",
	"Email":          "email",
	"Attachments":    "attachments",
	"1099 Tracking":  "tracking1099",
}

// DetectPayeeFormat decides vendor vs customer shape by scanning for
// distinguishing header tokens.
func DetectPayeeFormat(csvData string) PayeeFormat {
	switch {
	case strings.Contains(csvData, "Vendor") || strings.Contains(csvData, "1099 Tracking"):
		return PayeeFormatVendor
	case strings.Contains(csvData, "Customer type"):
		return PayeeFormatCustomer
	}
	return PayeeFormatUnknown
}

// ParsePayees parses a vendor or customer export into the shared schema and
// trims the trailing footer rows.
func ParsePayees(csvData string) ([]PayeeRow, PayeeFormat, error) {
	format := DetectPayeeFormat(csvData)

	t, err := ReadTable(strings.NewReader(csvData), payeeHeaderRemap)
	if err != nil {
		return nil, format, err
	}

	rows := make([]PayeeRow, 0, len(t.Records))
	for _, rec := range t.Records {
		rows = append(rows, PayeeRow{
			Name:         t.Get(rec, "name"),
			CompanyName:  t.Get(rec, "companyName"),
			Address1:     t.Get(rec, "address1"),
			City:         t.Get(rec, "city"),
			State:        t.Get(rec, "state"),
			Zip:          t.Get(rec, "zip"),
			Phone:        t.Get(rec, "phone"),
			Email:        t.Get(rec, "email"),
			Attachments:  t.Get(rec, "attachments"),
			Tracking1099: t.Get(rec, "tracking1099"),
		})
	}

	rows = TrimTrailingJunk(rows, func(r PayeeRow) string { return r.Name })
	return rows, format, nil
}
