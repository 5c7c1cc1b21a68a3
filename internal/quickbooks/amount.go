package quickbooks

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes a free-form QuickBooks currency string. Currency
// symbols, thousands separators, quotes and whitespace are stripped; a value
// wrapped in parentheses is negative. Empty or unparseable input yields zero.
func ParseAmount(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', '"', ' ', '\t':
			return -1
		}
		return r
	}, s)

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Neg()
	}
	return d
}

// FormatAmount renders an amount the way exports carry it, fixed to cents.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
