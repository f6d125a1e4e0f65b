// Package core provides amount parsing and display utilities.
//
// Amounts are kept as the text the user typed. SQLite REAL affinity turns
// numeric-looking text into a float on write, so values read back are
// normalized here for display.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses s as a decimal number.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// It is only used when strict amount checking is enabled; by default
// amounts are stored without any parsing.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders a value scanned from the amount column.
//
// Numbers get at least two decimals (12.5 -> "12.50") and keep any further
// digits (12.555 stays "12.555"). Text that SQLite kept as text is returned
// verbatim; NULL becomes "".
func FormatAmount(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return fixedAtLeastTwo(decimal.NewFromFloat(val))
	case int64:
		return fixedAtLeastTwo(decimal.NewFromInt(val))
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return ""
	}
}

func fixedAtLeastTwo(d decimal.Decimal) string {
	places := int32(2)
	if exp := -d.Exponent(); exp > places {
		places = exp
	}
	return d.StringFixed(places)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
