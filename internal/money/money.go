// Package money formats Rupiah amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const symbol = "Rp"

// Format renders amount as Indonesian Rupiah with two decimals,
// e.g. Rp1.234.567,00. Rounding is half away from zero.
func Format(amount decimal.Decimal) string {
	return format(amount, 2)
}

// FormatWhole drops the fractional part, used on chart axes.
func FormatWhole(amount decimal.Decimal) string {
	return format(amount, 0)
}

func format(amount decimal.Decimal, places int32) string {
	rounded := amount.Round(places)
	negative := rounded.IsNegative()
	text := rounded.Abs().StringFixed(places)

	intPart, fracPart, _ := strings.Cut(text, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	b.WriteString(groupThousands(intPart))
	if places > 0 {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// groupThousands inserts '.' between every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var parts []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		parts = append([]string{digits[start:i]}, parts...)
	}
	return strings.Join(parts, ".")
}
