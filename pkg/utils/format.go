// Package utils provides shared utility functions.
package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatYen formats an amount as whole yen with thousands separators,
// e.g. ¥1,234,567 or -¥500.
func FormatYen(amount decimal.Decimal) string {
	return FormatYenFixed(amount, 0)
}

// FormatYenFixed formats an amount in yen with the given number of decimal
// places, e.g. ¥1,166.67.
func FormatYenFixed(amount decimal.Decimal, places int32) string {
	s := FormatNumber(amount.Abs(), places)
	if amount.Round(places).IsNegative() {
		return "-¥" + s
	}
	return "¥" + s
}

// FormatPnL formats a P&L in yen with an explicit sign for gains.
func FormatPnL(pnl decimal.Decimal) string {
	formatted := FormatYen(pnl)
	if pnl.Round(0).IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// FormatPercent formats a percentage with one decimal place.
func FormatPercent(value decimal.Decimal) string {
	return value.StringFixed(1) + "%"
}

// FormatQuantity formats a share count with thousands separators. Fractional
// quantities keep their decimals.
func FormatQuantity(qty decimal.Decimal) string {
	places := -qty.Exponent()
	if places < 0 || qty.Equal(qty.Truncate(0)) {
		places = 0
	}
	return FormatNumber(qty, places)
}

// FormatNumber rounds value to places and groups the integer part in
// threes.
func FormatNumber(value decimal.Decimal, places int32) string {
	str := value.StringFixed(places)
	negative := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")

	intPart, decPart, hasDec := strings.Cut(str, ".")
	result := groupThousands(intPart)
	if hasDec {
		result += "." + decPart
	}
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var sb strings.Builder
	head := n % 3
	if head > 0 {
		sb.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}
