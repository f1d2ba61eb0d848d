package cli

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"

	"kabu-pnl/internal/models"
	"kabu-pnl/pkg/utils"
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// stripANSI removes colour escape sequences.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// DisplayWidth returns the number of terminal cells s occupies. Wide and
// full-width characters take two cells; colour codes take none.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range stripANSI(s) {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// PadRight pads s with spaces to w cells.
func PadRight(s string, w int) string {
	if pad := w - DisplayWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// PadLeft pads s with leading spaces to w cells.
func PadLeft(s string, w int) string {
	if pad := w - DisplayWidth(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

// Truncate shortens s to at most w cells, marking the cut with "…".
func Truncate(s string, w int) string {
	if DisplayWidth(s) <= w || w < 1 {
		return s
	}
	var sb strings.Builder
	used := 0
	for _, r := range s {
		rw := DisplayWidth(string(r))
		if used+rw > w-1 {
			break
		}
		sb.WriteRune(r)
		used += rw
	}
	sb.WriteString("…")
	return sb.String()
}

// accountLabel renders the account type, showing "-" for the default bucket.
func accountLabel(accountType string) string {
	if accountType == "" {
		return "-"
	}
	return accountType
}

// avgPriceCell renders an optional average buy price.
func avgPriceCell(avg *decimal.Decimal) string {
	if avg == nil {
		return "-"
	}
	return utils.FormatYenFixed(*avg, 2)
}

// amountCell renders a fee or tax, "-" when unknown.
func amountCell(a models.Amount) string {
	v, ok := a.Value()
	if !ok {
		return "-"
	}
	return utils.FormatYen(v)
}

// pnlCell renders a trade's P&L or why it has none.
func (o *Output) pnlCell(t models.RealizedTrade) string {
	pnl, ok := t.PnL()
	if !ok {
		return o.Yellow(string(t.Reason()))
	}
	cell := o.FormatPnL(pnl)
	if t.FeesEstimated() {
		cell += "*"
	}
	return cell
}
