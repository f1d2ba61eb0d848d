package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"

	"kabu-pnl/internal/models"
)

var datePattern = regexp.MustCompile(`^(\d{2,4})[/\-.](\d{1,2})[/\-.](\d{1,2})`)

var dateMarkers = strings.NewReplacer("年", "/", "月", "/", "日", "")

// unknownMarkers are placeholders brokers print for a value they do not have.
var unknownMarkers = map[string]bool{
	"":   true,
	"-":  true,
	"--": true,
	"－":  true, // full-width hyphen-minus
	"—":  true, // em dash
	"―":  true, // horizontal bar
	"‐":  true, // hyphen
	"ー":  true, // prolonged sound mark, often typed for a dash
}

// Side markers in the 取引 column, e.g. 株式現物買 / 株式現物売.
const (
	buyMarker  = "買"
	sellMarker = "売"
)

// ParseDate normalizes a locale date such as 2024/1/5, 24-01-05 or
// 2024年1月5日 to YYYY-MM-DD. The second return is false when the value
// is not a date. Days are not checked against the length of the month.
func ParseDate(s string) (string, bool) {
	s = dateMarkers.Replace(width.Narrow.String(strings.TrimSpace(s)))
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if len(m[1]) == 2 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// IsUnknownMarker reports whether s is an empty or placeholder value.
func IsUnknownMarker(s string) bool {
	return unknownMarkers[strings.TrimSpace(s)]
}

// ParseNumber parses a locale number. Unknown markers and malformed input
// both return nil; callers decide whether nil is an error.
func ParseNumber(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if IsUnknownMarker(s) {
		return nil
	}
	s = width.Narrow.String(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "円")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// ParseSide maps the transaction-type column to a side.
func ParseSide(s string) models.Side {
	switch {
	case strings.Contains(s, buyMarker):
		return models.SideBuy
	case strings.Contains(s, sellMarker):
		return models.SideSell
	default:
		return models.SideOther
	}
}
