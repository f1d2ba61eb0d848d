package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFormatYen(t *testing.T) {
	tests := map[string]string{
		"0":          "¥0",
		"999":        "¥999",
		"1000":       "¥1,000",
		"1234567":    "¥1,234,567",
		"-20000":     "-¥20,000",
		"1166.666":   "¥1,167",
		"-0.4":       "¥0",
		"100000000":  "¥100,000,000",
		"-1234567.5": "-¥1,234,568",
	}
	for in, want := range tests {
		if got := FormatYen(d(in)); got != want {
			t.Errorf("FormatYen(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatYenFixed(t *testing.T) {
	if got := FormatYenFixed(d("1166.6666"), 2); got != "¥1,166.67" {
		t.Errorf("got %q", got)
	}
	if got := FormatYenFixed(d("-0.5"), 1); got != "-¥0.5" {
		t.Errorf("got %q", got)
	}
}

func TestFormatPnL(t *testing.T) {
	tests := map[string]string{
		"20000":  "+¥20,000",
		"-10000": "-¥10,000",
		"0":      "¥0",
		"0.3":    "¥0",
	}
	for in, want := range tests {
		if got := FormatPnL(d(in)); got != want {
			t.Errorf("FormatPnL(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := map[string]string{
		"100":     "100",
		"1500":    "1,500",
		"100.00":  "100",
		"0.5":     "0.5",
		"1234.25": "1,234.25",
	}
	for in, want := range tests {
		if got := FormatQuantity(d(in)); got != want {
			t.Errorf("FormatQuantity(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(d("40")); got != "40.0%" {
		t.Errorf("got %q", got)
	}
	if got := FormatPercent(d("66.666")); got != "66.7%" {
		t.Errorf("got %q", got)
	}
}

func TestPropertyFormatYen(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	grouped := regexp.MustCompile(`^-?¥\d{1,3}(,\d{3})*$`)

	properties.Property("FormatYen groups digits and preserves the value", prop.ForAll(
		func(n int64) bool {
			amount := decimal.NewFromInt(n)
			formatted := FormatYen(amount)
			if !grouped.MatchString(formatted) {
				t.Logf("bad format for %d: %s", n, formatted)
				return false
			}
			if (n < 0) != strings.HasPrefix(formatted, "-") {
				return false
			}
			digits := strings.NewReplacer("¥", "", ",", "").Replace(formatted)
			back, err := decimal.NewFromString(digits)
			return err == nil && back.Equal(amount)
		},
		gen.Int64Range(-1e12, 1e12),
	))

	properties.TestingRun(t)
}
