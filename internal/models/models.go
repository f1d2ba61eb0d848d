// Package models provides domain models for execution-history P&L.
package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Side represents the side of an executed fill.
type Side string

const (
	SideBuy   Side = "BUY"
	SideSell  Side = "SELL"
	SideOther Side = "OTHER"
)

// PartitionKey scopes lot tracking and shortfall accounting.
// An empty AccountType is the "no account type" bucket.
type PartitionKey struct {
	SymbolCode  string
	AccountType string
}

// KeyOf builds the partition key for a symbol and account type.
func KeyOf(symbolCode, accountType string) PartitionKey {
	return PartitionKey{SymbolCode: symbolCode, AccountType: accountType}
}

// Amount is a monetary value that may be unknown.
// The zero value is unknown, which is distinct from a known zero.
type Amount struct {
	value decimal.Decimal
	known bool
}

// Known returns an amount holding v.
func Known(v decimal.Decimal) Amount {
	return Amount{value: v, known: true}
}

// Unknown returns an amount with no value.
func Unknown() Amount {
	return Amount{}
}

// AmountFromPtr converts a nullable decimal into an Amount.
func AmountFromPtr(v *decimal.Decimal) Amount {
	if v == nil {
		return Unknown()
	}
	return Known(*v)
}

// IsKnown reports whether the amount has a value.
func (a Amount) IsKnown() bool {
	return a.known
}

// Value returns the value and whether it is known.
func (a Amount) Value() (decimal.Decimal, bool) {
	return a.value, a.known
}

// OrZero substitutes zero for an unknown amount.
func (a Amount) OrZero() decimal.Decimal {
	if !a.known {
		return decimal.Zero
	}
	return a.value
}

// String returns "-" for an unknown amount.
func (a Amount) String() string {
	if !a.known {
		return "-"
	}
	return a.value.String()
}

// MarshalJSON encodes an unknown amount as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.known {
		return []byte("null"), nil
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON accepts null or a decimal.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Unknown()
		return nil
	}
	var v decimal.Decimal
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Known(v)
	return nil
}
