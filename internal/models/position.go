package models

import "github.com/shopspring/decimal"

// OpeningPosition is a user-declared lot held before the exported date range.
type OpeningPosition struct {
	ID          string          `json:"id"`
	SymbolCode  string          `json:"symbolCode"`
	SymbolName  string          `json:"symbolName"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"averageCost"`
	AccountType string          `json:"accountType"`
}

// Key returns the position's partition key.
func (p OpeningPosition) Key() PartitionKey {
	return KeyOf(p.SymbolCode, p.AccountType)
}
