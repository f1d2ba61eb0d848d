package models

import "github.com/shopspring/decimal"

// NormalizedFill is one accepted execution row.
type NormalizedFill struct {
	TradeDate   string            `json:"tradeDate"` // YYYY-MM-DD
	SymbolCode  string            `json:"symbolCode"`
	SymbolName  string            `json:"symbolName"`
	Side        Side              `json:"side"`
	Quantity    decimal.Decimal   `json:"quantity"`
	Price       decimal.Decimal   `json:"price"`
	Fees        Amount            `json:"fees"`
	Tax         Amount            `json:"tax"`
	AccountType string            `json:"accountType"`
	Raw         map[string]string `json:"raw,omitempty"`
	Line        int               `json:"line"`
}

// Key returns the fill's partition key.
func (f NormalizedFill) Key() PartitionKey {
	return KeyOf(f.SymbolCode, f.AccountType)
}
