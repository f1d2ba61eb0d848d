package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Reason explains why a realized P&L could not be computed.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonUnknownCost Reason = "UNKNOWN_COST"
)

// Outcome is the result of costing one SELL: either Realized or Unresolved.
type Outcome interface {
	isOutcome()
}

// Realized carries a computed P&L.
// FeesEstimated is set when an unknown fee or tax was taken as zero.
type Realized struct {
	PnL           decimal.Decimal
	FeesEstimated bool
}

// Unresolved carries the reason no P&L exists.
type Unresolved struct {
	Reason Reason
}

func (Realized) isOutcome()   {}
func (Unresolved) isOutcome() {}

// RealizedTrade is the outcome of one SELL fill.
type RealizedTrade struct {
	TradeDate       string
	SymbolCode      string
	SymbolName      string
	AccountType     string
	Side            Side
	Quantity        decimal.Decimal
	SellPrice       decimal.Decimal
	AverageBuyPrice *decimal.Decimal
	Fees            Amount
	Tax             Amount
	Outcome         Outcome
}

// PnL returns the realized P&L and whether it could be computed.
func (t RealizedTrade) PnL() (decimal.Decimal, bool) {
	if r, ok := t.Outcome.(Realized); ok {
		return r.PnL, true
	}
	return decimal.Zero, false
}

// FeesEstimated reports whether the P&L treated an unknown fee or tax as zero.
func (t RealizedTrade) FeesEstimated() bool {
	r, ok := t.Outcome.(Realized)
	return ok && r.FeesEstimated
}

// Reason returns the reason code for a missing P&L.
func (t RealizedTrade) Reason() Reason {
	if u, ok := t.Outcome.(Unresolved); ok {
		return u.Reason
	}
	return ReasonNone
}

// Calculable reports whether the trade has a P&L.
func (t RealizedTrade) Calculable() bool {
	_, ok := t.PnL()
	return ok
}

type realizedTradeJSON struct {
	TradeDate       string           `json:"tradeDate"`
	SymbolCode      string           `json:"symbolCode"`
	SymbolName      string           `json:"symbolName"`
	AccountType     string           `json:"accountType"`
	Side            Side             `json:"side"`
	Quantity        decimal.Decimal  `json:"quantity"`
	SellPrice       decimal.Decimal  `json:"sellPrice"`
	AverageBuyPrice *decimal.Decimal `json:"avgBuyPrice"`
	Fees            Amount           `json:"fees"`
	Tax             Amount           `json:"tax"`
	RealizedPnL     *decimal.Decimal `json:"realizedPnl"`
	ReasonIfNull    *Reason          `json:"reasonIfNull"`
	FeesEstimated   bool             `json:"feesEstimated"`
}

// MarshalJSON flattens the outcome into nullable fields.
func (t RealizedTrade) MarshalJSON() ([]byte, error) {
	out := realizedTradeJSON{
		TradeDate:       t.TradeDate,
		SymbolCode:      t.SymbolCode,
		SymbolName:      t.SymbolName,
		AccountType:     t.AccountType,
		Side:            t.Side,
		Quantity:        t.Quantity,
		SellPrice:       t.SellPrice,
		AverageBuyPrice: t.AverageBuyPrice,
		Fees:            t.Fees,
		Tax:             t.Tax,
		FeesEstimated:   t.FeesEstimated(),
	}
	if pnl, ok := t.PnL(); ok {
		out.RealizedPnL = &pnl
	} else {
		reason := t.Reason()
		out.ReasonIfNull = &reason
	}
	return json.Marshal(out)
}

// MissingCost is the unmatched SELL quantity for one partition key.
type MissingCost struct {
	SymbolCode  string          `json:"symbolCode"`
	SymbolName  string          `json:"symbolName"`
	AccountType string          `json:"accountType"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Key returns the diagnostic's partition key.
func (m MissingCost) Key() PartitionKey {
	return KeyOf(m.SymbolCode, m.AccountType)
}
