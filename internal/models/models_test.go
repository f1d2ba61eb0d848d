package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmountUnknownIsNotZero(t *testing.T) {
	zero := Known(decimal.Zero)
	unknown := Unknown()

	if !zero.IsKnown() {
		t.Error("known zero should be known")
	}
	if unknown.IsKnown() {
		t.Error("unknown amount should not be known")
	}
	if !unknown.OrZero().IsZero() {
		t.Errorf("OrZero on unknown = %s, want 0", unknown.OrZero())
	}
	if unknown.String() != "-" {
		t.Errorf("String() = %q, want \"-\"", unknown.String())
	}
}

func TestAmountJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}{A: Known(decimal.NewFromInt(275)), B: Unknown()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"a":"275","b":null}`; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}

	var decoded struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := decoded.A.Value(); !ok || !v.Equal(decimal.NewFromInt(275)) {
		t.Errorf("decoded A = %v/%v", v, ok)
	}
	if decoded.B.IsKnown() {
		t.Error("decoded B should be unknown")
	}
}

func TestRealizedTradeOutcomeAccessors(t *testing.T) {
	realized := RealizedTrade{Outcome: Realized{PnL: decimal.NewFromInt(20000), FeesEstimated: true}}
	if pnl, ok := realized.PnL(); !ok || !pnl.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("PnL() = %s/%v", pnl, ok)
	}
	if !realized.FeesEstimated() {
		t.Error("FeesEstimated() should be true")
	}
	if realized.Reason() != ReasonNone {
		t.Errorf("Reason() = %q, want none", realized.Reason())
	}

	unresolved := RealizedTrade{Outcome: Unresolved{Reason: ReasonUnknownCost}}
	if _, ok := unresolved.PnL(); ok {
		t.Error("unresolved trade should have no P&L")
	}
	if unresolved.FeesEstimated() {
		t.Error("unresolved trade should not be fee-estimated")
	}
	if unresolved.Reason() != ReasonUnknownCost {
		t.Errorf("Reason() = %q", unresolved.Reason())
	}
}

func TestRealizedTradeJSON(t *testing.T) {
	trade := RealizedTrade{
		TradeDate:  "2024-03-01",
		SymbolCode: "7203",
		Side:       SideSell,
		Quantity:   decimal.NewFromInt(100),
		SellPrice:  decimal.NewFromInt(1200),
		Fees:       Unknown(),
		Tax:        Known(decimal.Zero),
		Outcome:    Unresolved{Reason: ReasonUnknownCost},
	}

	data, err := json.Marshal(trade)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["realizedPnl"] != nil {
		t.Errorf("realizedPnl = %v, want null", out["realizedPnl"])
	}
	if out["reasonIfNull"] != "UNKNOWN_COST" {
		t.Errorf("reasonIfNull = %v", out["reasonIfNull"])
	}
	if out["avgBuyPrice"] != nil {
		t.Errorf("avgBuyPrice = %v, want null", out["avgBuyPrice"])
	}
	if out["fees"] != nil {
		t.Errorf("fees = %v, want null", out["fees"])
	}
}
