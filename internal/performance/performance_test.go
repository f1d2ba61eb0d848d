package performance

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"kabu-pnl/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func realized(date, code, pnl string) models.RealizedTrade {
	return models.RealizedTrade{
		TradeDate:  date,
		SymbolCode: code,
		SymbolName: "name-" + code,
		Side:       models.SideSell,
		Outcome:    models.Realized{PnL: d(pnl)},
	}
}

func unresolved(date, code string) models.RealizedTrade {
	return models.RealizedTrade{
		TradeDate:  date,
		SymbolCode: code,
		Side:       models.SideSell,
		Outcome:    models.Unresolved{Reason: models.ReasonUnknownCost},
	}
}

func TestSummarize(t *testing.T) {
	trades := []models.RealizedTrade{
		realized("2024-01-10", "7203", "30000"),
		realized("2024-01-11", "9984", "-10000"),
		realized("2024-01-12", "7203", "0"),
		realized("2024-01-13", "6758", "10000"),
		realized("2024-01-14", "9984", "-10000"),
		unresolved("2024-01-15", "4063"),
	}
	s := Summarize(trades)

	if s.Calculable != 5 || s.Uncalculable != 1 {
		t.Errorf("calculable/uncalculable = %d/%d, want 5/1", s.Calculable, s.Uncalculable)
	}
	if s.Wins != 2 || s.Losses != 2 || s.Draws != 1 {
		t.Errorf("w/l/d = %d/%d/%d, want 2/2/1", s.Wins, s.Losses, s.Draws)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"TotalPnL", s.TotalPnL, "20000"},
		{"TotalWin", s.TotalWin, "40000"},
		{"TotalLoss", s.TotalLoss, "-20000"},
		{"AverageWin", s.AverageWin, "20000"},
		{"AverageLoss", s.AverageLoss, "-10000"},
		{"WinRate", s.WinRate, "40"},
		{"MaxDrawdown", s.MaxDrawdown, "10000"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
	if s.ProfitFactor.Kind != RatioFinite || !s.ProfitFactor.Value.Equal(d("2")) {
		t.Errorf("ProfitFactor = %v, want 2", s.ProfitFactor)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Calculable != 0 || !s.TotalPnL.IsZero() || !s.WinRate.IsZero() {
		t.Errorf("unexpected empty summary: %+v", s)
	}
	if s.ProfitFactor.Kind != RatioUndefined {
		t.Errorf("ProfitFactor kind = %v, want undefined", s.ProfitFactor.Kind)
	}
}

func TestProfitFactor(t *testing.T) {
	tests := []struct {
		win, loss string
		kind      RatioKind
		str       string
	}{
		{"30000", "-10000", RatioFinite, "3.00"},
		{"10000", "0", RatioInfinite, "∞"},
		{"0", "0", RatioUndefined, "-"},
		{"0", "-5000", RatioFinite, "0.00"},
	}
	for _, tt := range tests {
		r := profitFactor(d(tt.win), d(tt.loss))
		if r.Kind != tt.kind || r.String() != tt.str {
			t.Errorf("profitFactor(%s, %s) = %v %q, want %v %q", tt.win, tt.loss, r.Kind, r.String(), tt.kind, tt.str)
		}
	}
}

func TestRatioJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Ratio{
		"a": {Kind: RatioFinite, Value: d("1.5")},
		"b": {Kind: RatioInfinite},
		"c": {},
	})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a":"1.5","b":"Infinity","c":null}` {
		t.Errorf("json = %s", out)
	}
}

func TestMaxDrawdownUsesDateOrder(t *testing.T) {
	// Listed out of order; by date the sequence is +100, -300, +50.
	trades := []models.RealizedTrade{
		realized("2024-01-03", "A", "50"),
		realized("2024-01-01", "A", "100"),
		realized("2024-01-02", "A", "-300"),
	}
	if dd := Summarize(trades).MaxDrawdown; !dd.Equal(d("300")) {
		t.Errorf("MaxDrawdown = %s, want 300", dd)
	}
}

func TestMaxDrawdownFromFirstLoss(t *testing.T) {
	trades := []models.RealizedTrade{
		realized("2024-01-01", "A", "-200"),
		realized("2024-01-02", "A", "50"),
	}
	if dd := Summarize(trades).MaxDrawdown; !dd.Equal(d("200")) {
		t.Errorf("MaxDrawdown = %s, want 200", dd)
	}
}

func TestBySymbol(t *testing.T) {
	trades := []models.RealizedTrade{
		realized("2024-01-10", "7203", "100"),
		realized("2024-01-11", "9984", "-50"),
		realized("2024-01-12", "6758", "500"),
		realized("2024-01-13", "7203", "200"),
		unresolved("2024-01-14", "4063"),
		realized("2024-01-15", "8306", "-50"),
	}
	got := BySymbol(trades)

	var order []string
	for _, s := range got {
		order = append(order, s.SymbolCode)
	}
	want := []string{"6758", "7203", "9984", "8306"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	toyota := got[1]
	if toyota.Trades != 2 || !toyota.TotalPnL.Equal(d("300")) || !toyota.AverageWin.Equal(d("150")) {
		t.Errorf("7203 = %+v", toyota)
	}
	if toyota.SymbolName != "name-7203" {
		t.Errorf("SymbolName = %q", toyota.SymbolName)
	}
}

func TestBySymbolSkipsUnresolvedOnly(t *testing.T) {
	got := BySymbol([]models.RealizedTrade{unresolved("2024-01-01", "4063")})
	if len(got) != 0 {
		t.Errorf("unresolved-only symbol should not appear: %+v", got)
	}
}

func TestCumulativeSeries(t *testing.T) {
	trades := []models.RealizedTrade{
		realized("2024-01-02", "A", "-50"),
		unresolved("2024-01-01", "B"),
		realized("2024-01-01", "A", "100"),
		realized("2024-01-03", "A", "25"),
	}
	points := CumulativeSeries(trades)
	want := []Point{
		{Date: "2024-01-01", Cumulative: d("100")},
		{Date: "2024-01-02", Cumulative: d("50")},
		{Date: "2024-01-03", Cumulative: d("75")},
	}
	if len(points) != len(want) {
		t.Fatalf("len = %d, want %d", len(points), len(want))
	}
	for i := range want {
		if points[i].Date != want[i].Date || !points[i].Cumulative.Equal(want[i].Cumulative) {
			t.Errorf("point %d = %+v, want %+v", i, points[i], want[i])
		}
	}
}

func BenchmarkSummarize(b *testing.B) {
	trades := make([]models.RealizedTrade, 0, 1000)
	for i := 0; i < 1000; i++ {
		trades = append(trades, realized(fmt.Sprintf("2024-01-%02d", i%28+1), "7203", fmt.Sprint(i%7-3)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Summarize(trades)
	}
}
