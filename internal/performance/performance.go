// Package performance derives summary statistics from realized trades.
//
// Every view is recomputed from the trade list on demand; nothing is cached.
// Trades without a P&L are counted as uncalculable and excluded from every
// P&L statistic.
package performance

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"kabu-pnl/internal/models"
)

var hundred = decimal.NewFromInt(100)

// RatioKind distinguishes a finite ratio from the two degenerate cases.
type RatioKind int

const (
	RatioUndefined RatioKind = iota
	RatioFinite
	RatioInfinite
)

// Ratio is a profit factor. Its value is only meaningful when Kind is
// RatioFinite.
type Ratio struct {
	Kind  RatioKind
	Value decimal.Decimal
}

// String renders the ratio with two decimals, "∞" or "-".
func (r Ratio) String() string {
	switch r.Kind {
	case RatioFinite:
		return r.Value.StringFixed(2)
	case RatioInfinite:
		return "∞"
	default:
		return "-"
	}
}

// MarshalJSON encodes a finite ratio as a decimal string, an infinite one as
// "Infinity" and an undefined one as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RatioFinite:
		return json.Marshal(r.Value)
	case RatioInfinite:
		return []byte(`"Infinity"`), nil
	default:
		return []byte("null"), nil
	}
}

// profitFactor returns |win / loss|, +Inf when there is no loss but some
// win, and undefined otherwise.
func profitFactor(totalWin, totalLoss decimal.Decimal) Ratio {
	if totalLoss.IsZero() {
		if totalWin.IsPositive() {
			return Ratio{Kind: RatioInfinite}
		}
		return Ratio{Kind: RatioUndefined}
	}
	return Ratio{Kind: RatioFinite, Value: totalWin.Div(totalLoss).Abs()}
}

// Stats are the win/loss statistics shared by the overall and per-symbol
// summaries.
type Stats struct {
	Trades      int             `json:"trades"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
	Draws       int             `json:"draws"`
	TotalPnL    decimal.Decimal `json:"totalPnl"`
	TotalWin    decimal.Decimal `json:"totalWin"`
	TotalLoss   decimal.Decimal `json:"totalLoss"`
	AverageWin  decimal.Decimal `json:"averageWin"`
	AverageLoss decimal.Decimal `json:"averageLoss"`
	WinRate     decimal.Decimal `json:"winRate"`
}

// add folds one calculable P&L into the statistics.
func (s *Stats) add(pnl decimal.Decimal) {
	s.Trades++
	s.TotalPnL = s.TotalPnL.Add(pnl)
	switch pnl.Sign() {
	case 1:
		s.Wins++
		s.TotalWin = s.TotalWin.Add(pnl)
	case -1:
		s.Losses++
		s.TotalLoss = s.TotalLoss.Add(pnl)
	default:
		s.Draws++
	}
}

func (s *Stats) finish() {
	if s.Wins > 0 {
		s.AverageWin = s.TotalWin.Div(decimal.NewFromInt(int64(s.Wins)))
	}
	if s.Losses > 0 {
		s.AverageLoss = s.TotalLoss.Div(decimal.NewFromInt(int64(s.Losses)))
	}
	if s.Trades > 0 {
		s.WinRate = decimal.NewFromInt(int64(s.Wins)).
			Div(decimal.NewFromInt(int64(s.Trades))).
			Mul(hundred)
	}
}

// Summary aggregates every trade of a run.
type Summary struct {
	Stats
	Calculable   int             `json:"calculable"`
	Uncalculable int             `json:"uncalculable"`
	ProfitFactor Ratio           `json:"profitFactor"`
	MaxDrawdown  decimal.Decimal `json:"maxDrawdown"`
}

// Summarize computes the overall summary of trades.
func Summarize(trades []models.RealizedTrade) Summary {
	var sum Summary
	for _, t := range trades {
		pnl, ok := t.PnL()
		if !ok {
			sum.Uncalculable++
			continue
		}
		sum.Calculable++
		sum.add(pnl)
	}
	sum.finish()
	sum.ProfitFactor = profitFactor(sum.TotalWin, sum.TotalLoss)
	sum.MaxDrawdown = maxDrawdown(trades)
	return sum
}

// maxDrawdown scans calculable trades by date and returns the largest drop
// of cumulative P&L below its running peak. The peak starts at zero.
func maxDrawdown(trades []models.RealizedTrade) decimal.Decimal {
	var cumulative, peak, worst decimal.Decimal
	for _, t := range byDate(trades) {
		pnl, _ := t.PnL()
		cumulative = cumulative.Add(pnl)
		if cumulative.GreaterThan(peak) {
			peak = cumulative
		}
		if dd := peak.Sub(cumulative); dd.GreaterThan(worst) {
			worst = dd
		}
	}
	return worst
}

// SymbolSummary is the statistics of one symbol code across account types.
type SymbolSummary struct {
	SymbolCode string `json:"symbolCode"`
	SymbolName string `json:"symbolName"`
	Stats
}

// BySymbol groups calculable trades by symbol code, sorted by total P&L
// descending. Symbols with equal totals keep first-appearance order.
func BySymbol(trades []models.RealizedTrade) []SymbolSummary {
	index := make(map[string]int)
	out := []SymbolSummary{}
	for _, t := range trades {
		pnl, ok := t.PnL()
		if !ok {
			continue
		}
		i, seen := index[t.SymbolCode]
		if !seen {
			i = len(out)
			index[t.SymbolCode] = i
			out = append(out, SymbolSummary{SymbolCode: t.SymbolCode, SymbolName: t.SymbolName})
		}
		out[i].add(pnl)
	}
	for i := range out {
		out[i].finish()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalPnL.GreaterThan(out[j].TotalPnL)
	})
	return out
}

// Point is one step of the cumulative P&L series.
type Point struct {
	Date       string          `json:"date"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// CumulativeSeries returns the running P&L after each calculable trade,
// in date order.
func CumulativeSeries(trades []models.RealizedTrade) []Point {
	sorted := byDate(trades)
	points := make([]Point, 0, len(sorted))
	var cumulative decimal.Decimal
	for _, t := range sorted {
		pnl, _ := t.PnL()
		cumulative = cumulative.Add(pnl)
		points = append(points, Point{Date: t.TradeDate, Cumulative: cumulative})
	}
	return points
}

// byDate returns the calculable trades stable-sorted by trade date.
func byDate(trades []models.RealizedTrade) []models.RealizedTrade {
	out := make([]models.RealizedTrade, 0, len(trades))
	for _, t := range trades {
		if t.Calculable() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TradeDate < out[j].TradeDate
	})
	return out
}
