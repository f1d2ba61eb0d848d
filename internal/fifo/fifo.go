// Package fifo matches SELL fills against earlier BUY lots first-in first-out
// and produces one realized trade per SELL.
//
// Lots are tracked per (symbol code, account type). Compute holds no state
// between calls and never modifies its inputs.
package fifo

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"kabu-pnl/internal/logging"
	"kabu-pnl/internal/models"
)

// Result is the output of one matching run.
type Result struct {
	Trades      []models.RealizedTrade `json:"trades"`
	MissingCost []models.MissingCost   `json:"missingCostSymbols"`
}

// lot is an open quantity acquired at one price. fee is the acquisition
// fee: the BUY fill's fee, known zero for opening positions.
type lot struct {
	quantity decimal.Decimal
	price    decimal.Decimal
	fee      models.Amount
}

// lotQueue is a FIFO queue of lots. Consumed lots are skipped by advancing
// head instead of reslicing.
type lotQueue struct {
	lots []lot
	head int
}

func (q *lotQueue) empty() bool {
	return q.head >= len(q.lots)
}

func (q *lotQueue) front() *lot {
	return &q.lots[q.head]
}

func (q *lotQueue) push(l lot) {
	q.lots = append(q.lots, l)
}

// pushFront places l ahead of every open lot.
func (q *lotQueue) pushFront(l lot) {
	open := q.lots[q.head:]
	lots := make([]lot, 0, len(open)+1)
	lots = append(lots, l)
	lots = append(lots, open...)
	q.lots = lots
	q.head = 0
}

func (q *lotQueue) pop() {
	q.head++
}

// match consumes up to qty from the front of the queue and returns the
// matched quantity and its accumulated cost.
func (q *lotQueue) match(qty decimal.Decimal) (matched, cost decimal.Decimal) {
	remaining := qty
	for remaining.IsPositive() && !q.empty() {
		front := q.front()
		take := decimal.Min(remaining, front.quantity)
		cost = cost.Add(take.Mul(front.price))
		matched = matched.Add(take)
		remaining = remaining.Sub(take)
		front.quantity = front.quantity.Sub(take)
		if !front.quantity.IsPositive() {
			q.pop()
		}
	}
	return matched, cost
}

// engine holds the lot arena and shortfall totals for one run.
type engine struct {
	queues  map[models.PartitionKey]*lotQueue
	missing map[models.PartitionKey]int
	result  *Result
	onShort func(fill models.NormalizedFill, unmatched decimal.Decimal)
}

func newEngine() *engine {
	return &engine{
		queues:  make(map[models.PartitionKey]*lotQueue),
		missing: make(map[models.PartitionKey]int),
		result: &Result{
			Trades:      []models.RealizedTrade{},
			MissingCost: []models.MissingCost{},
		},
	}
}

func (e *engine) queue(key models.PartitionKey) *lotQueue {
	q, ok := e.queues[key]
	if !ok {
		q = &lotQueue{}
		e.queues[key] = q
	}
	return q
}

// Compute runs FIFO matching over fills, seeded with the opening positions.
// Positions with a non-positive quantity are skipped.
func Compute(fills []models.NormalizedFill, positions []models.OpeningPosition) *Result {
	return ComputeContext(context.Background(), fills, positions)
}

// ComputeContext is Compute with shortfalls logged through the logger
// carried by ctx. The context is not used for cancellation.
func ComputeContext(ctx context.Context, fills []models.NormalizedFill, positions []models.OpeningPosition) *Result {
	logger := logging.FromContext(ctx)

	e := newEngine()
	e.onShort = func(f models.NormalizedFill, unmatched decimal.Decimal) {
		logging.LogShortfall(logger, f.SymbolCode, f.AccountType, f.TradeDate, unmatched)
	}

	for _, p := range positions {
		if !e.open(p) {
			logger.Warn().
				Str("symbol", p.SymbolCode).
				Str("quantity", p.Quantity.String()).
				Msg("Opening position without quantity skipped")
		}
	}

	for _, f := range orderFills(fills) {
		switch f.Side {
		case models.SideBuy:
			e.buy(f)
		case models.SideSell:
			e.result.Trades = append(e.result.Trades, e.sell(f))
		}
	}

	logger.Debug().
		Int("fills", len(fills)).
		Int("positions", len(positions)).
		Int("trades", len(e.result.Trades)).
		Int("missing_cost_keys", len(e.result.MissingCost)).
		Msg("FIFO matching complete")

	return e.result
}

// open places an opening position ahead of every lot for its key. It
// reports false when the quantity is not positive and nothing was added.
func (e *engine) open(p models.OpeningPosition) bool {
	if !p.Quantity.IsPositive() {
		return false
	}
	e.queue(p.Key()).pushFront(lot{
		quantity: p.Quantity,
		price:    p.AverageCost,
		fee:      models.Known(decimal.Zero),
	})
	return true
}

func (e *engine) buy(f models.NormalizedFill) {
	e.queue(f.Key()).push(lot{quantity: f.Quantity, price: f.Price, fee: f.Fees})
}

func (e *engine) sell(f models.NormalizedFill) models.RealizedTrade {
	trade := models.RealizedTrade{
		TradeDate:   f.TradeDate,
		SymbolCode:  f.SymbolCode,
		SymbolName:  f.SymbolName,
		AccountType: f.AccountType,
		Side:        models.SideSell,
		Quantity:    f.Quantity,
		SellPrice:   f.Price,
		Fees:        f.Fees,
		Tax:         f.Tax,
	}

	matched, cost := e.queue(f.Key()).match(f.Quantity)
	if matched.IsPositive() {
		avg := cost.Div(matched)
		trade.AverageBuyPrice = &avg
	}

	if unmatched := f.Quantity.Sub(matched); unmatched.IsPositive() {
		e.recordShortfall(f, unmatched)
		trade.Outcome = models.Unresolved{Reason: models.ReasonUnknownCost}
		return trade
	}

	pnl := f.Price.Mul(f.Quantity).
		Sub(cost).
		Sub(f.Fees.OrZero()).
		Sub(f.Tax.OrZero())
	trade.Outcome = models.Realized{
		PnL:           pnl,
		FeesEstimated: !f.Fees.IsKnown() || !f.Tax.IsKnown(),
	}
	return trade
}

func (e *engine) recordShortfall(f models.NormalizedFill, unmatched decimal.Decimal) {
	key := f.Key()
	if idx, ok := e.missing[key]; ok {
		entry := &e.result.MissingCost[idx]
		entry.Quantity = entry.Quantity.Add(unmatched)
		if entry.SymbolName == "" {
			entry.SymbolName = f.SymbolName
		}
	} else {
		e.missing[key] = len(e.result.MissingCost)
		e.result.MissingCost = append(e.result.MissingCost, models.MissingCost{
			SymbolCode:  f.SymbolCode,
			SymbolName:  f.SymbolName,
			AccountType: f.AccountType,
			Quantity:    unmatched,
		})
	}
	if e.onShort != nil {
		e.onShort(f, unmatched)
	}
}

// orderFills returns a copy of fills sorted by trade date with BUY fills
// ahead of every other side on the same date.
func orderFills(fills []models.NormalizedFill) []models.NormalizedFill {
	ordered := make([]models.NormalizedFill, len(fills))
	copy(ordered, fills)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.TradeDate != b.TradeDate {
			return a.TradeDate < b.TradeDate
		}
		return sideRank(a.Side) < sideRank(b.Side)
	})
	return ordered
}

func sideRank(s models.Side) int {
	if s == models.SideBuy {
		return 0
	}
	return 1
}
