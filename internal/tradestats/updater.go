// Package tradestats derives performance statistics for a trade from its
// raw events: FIFO lot matching, day-granularity capital usage averaging,
// and long/short attribution of realized and unrealized results.
//
// The computation is pure and synchronous over one trade's already-loaded
// data. The only blocking call is the mark-to-market price fetch, one
// coarse request per distinct instrument still holding an open lot.
// Recomputation is idempotent: it has no side effect beyond overwriting
// the trade's derived fields.
package tradestats

import (
	"context"
	"sort"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/lookup"
	"github.com/mounirlabaied/QPAS/internal/marketdata"
)

// WindowPolicy selects the capital aggregation window end for a trade
// that is still open.
type WindowPolicy int

const (
	// WindowUntilNow extends the window to the current wall-clock time.
	WindowUntilNow WindowPolicy = iota
	// WindowUntilLastEquity stops the window at the latest equity summary
	// date.
	WindowUntilLastEquity
)

// Config tunes the stats computation.
type Config struct {
	// OptionsCapitalMultiplier scales option positions' notional when
	// measuring capital usage. Zero means 1 (full notional).
	OptionsCapitalMultiplier float64

	// Window picks the aggregation window end for open trades.
	Window WindowPolicy

	// MarketDataTimeout bounds each mark price fetch. Zero means 10s.
	MarketDataTimeout time.Duration

	// Now is the clock, injectable for deterministic tests.
	Now func() time.Time
}

// Updater recomputes a trade's derived statistics. It is safe for
// concurrent use across distinct trades: it holds no per-trade state.
type Updater struct {
	data marketdata.Source
	cfg  Config
}

// NewUpdater creates an Updater over the given market data source.
func NewUpdater(data marketdata.Source, cfg Config) *Updater {
	if cfg.OptionsCapitalMultiplier == 0 {
		cfg.OptionsCapitalMultiplier = 1
	}
	if cfg.MarketDataTimeout == 0 {
		cfg.MarketDataTimeout = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Updater{data: data, cfg: cfg}
}

// UpdateStats recomputes every derived field on the trade. summaries
// supply the account-equity baseline: statistics are not meaningful before
// the earliest date an equity snapshot exists, so the opening date is
// clamped forward (never backward) to that baseline.
//
// A trade with no events at all is valid and produces zeroed statistics.
// Missing instrument metadata on any order is fatal
// (ErrInconsistentEvents); a missing mark price only raises the trade's
// PriceDataIncomplete flag.
func (u *Updater) UpdateStats(ctx context.Context, t *domain.Trade, summaries []*domain.EquitySummary) error {
	opened, closed, ok := eventBounds(t)
	if !ok {
		resetStats(t)
		return nil
	}
	if minEq, ok := minEquityDate(summaries); ok && minEq.After(opened) {
		opened = minEq
	}
	closable := t.IsClosable()

	orders := make([]*domain.Order, len(t.Orders))
	copy(orders, t.Orders)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].TradeTime.Before(orders[j].TradeTime)
	})

	ledger := NewLedger()
	var events []ClosingEvent
	for _, o := range orders {
		evs, err := ledger.Apply(o)
		if err != nil {
			return err
		}
		events = append(events, evs...)
	}

	end := closed
	if !closable {
		switch u.cfg.Window {
		case WindowUntilLastEquity:
			if maxEq, ok := maxEquityDate(summaries); ok && maxEq.After(end) {
				end = maxEq
			}
		default:
			if now := u.cfg.Now(); now.After(end) {
				end = now
			}
		}
	}

	capital := aggregateCapital(ledger.Lots(), opened, end, u.cfg.OptionsCapitalMultiplier)

	var res resultSet
	res.addClosingEvents(events)
	for _, o := range orders {
		res.addOrderCosts(o)
	}
	for _, ct := range t.CashTransactions {
		res.addCashTransaction(ct, t.NetPositionAt(ct.InstrumentKey(), ct.TransactionTime))
	}

	openLots := ledger.OpenLots()
	marks := u.fetchMarks(ctx, openLots, opened, end)
	for _, lot := range openLots {
		mark, ok := marks[lot.Instrument.ID]
		res.markOpenLot(lot, mark, ok)
	}

	t.DateOpened = opened
	if closable {
		t.DateClosed = closed
		t.Open = false
	} else {
		t.DateClosed = time.Time{}
		t.Open = true
	}
	res.writeTo(t, capital)
	return nil
}

// fetchMarks retrieves the latest available close per distinct instrument
// holding an open lot. Fetch failures and empty series simply leave the
// instrument out of the result; the caller turns that into the
// incomplete-data flag.
func (u *Updater) fetchMarks(ctx context.Context, openLots []*Lot, start, end time.Time) map[int]float64 {
	marks := make(map[int]float64)
	if len(openLots) == 0 || u.data == nil {
		return marks
	}

	cache := marketdata.NewCache(u.data, u.cfg.MarketDataTimeout)
	for _, lot := range openLots {
		inst := lot.Instrument
		if _, done := marks[inst.ID]; done {
			continue
		}
		bars, err := cache.GetData(ctx, inst, start, end, domain.BarSize1Day)
		if err != nil {
			continue
		}
		px, err := lookup.LatestClose(bars)
		if err != nil {
			continue
		}
		marks[inst.ID] = px
	}
	return marks
}

// eventBounds returns the earliest and latest timestamp over the trade's
// orders, cash transactions, and FX transactions. ok is false when the
// trade has no events.
func eventBounds(t *domain.Trade) (min, max time.Time, ok bool) {
	observe := func(ts time.Time) {
		if !ok {
			min, max, ok = ts, ts, true
			return
		}
		if ts.Before(min) {
			min = ts
		}
		if ts.After(max) {
			max = ts
		}
	}

	for _, o := range t.Orders {
		observe(o.TradeTime)
	}
	for _, ct := range t.CashTransactions {
		observe(ct.TransactionTime)
	}
	for _, fx := range t.FXTransactions {
		observe(fx.TransactionTime)
	}
	return min, max, ok
}

func minEquityDate(summaries []*domain.EquitySummary) (time.Time, bool) {
	var min time.Time
	var ok bool
	for _, es := range summaries {
		if !ok || es.Date.Before(min) {
			min, ok = es.Date, true
		}
	}
	return min, ok
}

func maxEquityDate(summaries []*domain.EquitySummary) (time.Time, bool) {
	var max time.Time
	var ok bool
	for _, es := range summaries {
		if !ok || es.Date.After(max) {
			max, ok = es.Date, true
		}
	}
	return max, ok
}

// resetStats zeroes every derived field. Used for trades with no events.
func resetStats(t *domain.Trade) {
	t.DateOpened = time.Time{}
	t.DateClosed = time.Time{}
	t.Open = false
	t.CapitalTotal, t.CapitalLong, t.CapitalShort, t.CapitalNet = 0, 0, 0, 0
	t.ResultDollars, t.ResultDollarsLong, t.ResultDollarsShort = 0, 0, 0
	t.ResultPct, t.ResultPctLong, t.ResultPctShort = 0, 0, 0
	t.UnrealizedResultDollars, t.UnrealizedResultDollarsLong, t.UnrealizedResultDollarsShort = 0, 0, 0
	t.UnrealizedResultPct, t.UnrealizedResultPctLong, t.UnrealizedResultPctShort = 0, 0, 0
	t.Commissions, t.Taxes, t.TotalResultDollars = 0, 0, 0
	t.PriceDataIncomplete = false
}
