package domain

import "time"

// Trade is a logically grouped sequence of executions, cash flows, and FX
// conversions. It owns its events for the duration of a stats
// recomputation; the engine only ever writes the derived fields below and
// never mutates the event slices.
type Trade struct {
	ID      string
	Name    string
	Account string
	Tags    []string

	Orders           []*Order
	CashTransactions []*CashTransaction
	FXTransactions   []*FXTransaction

	// Derived temporal bounds. DateClosed stays zero while the trade is
	// open.
	DateOpened time.Time
	DateClosed time.Time
	Open       bool

	// Derived capital usage: day-averaged notional at risk.
	CapitalTotal float64
	CapitalLong  float64
	CapitalShort float64
	CapitalNet   float64

	// Derived realized results.
	ResultDollars      float64
	ResultDollarsLong  float64
	ResultDollarsShort float64
	ResultPct          float64
	ResultPctLong      float64
	ResultPctShort     float64

	// Derived unrealized (mark-to-market) results.
	UnrealizedResultDollars      float64
	UnrealizedResultDollarsLong  float64
	UnrealizedResultDollarsShort float64
	UnrealizedResultPct          float64
	UnrealizedResultPctLong      float64
	UnrealizedResultPctShort     float64

	Commissions        float64
	Taxes              float64
	TotalResultDollars float64

	// PriceDataIncomplete is set when at least one open lot had no mark
	// price available, so the unrealized figures understate the position.
	PriceDataIncomplete bool
}

// IsClosable reports whether every instrument's net signed order quantity
// is exactly zero, i.e. the trade holds no open position anywhere.
func (t *Trade) IsClosable() bool {
	net := make(map[int]float64)
	for _, o := range t.Orders {
		net[o.InstrumentKey()] += o.Quantity
	}
	for _, q := range net {
		if q != 0 {
			return false
		}
	}
	return true
}

// NetPositionAt returns the instrument's net signed quantity from orders
// executed at or before the given time.
func (t *Trade) NetPositionAt(instrumentID int, at time.Time) float64 {
	var net float64
	for _, o := range t.Orders {
		if o.InstrumentKey() == instrumentID && !o.TradeTime.After(at) {
			net += o.Quantity
		}
	}
	return net
}
