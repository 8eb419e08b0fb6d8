package tradestats

import (
	"fmt"
	"math"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
)

// Direction of a lot.
type Direction int

// Lot directions.
const (
	Long Direction = iota
	Short
)

// String returns "long" or "short".
func (d Direction) String() string {
	if d == Short {
		return "short"
	}
	return "long"
}

// Lot is a contiguous slice of an instrument position: all units share one
// opening price, FX rate, timestamp, and direction. Lots are created by
// the ledger and never change direction; matching only shrinks the
// remaining quantity.
type Lot struct {
	Instrument *domain.Instrument
	Direction  Direction
	Quantity   float64 // opened quantity, always positive
	Price      float64 // opening execution price
	FXRate     float64 // opening FX rate to base currency
	Multiplier float64 // contract multiplier captured at open
	OpenTime   time.Time
	CloseTime  time.Time // zero while any quantity remains unmatched

	remaining float64
}

// Remaining returns the unmatched quantity.
func (l *Lot) Remaining() float64 { return l.remaining }

// Notional returns the lot's opening notional in base currency:
// opened quantity x opening price x opening FX rate x multiplier.
func (l *Lot) Notional() float64 {
	return l.Quantity * l.Price * l.FXRate * l.Multiplier
}

// existsOn reports whether the lot existed at any instant of the given
// calendar day. Day comparison discards time-of-day, so a lot opened and
// fully closed within one day still counts for that day.
func (l *Lot) existsOn(day time.Time) bool {
	if dayOf(l.OpenTime).After(day) {
		return false
	}
	return l.CloseTime.IsZero() || !dayOf(l.CloseTime).Before(day)
}

// ClosingEvent records one FIFO match: a quantity of an existing lot
// closed by an opposite-direction order.
type ClosingEvent struct {
	Instrument *domain.Instrument
	Direction  Direction // direction of the lot being closed
	Quantity   float64   // matched quantity, positive
	OpenPrice  float64
	OpenFX     float64
	ClosePrice float64
	CloseFX    float64
	Multiplier float64
	OpenTime   time.Time
	CloseTime  time.Time
}

// RealizedPnL returns the base-currency profit of this match, positive for
// a long lot closed at a higher value and for a short lot closed at a
// lower value.
func (e ClosingEvent) RealizedPnL() float64 {
	delta := e.Quantity * (e.ClosePrice*e.CloseFX - e.OpenPrice*e.OpenFX) * e.Multiplier
	if e.Direction == Short {
		return -delta
	}
	return delta
}

// Ledger is a per-instrument FIFO inventory of lots. The lot history is
// append-only; fully matched lots leave the open queues but keep their
// lifetimes for capital windowing.
type Ledger struct {
	lots []*Lot         // every lot ever opened, in creation order
	open map[int][]*Lot // FIFO queue of lots with remaining quantity, per instrument
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{open: make(map[int][]*Lot)}
}

// Apply processes one execution. Existing opposite-direction lots are
// matched oldest-first; any unmatched remainder opens a new lot dated at
// the order's timestamp. A reversal order does both. Direction comes from
// the quantity sign alone; the BuySell label is ignored.
func (g *Ledger) Apply(o *domain.Order) ([]ClosingEvent, error) {
	if o.Instrument == nil || o.Instrument.Multiplier == 0 {
		return nil, fmt.Errorf("%w: order %q has no usable instrument metadata", ErrInconsistentEvents, o.ID)
	}
	if o.Quantity == 0 {
		return nil, nil
	}

	dir := Long
	if o.Quantity < 0 {
		dir = Short
	}
	qty := math.Abs(o.Quantity)
	key := o.InstrumentKey()
	queue := g.open[key]

	var events []ClosingEvent
	for qty > 0 && len(queue) > 0 && queue[0].Direction != dir {
		lot := queue[0]
		matched := math.Min(qty, lot.remaining)
		lot.remaining -= matched
		qty -= matched

		events = append(events, ClosingEvent{
			Instrument: lot.Instrument,
			Direction:  lot.Direction,
			Quantity:   matched,
			OpenPrice:  lot.Price,
			OpenFX:     lot.FXRate,
			ClosePrice: o.Price,
			CloseFX:    o.FXRateToBase,
			Multiplier: lot.Multiplier,
			OpenTime:   lot.OpenTime,
			CloseTime:  o.TradeTime,
		})

		if lot.remaining == 0 {
			lot.CloseTime = o.TradeTime
			queue = queue[1:]
		}
	}

	if qty > 0 {
		lot := &Lot{
			Instrument: o.Instrument,
			Direction:  dir,
			Quantity:   qty,
			Price:      o.Price,
			FXRate:     o.FXRateToBase,
			Multiplier: o.Instrument.Multiplier,
			OpenTime:   o.TradeTime,
			remaining:  qty,
		}
		g.lots = append(g.lots, lot)
		queue = append(queue, lot)
	}

	g.open[key] = queue
	return events, nil
}

// Lots returns every lot ever opened, including fully closed ones, in
// creation order.
func (g *Ledger) Lots() []*Lot { return g.lots }

// OpenLots returns lots with remaining quantity, in creation order.
func (g *Ledger) OpenLots() []*Lot {
	var open []*Lot
	for _, lot := range g.lots {
		if lot.remaining > 0 {
			open = append(open, lot)
		}
	}
	return open
}

// NetPosition returns the signed sum of remaining lot quantities for an
// instrument.
func (g *Ledger) NetPosition(instrumentID int) float64 {
	var net float64
	for _, lot := range g.open[instrumentID] {
		if lot.Direction == Short {
			net -= lot.remaining
		} else {
			net += lot.remaining
		}
	}
	return net
}
