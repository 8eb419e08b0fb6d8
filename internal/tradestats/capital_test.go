package tradestats

import (
	"testing"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
)

func longLot(inst *domain.Instrument, qty, price float64, open, closed time.Time) *Lot {
	return &Lot{
		Instrument: inst,
		Direction:  Long,
		Quantity:   qty,
		Price:      price,
		FXRate:     1,
		Multiplier: inst.Multiplier,
		OpenTime:   open,
		CloseTime:  closed,
	}
}

func TestAggregateCapital_Empty(t *testing.T) {
	c := aggregateCapital(nil, day(1), day(5), 1)
	if c.Total != 0 || c.Long != 0 || c.Short != 0 || c.Net != 0 {
		t.Error("expected zero capital for no lots")
	}
}

func TestAggregateCapital_SingleDayRoundTripStillCounts(t *testing.T) {
	inst := testInstrument()
	lots := []*Lot{longLot(inst, 10, 100, day(1), day(1))}

	c := aggregateCapital(lots, day(1), day(1), 1)
	if !almostEqual(c.Long, 1000) {
		t.Errorf("expected long capital 1000, got %f", c.Long)
	}
	if c.Short != 0 {
		t.Errorf("expected short capital 0, got %f", c.Short)
	}
}

func TestAggregateCapital_MeanOverNonzeroDaysOnly(t *testing.T) {
	inst := testInstrument()
	lots := []*Lot{
		// Held days 1-4.
		longLot(inst, 10, 100, day(1), day(4)),
		// Instantaneous round trip on day 9.
		longLot(inst, 20, 100, day(9).Add(10*time.Hour), day(9).Add(10*time.Hour)),
	}

	c := aggregateCapital(lots, day(1), day(9), 1)
	// Nonzero days: 1,2,3,4 at 1000 and 9 at 2000. Days 5-8 are excluded.
	want := (4*1000.0 + 2000.0) / 5
	if !almostEqual(c.Total, want) {
		t.Errorf("expected capital %f, got %f", want, c.Total)
	}
}

func TestAggregateCapital_LongAndShortAveragedIndependently(t *testing.T) {
	inst := testInstrument()
	long := longLot(inst, 10, 100, day(1), time.Time{})
	short := &Lot{
		Instrument: inst,
		Direction:  Short,
		Quantity:   5,
		Price:      105,
		FXRate:     1,
		Multiplier: 1,
		// Short side only exists on day 3.
		OpenTime:  day(3),
		CloseTime: day(3),
	}

	c := aggregateCapital([]*Lot{long, short}, day(1), day(3), 1)
	if !almostEqual(c.Long, 1000) {
		t.Errorf("expected long 1000, got %f", c.Long)
	}
	if !almostEqual(c.Short, 525) {
		t.Errorf("expected short 525 (averaged over its single nonzero day), got %f", c.Short)
	}
	if !almostEqual(c.Total, 1525) || !almostEqual(c.Net, 475) {
		t.Errorf("expected total 1525 net 475, got %f / %f", c.Total, c.Net)
	}
}

func TestAggregateCapital_FXAndMultiplierInNotional(t *testing.T) {
	opt := &domain.Instrument{ID: 3, Symbol: "OPT", AssetClass: domain.AssetClassOption, Multiplier: 100, Currency: "USD"}
	lot := &Lot{
		Instrument: opt,
		Direction:  Long,
		Quantity:   10,
		Price:      5,
		FXRate:     2,
		Multiplier: 100,
		OpenTime:   day(1),
	}

	c := aggregateCapital([]*Lot{lot}, day(1), day(1), 0.1)
	// 10 * 5 * 2 * 100, scaled by the options capital multiplier.
	if !almostEqual(c.Long, 10*5*2*100*0.1) {
		t.Errorf("expected option capital scaled to %f, got %f", 10*5*2*100*0.1, c.Long)
	}
}

func TestAggregateCapital_CarriedLotCountsOnItsClosingDay(t *testing.T) {
	inst := testInstrument()
	lots := []*Lot{longLot(inst, 10, 100, day(1), day(3).Add(15*time.Hour))}

	c := aggregateCapital(lots, day(1), day(5), 1)
	// Nonzero on days 1,2,3 at 1000 each.
	if !almostEqual(c.Long, 1000) {
		t.Errorf("expected long 1000, got %f", c.Long)
	}
}

func TestAggregateCapital_WindowEndBeforeStart(t *testing.T) {
	inst := testInstrument()
	lots := []*Lot{longLot(inst, 10, 100, day(1), time.Time{})}

	c := aggregateCapital(lots, day(5), day(1), 1)
	if c.Total != 0 {
		t.Errorf("expected zero capital for inverted window, got %f", c.Total)
	}
}

func TestAggregateCapital_TimeOfDayDiscarded(t *testing.T) {
	inst := testInstrument()
	// Opened late on day 2; the window covers only the middle of day 2.
	lots := []*Lot{longLot(inst, 10, 100, day(2).Add(23*time.Hour), time.Time{})}

	c := aggregateCapital(lots, day(2).Add(6*time.Hour), day(2).Add(7*time.Hour), 1)
	if !almostEqual(c.Long, 1000) {
		t.Errorf("expected 1000 for same-calendar-day window, got %f", c.Long)
	}
}
