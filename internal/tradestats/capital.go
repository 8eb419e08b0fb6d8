package tradestats

import (
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
)

// Capital is the day-averaged capital usage of a trade, decomposed by
// direction. Total = Long + Short, Net = Long - Short.
type Capital struct {
	Long  float64
	Short float64
	Total float64
	Net   float64
}

// dayOf discards time-of-day, normalizing to midnight UTC for calendar
// comparisons.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// aggregateCapital partitions [from, to] into calendar days and, for each
// day and direction, sums the opening notional of every lot that existed
// at any instant of that day. A lot opened and closed within one day still
// counts: it was capital at risk for that day, and multiple same-day lots
// stack because each is a distinct commitment. The per-direction result is
// the mean over days with nonzero capital, which normalizes multi-day
// holds against instantaneous round-trips.
//
// Option positions' notional is scaled by optionsMultiplier when measuring
// capital usage only; realized and unrealized results always use the full
// contract multiplier.
func aggregateCapital(lots []*Lot, from, to time.Time, optionsMultiplier float64) Capital {
	if len(lots) == 0 || to.Before(from) {
		return Capital{}
	}

	var longSum, shortSum float64
	var longDays, shortDays int

	last := dayOf(to)
	for d := dayOf(from); !d.After(last); d = d.AddDate(0, 0, 1) {
		var long, short float64
		for _, lot := range lots {
			if !lot.existsOn(d) {
				continue
			}
			n := lot.Notional()
			if lot.Instrument != nil && lot.Instrument.AssetClass == domain.AssetClassOption {
				n *= optionsMultiplier
			}
			if lot.Direction == Short {
				short += n
			} else {
				long += n
			}
		}
		if long != 0 {
			longSum += long
			longDays++
		}
		if short != 0 {
			shortSum += short
			shortDays++
		}
	}

	var c Capital
	if longDays > 0 {
		c.Long = longSum / float64(longDays)
	}
	if shortDays > 0 {
		c.Short = shortSum / float64(shortDays)
	}
	c.Total = c.Long + c.Short
	c.Net = c.Long - c.Short
	return c
}
