package tradestats

import (
	"github.com/mounirlabaied/QPAS/internal/domain"
)

// resultSet accumulates the monetary statistics for one trade before they
// are written back onto it.
type resultSet struct {
	realizedLong  float64
	realizedShort float64

	unrealizedLong  float64
	unrealizedShort float64

	commissions float64
	taxes       float64

	priceDataIncomplete bool
}

// addClosingEvents accumulates realized P&L, bucketed by the closed lot's
// own direction.
func (r *resultSet) addClosingEvents(events []ClosingEvent) {
	for _, e := range events {
		pnl := e.RealizedPnL()
		if e.Direction == Short {
			r.realizedShort += pnl
		} else {
			r.realizedLong += pnl
		}
	}
}

// addCashTransaction passes the FX-adjusted amount through to realized
// results. The bucket follows the net position's sign on the instrument at
// the transaction's timestamp; a flat position buckets into Long by
// convention.
func (r *resultSet) addCashTransaction(ct *domain.CashTransaction, netPosition float64) {
	amount := ct.Amount * ct.FXRateToBase
	if netPosition < 0 {
		r.realizedShort += amount
	} else {
		r.realizedLong += amount
	}
}

// addOrderCosts accumulates the order's commission and tax in base
// currency.
func (r *resultSet) addOrderCosts(o *domain.Order) {
	r.commissions += o.Commission * o.FXRateToBase
	r.taxes += o.Tax * o.FXRateToBase
}

// markOpenLot accumulates mark-to-market value minus cost basis for a lot
// still open at the end of processing. When no mark price is available the
// lot is excluded from the sums and the incomplete flag is raised, so a
// missing price never masquerades as a zero result.
func (r *resultSet) markOpenLot(lot *Lot, mark float64, haveMark bool) {
	if !haveMark {
		r.priceDataIncomplete = true
		return
	}
	delta := lot.Remaining() * (mark - lot.Price*lot.FXRate) * lot.Multiplier
	if lot.Direction == Short {
		r.unrealizedShort += -delta
	} else {
		r.unrealizedLong += delta
	}
}

// pctOrZero divides, defining a zero denominator as zero rather than an
// error.
func pctOrZero(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}

// writeTo populates every derived monetary field on the trade.
func (r *resultSet) writeTo(t *domain.Trade, capital Capital) {
	t.CapitalLong = capital.Long
	t.CapitalShort = capital.Short
	t.CapitalTotal = capital.Total
	t.CapitalNet = capital.Net

	t.ResultDollarsLong = r.realizedLong
	t.ResultDollarsShort = r.realizedShort
	t.ResultDollars = r.realizedLong + r.realizedShort

	t.UnrealizedResultDollarsLong = r.unrealizedLong
	t.UnrealizedResultDollarsShort = r.unrealizedShort
	t.UnrealizedResultDollars = r.unrealizedLong + r.unrealizedShort

	t.ResultPct = pctOrZero(t.ResultDollars, capital.Total)
	t.ResultPctLong = pctOrZero(t.ResultDollarsLong, capital.Long)
	t.ResultPctShort = pctOrZero(t.ResultDollarsShort, capital.Short)

	t.UnrealizedResultPct = pctOrZero(t.UnrealizedResultDollars, capital.Total)
	t.UnrealizedResultPctLong = pctOrZero(t.UnrealizedResultDollarsLong, capital.Long)
	t.UnrealizedResultPctShort = pctOrZero(t.UnrealizedResultDollarsShort, capital.Short)

	t.Commissions = r.commissions
	t.Taxes = r.taxes
	t.TotalResultDollars = r.commissions + r.taxes + t.ResultDollars + t.UnrealizedResultDollars
	t.PriceDataIncomplete = r.priceDataIncomplete
}
