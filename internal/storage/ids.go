package storage

import (
	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/idhash"
)

// EnsureEventIDs fills any empty trade or event identifiers with
// deterministic hashes derived from the event contents. Re-importing the
// same broker statement then collides on ErrDuplicateKey instead of
// creating duplicate rows. Identifiers already present are kept; the
// trade is modified in place so the caller sees the assigned IDs.
func EnsureEventIDs(t *domain.Trade) {
	if t == nil {
		return
	}

	if t.ID == "" {
		if first := earliestOrder(t.Orders); first != nil {
			t.ID = idhash.ComputeTradeID(t.Account, first.InstrumentKey(), first.TradeTime)
		}
	}
	for _, o := range t.Orders {
		if o.ID == "" {
			o.ID = idhash.ComputeOrderID(t.Account, o.InstrumentKey(), o.TradeTime, o.Quantity, o.Price)
		}
	}
	for _, c := range t.CashTransactions {
		if c.ID == "" {
			c.ID = idhash.ComputeCashTxID(t.Account, c.InstrumentKey(), c.Type, c.TransactionTime, c.Amount)
		}
	}
	for _, fx := range t.FXTransactions {
		if fx.ID == "" {
			fx.ID = idhash.ComputeFXTxID(t.Account, fx.Currency, fx.TransactionTime, fx.Amount)
		}
	}
}

func earliestOrder(orders []*domain.Order) *domain.Order {
	var first *domain.Order
	for _, o := range orders {
		if first == nil || o.TradeTime.Before(first.TradeTime) {
			first = o
		}
	}
	return first
}
