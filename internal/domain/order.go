package domain

import "time"

// Order is a single execution belonging to exactly one trade.
//
// Quantity carries the direction: positive means bought, negative means
// sold. The BuySell label is broker-supplied display metadata and must not
// be used for any calculation; imports exist where the two disagree.
type Order struct {
	ID           string
	InstrumentID int
	Instrument   *Instrument

	Quantity     float64 // signed; the authoritative direction
	Price        float64 // execution price in the order's currency
	FXRateToBase float64 // conversion rate from order currency to base currency
	Commission   float64 // in the order's currency, typically negative
	Tax          float64 // in the order's currency

	BuySell   string // "BUY" or "SELL"; descriptive only
	Currency  string
	TradeTime time.Time
}

// InstrumentKey returns the instrument identity used for position
// matching, preferring the loaded Instrument over the raw foreign key.
func (o *Order) InstrumentKey() int {
	if o.Instrument != nil {
		return o.Instrument.ID
	}
	return o.InstrumentID
}

// CashTransaction is an instrument-linked cash flow such as a dividend or
// interest payment. It is never matched against lots; its FX-adjusted
// amount passes straight into realized results.
type CashTransaction struct {
	ID           string
	InstrumentID int
	Instrument   *Instrument

	Type            string // e.g. "Dividend", "Broker Interest"
	Amount          float64
	FXRateToBase    float64
	TransactionTime time.Time
}

// InstrumentKey returns the instrument identity used for position
// matching, preferring the loaded Instrument over the raw foreign key.
func (c *CashTransaction) InstrumentKey() int {
	if c.Instrument != nil {
		return c.Instrument.ID
	}
	return c.InstrumentID
}

// FXTransaction is a currency conversion entry. It participates in the
// trade's temporal bounds but not in the monetary statistics.
type FXTransaction struct {
	ID              string
	Amount          float64
	FXRateToBase    float64
	Currency        string
	TransactionTime time.Time
}
