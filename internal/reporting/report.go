package reporting

import "time"

// Report is a point-in-time performance summary over the stored trades.
type Report struct {
	GeneratedAt time.Time

	Summary AccountSummary

	// Trades are sorted by opening date, then trade ID.
	Trades []TradeRow

	Quality QualitySection
}

// AccountSummary aggregates across all trades plus the equity snapshots.
type AccountSummary struct {
	TotalTrades  int
	OpenTrades   int
	ClosedTrades int

	WinningTrades int
	LosingTrades  int
	WinRate       float64 // over closed trades; 0 when none closed

	TotalRealized      float64
	TotalRealizedLong  float64
	TotalRealizedShort float64
	TotalUnrealized    float64
	TotalCommissions   float64
	TotalTaxes         float64
	NetResult          float64

	DateRangeStart time.Time
	DateRangeEnd   time.Time
	EquityStart    float64
	EquityEnd      float64
}

// TradeRow is one trade's line in the report.
type TradeRow struct {
	TradeID    string
	Name       string
	Open       bool
	DateOpened time.Time
	DateClosed time.Time

	CapitalTotal            float64
	ResultDollars           float64
	ResultPct               float64
	UnrealizedResultDollars float64
	Commissions             float64
	TotalResultDollars      float64

	PriceDataIncomplete bool
}

// QualitySection lists trades whose figures are known to be understated.
type QualitySection struct {
	// IncompletePriceData holds trade IDs flagged during recomputation.
	IncompletePriceData []string
}
