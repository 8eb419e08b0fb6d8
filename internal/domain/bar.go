package domain

import "time"

// BarSize is the granularity of an OHLC bar series.
type BarSize string

// Supported bar sizes.
const (
	BarSize1Minute BarSize = "1m"
	BarSize1Hour   BarSize = "1h"
	BarSize1Day    BarSize = "1d"
)

// OHLCBar is one bar of market data keyed by date.
type OHLCBar struct {
	DT     time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
