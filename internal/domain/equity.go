package domain

import "time"

// EquitySummary is a dated snapshot of total account equity, one per day.
// Duplicate rows for the same date are tolerated; only the set of dates
// carries information for the stats engine.
type EquitySummary struct {
	Date  time.Time
	Total float64
}
