package lookup

import (
	"errors"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
)

// ErrNoBarData is returned when a bar slice holds no usable data.
var ErrNoBarData = errors.New("no bar data available")

// LatestClose returns the close of the most recent bar. Bars are expected
// in ascending date order but gaps are fine; only the last bar matters.
// Returns ErrNoBarData if the slice is empty.
func LatestClose(bars []*domain.OHLCBar) (float64, error) {
	if len(bars) == 0 {
		return 0, ErrNoBarData
	}
	latest := bars[0]
	for _, b := range bars[1:] {
		if b.DT.After(latest.DT) {
			latest = b
		}
	}
	return latest.Close, nil
}

// CloseAt returns the close of the bar at or before the target date. If no
// bar precedes the target, the first available close is returned. Returns
// ErrNoBarData if the slice is empty.
func CloseAt(target time.Time, bars []*domain.OHLCBar) (float64, error) {
	if len(bars) == 0 {
		return 0, ErrNoBarData
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if !bars[i].DT.After(target) {
			return bars[i].Close, nil
		}
	}
	return bars[0].Close, nil
}
