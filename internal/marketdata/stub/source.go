// Package stub provides an in-memory marketdata.Source for tests and
// fixtures.
package stub

import (
	"context"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/marketdata"
)

// Source serves canned bars. Instruments present in Bars return those
// bars filtered to the requested range; otherwise, if FlatPrice is set, a
// flat daily series at that price is generated for the range; otherwise
// marketdata.ErrNoData.
type Source struct {
	Bars      map[int][]*domain.OHLCBar
	FlatPrice float64

	// Err, when set, is returned for every request. Used to exercise
	// fetch-failure fallbacks.
	Err error
}

// NewSource creates an empty stub source.
func NewSource() *Source {
	return &Source{Bars: make(map[int][]*domain.OHLCBar)}
}

// NewFlatSource creates a stub that returns a constant daily close for
// every instrument.
func NewFlatSource(price float64) *Source {
	return &Source{Bars: make(map[int][]*domain.OHLCBar), FlatPrice: price}
}

// GetData implements marketdata.Source.
func (s *Source) GetData(_ context.Context, instrument *domain.Instrument, start, end time.Time, _ domain.BarSize) ([]*domain.OHLCBar, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	if bars, ok := s.Bars[instrument.ID]; ok {
		var out []*domain.OHLCBar
		for _, b := range bars {
			if !b.DT.Before(start) && !b.DT.After(end) {
				out = append(out, b)
			}
		}
		if len(out) == 0 {
			return nil, marketdata.ErrNoData
		}
		return out, nil
	}

	if s.FlatPrice == 0 {
		return nil, marketdata.ErrNoData
	}

	var out []*domain.OHLCBar
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, &domain.OHLCBar{
			DT:    d,
			Open:  s.FlatPrice,
			High:  s.FlatPrice,
			Low:   s.FlatPrice,
			Close: s.FlatPrice,
		})
	}
	return out, nil
}
