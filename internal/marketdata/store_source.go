package marketdata

import (
	"context"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// StoreSource is a Source backed by a storage.BarStore, serving whatever
// bars have been recorded for the instrument.
type StoreSource struct {
	bars storage.BarStore
}

// NewStoreSource creates a Source over the given bar store.
func NewStoreSource(bars storage.BarStore) *StoreSource {
	return &StoreSource{bars: bars}
}

// Compile-time interface check.
var _ Source = (*StoreSource)(nil)

// GetData returns the stored bars for the instrument within [start, end].
// The stored granularity is daily; other bar sizes are served from the
// same rows.
func (s *StoreSource) GetData(ctx context.Context, inst *domain.Instrument, start, end time.Time, _ domain.BarSize) ([]*domain.OHLCBar, error) {
	if inst == nil {
		return nil, ErrNoData
	}

	bars, err := s.bars.GetByDateRange(ctx, inst.ID, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}
