package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// BarStore is an in-memory implementation of storage.BarStore.
type BarStore struct {
	mu   sync.RWMutex
	data map[int][]*domain.OHLCBar
}

// NewBarStore creates a new in-memory bar store.
func NewBarStore() *BarStore {
	return &BarStore{data: make(map[int][]*domain.OHLCBar)}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

// InsertBulk appends bars for an instrument.
func (s *BarStore) InsertBulk(_ context.Context, instrumentID int, bars []*domain.OHLCBar) error {
	if instrumentID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bars {
		if b == nil {
			return storage.ErrInvalidInput
		}
		cp := *b
		s.data[instrumentID] = append(s.data[instrumentID], &cp)
	}
	return nil
}

// GetByInstrument retrieves all bars for an instrument, ordered by date ASC.
func (s *BarStore) GetByInstrument(_ context.Context, instrumentID int) ([]*domain.OHLCBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bars := s.data[instrumentID]
	result := make([]*domain.OHLCBar, 0, len(bars))
	for _, b := range bars {
		cp := *b
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DT.Before(result[j].DT) })
	return result, nil
}

// GetByDateRange retrieves bars within [start, end] inclusive, ordered by
// date ASC.
func (s *BarStore) GetByDateRange(_ context.Context, instrumentID int, start, end time.Time) ([]*domain.OHLCBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.OHLCBar
	for _, b := range s.data[instrumentID] {
		if !b.DT.Before(start) && !b.DT.After(end) {
			cp := *b
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DT.Before(result[j].DT) })
	return result, nil
}
