package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// EquitySummaryStore is an in-memory implementation of
// storage.EquitySummaryStore. It is append-only and keeps duplicate dates
// as delivered; readers only care about the set of dates.
type EquitySummaryStore struct {
	mu   sync.RWMutex
	data []*domain.EquitySummary
}

// NewEquitySummaryStore creates a new in-memory equity summary store.
func NewEquitySummaryStore() *EquitySummaryStore {
	return &EquitySummaryStore{}
}

// Compile-time interface check.
var _ storage.EquitySummaryStore = (*EquitySummaryStore)(nil)

// InsertBulk appends snapshots.
func (s *EquitySummaryStore) InsertBulk(_ context.Context, summaries []*domain.EquitySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, es := range summaries {
		if es == nil {
			return storage.ErrInvalidInput
		}
		cp := *es
		s.data = append(s.data, &cp)
	}
	return nil
}

// GetAll retrieves every snapshot, ordered by date ASC.
func (s *EquitySummaryStore) GetAll(_ context.Context) ([]*domain.EquitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.EquitySummary, 0, len(s.data))
	for _, es := range s.data {
		cp := *es
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// GetByDateRange retrieves snapshots within [start, end] inclusive,
// ordered by date ASC.
func (s *EquitySummaryStore) GetByDateRange(_ context.Context, start, end time.Time) ([]*domain.EquitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EquitySummary
	for _, es := range s.data {
		if !es.Date.Before(start) && !es.Date.After(end) {
			cp := *es
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}
