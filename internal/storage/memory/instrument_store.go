package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// InstrumentStore is an in-memory implementation of storage.InstrumentStore.
type InstrumentStore struct {
	mu   sync.RWMutex
	data map[int]*domain.Instrument
}

// NewInstrumentStore creates a new in-memory instrument store.
func NewInstrumentStore() *InstrumentStore {
	return &InstrumentStore{data: make(map[int]*domain.Instrument)}
}

// Compile-time interface check.
var _ storage.InstrumentStore = (*InstrumentStore)(nil)

// Insert adds a new instrument. Returns ErrDuplicateKey if the ID exists.
func (s *InstrumentStore) Insert(_ context.Context, inst *domain.Instrument) error {
	if inst == nil || inst.ID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[inst.ID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *inst
	s.data[inst.ID] = &cp
	return nil
}

// GetByID retrieves an instrument. Returns ErrNotFound if not exists.
func (s *InstrumentStore) GetByID(_ context.Context, id int) (*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *inst
	return &cp, nil
}

// GetBySymbol retrieves an instrument by symbol. Returns ErrNotFound if
// not exists.
func (s *InstrumentStore) GetBySymbol(_ context.Context, symbol string) (*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inst := range s.data {
		if inst.Symbol == symbol {
			cp := *inst
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetAll retrieves every instrument, ordered by ID ASC.
func (s *InstrumentStore) GetAll(_ context.Context) ([]*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Instrument, 0, len(s.data))
	for _, inst := range s.data {
		cp := *inst
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
