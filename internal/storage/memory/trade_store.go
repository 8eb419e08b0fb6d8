package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{data: make(map[string]*domain.Trade)}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// copyTrade deep-copies a trade and its event slices so callers can never
// alias store-internal state.
func copyTrade(t *domain.Trade) *domain.Trade {
	cp := *t
	cp.Tags = append([]string(nil), t.Tags...)

	cp.Orders = make([]*domain.Order, len(t.Orders))
	for i, o := range t.Orders {
		oc := *o
		oc.Instrument = copyInstrument(o.Instrument)
		cp.Orders[i] = &oc
	}
	cp.CashTransactions = make([]*domain.CashTransaction, len(t.CashTransactions))
	for i, ct := range t.CashTransactions {
		cc := *ct
		cc.Instrument = copyInstrument(ct.Instrument)
		cp.CashTransactions[i] = &cc
	}
	cp.FXTransactions = make([]*domain.FXTransaction, len(t.FXTransactions))
	for i, fx := range t.FXTransactions {
		fc := *fx
		cp.FXTransactions[i] = &fc
	}
	return &cp
}

func copyInstrument(i *domain.Instrument) *domain.Instrument {
	if i == nil {
		return nil
	}
	ic := *i
	return &ic
}

// Insert adds a new trade with its events, assigning deterministic IDs to
// any trade or event that arrives without one. Returns ErrDuplicateKey if
// the trade ID exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) error {
	storage.EnsureEventIDs(t)
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[t.ID] = copyTrade(t)
	return nil
}

// GetByID retrieves a trade with all its events loaded. Returns
// ErrNotFound if not exists.
func (s *TradeStore) GetByID(_ context.Context, id string) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyTrade(t), nil
}

// GetAll retrieves every trade, ordered by ID ASC.
func (s *TradeStore) GetAll(_ context.Context) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Trade, 0, len(s.data))
	for _, t := range s.data {
		result = append(result, copyTrade(t))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetOpen retrieves trades whose Open flag is set, ordered by ID ASC.
func (s *TradeStore) GetOpen(_ context.Context) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.Open {
			result = append(result, copyTrade(t))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// UpdateStats overwrites the trade's derived fields; the stored event rows
// stay untouched. Returns ErrNotFound if the trade does not exist.
func (s *TradeStore) UpdateStats(_ context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.data[t.ID]
	if !exists {
		return storage.ErrNotFound
	}

	stored.DateOpened = t.DateOpened
	stored.DateClosed = t.DateClosed
	stored.Open = t.Open

	stored.CapitalTotal = t.CapitalTotal
	stored.CapitalLong = t.CapitalLong
	stored.CapitalShort = t.CapitalShort
	stored.CapitalNet = t.CapitalNet

	stored.ResultDollars = t.ResultDollars
	stored.ResultDollarsLong = t.ResultDollarsLong
	stored.ResultDollarsShort = t.ResultDollarsShort
	stored.ResultPct = t.ResultPct
	stored.ResultPctLong = t.ResultPctLong
	stored.ResultPctShort = t.ResultPctShort

	stored.UnrealizedResultDollars = t.UnrealizedResultDollars
	stored.UnrealizedResultDollarsLong = t.UnrealizedResultDollarsLong
	stored.UnrealizedResultDollarsShort = t.UnrealizedResultDollarsShort
	stored.UnrealizedResultPct = t.UnrealizedResultPct
	stored.UnrealizedResultPctLong = t.UnrealizedResultPctLong
	stored.UnrealizedResultPctShort = t.UnrealizedResultPctShort

	stored.Commissions = t.Commissions
	stored.Taxes = t.Taxes
	stored.TotalResultDollars = t.TotalResultDollars
	stored.PriceDataIncomplete = t.PriceDataIncomplete
	return nil
}
