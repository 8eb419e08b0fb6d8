package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

func sampleTrade(id string) *domain.Trade {
	inst := &domain.Instrument{ID: 1, Symbol: "TEST", AssetClass: domain.AssetClassStock, Multiplier: 1, Currency: "USD"}
	return &domain.Trade{
		ID:      id,
		Account: "U1234567",
		Open:    true,
		Orders: []*domain.Order{
			{ID: id + "-o1", Instrument: inst, InstrumentID: 1, Quantity: 10, Price: 100, FXRateToBase: 1,
				TradeTime: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestTradeStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()

	if err := s.Insert(ctx, sampleTrade("t1")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := s.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != "t1" || len(got.Orders) != 1 {
		t.Errorf("unexpected trade: %+v", got)
	}
}

func TestTradeStore_InsertDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()

	if err := s.Insert(ctx, sampleTrade("t1")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.Insert(ctx, sampleTrade("t1")); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestTradeStore_InsertAssignsMissingIDs(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()

	tr := sampleTrade("")
	tr.Orders[0].ID = ""
	if err := s.Insert(ctx, tr); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if tr.ID == "" || tr.Orders[0].ID == "" {
		t.Fatalf("expected deterministic IDs assigned, got trade=%q order=%q", tr.ID, tr.Orders[0].ID)
	}

	// Re-importing the same statement collides instead of duplicating.
	again := sampleTrade("")
	again.Orders[0].ID = ""
	if err := s.Insert(ctx, again); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey on re-import, got %v", err)
	}
}

func TestTradeStore_GetMissing(t *testing.T) {
	s := NewTradeStore()
	if _, err := s.GetByID(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTradeStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()
	if err := s.Insert(ctx, sampleTrade("t1")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	first, _ := s.GetByID(ctx, "t1")
	first.Orders[0].Quantity = 999
	first.CapitalTotal = 999

	second, _ := s.GetByID(ctx, "t1")
	if second.Orders[0].Quantity == 999 || second.CapitalTotal == 999 {
		t.Error("store must not alias returned trades")
	}
}

func TestTradeStore_GetReturnsCopiedInstruments(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()
	if err := s.Insert(ctx, sampleTrade("t1")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	first, _ := s.GetByID(ctx, "t1")
	first.Orders[0].Instrument.Multiplier = 999
	first.Orders[0].Instrument.Symbol = "MUTATED"

	second, _ := s.GetByID(ctx, "t1")
	inst := second.Orders[0].Instrument
	if inst.Multiplier == 999 || inst.Symbol == "MUTATED" {
		t.Error("store must not alias instrument metadata through returned trades")
	}
}

func TestTradeStore_UpdateStatsTouchesOnlyDerivedFields(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()
	if err := s.Insert(ctx, sampleTrade("t1")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	updated := sampleTrade("t1")
	updated.Orders = nil // derived-field update must not need events
	updated.CapitalTotal = 1000
	updated.ResultDollars = 50
	updated.Open = false
	updated.DateClosed = time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC)

	if err := s.UpdateStats(ctx, updated); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := s.GetByID(ctx, "t1")
	if got.CapitalTotal != 1000 || got.ResultDollars != 50 || got.Open {
		t.Errorf("derived fields not updated: %+v", got)
	}
	if len(got.Orders) != 1 {
		t.Error("event rows must survive a stats update")
	}
}

func TestTradeStore_UpdateStatsMissing(t *testing.T) {
	s := NewTradeStore()
	err := s.UpdateStats(context.Background(), sampleTrade("nope"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTradeStore_GetOpen(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()

	open := sampleTrade("t1")
	closed := sampleTrade("t2")
	closed.Open = false

	if err := s.Insert(ctx, open); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(ctx, closed); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetOpen(ctx)
	if err != nil {
		t.Fatalf("get open failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("expected only t1 open, got %+v", got)
	}
}
