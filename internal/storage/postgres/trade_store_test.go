package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

func insertTestInstrument(t *testing.T, pool *Pool) *domain.Instrument {
	t.Helper()
	inst := &domain.Instrument{
		ID:         1,
		Symbol:     "SPY",
		AssetClass: domain.AssetClassStock,
		Multiplier: 1,
		Currency:   "USD",
	}
	require.NoError(t, NewInstrumentStore(pool).Insert(context.Background(), inst))
	return inst
}

func testTrade(id string, inst *domain.Instrument) *domain.Trade {
	opened := time.Date(2000, 1, 1, 14, 30, 0, 0, time.UTC)
	return &domain.Trade{
		ID:      id,
		Name:    "SPY swing",
		Account: "U1234567",
		Tags:    []string{"swing", "equity"},
		Open:    true,
		Orders: []*domain.Order{
			{
				ID: id + "-o1", Instrument: inst, InstrumentID: inst.ID,
				Quantity: 100, Price: 100, FXRateToBase: 1,
				Commission: -1, BuySell: "BUY", Currency: "USD",
				TradeTime: opened,
			},
			{
				ID: id + "-o2", Instrument: inst, InstrumentID: inst.ID,
				Quantity: -50, Price: 105, FXRateToBase: 1,
				Commission: -1, BuySell: "SELL", Currency: "USD",
				TradeTime: opened.Add(24 * time.Hour),
			},
		},
		CashTransactions: []*domain.CashTransaction{
			{
				ID: id + "-c1", Instrument: inst, InstrumentID: inst.ID,
				Type: "Dividend", Amount: 25, FXRateToBase: 1,
				TransactionTime: opened.Add(48 * time.Hour),
			},
		},
		FXTransactions: []*domain.FXTransaction{
			{
				ID: id + "-f1", Amount: 1000, FXRateToBase: 1.2,
				Currency: "EUR", TransactionTime: opened,
			},
		},
	}
}

func TestTradeStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	inst := insertTestInstrument(t, pool)
	store := NewTradeStore(pool)
	ctx := context.Background()

	trade := testTrade("t1", inst)
	require.NoError(t, store.Insert(ctx, trade))

	got, err := store.GetByID(ctx, "t1")
	require.NoError(t, err)

	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "SPY swing", got.Name)
	assert.Equal(t, []string{"swing", "equity"}, got.Tags)
	assert.True(t, got.Open)

	require.Len(t, got.Orders, 2)
	assert.Equal(t, "t1-o1", got.Orders[0].ID)
	assert.Equal(t, 100.0, got.Orders[0].Quantity)
	require.NotNil(t, got.Orders[0].Instrument)
	assert.Equal(t, "SPY", got.Orders[0].Instrument.Symbol)
	assert.Equal(t, 1.0, got.Orders[0].Instrument.Multiplier)

	require.Len(t, got.CashTransactions, 1)
	assert.Equal(t, 25.0, got.CashTransactions[0].Amount)
	require.NotNil(t, got.CashTransactions[0].Instrument)
	assert.Equal(t, inst.ID, got.CashTransactions[0].Instrument.ID)

	require.Len(t, got.FXTransactions, 1)
	assert.Equal(t, 1.2, got.FXTransactions[0].FXRateToBase)
}

func TestTradeStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	inst := insertTestInstrument(t, pool)
	store := NewTradeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTrade("t1", inst)))

	err := store.Insert(ctx, testTrade("t1", inst))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The failed insert must not leave partial child rows behind.
	got, err := store.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, got.Orders, 2)
}

func TestTradeStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	_, err := store.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTradeStore_GetOpen(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	inst := insertTestInstrument(t, pool)
	store := NewTradeStore(pool)
	ctx := context.Background()

	open := testTrade("t1", inst)
	closed := testTrade("t2", inst)
	closed.Open = false

	require.NoError(t, store.Insert(ctx, open))
	require.NoError(t, store.Insert(ctx, closed))

	got, err := store.GetOpen(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
	assert.Len(t, got[0].Orders, 2)
}

func TestTradeStore_UpdateStats(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	inst := insertTestInstrument(t, pool)
	store := NewTradeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTrade("t1", inst)))

	updated := testTrade("t1", inst)
	updated.Orders = nil
	updated.DateOpened = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	updated.DateClosed = time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)
	updated.Open = false
	updated.CapitalTotal = 10000
	updated.CapitalLong = 10000
	updated.ResultDollars = 250
	updated.ResultDollarsLong = 250
	updated.ResultPct = 0.025
	updated.Commissions = -2
	updated.TotalResultDollars = 248
	updated.PriceDataIncomplete = true

	require.NoError(t, store.UpdateStats(ctx, updated))

	got, err := store.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, got.Open)
	assert.Equal(t, 10000.0, got.CapitalTotal)
	assert.Equal(t, 250.0, got.ResultDollars)
	assert.Equal(t, 248.0, got.TotalResultDollars)
	assert.True(t, got.PriceDataIncomplete)
	assert.True(t, got.DateClosed.Equal(updated.DateClosed))

	// Derived-field updates must leave the event rows intact.
	assert.Len(t, got.Orders, 2)
	assert.Len(t, got.CashTransactions, 1)
}

func TestTradeStore_UpdateStatsNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	err := store.UpdateStats(context.Background(), &domain.Trade{ID: "nope"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTradeStore_OpenTradeKeepsNullDateClosed(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	inst := insertTestInstrument(t, pool)
	store := NewTradeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTrade("t1", inst)))

	got, err := store.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.DateClosed.IsZero())
}
