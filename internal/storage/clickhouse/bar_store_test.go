package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mounirlabaied/QPAS/internal/domain"
)

func testBar(d int, c float64) *domain.OHLCBar {
	return &domain.OHLCBar{
		DT:     time.Date(2000, 1, d, 0, 0, 0, 0, time.UTC),
		Open:   c - 1,
		High:   c + 1,
		Low:    c - 2,
		Close:  c,
		Volume: 1000,
	}
}

func TestBarStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, 1, []*domain.OHLCBar{
		testBar(2, 101),
		testBar(1, 100),
	})
	require.NoError(t, err)

	got, err := store.GetByInstrument(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.True(t, got[0].DT.Before(got[1].DT), "bars must come back time-sorted")
	assert.Equal(t, 100.0, got[0].Close)
	assert.Equal(t, 101.0, got[1].Close)
	assert.Equal(t, 99.0, got[0].Open)
	assert.Equal(t, 1000.0, got[0].Volume)
}

func TestBarStore_InstrumentsIsolated(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, 1, []*domain.OHLCBar{testBar(1, 100)}))
	require.NoError(t, store.InsertBulk(ctx, 2, []*domain.OHLCBar{testBar(1, 200)}))

	got, err := store.GetByInstrument(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].Close)
}

func TestBarStore_GetByDateRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, 1, []*domain.OHLCBar{
		testBar(1, 100),
		testBar(5, 105),
		testBar(10, 110),
	})
	require.NoError(t, err)

	got, err := store.GetByDateRange(ctx, 1,
		time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 1, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 105.0, got[0].Close)
}

func TestBarStore_UnknownInstrumentEmpty(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	got, err := store.GetByInstrument(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBarStore_EmptyBulkIsNoop(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	require.NoError(t, store.InsertBulk(context.Background(), 1, nil))
}
