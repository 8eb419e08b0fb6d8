package storage

import (
	"context"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
)

// InstrumentStore provides access to instrument metadata.
type InstrumentStore interface {
	// Insert adds a new instrument. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, inst *domain.Instrument) error

	// GetByID retrieves an instrument. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int) (*domain.Instrument, error)

	// GetBySymbol retrieves an instrument by symbol. Returns ErrNotFound if not exists.
	GetBySymbol(ctx context.Context, symbol string) (*domain.Instrument, error)

	// GetAll retrieves every instrument.
	GetAll(ctx context.Context) ([]*domain.Instrument, error)
}

// TradeStore provides access to trades together with their owned events
// (orders, cash transactions, FX transactions).
type TradeStore interface {
	// Insert adds a new trade with its events. Returns ErrDuplicateKey if
	// the trade ID exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// GetByID retrieves a trade with all its events loaded. Returns
	// ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Trade, error)

	// GetAll retrieves every trade with events loaded.
	GetAll(ctx context.Context) ([]*domain.Trade, error)

	// GetOpen retrieves trades whose Open flag is set.
	GetOpen(ctx context.Context) ([]*domain.Trade, error)

	// UpdateStats overwrites the trade's derived fields only; the event
	// rows are immutable. Returns ErrNotFound if the trade does not exist.
	UpdateStats(ctx context.Context, t *domain.Trade) error
}

// EquitySummaryStore provides access to daily account equity snapshots.
// Duplicate rows for one date are tolerated; readers must not assume
// uniqueness.
type EquitySummaryStore interface {
	// InsertBulk appends snapshots.
	InsertBulk(ctx context.Context, summaries []*domain.EquitySummary) error

	// GetAll retrieves every snapshot, ordered by date ASC.
	GetAll(ctx context.Context) ([]*domain.EquitySummary, error)

	// GetByDateRange retrieves snapshots within [start, end] inclusive,
	// ordered by date ASC.
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.EquitySummary, error)
}

// BarStore provides access to stored OHLC bars.
type BarStore interface {
	// InsertBulk appends bars for an instrument.
	InsertBulk(ctx context.Context, instrumentID int, bars []*domain.OHLCBar) error

	// GetByInstrument retrieves all bars for an instrument, ordered by date ASC.
	GetByInstrument(ctx context.Context, instrumentID int) ([]*domain.OHLCBar, error)

	// GetByDateRange retrieves bars within [start, end] inclusive, ordered
	// by date ASC.
	GetByDateRange(ctx context.Context, instrumentID int, start, end time.Time) ([]*domain.OHLCBar, error)
}
