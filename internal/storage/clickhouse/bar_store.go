package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// BarStore implements storage.BarStore using ClickHouse. OHLC bars are
// append-only timeseries data; MergeTree does not enforce uniqueness, so
// callers own duplicate handling.
type BarStore struct {
	conn *Conn
}

// NewBarStore creates a new BarStore.
func NewBarStore(conn *Conn) *BarStore {
	return &BarStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

// InsertBulk appends bars for an instrument in one batch.
func (s *BarStore) InsertBulk(ctx context.Context, instrumentID int, bars []*domain.OHLCBar) error {
	if len(bars) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO ohlc_bars (
			instrument_id, dt, open, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bars {
		err := batch.Append(
			int64(instrumentID), b.DT, b.Open, b.High, b.Low, b.Close, b.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByInstrument retrieves all bars for an instrument, ordered by time
// ASC.
func (s *BarStore) GetByInstrument(ctx context.Context, instrumentID int) ([]*domain.OHLCBar, error) {
	query := `
		SELECT dt, open, high, low, close, volume
		FROM ohlc_bars
		WHERE instrument_id = ?
		ORDER BY dt ASC
	`

	rows, err := s.conn.Query(ctx, query, int64(instrumentID))
	if err != nil {
		return nil, fmt.Errorf("query bars by instrument: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// GetByDateRange retrieves bars within [start, end] inclusive, ordered by
// time ASC.
func (s *BarStore) GetByDateRange(ctx context.Context, instrumentID int, start, end time.Time) ([]*domain.OHLCBar, error) {
	query := `
		SELECT dt, open, high, low, close, volume
		FROM ohlc_bars
		WHERE instrument_id = ? AND dt >= ? AND dt <= ?
		ORDER BY dt ASC
	`

	rows, err := s.conn.Query(ctx, query, int64(instrumentID), start, end)
	if err != nil {
		return nil, fmt.Errorf("query bars by date range: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// chRows abstracts driver rows for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanBars(rows chRows) ([]*domain.OHLCBar, error) {
	var bars []*domain.OHLCBar

	for rows.Next() {
		var b domain.OHLCBar
		err := rows.Scan(&b.DT, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume)
		if err != nil {
			return nil, fmt.Errorf("scan bar row: %w", err)
		}
		bars = append(bars, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bar rows: %w", err)
	}

	return bars, nil
}
