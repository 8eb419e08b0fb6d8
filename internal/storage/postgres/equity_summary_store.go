package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// EquitySummaryStore implements storage.EquitySummaryStore using
// PostgreSQL. Rows are append-only; duplicate dates are tolerated.
type EquitySummaryStore struct {
	pool *Pool
}

// NewEquitySummaryStore creates a new EquitySummaryStore.
func NewEquitySummaryStore(pool *Pool) *EquitySummaryStore {
	return &EquitySummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EquitySummaryStore = (*EquitySummaryStore)(nil)

// InsertBulk appends snapshots atomically.
func (s *EquitySummaryStore) InsertBulk(ctx context.Context, summaries []*domain.EquitySummary) error {
	if len(summaries) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, es := range summaries {
		_, err := tx.Exec(ctx,
			`INSERT INTO equity_summaries (date, total) VALUES ($1, $2)`,
			es.Date, es.Total,
		)
		if err != nil {
			return fmt.Errorf("insert equity summary: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves every snapshot ordered by date.
func (s *EquitySummaryStore) GetAll(ctx context.Context) ([]*domain.EquitySummary, error) {
	return s.query(ctx, `
		SELECT date, total FROM equity_summaries ORDER BY date ASC, id ASC
	`)
}

// GetByDateRange retrieves snapshots within [start, end] inclusive,
// ordered by date.
func (s *EquitySummaryStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.EquitySummary, error) {
	return s.query(ctx, `
		SELECT date, total FROM equity_summaries
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC, id ASC
	`, start, end)
}

func (s *EquitySummaryStore) query(ctx context.Context, query string, args ...any) ([]*domain.EquitySummary, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query equity summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.EquitySummary
	for rows.Next() {
		var es domain.EquitySummary
		if err := rows.Scan(&es.Date, &es.Total); err != nil {
			return nil, fmt.Errorf("scan equity summary row: %w", err)
		}
		summaries = append(summaries, &es)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equity summary rows: %w", err)
	}

	return summaries, nil
}
