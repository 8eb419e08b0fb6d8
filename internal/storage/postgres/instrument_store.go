package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// InstrumentStore implements storage.InstrumentStore using PostgreSQL.
type InstrumentStore struct {
	pool *Pool
}

// NewInstrumentStore creates a new InstrumentStore.
func NewInstrumentStore(pool *Pool) *InstrumentStore {
	return &InstrumentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.InstrumentStore = (*InstrumentStore)(nil)

// Insert adds a new instrument. Returns ErrDuplicateKey if the id or
// symbol already exists.
func (s *InstrumentStore) Insert(ctx context.Context, inst *domain.Instrument) error {
	if inst == nil || inst.ID == 0 || inst.Symbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO instruments (id, symbol, asset_class, multiplier, currency)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		inst.ID, inst.Symbol, string(inst.AssetClass), inst.Multiplier, inst.Currency,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert instrument: %w", err)
	}
	return nil
}

// GetByID retrieves an instrument by its ID. Returns ErrNotFound if not
// exists.
func (s *InstrumentStore) GetByID(ctx context.Context, id int) (*domain.Instrument, error) {
	query := `
		SELECT id, symbol, asset_class, multiplier, currency
		FROM instruments
		WHERE id = $1
	`

	inst, err := scanInstrument(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get instrument by id: %w", err)
	}
	return inst, nil
}

// GetBySymbol retrieves an instrument by its symbol. Returns ErrNotFound
// if not exists.
func (s *InstrumentStore) GetBySymbol(ctx context.Context, symbol string) (*domain.Instrument, error) {
	query := `
		SELECT id, symbol, asset_class, multiplier, currency
		FROM instruments
		WHERE symbol = $1
	`

	inst, err := scanInstrument(s.pool.QueryRow(ctx, query, symbol))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get instrument by symbol: %w", err)
	}
	return inst, nil
}

// GetAll retrieves all instruments ordered by id.
func (s *InstrumentStore) GetAll(ctx context.Context) ([]*domain.Instrument, error) {
	query := `
		SELECT id, symbol, asset_class, multiplier, currency
		FROM instruments
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all instruments: %w", err)
	}
	defer rows.Close()

	var instruments []*domain.Instrument
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instrument row: %w", err)
		}
		instruments = append(instruments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instrument rows: %w", err)
	}

	return instruments, nil
}

func scanInstrument(row pgx.Row) (*domain.Instrument, error) {
	var inst domain.Instrument
	var assetClass string

	err := row.Scan(&inst.ID, &inst.Symbol, &assetClass, &inst.Multiplier, &inst.Currency)
	if err != nil {
		return nil, err
	}

	inst.AssetClass = domain.AssetClass(assetClass)
	return &inst, nil
}
