package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL. A trade's
// events (orders, cash transactions, FX transactions) live in child
// tables and are written atomically with the trade row.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeDerivedColumns = `
	date_opened, date_closed, open,
	capital_total, capital_long, capital_short, capital_net,
	result_dollars, result_dollars_long, result_dollars_short,
	result_pct, result_pct_long, result_pct_short,
	unrealized_result_dollars, unrealized_result_dollars_long, unrealized_result_dollars_short,
	unrealized_result_pct, unrealized_result_pct_long, unrealized_result_pct_short,
	commissions, taxes, total_result_dollars, price_data_incomplete`

// Insert adds a new trade with all its events in one transaction,
// assigning deterministic IDs to any trade or event that arrives without
// one. Returns ErrDuplicateKey if the trade ID or any event ID exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	storage.EnsureEventIDs(t)
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trades (
			trade_id, name, account, tags,` + tradeDerivedColumns + `
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14,
			$15, $16, $17,
			$18, $19, $20,
			$21, $22, $23,
			$24, $25, $26, $27
		)
	`

	_, err = tx.Exec(ctx, query,
		t.ID, t.Name, t.Account, t.Tags,
		nullableTime(t.DateOpened), nullableTime(t.DateClosed), t.Open,
		t.CapitalTotal, t.CapitalLong, t.CapitalShort, t.CapitalNet,
		t.ResultDollars, t.ResultDollarsLong, t.ResultDollarsShort,
		t.ResultPct, t.ResultPctLong, t.ResultPctShort,
		t.UnrealizedResultDollars, t.UnrealizedResultDollarsLong, t.UnrealizedResultDollarsShort,
		t.UnrealizedResultPct, t.UnrealizedResultPctLong, t.UnrealizedResultPctShort,
		t.Commissions, t.Taxes, t.TotalResultDollars, t.PriceDataIncomplete,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}

	for _, o := range t.Orders {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (
				order_id, trade_id, instrument_id,
				quantity, price, fx_rate_to_base, commission, tax,
				buy_sell, currency, trade_time
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			o.ID, t.ID, o.InstrumentKey(),
			o.Quantity, o.Price, o.FXRateToBase, o.Commission, o.Tax,
			o.BuySell, o.Currency, o.TradeTime,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert order: %w", err)
		}
	}

	for _, c := range t.CashTransactions {
		var instID any
		if key := c.InstrumentKey(); key != 0 {
			instID = key
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO cash_transactions (
				tx_id, trade_id, instrument_id,
				tx_type, amount, fx_rate_to_base, transaction_time
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			c.ID, t.ID, instID,
			c.Type, c.Amount, c.FXRateToBase, c.TransactionTime,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert cash transaction: %w", err)
		}
	}

	for _, f := range t.FXTransactions {
		_, err := tx.Exec(ctx, `
			INSERT INTO fx_transactions (
				tx_id, trade_id, amount, fx_rate_to_base, currency, transaction_time
			) VALUES ($1, $2, $3, $4, $5, $6)
		`,
			f.ID, t.ID, f.Amount, f.FXRateToBase, f.Currency, f.TransactionTime,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert fx transaction: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a trade with all its events loaded. Returns
// ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, id string) (*domain.Trade, error) {
	query := `
		SELECT trade_id, name, account, tags,` + tradeDerivedColumns + `
		FROM trades
		WHERE trade_id = $1
	`

	t, err := scanTrade(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}

	if err := s.loadEvents(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetAll retrieves every trade with events loaded, ordered by trade ID.
func (s *TradeStore) GetAll(ctx context.Context) ([]*domain.Trade, error) {
	return s.getTrades(ctx, `
		SELECT trade_id, name, account, tags,`+tradeDerivedColumns+`
		FROM trades
		ORDER BY trade_id ASC
	`)
}

// GetOpen retrieves trades whose Open flag is set, ordered by trade ID.
func (s *TradeStore) GetOpen(ctx context.Context) ([]*domain.Trade, error) {
	return s.getTrades(ctx, `
		SELECT trade_id, name, account, tags,`+tradeDerivedColumns+`
		FROM trades
		WHERE open
		ORDER BY trade_id ASC
	`)
}

// UpdateStats overwrites the trade's derived fields only; the event rows
// are untouched. Returns ErrNotFound if the trade does not exist.
func (s *TradeStore) UpdateStats(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE trades SET
			date_opened = $2, date_closed = $3, open = $4,
			capital_total = $5, capital_long = $6, capital_short = $7, capital_net = $8,
			result_dollars = $9, result_dollars_long = $10, result_dollars_short = $11,
			result_pct = $12, result_pct_long = $13, result_pct_short = $14,
			unrealized_result_dollars = $15, unrealized_result_dollars_long = $16,
			unrealized_result_dollars_short = $17,
			unrealized_result_pct = $18, unrealized_result_pct_long = $19,
			unrealized_result_pct_short = $20,
			commissions = $21, taxes = $22, total_result_dollars = $23,
			price_data_incomplete = $24
		WHERE trade_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		t.ID,
		nullableTime(t.DateOpened), nullableTime(t.DateClosed), t.Open,
		t.CapitalTotal, t.CapitalLong, t.CapitalShort, t.CapitalNet,
		t.ResultDollars, t.ResultDollarsLong, t.ResultDollarsShort,
		t.ResultPct, t.ResultPctLong, t.ResultPctShort,
		t.UnrealizedResultDollars, t.UnrealizedResultDollarsLong, t.UnrealizedResultDollarsShort,
		t.UnrealizedResultPct, t.UnrealizedResultPctLong, t.UnrealizedResultPctShort,
		t.Commissions, t.Taxes, t.TotalResultDollars, t.PriceDataIncomplete,
	)
	if err != nil {
		return fmt.Errorf("update trade stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *TradeStore) getTrades(ctx context.Context, query string) ([]*domain.Trade, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	for _, t := range trades {
		if err := s.loadEvents(ctx, t); err != nil {
			return nil, err
		}
	}
	return trades, nil
}

// loadEvents attaches the trade's orders, cash transactions, and FX
// transactions, joining instruments so the engine sees full metadata.
func (s *TradeStore) loadEvents(ctx context.Context, t *domain.Trade) error {
	orderRows, err := s.pool.Query(ctx, `
		SELECT
			o.order_id, o.quantity, o.price, o.fx_rate_to_base, o.commission, o.tax,
			o.buy_sell, o.currency, o.trade_time,
			i.id, i.symbol, i.asset_class, i.multiplier, i.currency
		FROM orders o
		JOIN instruments i ON i.id = o.instrument_id
		WHERE o.trade_id = $1
		ORDER BY o.trade_time ASC, o.order_id ASC
	`, t.ID)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}
	defer orderRows.Close()

	for orderRows.Next() {
		var o domain.Order
		var inst domain.Instrument
		var assetClass string
		err := orderRows.Scan(
			&o.ID, &o.Quantity, &o.Price, &o.FXRateToBase, &o.Commission, &o.Tax,
			&o.BuySell, &o.Currency, &o.TradeTime,
			&inst.ID, &inst.Symbol, &assetClass, &inst.Multiplier, &inst.Currency,
		)
		if err != nil {
			return fmt.Errorf("scan order row: %w", err)
		}
		inst.AssetClass = domain.AssetClass(assetClass)
		o.Instrument = &inst
		o.InstrumentID = inst.ID
		t.Orders = append(t.Orders, &o)
	}
	if err := orderRows.Err(); err != nil {
		return fmt.Errorf("iterate order rows: %w", err)
	}

	cashRows, err := s.pool.Query(ctx, `
		SELECT
			c.tx_id, c.tx_type, c.amount, c.fx_rate_to_base, c.transaction_time,
			i.id, i.symbol, i.asset_class, i.multiplier, i.currency
		FROM cash_transactions c
		LEFT JOIN instruments i ON i.id = c.instrument_id
		WHERE c.trade_id = $1
		ORDER BY c.transaction_time ASC, c.tx_id ASC
	`, t.ID)
	if err != nil {
		return fmt.Errorf("query cash transactions: %w", err)
	}
	defer cashRows.Close()

	for cashRows.Next() {
		var c domain.CashTransaction
		var instID sql.NullInt64
		var symbol, assetClass, currency sql.NullString
		var multiplier sql.NullFloat64
		err := cashRows.Scan(
			&c.ID, &c.Type, &c.Amount, &c.FXRateToBase, &c.TransactionTime,
			&instID, &symbol, &assetClass, &multiplier, &currency,
		)
		if err != nil {
			return fmt.Errorf("scan cash transaction row: %w", err)
		}
		if instID.Valid {
			c.InstrumentID = int(instID.Int64)
			c.Instrument = &domain.Instrument{
				ID:         int(instID.Int64),
				Symbol:     symbol.String,
				AssetClass: domain.AssetClass(assetClass.String),
				Multiplier: multiplier.Float64,
				Currency:   currency.String,
			}
		}
		t.CashTransactions = append(t.CashTransactions, &c)
	}
	if err := cashRows.Err(); err != nil {
		return fmt.Errorf("iterate cash transaction rows: %w", err)
	}

	fxRows, err := s.pool.Query(ctx, `
		SELECT tx_id, amount, fx_rate_to_base, currency, transaction_time
		FROM fx_transactions
		WHERE trade_id = $1
		ORDER BY transaction_time ASC, tx_id ASC
	`, t.ID)
	if err != nil {
		return fmt.Errorf("query fx transactions: %w", err)
	}
	defer fxRows.Close()

	for fxRows.Next() {
		var f domain.FXTransaction
		err := fxRows.Scan(&f.ID, &f.Amount, &f.FXRateToBase, &f.Currency, &f.TransactionTime)
		if err != nil {
			return fmt.Errorf("scan fx transaction row: %w", err)
		}
		t.FXTransactions = append(t.FXTransactions, &f)
	}
	if err := fxRows.Err(); err != nil {
		return fmt.Errorf("iterate fx transaction rows: %w", err)
	}

	return nil
}

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	var opened, closed sql.NullTime

	err := row.Scan(
		&t.ID, &t.Name, &t.Account, &t.Tags,
		&opened, &closed, &t.Open,
		&t.CapitalTotal, &t.CapitalLong, &t.CapitalShort, &t.CapitalNet,
		&t.ResultDollars, &t.ResultDollarsLong, &t.ResultDollarsShort,
		&t.ResultPct, &t.ResultPctLong, &t.ResultPctShort,
		&t.UnrealizedResultDollars, &t.UnrealizedResultDollarsLong, &t.UnrealizedResultDollarsShort,
		&t.UnrealizedResultPct, &t.UnrealizedResultPctLong, &t.UnrealizedResultPctShort,
		&t.Commissions, &t.Taxes, &t.TotalResultDollars, &t.PriceDataIncomplete,
	)
	if err != nil {
		return nil, err
	}

	if opened.Valid {
		t.DateOpened = opened.Time
	}
	if closed.Valid {
		t.DateClosed = closed.Time
	}
	return &t, nil
}

// nullableTime maps the zero time to NULL so open trades keep a NULL
// date_closed column.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
