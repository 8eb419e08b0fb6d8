// Package recompute runs trade statistics updates across a stored trade
// population using a bounded worker pool.
package recompute

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/observability"
	"github.com/mounirlabaied/QPAS/internal/storage"
	"github.com/mounirlabaied/QPAS/internal/tradestats"
)

// Options for creating a Runner.
type Options struct {
	// Required stores
	TradeStore         storage.TradeStore
	EquitySummaryStore storage.EquitySummaryStore

	// Updater recomputes a single trade's statistics.
	Updater *tradestats.Updater

	// Workers is the pool size. Zero means 4.
	Workers int

	// OnlyOpen restricts the run to trades whose Open flag is set.
	OnlyOpen bool

	Logger *zap.Logger
}

// Runner recomputes and persists statistics for every selected trade.
type Runner struct {
	trades   storage.TradeStore
	equity   storage.EquitySummaryStore
	updater  *tradestats.Updater
	workers  int
	onlyOpen bool
	logger   *zap.Logger
}

// New creates a Runner.
func New(opts Options) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		trades:   opts.TradeStore,
		equity:   opts.EquitySummaryStore,
		updater:  opts.Updater,
		workers:  workers,
		onlyOpen: opts.OnlyOpen,
		logger:   logger,
	}
}

// RunResult contains the outcome of one recompute run.
type RunResult struct {
	TradesProcessed int
	TradesOpen      int
	TradesFlagged   int
	Errors          []string
}

// Run loads the trade population, recomputes each trade's statistics,
// and persists the derived fields. Individual trade failures are
// collected, not fatal; loading failures abort the run.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	started := time.Now()

	var trades []*domain.Trade
	var err error
	if r.onlyOpen {
		trades, err = r.trades.GetOpen(ctx)
	} else {
		trades, err = r.trades.GetAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}

	summaries, err := r.equity.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load equity summaries: %w", err)
	}

	r.logger.Info("recompute run starting",
		zap.Int("trades", len(trades)),
		zap.Int("equity_summaries", len(summaries)),
		zap.Int("workers", r.workers))

	result := &RunResult{TradesProcessed: len(trades)}
	if len(trades) == 0 {
		return result, nil
	}

	work := make(chan *domain.Trade)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range work {
				r.processOne(ctx, t, summaries, result, &mu)
			}
		}()
	}

	for _, t := range trades {
		select {
		case work <- t:
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return result, ctx.Err()
		}
	}
	close(work)
	wg.Wait()

	observability.RecordRun(time.Since(started).Seconds())
	observability.UpdateOpenTrades(result.TradesOpen)

	r.logger.Info("recompute run finished",
		zap.Int("trades", result.TradesProcessed),
		zap.Int("open", result.TradesOpen),
		zap.Int("flagged", result.TradesFlagged),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("elapsed", time.Since(started)))

	return result, nil
}

func (r *Runner) processOne(ctx context.Context, t *domain.Trade, summaries []*domain.EquitySummary, result *RunResult, mu *sync.Mutex) {
	started := time.Now()

	if err := r.updater.UpdateStats(ctx, t, summaries); err != nil {
		observability.RecordRecomputeError("compute")
		r.logger.Warn("stats computation failed",
			zap.String("trade_id", t.ID),
			zap.Error(err))
		mu.Lock()
		result.Errors = append(result.Errors, fmt.Sprintf("compute %s: %v", t.ID, err))
		mu.Unlock()
		return
	}

	if err := r.trades.UpdateStats(ctx, t); err != nil {
		observability.RecordRecomputeError("persist")
		r.logger.Warn("stats persistence failed",
			zap.String("trade_id", t.ID),
			zap.Error(err))
		mu.Lock()
		result.Errors = append(result.Errors, fmt.Sprintf("persist %s: %v", t.ID, err))
		mu.Unlock()
		return
	}

	observability.RecordTradeRecomputed(time.Since(started).Seconds())
	if t.PriceDataIncomplete {
		observability.RecordIncompletePriceData()
	}

	mu.Lock()
	if t.Open {
		result.TradesOpen++
	}
	if t.PriceDataIncomplete {
		result.TradesFlagged++
	}
	mu.Unlock()
}
