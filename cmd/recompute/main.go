// Package main recomputes derived statistics for stored trades.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mounirlabaied/QPAS/internal/config"
	"github.com/mounirlabaied/QPAS/internal/logger"
	"github.com/mounirlabaied/QPAS/internal/marketdata"
	"github.com/mounirlabaied/QPAS/internal/observability"
	"github.com/mounirlabaied/QPAS/internal/recompute"
	"github.com/mounirlabaied/QPAS/internal/storage"
	"github.com/mounirlabaied/QPAS/internal/storage/clickhouse"
	"github.com/mounirlabaied/QPAS/internal/storage/memory"
	"github.com/mounirlabaied/QPAS/internal/storage/migrations"
	"github.com/mounirlabaied/QPAS/internal/storage/postgres"
	"github.com/mounirlabaied/QPAS/internal/tradestats"
)

func main() {
	onlyOpen := flag.Bool("only-open", false, "Recompute only trades still flagged open")
	untilLastEquity := flag.Bool("until-last-equity", false,
		"End open trades' capital window at the last equity snapshot instead of now")
	interval := flag.Duration("interval", 0, "Re-run at this interval; 0 runs once and exits")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	log, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	trades, equity, bars, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		log.Fatal("store setup failed", zap.Error(err))
	}
	defer cleanup()

	window := tradestats.WindowUntilNow
	if *untilLastEquity {
		window = tradestats.WindowUntilLastEquity
	}

	updater := tradestats.NewUpdater(marketdata.NewStoreSource(bars), tradestats.Config{
		OptionsCapitalMultiplier: cfg.OptionsCapitalMultiplier,
		Window:                   window,
		MarketDataTimeout:        cfg.MarketDataTimeout,
	})

	runner := recompute.New(recompute.Options{
		TradeStore:         trades,
		EquitySummaryStore: equity,
		Updater:            updater,
		Workers:            cfg.Workers,
		OnlyOpen:           *onlyOpen,
		Logger:             log,
	})

	if *interval > 0 {
		runForever(ctx, log, runner, *interval)
		return
	}

	result, err := runner.Run(ctx)
	if err != nil {
		log.Fatal("recompute run failed", zap.Error(err))
	}

	fmt.Printf("Recompute completed:\n")
	fmt.Printf("  Trades:  %d\n", result.TradesProcessed)
	fmt.Printf("  Open:    %d\n", result.TradesOpen)
	fmt.Printf("  Flagged: %d\n", result.TradesFlagged)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:  %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
		os.Exit(1)
	}
}

// runForever repeats runs until the context is cancelled; per-trade
// errors are logged and the next run proceeds.
func runForever(ctx context.Context, log *zap.Logger, runner *recompute.Runner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := runner.Run(ctx)
		if err != nil {
			log.Error("recompute run failed", zap.Error(err))
		} else {
			log.Info("recompute run completed",
				zap.Int("trades", result.TradesProcessed),
				zap.Int("open", result.TradesOpen),
				zap.Int("flagged", result.TradesFlagged),
				zap.Int("errors", len(result.Errors)))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogPath != "" {
		return logger.NewWithFile(cfg.LogPath)
	}
	return logger.New()
}

// buildStores wires the configured backend. The bar store falls back to
// memory when no ClickHouse DSN is configured, which leaves open trades
// unmarked unless a feed recorded bars in the same process.
func buildStores(ctx context.Context, cfg *config.Config) (storage.TradeStore, storage.EquitySummaryStore, storage.BarStore, func(), error) {
	var trades storage.TradeStore
	var equity storage.EquitySummaryStore
	cleanup := func() {}

	switch cfg.Store {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, nil, err
		}
		trades = postgres.NewTradeStore(pool)
		equity = postgres.NewEquitySummaryStore(pool)
		cleanup = pool.Close
	default:
		trades = memory.NewTradeStore()
		equity = memory.NewEquitySummaryStore()
	}

	var bars storage.BarStore
	if cfg.ClickhouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, nil, err
		}
		if err := migrations.RunClickhouse(ctx, conn); err != nil {
			conn.Close()
			cleanup()
			return nil, nil, nil, nil, err
		}
		bars = clickhouse.NewBarStore(conn)
		base := cleanup
		cleanup = func() {
			conn.Close()
			base()
		}
	} else {
		bars = memory.NewBarStore()
	}

	return trades, equity, bars, cleanup, nil
}
