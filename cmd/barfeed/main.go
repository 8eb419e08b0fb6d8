// Package main runs the streaming bar recorder: it subscribes to a
// WebSocket market data feed and persists incoming OHLC bars so later
// recompute runs can mark open positions.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/mounirlabaied/QPAS/internal/config"
	"github.com/mounirlabaied/QPAS/internal/logger"
	"github.com/mounirlabaied/QPAS/internal/marketdata"
	"github.com/mounirlabaied/QPAS/internal/observability"
	"github.com/mounirlabaied/QPAS/internal/storage"
	"github.com/mounirlabaied/QPAS/internal/storage/clickhouse"
	"github.com/mounirlabaied/QPAS/internal/storage/memory"
	"github.com/mounirlabaied/QPAS/internal/storage/migrations"
)

func main() {
	symbols := flag.String("symbols", "", "Comma-separated symbols to subscribe to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.MarketDataWSURL == "" {
		fmt.Fprintln(os.Stderr, "MARKET_DATA_WS_URL is required")
		os.Exit(1)
	}
	if *symbols == "" {
		fmt.Fprintln(os.Stderr, "-symbols is required")
		os.Exit(1)
	}

	log, err := logger.New()
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

	bars, cleanup, err := buildBarStore(ctx, cfg)
	if err != nil {
		log.Fatal("bar store setup failed", zap.Error(err))
	}
	defer cleanup()

	client, err := marketdata.NewStreamClient(ctx, cfg.MarketDataWSURL, nil)
	if err != nil {
		log.Fatal("stream connect failed", zap.Error(err))
	}
	defer client.Close()

	subscribed := strings.Split(*symbols, ",")
	if err := client.Subscribe(subscribed...); err != nil {
		log.Fatal("subscribe failed", zap.Error(err))
	}
	log.Info("streaming bars",
		zap.String("endpoint", cfg.MarketDataWSURL),
		zap.Strings("symbols", subscribed))

	recorder := marketdata.NewRecorder(bars, log)
	if err := recorder.Run(ctx, client.Updates()); err != nil && err != context.Canceled {
		log.Fatal("recorder stopped", zap.Error(err))
	}
}

func buildBarStore(ctx context.Context, cfg *config.Config) (storage.BarStore, func(), error) {
	if cfg.ClickhouseDSN == "" {
		return memory.NewBarStore(), func() {}, nil
	}

	conn, err := clickhouse.NewConn(ctx, cfg.ClickhouseDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunClickhouse(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return clickhouse.NewBarStore(conn), func() { conn.Close() }, nil
}
