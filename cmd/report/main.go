// Package main generates a trade performance report from stored data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mounirlabaied/QPAS/internal/config"
	"github.com/mounirlabaied/QPAS/internal/reporting"
	"github.com/mounirlabaied/QPAS/internal/storage"
	"github.com/mounirlabaied/QPAS/internal/storage/memory"
	"github.com/mounirlabaied/QPAS/internal/storage/migrations"
	"github.com/mounirlabaied/QPAS/internal/storage/postgres"
)

func main() {
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	trades, equity, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store setup failed: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	report, err := reporting.NewGenerator(trades, equity).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report generation failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Output directory: %v\n", err)
		os.Exit(1)
	}

	mdPath := filepath.Join(*outputDir, "performance.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Write markdown: %v\n", err)
		os.Exit(1)
	}

	csvPath := filepath.Join(*outputDir, "trades.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Trades)), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Write csv: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Report generated:\n")
	fmt.Printf("  %s\n", mdPath)
	fmt.Printf("  %s\n", csvPath)
	fmt.Printf("  Trades: %d (%d open)\n", report.Summary.TotalTrades, report.Summary.OpenTrades)
}

func buildStores(ctx context.Context, cfg *config.Config) (storage.TradeStore, storage.EquitySummaryStore, func(), error) {
	switch cfg.Store {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := migrations.RunPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return postgres.NewTradeStore(pool), postgres.NewEquitySummaryStore(pool), pool.Close, nil
	default:
		return memory.NewTradeStore(), memory.NewEquitySummaryStore(), func() {}, nil
	}
}
