// Package config loads runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	// Store selects the persistence backend: "memory" or "postgres".
	Store string
	// PostgresDSN is required when Store is "postgres".
	PostgresDSN string
	// ClickhouseDSN enables the ClickHouse bar store when set.
	ClickhouseDSN string

	// MarketDataWSURL enables the streaming bar feed when set.
	MarketDataWSURL string
	// MarketDataTimeout bounds each upstream mark price fetch.
	MarketDataTimeout time.Duration

	// OptionsCapitalMultiplier scales option lot notionals in capital
	// usage figures.
	OptionsCapitalMultiplier float64

	// Workers is the recompute worker pool size.
	Workers int

	// MetricsAddr exposes Prometheus metrics when set, e.g. ":9090".
	MetricsAddr string

	// LogPath tees logs to a file when set.
	LogPath string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Store:           getEnvDefault("STORE", "memory"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN:   os.Getenv("CLICKHOUSE_DSN"),
		MarketDataWSURL: os.Getenv("MARKET_DATA_WS_URL"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		LogPath:         os.Getenv("LOG_PATH"),
	}

	var err error
	if cfg.MarketDataTimeout, err = getEnvDuration("MARKET_DATA_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.OptionsCapitalMultiplier, err = getEnvFloat("OPTIONS_CAPITAL_MULTIPLIER", 1); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getEnvInt("WORKERS", 4); err != nil {
		return nil, err
	}

	if cfg.Store != "memory" && cfg.Store != "postgres" {
		return nil, fmt.Errorf("STORE must be 'memory' or 'postgres', got %q", cfg.Store)
	}
	if cfg.Store == "postgres" && cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required when STORE=postgres")
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("WORKERS must be positive, got %d", cfg.Workers)
	}
	if cfg.OptionsCapitalMultiplier <= 0 {
		return nil, fmt.Errorf("OPTIONS_CAPITAL_MULTIPLIER must be positive, got %v", cfg.OptionsCapitalMultiplier)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like '10s', got %q", key, v)
	}
	return d, nil
}
