// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Recompute metrics
	TradesRecomputed  prometheus.Counter
	RecomputeErrors   *prometheus.CounterVec
	RecomputeDuration prometheus.Histogram
	RunDuration       prometheus.Histogram

	// Trade state metrics
	OpenTrades          prometheus.Gauge
	IncompletePriceData prometheus.Counter

	// Market data metrics
	BarsStreamed     prometheus.Counter
	MarkFetchErrors  prometheus.Counter
	MarkFetchLatency prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "qpas"
	}

	return &Metrics{
		TradesRecomputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recompute",
			Name:      "trades_recomputed_total",
			Help:      "Total number of trades whose statistics were recomputed",
		}),
		RecomputeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recompute",
			Name:      "errors_total",
			Help:      "Total number of recompute failures by kind",
		}, []string{"kind"}),
		RecomputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "recompute",
			Name:      "trade_duration_seconds",
			Help:      "Time spent recomputing a single trade",
			Buckets:   prometheus.DefBuckets,
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "recompute",
			Name:      "run_duration_seconds",
			Help:      "Time spent on a full recompute run",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		OpenTrades: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trades",
			Name:      "open_total",
			Help:      "Number of trades currently open after the last run",
		}),
		IncompletePriceData: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trades",
			Name:      "incomplete_price_data_total",
			Help:      "Total number of trades flagged with incomplete price data",
		}),
		BarsStreamed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "bars_streamed_total",
			Help:      "Total number of bars received over the streaming feed",
		}),
		MarkFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "mark_fetch_errors_total",
			Help:      "Total number of failed mark price fetches",
		}),
		MarkFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "mark_fetch_latency_seconds",
			Help:      "Latency of mark price fetches",
			Buckets:   prometheus.DefBuckets,
		}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency by database and operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Database query errors by database and operation",
		}, []string{"database", "operation"}),
	}
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTradeRecomputed increments the recompute counter and observes the
// per-trade duration.
func RecordTradeRecomputed(seconds float64) {
	DefaultMetrics.TradesRecomputed.Inc()
	DefaultMetrics.RecomputeDuration.Observe(seconds)
}

// RecordRecomputeError records a recompute failure.
func RecordRecomputeError(kind string) {
	DefaultMetrics.RecomputeErrors.WithLabelValues(kind).Inc()
}

// RecordRun observes a full run's duration.
func RecordRun(seconds float64) {
	DefaultMetrics.RunDuration.Observe(seconds)
}

// UpdateOpenTrades sets the open trades gauge.
func UpdateOpenTrades(n int) {
	DefaultMetrics.OpenTrades.Set(float64(n))
}

// RecordIncompletePriceData increments the incomplete price data counter.
func RecordIncompletePriceData() {
	DefaultMetrics.IncompletePriceData.Inc()
}

// RecordBarStreamed increments the streamed bars counter.
func RecordBarStreamed() {
	DefaultMetrics.BarsStreamed.Inc()
}

// RecordMarkFetch records a mark price fetch attempt.
func RecordMarkFetch(seconds float64, err error) {
	DefaultMetrics.MarkFetchLatency.Observe(seconds)
	if err != nil {
		DefaultMetrics.MarkFetchErrors.Inc()
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
