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
	// Scan metrics
	ScansTotal         *prometheus.CounterVec
	EmptyAccountsFound prometheus.Histogram
	ScanDuration       prometheus.Histogram

	// Price metrics
	PriceRefreshes *prometheus.CounterVec
	PriceUSD       prometheus.Gauge
	PriceFetchedAt prometheus.Gauge

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Bot metrics
	UpdatesHandled       *prometheus.CounterVec
	PartnerStatsRequests *prometheus.CounterVec

	// Storage metrics
	StorageWriteErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rent_reclaim_bot"
	}

	return &Metrics{
		// Scan metrics
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "scans_total",
			Help:      "Total number of wallet scans by outcome",
		}, []string{"outcome"}),
		EmptyAccountsFound: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "empty_accounts",
			Help:      "Number of empty token accounts found per successful scan",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Wallet scan duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),

		// Price metrics
		PriceRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price",
			Name:      "refreshes_total",
			Help:      "Total number of quote source refresh attempts by status",
		}, []string{"status"}),
		PriceUSD: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "price",
			Name:      "sol_usd",
			Help:      "Last successfully fetched SOL price in USD",
		}),
		PriceFetchedAt: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "price",
			Name:      "last_refresh_timestamp",
			Help:      "Unix timestamp of the last successful price refresh",
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_duration_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"method"}),

		// Bot metrics
		UpdatesHandled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "updates_handled_total",
			Help:      "Total number of Telegram updates handled by kind",
		}, []string{"kind"}),
		PartnerStatsRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "partner",
			Name:      "stats_requests_total",
			Help:      "Total number of partner stats lookups by status",
		}, []string{"status"}),

		// Storage metrics
		StorageWriteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_errors_total",
			Help:      "Total number of failed audit writes by store",
		}, []string{"store"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScan records a finished scan by outcome.
func RecordScan(outcome string, seconds float64) {
	DefaultMetrics.ScansTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.ScanDuration.Observe(seconds)
}

// RecordEmptyAccounts records the empty account count of a successful scan.
func RecordEmptyAccounts(n int) {
	DefaultMetrics.EmptyAccountsFound.Observe(float64(n))
}

// RecordPriceRefresh records a quote source refresh attempt.
func RecordPriceRefresh(status string) {
	DefaultMetrics.PriceRefreshes.WithLabelValues(status).Inc()
}

// UpdatePrice updates the price gauges after a successful refresh.
func UpdatePrice(priceUSD float64, fetchedAtMs int64) {
	DefaultMetrics.PriceUSD.Set(priceUSD)
	DefaultMetrics.PriceFetchedAt.Set(float64(fetchedAtMs) / 1000)
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordUpdate records a handled Telegram update.
func RecordUpdate(kind string) {
	DefaultMetrics.UpdatesHandled.WithLabelValues(kind).Inc()
}

// RecordPartnerStats records a partner stats lookup.
func RecordPartnerStats(status string) {
	DefaultMetrics.PartnerStatsRequests.WithLabelValues(status).Inc()
}

// RecordStorageError records a failed audit write.
func RecordStorageError(store string) {
	DefaultMetrics.StorageWriteErrors.WithLabelValues(store).Inc()
}
