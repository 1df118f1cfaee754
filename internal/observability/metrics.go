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
	// Accrual metrics
	AccrualsTotal   prometheus.Counter
	TokensAccrued   prometheus.Counter
	AccrualErrors   *prometheus.CounterVec
	PoolRemaining   prometheus.Gauge
	PoolDistributed prometheus.Gauge

	// Claim metrics
	ClaimsCreated   prometheus.Counter
	ClaimsConfirmed prometheus.Counter
	TokensClaimed   prometheus.Counter
	ClaimErrors     *prometheus.CounterVec

	// Pricing metrics
	QuotesServed      *prometheus.CounterVec
	PriceFetchErrors  prometheus.Counter
	PriceFetchLatency prometheus.Histogram
	StreamMessages    prometheus.Counter
	StreamReconnects  prometheus.Counter

	// Yield metrics
	YieldCalculations prometheus.Counter
	SimulationsRun    prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulAccrual prometheus.Gauge
	LastPriceRefresh      prometheus.Gauge
	UptimeSeconds         prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "vault_rewards"
	}

	return &Metrics{
		// Accrual metrics
		AccrualsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accrual",
			Name:      "runs_total",
			Help:      "Total number of position accruals performed",
		}),
		TokensAccrued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accrual",
			Name:      "tokens_total",
			Help:      "Total mining tokens reserved from the pool by accruals",
		}),
		AccrualErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accrual",
			Name:      "errors_total",
			Help:      "Total number of accrual errors by type",
		}, []string{"error_type"}),
		PoolRemaining: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "remaining_tokens",
			Help:      "Mining pool tokens not yet promised to positions",
		}),
		PoolDistributed: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "distributed_tokens",
			Help:      "Mining pool tokens claimed out of the pool",
		}),

		// Claim metrics
		ClaimsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "created_total",
			Help:      "Total number of claims created",
		}),
		ClaimsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "confirmed_total",
			Help:      "Total number of claims confirmed",
		}),
		TokensClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "tokens_total",
			Help:      "Total tokens moved from pending to claims",
		}),
		ClaimErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "errors_total",
			Help:      "Total number of claim errors by type",
		}, []string{"error_type"}),

		// Pricing metrics
		QuotesServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "quotes_served_total",
			Help:      "Total number of price quotes served by source",
		}, []string{"source"}),
		PriceFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed live price fetches",
		}),
		PriceFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "fetch_latency_seconds",
			Help:      "Live price fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		StreamMessages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "stream_messages_total",
			Help:      "Total number of price messages received over the stream",
		}),
		StreamReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "stream_reconnects_total",
			Help:      "Total number of price stream reconnect attempts",
		}),

		// Yield metrics
		YieldCalculations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "yield",
			Name:      "calculations_total",
			Help:      "Total number of yield calculations performed",
		}),
		SimulationsRun: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "yield",
			Name:      "simulations_total",
			Help:      "Total number of deposit simulations run",
		}),

		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by path and status",
		}, []string{"path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),

		// Health metrics
		LastSuccessfulAccrual: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_accrual_timestamp",
			Help:      "Unix timestamp of last successful accrual sweep",
		}),
		LastPriceRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_price_refresh_timestamp",
			Help:      "Unix timestamp of last successful price refresh",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAccrual records one completed accrual and the tokens it reserved.
func RecordAccrual(tokens float64) {
	DefaultMetrics.AccrualsTotal.Inc()
	DefaultMetrics.TokensAccrued.Add(tokens)
}

// RecordAccrualError records an accrual failure.
func RecordAccrualError(errorType string) {
	DefaultMetrics.AccrualErrors.WithLabelValues(errorType).Inc()
}

// UpdatePoolGauges updates the pool balance gauges.
func UpdatePoolGauges(remaining, distributed float64) {
	DefaultMetrics.PoolRemaining.Set(remaining)
	DefaultMetrics.PoolDistributed.Set(distributed)
}

// RecordClaimCreated records a new claim and its amount.
func RecordClaimCreated(amount float64) {
	DefaultMetrics.ClaimsCreated.Inc()
	DefaultMetrics.TokensClaimed.Add(amount)
}

// RecordClaimConfirmed increments the confirmed claims counter.
func RecordClaimConfirmed() {
	DefaultMetrics.ClaimsConfirmed.Inc()
}

// RecordClaimError records a claim failure.
func RecordClaimError(errorType string) {
	DefaultMetrics.ClaimErrors.WithLabelValues(errorType).Inc()
}

// RecordQuoteServed records a price quote served from the given source.
func RecordQuoteServed(source string) {
	DefaultMetrics.QuotesServed.WithLabelValues(source).Inc()
}

// RecordPriceFetch records a live price fetch attempt.
func RecordPriceFetch(seconds float64, err error) {
	DefaultMetrics.PriceFetchLatency.Observe(seconds)
	if err != nil {
		DefaultMetrics.PriceFetchErrors.Inc()
	}
}

// RecordStreamMessage increments the stream messages counter.
func RecordStreamMessage() {
	DefaultMetrics.StreamMessages.Inc()
}

// RecordStreamReconnect increments the stream reconnects counter.
func RecordStreamReconnect() {
	DefaultMetrics.StreamReconnects.Inc()
}

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(path, status string, seconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(path, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(path).Observe(seconds)
}
