package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the classification engine.
// Following the explicit dependency injection pattern, this struct is
// passed to every component that needs to record metrics; components
// tolerate a nil *Metrics and simply skip recording.
type Metrics struct {
	// Solana RPC metrics
	rpcCallsTotal    *prometheus.CounterVec
	rpcCallDuration  *prometheus.HistogramVec
	rpcRetriesTotal  *prometheus.CounterVec
	rpcRateLimitHits *prometheus.CounterVec

	// Classification metrics
	transactionsClassified *prometheus.CounterVec
	legsMapped             prometheus.Histogram

	// Token metadata metrics
	metadataLookupsTotal *prometheus.CounterVec
	metadataCacheSize    *prometheus.GaugeVec
}

// NewMetrics creates a Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		rpcCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		rpcCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		rpcRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_retries_total",
				Help: "Total number of Solana RPC retries by method",
			},
			[]string{"method"},
		),
		rpcRateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_rate_limit_hits_total",
				Help: "Total number of 429 responses from the RPC endpoint",
			},
			[]string{"endpoint"},
		),
		transactionsClassified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_classified_total",
				Help: "Total number of transactions classified by primary type",
			},
			[]string{"type"},
		),
		legsMapped: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transaction_legs_mapped",
				Help:    "Number of ledger legs produced per transaction",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
			},
		),
		metadataLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "token_metadata_lookups_total",
				Help: "Total number of token metadata resolutions by source tier",
			},
			[]string{"source"},
		),
		metadataCacheSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "token_metadata_cache_size",
				Help: "Number of network-sourced entries in a resolver's cache",
			},
			[]string{"cluster"},
		),
	}
}

// RecordRPCCall records one RPC invocation with its outcome and duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, durationSeconds float64) {
	m.rpcCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.rpcCallDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordRPCRetry records one retry of an RPC method.
func (m *Metrics) RecordRPCRetry(method string) {
	m.rpcRetriesTotal.WithLabelValues(method).Inc()
}

// RecordRateLimitHit records a 429 response from an endpoint.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.rpcRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordClassification records one classified transaction by primary type.
func (m *Metrics) RecordClassification(primaryType string) {
	m.transactionsClassified.WithLabelValues(primaryType).Inc()
}

// RecordLegsMapped records how many legs one transaction produced.
func (m *Metrics) RecordLegsMapped(count int) {
	m.legsMapped.Observe(float64(count))
}

// RecordMetadataLookup records a metadata resolution by source tier
// (override, static, cache, token_list, chain, placeholder).
func (m *Metrics) RecordMetadataLookup(source string) {
	m.metadataLookupsTotal.WithLabelValues(source).Inc()
}

// SetMetadataCacheSize records the current cache size for a cluster.
func (m *Metrics) SetMetadataCacheSize(cluster string, size int) {
	m.metadataCacheSize.WithLabelValues(cluster).Set(float64(size))
}
