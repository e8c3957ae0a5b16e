// Package metrics holds the prometheus collectors of the patrimony server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Default buckets
var (
	DefaultRPCDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	EvolutionPointBuckets     = []float64{2, 5, 10, 25, 50, 100, 250, 500, 1000}
)

// Metrics holds all application metrics.
type Metrics struct {
	// Lifecycle
	LifecycleOpsTotal       *prometheus.CounterVec
	ValuationsAppendedTotal *prometheus.CounterVec

	// Aggregation
	AggregationsTotal *prometheus.CounterVec
	EvolutionPoints   prometheus.Histogram

	// Transport
	RPCRequestsTotal   *prometheus.CounterVec
	RPCRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
// A nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LifecycleOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patrimony",
			Name:      "lifecycle_operations_total",
			Help:      "Asset lifecycle operations by operation and result",
		}, []string{"op", "result"}),
		ValuationsAppendedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patrimony",
			Name:      "valuations_appended_total",
			Help:      "Valuation records appended to asset histories by source",
		}, []string{"source"}),
		AggregationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patrimony",
			Name:      "aggregations_total",
			Help:      "Patrimony aggregations by kind and result",
		}, []string{"kind", "result"}),
		EvolutionPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "patrimony",
			Name:      "evolution_points",
			Help:      "Number of observation points per evolution computation",
			Buckets:   EvolutionPointBuckets,
		}),
		RPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patrimony",
			Name:      "rpc_requests_total",
			Help:      "gRPC requests by method and status code",
		}, []string{"method", "code"}),
		RPCRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "patrimony",
			Name:      "rpc_request_duration_seconds",
			Help:      "gRPC request duration",
			Buckets:   DefaultRPCDurationBuckets,
		}, []string{"method"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.LifecycleOpsTotal,
			m.ValuationsAppendedTotal,
			m.AggregationsTotal,
			m.EvolutionPoints,
			m.RPCRequestsTotal,
			m.RPCRequestDuration,
		)
	}
	return m
}

// Result labels an operation outcome
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
