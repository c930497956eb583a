// Package metrics exposes Prometheus instrumentation for the matching
// engine, settlement worker, and coordinator, following the teacher's
// internal/monitoring.MetricsCollector shape (promauto-registered
// CounterVec/GaugeVec/HistogramVec fields, one Record* method per event).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds every metric this core publishes.
type Collector struct {
	ordersAdmitted  *prometheus.CounterVec
	ordersRejected  *prometheus.CounterVec
	matchesExecuted *prometheus.CounterVec
	candidatesTried prometheus.Counter
	admissionLatency *prometheus.HistogramVec

	matchesSettled  prometheus.Counter
	matchesFailed   *prometheus.CounterVec
	settlementLatency prometheus.Histogram
	pendingMatches  prometheus.Gauge

	coordinatorRPCs       *prometheus.CounterVec
	coordinatorRPCLatency *prometheus.HistogramVec
	engineConnState       prometheus.Gauge
}

// New constructs and registers every metric against the default
// Prometheus registry, mirroring the teacher's NewMetricsCollector.
func New() *Collector {
	return &Collector{
		ordersAdmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "darkpool_orders_admitted_total",
			Help: "Total number of orders admitted to the matching engine.",
		}, []string{"base_token", "quote_token", "side"}),

		ordersRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "darkpool_orders_rejected_total",
			Help: "Total number of orders rejected at admission, by reason code.",
		}, []string{"reason"}),

		matchesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "darkpool_matches_executed_total",
			Help: "Total number of matches written by the matching engine.",
		}, []string{"base_token", "quote_token"}),

		candidatesTried: promauto.NewCounter(prometheus.CounterOpts{
			Name: "darkpool_candidates_tried_total",
			Help: "Total number of candidate orders evaluated during matching.",
		}),

		admissionLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "darkpool_admission_latency_seconds",
			Help:    "Latency of the order admission contract (commitment check through reveal).",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		}, []string{"side"}),

		matchesSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "darkpool_matches_settled_total",
			Help: "Total number of matches that reached SETTLED.",
		}),

		matchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "darkpool_matches_failed_total",
			Help: "Total number of matches that transitioned to FAILED, by error code.",
		}, []string{"reason"}),

		settlementLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "darkpool_settlement_latency_seconds",
			Help:    "Wall-clock time from settlement claim to SETTLED.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),

		pendingMatches: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "darkpool_pending_matches",
			Help: "Number of matches observed in PENDING status on the last settlement poll.",
		}),

		coordinatorRPCs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "darkpool_coordinator_rpc_total",
			Help: "Total number of coordinator RPCs, by method and outcome.",
		}, []string{"method", "outcome"}),

		coordinatorRPCLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "darkpool_coordinator_rpc_latency_seconds",
			Help:    "Latency of coordinator RPCs, by method.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method"}),

		engineConnState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "darkpool_coordinator_engine_connected",
			Help: "1 if the coordinator's engine-owned connection is up, 0 otherwise.",
		}),
	}
}

// RecordAdmission records an admitted order and the time the admission
// contract took to run.
func (c *Collector) RecordAdmission(baseToken, quoteToken, side string, latency time.Duration) {
	c.ordersAdmitted.WithLabelValues(baseToken, quoteToken, side).Inc()
	c.admissionLatency.WithLabelValues(side).Observe(latency.Seconds())
}

// RecordRejection records an order rejected at admission.
func (c *Collector) RecordRejection(reason string) {
	c.ordersRejected.WithLabelValues(reason).Inc()
}

// RecordMatch records one executed match and the number of candidates the
// engine evaluated before finding it.
func (c *Collector) RecordMatch(baseToken, quoteToken string, candidatesTried int) {
	c.matchesExecuted.WithLabelValues(baseToken, quoteToken).Inc()
	c.candidatesTried.Add(float64(candidatesTried))
}

// RecordSettled records one match reaching SETTLED and its total latency
// from claim.
func (c *Collector) RecordSettled(latency time.Duration) {
	c.matchesSettled.Inc()
	c.settlementLatency.Observe(latency.Seconds())
}

// RecordSettlementFailure records one match transitioning to FAILED.
func (c *Collector) RecordSettlementFailure(reason string) {
	c.matchesFailed.WithLabelValues(reason).Inc()
}

// SetPendingMatches records the PENDING queue depth observed on a poll cycle.
func (c *Collector) SetPendingMatches(n int) {
	c.pendingMatches.Set(float64(n))
}

// RecordCoordinatorRPC records one coordinator RPC's outcome and latency.
func (c *Collector) RecordCoordinatorRPC(method, outcome string, latency time.Duration) {
	c.coordinatorRPCs.WithLabelValues(method, outcome).Inc()
	c.coordinatorRPCLatency.WithLabelValues(method).Observe(latency.Seconds())
}

// SetEngineConnected records the coordinator's engine connection state.
func (c *Collector) SetEngineConnected(connected bool) {
	if connected {
		c.engineConnState.Set(1)
		return
	}
	c.engineConnState.Set(0)
}
