// Package telemetry is the Prometheus metrics facade for the daemon:
// one Registry bundling the counters/gauges/histograms every other
// package reports into, plus the promhttp handler the metrics listener
// serves them on (grounded on how xentoshi-lake's api and indexer
// commands wire client_golang's promhttp.Handler onto a dedicated
// metrics listener address).
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles every metric the daemon exports. A single instance
// is constructed at startup and handed to server, which reports on
// behalf of conflict/resolver/route/realtime, so the core packages never
// import Prometheus types (they stay dependency-free per the layering in
// SPEC_FULL.md §1).
type Registry struct {
	BuildInfo *prometheus.GaugeVec

	ConflictsDetectedTotal *prometheus.CounterVec
	ConflictsResolvedTotal *prometheus.CounterVec
	ConflictResolutionSeconds prometheus.Histogram
	OpenConflicts          prometheus.Gauge

	RouteAlternativesFound prometheus.Histogram
	ReroutesAppliedTotal   prometheus.Counter

	PositionsIngestedTotal   prometheus.Counter
	PredictedConflictsTotal  prometheus.Counter
	AdjustmentsAppliedTotal  *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestSeconds  *prometheus.HistogramVec
	WebsocketClients    prometheus.Gauge
}

// NewRegistry constructs and registers every metric against reg. Pass
// prometheus.NewRegistry() in tests to avoid the global default
// registry's cross-test collisions; pass prometheus.DefaultRegisterer
// in production so promhttp.Handler() picks everything up.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		BuildInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "railwayai",
			Name:      "build_info",
			Help:      "Build metadata; value is always 1, labels carry version/commit/date.",
		}, []string{"version", "commit", "date"}),

		ConflictsDetectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "railwayai",
			Subsystem: "conflict",
			Name:      "detected_total",
			Help:      "Conflicts detected, by kind.",
		}, []string{"kind"}),

		ConflictsResolvedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "railwayai",
			Subsystem: "resolver",
			Name:      "resolved_total",
			Help:      "Conflicts resolved, by strategy.",
		}, []string{"strategy"}),

		ConflictResolutionSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "railwayai",
			Subsystem: "resolver",
			Name:      "resolution_seconds",
			Help:      "Wall-clock time spent in one Planner.Plan cycle.",
			Buckets:   prometheus.DefBuckets,
		}),

		OpenConflicts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "railwayai",
			Subsystem: "resolver",
			Name:      "open_conflicts",
			Help:      "Conflicts remaining after the last resolution pass.",
		}),

		RouteAlternativesFound: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "railwayai",
			Subsystem: "route",
			Name:      "alternatives_found",
			Help:      "Alternatives returned per FindAlternatives call.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),

		ReroutesAppliedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "railwayai",
			Subsystem: "route",
			Name:      "reroutes_applied_total",
			Help:      "Successful ApplyReroute calls.",
		}),

		PositionsIngestedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "railwayai",
			Subsystem: "realtime",
			Name:      "positions_ingested_total",
			Help:      "Position reports ingested via UpdatePosition.",
		}),

		PredictedConflictsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "railwayai",
			Subsystem: "realtime",
			Name:      "predicted_conflicts_total",
			Help:      "Conflicts surfaced by PredictConflicts.",
		}),

		AdjustmentsAppliedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "railwayai",
			Subsystem: "realtime",
			Name:      "adjustments_applied_total",
			Help:      "Adjustments applied, by type.",
		}, []string{"type"}),

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "railwayai",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by route pattern and status class.",
		}, []string{"route", "status"}),

		HTTPRequestSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "railwayai",
			Subsystem: "http",
			Name:      "request_seconds",
			Help:      "HTTP request latency, by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		WebsocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "railwayai",
			Subsystem: "ws",
			Name:      "connected_clients",
			Help:      "Currently connected websocket hub clients.",
		}),
	}
}
