package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	snapshotLoadsTotal    *prometheus.CounterVec
	snapshotResetsTotal   prometheus.Counter
	snapshotSavesTotal    prometheus.Counter
	authAttemptsTotal     *prometheus.CounterVec
	eventsPublishedTotal  *prometheus.CounterVec
	eventStreamClients    prometheus.Gauge
	parentLinksDispatched prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the portal.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of portal API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_http_latency_seconds",
			Help:    "Latency distribution for portal API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_errors_total",
			Help: "Total number of error responses returned by the portal API.",
		}, []string{"method", "route", "status"})

		snapshotLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_snapshot_loads_total",
			Help: "Snapshot loads partitioned by outcome (hit, seeded, reset, unavailable).",
		}, []string{"outcome"})

		snapshotResetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_snapshot_resets_total",
			Help: "Number of times a corrupt snapshot was discarded and reseeded.",
		})

		snapshotSavesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_snapshot_saves_total",
			Help: "Number of whole-snapshot writes.",
		})

		authAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_auth_attempts_total",
			Help: "Login attempts partitioned by role and outcome.",
		}, []string{"role", "outcome"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_events_published_total",
			Help: "Mutation events published, by event type.",
		}, []string{"type"})

		eventStreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portal_event_stream_clients",
			Help: "Number of connected event stream clients.",
		})

		parentLinksDispatched = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_parent_links_dispatched_total",
			Help: "Parent notification deep links handed to the dispatcher.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			snapshotLoadsTotal,
			snapshotResetsTotal,
			snapshotSavesTotal,
			authAttemptsTotal,
			eventsPublishedTotal,
			eventStreamClients,
			parentLinksDispatched,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SnapshotLoads exposes the snapshot load counter.
func SnapshotLoads() *prometheus.CounterVec {
	RegisterMetrics()
	return snapshotLoadsTotal
}

// SnapshotResets exposes the corruption reset counter.
func SnapshotResets() prometheus.Counter {
	RegisterMetrics()
	return snapshotResetsTotal
}

// SnapshotSaves exposes the snapshot write counter.
func SnapshotSaves() prometheus.Counter {
	RegisterMetrics()
	return snapshotSavesTotal
}

// AuthAttempts exposes the login attempt counter.
func AuthAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return authAttemptsTotal
}

// EventsPublished exposes the mutation event counter.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// EventStreamClients exposes the connected stream client gauge.
func EventStreamClients() prometheus.Gauge {
	RegisterMetrics()
	return eventStreamClients
}

// ParentLinksDispatched exposes the parent notification counter.
func ParentLinksDispatched() prometheus.Counter {
	RegisterMetrics()
	return parentLinksDispatched
}
