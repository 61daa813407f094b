package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Fetches counts current-location requests by outcome
	// (cache, fresh, denied, error).
	Fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solomo",
			Name:      "fetches_total",
			Help:      "Total number of current-location requests",
		},
		[]string{"result"},
	)

	// WatchUpdates counts position samples delivered by the watch subscription
	WatchUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "solomo",
			Name:      "watch_updates_total",
			Help:      "Total number of position updates delivered by the continuous watch",
		},
	)

	// WatchActive reports whether a continuous watch is currently running
	WatchActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "solomo",
			Name:      "watch_active",
			Help:      "1 when a continuous watch subscription is live, 0 otherwise",
		},
	)

	// GeofenceEvents counts emitted geofence events by kind
	GeofenceEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solomo",
			Name:      "geofence_events_total",
			Help:      "Total number of geofence events emitted",
		},
		[]string{"kind"},
	)

	// GeocodeRequests counts reverse-geocode lookups by outcome (hit, miss, error)
	GeocodeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solomo",
			Name:      "geocode_requests_total",
			Help:      "Total number of reverse-geocode lookups",
		},
		[]string{"result"},
	)

	// WSClients reports connected WebSocket dashboard clients
	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "solomo",
			Name:      "ws_clients",
			Help:      "Number of connected WebSocket clients",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		// This prevents panics when metrics are already in the registry
		prometheus.DefaultRegisterer.Register(Fetches)
		prometheus.DefaultRegisterer.Register(WatchUpdates)
		prometheus.DefaultRegisterer.Register(WatchActive)
		prometheus.DefaultRegisterer.Register(GeofenceEvents)
		prometheus.DefaultRegisterer.Register(GeocodeRequests)
		prometheus.DefaultRegisterer.Register(WSClients)
	})
}
