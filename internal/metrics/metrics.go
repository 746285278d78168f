package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	ItemUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pentrypal",
			Subsystem: "shopping",
			Name:      "item_updates_total",
			Help:      "Total number of item completion updates.",
		},
		[]string{"result"},
	)

	ListsArchived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pentrypal",
			Subsystem: "shopping",
			Name:      "lists_archived_total",
			Help:      "Total number of lists archived.",
		},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pentrypal",
			Subsystem: "feed",
			Name:      "events_published_total",
			Help:      "Total number of live-update events published.",
		},
		[]string{"type"},
	)

	FeedConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pentrypal",
			Subsystem: "feed",
			Name:      "connections",
			Help:      "Current number of WebSocket feed subscribers.",
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pentrypal",
			Subsystem: "session",
			Name:      "active",
			Help:      "Current number of shopping sessions with an active list.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ItemUpdates,
		ListsArchived,
		EventsPublished,
		FeedConnections,
		ActiveSessions,
	)
}

// Handler serves the /metrics endpoint for the application registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
