package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreated     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_hailing", Name: "rides_created_total", Help: "Total ride requests created"})
	RidesCompleted   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_hailing", Name: "rides_completed_total", Help: "Total rides completed"})
	CaptainsNotified = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_hailing", Name: "captains_notified_total", Help: "Total rideRequest pushes delivered to captains"})
	GeocodeErrors    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_hailing", Name: "geocode_errors_total", Help: "Total failed geocoding provider calls"})
	MessagesSent     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_hailing", Name: "messages_sent_total", Help: "Total chat messages stored"})
	WSConnections    = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "ride_hailing", Name: "ws_connections", Help: "Live websocket sessions"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_hailing", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_hailing",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
