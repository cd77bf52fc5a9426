package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	DatabaseUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mongo_connection_up",
			Help: "1 when the MongoDB connection is ready, 0 otherwise",
		},
	)

	DatabaseConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_connect_attempts_total",
			Help: "MongoDB connection attempts by result",
		},
		[]string{"result"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_events_published_total",
			Help: "Profile events delivered to a sink, by sink and result",
		},
		[]string{"sink", "result"},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_events_dropped_total",
			Help: "Profile events dropped because the dispatch queue was full",
		},
	)
)
