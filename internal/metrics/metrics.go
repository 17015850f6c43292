// Package metrics provides Prometheus metrics for the movie catalog API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movie_catalog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of handled HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "movie_catalog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// UserEventsPublished counts lifecycle events handed to the broker
	UserEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movie_catalog",
			Subsystem: "events",
			Name:      "user_published_total",
			Help:      "Total number of user lifecycle events published, by type and result",
		},
		[]string{"type", "result"},
	)
)
