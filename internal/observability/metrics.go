package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Auth metrics
	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sign_ins_total",
			Help: "Sign-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	SignUpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sign_ups_total",
			Help: "Sign-up attempts by outcome",
		},
		[]string{"outcome"},
	)

	SessionRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_session_refreshes_total",
			Help: "Transparent session refreshes performed by the route guard",
		},
		[]string{"outcome"},
	)

	// Identity provider metrics
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "identity_provider_request_duration_seconds",
			Help:    "Latency of calls to the identity provider",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "status"},
	)
)
