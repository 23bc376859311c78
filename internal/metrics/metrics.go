package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RealmRequestsTotal tracks the number of outbound calls to the game web service.
	RealmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realm_api_requests_total",
			Help: "Total number of game web service requests (by endpoint, method, and status).",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RealmRequestDuration measures the duration of outbound calls to the game web service.
	RealmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "realm_api_request_duration_seconds",
			Help:    "Duration of game web service requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms → ~10s
		},
		[]string{"endpoint", "method"},
	)

	// AccountDumpDuration measures the full verify + char list sequence.
	AccountDumpDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "account_dump_duration_seconds",
			Help:    "Wall-clock duration of the verify and char list request sequence.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	// AuthFailures counts failed verification handshakes by error kind.
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realm_auth_failures_total",
			Help: "Failed verification handshakes by error kind.",
		},
		[]string{"kind"},
	)

	// RateLimitTrips counts cooldowns started after the service asked to back off.
	RateLimitTrips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realm_rate_limit_trips_total",
			Help: "Number of cooldowns started after a 'Try again later' response.",
		},
	)

	// GameLaunches counts game client launches by result.
	GameLaunches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_launches_total",
			Help: "Game client launch attempts by result.",
		},
		[]string{"result"},
	)
)

// IncRealmRequest increments the game web service request counter.
func IncRealmRequest(endpoint, method, status string) {
	RealmRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// IncAuthFailure increments the auth failure counter for the given kind.
func IncAuthFailure(kind string) {
	AuthFailures.WithLabelValues(kind).Inc()
}

// IncLaunch increments the launch counter for the given result.
func IncLaunch(result string) {
	GameLaunches.WithLabelValues(result).Inc()
}

// ObserveDuration records elapsed time since start into a Histogram, HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case prometheus.Histogram:
		metric.Observe(duration)
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}
