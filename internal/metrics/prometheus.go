package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the live poller

var (
	// Poll loop metrics
	PollCyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mbb_poll_cycles_total",
			Help: "Total number of poll cycles run",
		},
	)

	PollCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mbb_poll_cycle_duration_seconds",
			Help:    "Duration of poll cycles in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbb_fetch_errors_total",
			Help: "Total number of upstream fetch failures",
		},
		[]string{"endpoint"},
	)

	GamesTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mbb_games_tracked",
			Help: "Number of games seen on the last poll cycle",
		},
	)

	// Boundary metrics
	BoundariesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbb_boundaries_detected_total",
			Help: "Total number of lifecycle boundaries detected",
		},
		[]string{"kind"},
	)

	// Prediction metrics
	PredictionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbb_predictions_created_total",
			Help: "Total number of halftime predictions created",
		},
		[]string{"bucket", "source"},
	)

	PredictionsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbb_predictions_resolved_total",
			Help: "Total number of predictions graded at final",
		},
		[]string{"correct"},
	)

	UnmappedTeamsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mbb_unmapped_teams_total",
			Help: "Total number of games skipped or degraded by alias gaps",
		},
	)

	// Notification metrics
	NotificationsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mbb_notifications_sent_total",
			Help: "Total number of SMS notifications sent",
		},
	)

	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mbb_notification_failures_total",
			Help: "Total number of per-recipient SMS dispatch failures",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mbb_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mbb_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mbb_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordCycle records a completed poll cycle
func RecordCycle(durationSeconds float64, games int) {
	PollCyclesTotal.Inc()
	PollCycleDuration.Observe(durationSeconds)
	GamesTracked.Set(float64(games))
}

// RecordBoundary records a detected boundary crossing
func RecordBoundary(kind string) {
	BoundariesDetected.WithLabelValues(kind).Inc()
}

// RecordFetchError records an upstream fetch failure
func RecordFetchError(endpoint string) {
	FetchErrorsTotal.WithLabelValues(endpoint).Inc()
}
