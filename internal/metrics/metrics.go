// Package metrics holds the Prometheus collectors for the test-taking engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_sessions_started_total",
			Help: "Sessions started, by mode",
		},
		[]string{"mode"},
	)

	StartsDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_session_starts_denied_total",
			Help: "Session starts refused, by mode and reason",
		},
		[]string{"mode", "reason"},
	)

	SessionsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_sessions_submitted_total",
			Help: "Sessions submitted, by mode and outcome",
		},
		[]string{"mode", "passed"},
	)

	SessionsAbandoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exam_sessions_abandoned_total",
			Help: "In-progress sessions closed by the retention sweeper",
		},
	)

	ScorePercentage = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exam_score_percentage",
			Help:    "Distribution of submitted score percentages",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"mode"},
	)

	StateAnomalies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_session_state_anomalies_total",
			Help: "Stale or malformed client calls against sessions",
		},
		[]string{"kind"},
	)
)
