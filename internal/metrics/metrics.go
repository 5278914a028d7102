// Package metrics provides Prometheus metrics for the procurement workflow
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Workflow metrics
	StageAdvances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_stage_advances_total",
			Help: "Total number of canvass stage advances, labelled by the stage left",
		},
		[]string{"stage"},
	)

	SessionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "procurement_canvass_sessions_open",
			Help: "Number of canvass sessions currently open",
		},
	)

	SessionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "procurement_canvass_sessions_completed_total",
			Help: "Total number of canvass sessions closed with a signed abstract",
		},
	)

	AwardedAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "procurement_awarded_amount",
			Help:    "Awarded totals of completed canvass sessions",
			Buckets: []float64{1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		},
	)

	OverdueReturns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "procurement_overdue_canvass_returns",
			Help: "Divisions past their advisory canvass return window at the last sweep",
		},
	)

	// Collaborator metrics
	PersistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_persistence_failures_total",
			Help: "Total number of failed writes to a backing store",
		},
		[]string{"store", "operation"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_notifications_total",
			Help: "Total number of notification attempts",
		},
		[]string{"status"},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "procurement_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordAdvance records a stage being left.
func RecordAdvance(stage string) {
	StageAdvances.WithLabelValues(stage).Inc()
}

// RecordCompletion records a closed session and its awarded total.
func RecordCompletion(awardedTotal float64) {
	SessionsCompleted.Inc()
	SessionsOpen.Dec()
	AwardedAmount.Observe(awardedTotal)
}

// RecordPersistenceFailure records a failed write against a store.
func RecordPersistenceFailure(store, operation string) {
	PersistenceFailures.WithLabelValues(store, operation).Inc()
}

// RecordNotification records the outcome of a notification attempt.
func RecordNotification(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	NotificationsSent.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}
