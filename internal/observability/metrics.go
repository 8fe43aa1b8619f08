// Package observability holds the Prometheus collectors shared by the service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reconciliation outcomes for the activity mirror of a decision.
const (
	MatchLinked    = "linked"
	MatchLegacy    = "legacy"
	MatchUnmatched = "unmatched"
	MatchSkipped   = "skipped"
)

var (
	decisionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "green_roots",
		Subsystem: "validation",
		Name:      "decisions_total",
		Help:      "Validation decisions received, labeled by requested status and result.",
	}, []string{"status", "result"})

	decisionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "green_roots",
		Subsystem: "validation",
		Name:      "decision_duration_seconds",
		Help:      "Time spent recording a decision, including the store transaction.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	reconciliationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "green_roots",
		Subsystem: "validation",
		Name:      "activity_reconciliations_total",
		Help:      "How committed decisions were mirrored into the activity feed.",
	}, []string{"match"})

	creditedPointsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "green_roots",
		Subsystem: "validation",
		Name:      "credited_eco_points_total",
		Help:      "Eco-points credited to users by approvals.",
	})

	lastDecisionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "green_roots",
		Subsystem: "validation",
		Name:      "last_decision_committed_timestamp_seconds",
		Help:      "Unix timestamp of the most recently committed decision.",
	})

	photoCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "green_roots",
		Subsystem: "photos",
		Name:      "requests_total",
		Help:      "Submission photo requests, labeled by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(decisionsCounter, decisionDuration, reconciliationCounter, creditedPointsCounter, lastDecisionGauge, photoCounter)
}

// decisionStatusLabels bounds the status label; anything else is "invalid".
var decisionStatusLabels = map[string]struct{}{
	"approved": {},
	"rejected": {},
	"pending":  {},
}

func statusLabel(status string) string {
	if _, ok := decisionStatusLabels[status]; ok {
		return status
	}
	return "invalid"
}

// RecordDecision counts a decision and observes its duration.
func RecordDecision(status, result string, elapsed time.Duration) {
	decisionsCounter.WithLabelValues(statusLabel(status), result).Inc()
	decisionDuration.Observe(elapsed.Seconds())
}

// RecordDecisionCommitted updates the commit watermark gauge.
func RecordDecisionCommitted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastDecisionGauge.Set(float64(ts.Unix()))
}

// RecordReconciliation counts how an activity row was matched.
func RecordReconciliation(match string) {
	reconciliationCounter.WithLabelValues(match).Inc()
}

// RecordCredit adds credited eco-points.
func RecordCredit(points int64) {
	if points <= 0 {
		return
	}
	creditedPointsCounter.Add(float64(points))
}

// RecordPhotoRequest counts a photo request outcome.
func RecordPhotoRequest(result string) {
	photoCounter.WithLabelValues(result).Inc()
}
