package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Status transitions by target status
	StatusTransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_status_transition_count",
			Help: "Total number of church status transitions",
		},
		[]string{"to_status"},
	)

	// Notifier sends by kind and outcome
	NotificationSendCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_send_count",
			Help: "Total number of notification send attempts",
		},
		[]string{"kind", "status"}, // status: success, failed
	)

	// Reminder scheduler candidates/sent/failed by category
	ReminderCandidateCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_candidate_count",
			Help: "Reminder candidates selected per category",
		},
		[]string{"category"},
	)
	ReminderSentCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_sent_count",
			Help: "Reminders sent per category",
		},
		[]string{"category"},
	)
	ReminderFailedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_failed_count",
			Help: "Reminder send failures per category",
		},
		[]string{"category"},
	)

	// Reminder run duration (seconds)
	ReminderRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_run_duration_seconds",
			Help:    "Duration of a full reminder scheduler run",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordNotificationSend records one send attempt outcome.
func RecordNotificationSend(kind string, ok bool) {
	status := "success"
	if !ok {
		status = "failed"
	}
	NotificationSendCount.WithLabelValues(kind, status).Inc()
}

// ObserveReminderRun records the duration of one scheduler run.
func ObserveReminderRun(start time.Time) {
	ReminderRunDuration.Observe(time.Since(start).Seconds())
}
