// Package metrics defines the Prometheus metrics of the bot.
//
// Metrics live in a dedicated registry served by Start, so tests and
// embedding processes never collide with the global default registry.
// Names use the adventbot_ prefix, counters end in _total and durations
// in _seconds.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry holds every metric of this package plus Go runtime collectors.
	Registry = prometheus.NewRegistry()

	// UpdatesTotal counts handled updates by handler and status.
	UpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventbot_updates_total",
			Help: "Total updates handled by handler and status.",
		},
		[]string{"handler", "status"},
	)

	// HandlerDurationSeconds observes handler latency.
	HandlerDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adventbot_handler_duration_seconds",
			Help:    "Duration of update handlers in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"handler"},
	)

	// HandlerErrorsTotal counts failures caught by the error boundary by kind
	// (error, panic, unreachable).
	HandlerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventbot_handler_errors_total",
			Help: "Total handler failures caught by the error boundary.",
		},
		[]string{"kind"},
	)

	// RateLimitedTotal counts updates dropped by the rate limiter.
	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adventbot_rate_limited_total",
			Help: "Total updates dropped by the per-user rate limiter.",
		},
	)

	// RegistrationsTotal counts registration triggers by outcome
	// (registered, refreshed).
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventbot_registrations_total",
			Help: "Total registration triggers by outcome.",
		},
		[]string{"outcome"},
	)

	// AnswersTotal counts answer submissions by task index and outcome
	// (captured, locked, expired).
	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventbot_answers_total",
			Help: "Total answer submissions by task and outcome.",
		},
		[]string{"task", "outcome"},
	)

	// TicketsTotal counts support tickets created.
	TicketsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adventbot_support_tickets_total",
			Help: "Total support tickets created.",
		},
	)

	// NotificationsTotal counts admin notifications by kind and status.
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adventbot_admin_notifications_total",
			Help: "Total admin notifications by kind and delivery status.",
		},
		[]string{"kind", "status"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		UpdatesTotal,
		HandlerDurationSeconds,
		HandlerErrorsTotal,
		RateLimitedTotal,
		RegistrationsTotal,
		AnswersTotal,
		TicketsTotal,
		NotificationsTotal,
	)
}

// RecordUpdate records one handled update.
func RecordUpdate(handler, status string, took time.Duration) {
	UpdatesTotal.WithLabelValues(handler, status).Inc()
	HandlerDurationSeconds.WithLabelValues(handler).Observe(took.Seconds())
}

// RecordHandlerError records a failure caught by the error boundary.
func RecordHandlerError(kind string) {
	HandlerErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordRateLimited records an update dropped by the rate limiter.
func RecordRateLimited() {
	RateLimitedTotal.Inc()
}

// RecordRegistration records a registration trigger.
func RecordRegistration(created bool) {
	outcome := "refreshed"
	if created {
		outcome = "registered"
	}
	RegistrationsTotal.WithLabelValues(outcome).Inc()
}

// RecordAnswer records an answer submission attempt for task 1 or 2.
func RecordAnswer(task int, outcome string) {
	label := "1"
	if task == 2 {
		label = "2"
	}
	AnswersTotal.WithLabelValues(label, outcome).Inc()
}

// RecordTicket records a created support ticket.
func RecordTicket() {
	TicketsTotal.Inc()
}

// RecordNotification records an admin notification delivery result.
func RecordNotification(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "fail"
	}
	NotificationsTotal.WithLabelValues(kind, status).Inc()
}
