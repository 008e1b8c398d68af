package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "site",
			Name:      "booking_transitions_total",
			Help:      "Count of booking lifecycle transitions by resulting status.",
		},
		[]string{"status"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "site",
			Name:      "notifications_total",
			Help:      "Count of notification attempts by kind, sink and result.",
		},
		[]string{"kind", "sink", "result"},
	)

	views = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "site",
			Name:      "content_views_total",
			Help:      "Count of view increments by content kind and counter path.",
		},
		[]string{"kind", "path"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingTransitions, notifications, views)
	})
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

// ObserveNotification records one sink attempt; result is sent, failed or skipped.
func ObserveNotification(kind, sink, result string) {
	notifications.WithLabelValues(kind, sink, result).Inc()
}

func IncView(kind, path string) {
	views.WithLabelValues(kind, path).Inc()
}
