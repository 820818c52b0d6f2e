package main

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portfolio",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route"},
	)

	guestbookEntriesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "guestbook",
			Name:      "entries_created_total",
			Help:      "Guestbook entries created, by whether a signature was drawn",
		},
		[]string{"signed"},
	)

	contactMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "contact",
			Name:      "messages_total",
			Help:      "Contact form submissions by delivery outcome",
		},
		[]string{"status"},
	)
)

func recordRequest(method, route string, status int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func recordEntryCreated(e *GuestbookEntry) {
	guestbookEntriesCreated.WithLabelValues(strconv.FormatBool(e.Signature != nil)).Inc()
}

func recordContact(status string) {
	contactMessagesTotal.WithLabelValues(status).Inc()
}
