package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lendhub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lendhub",
			Name:      "booking_decisions_total",
			Help:      "Booking lifecycle transitions by resulting status.",
		},
		[]string{"status"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lendhub",
			Name:      "bookings_created_total",
			Help:      "Bookings accepted into the ledger.",
		},
	)

	searchCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lendhub",
			Name:      "search_cache_total",
			Help:      "Item search cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingDecisions, bookingsCreated, searchCache)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts a newly accepted booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingDecision counts a lifecycle transition to the given status.
func IncBookingDecision(status string) {
	bookingDecisions.WithLabelValues(status).Inc()
}

// IncSearchCache counts a cache lookup outcome ("hit" or "miss").
func IncSearchCache(outcome string) {
	searchCache.WithLabelValues(outcome).Inc()
}
