package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelbook",
			Name:      "booking_writes_total",
			Help:      "Successful booking writes by operation (create, update, delete).",
		},
		[]string{"operation"},
	)

	bookingRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelbook",
			Name:      "booking_rejections_total",
			Help:      "Rejected booking candidates by reason (validation, conflict).",
		},
		[]string{"reason"},
	)

	availabilityScans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelbook",
			Name:      "availability_scans_total",
			Help:      "Availability scans by result (found, exhausted).",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingWrites, bookingRejections, availabilityScans)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingWrite records a successful create, update or delete.
func IncBookingWrite(operation string) {
	bookingWrites.WithLabelValues(operation).Inc()
}

// IncBookingRejection records a rejected candidate.
func IncBookingRejection(reason string) {
	bookingRejections.WithLabelValues(reason).Inc()
}

// IncAvailabilityScan records an availability scan outcome.
func IncAvailabilityScan(result string) {
	availabilityScans.WithLabelValues(result).Inc()
}
