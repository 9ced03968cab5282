package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	Register()

	before := testutil.ToFloat64(bookingWrites.WithLabelValues("create"))
	IncBookingWrite("create")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingWrites.WithLabelValues("create")))

	before = testutil.ToFloat64(bookingRejections.WithLabelValues("conflict"))
	IncBookingRejection("conflict")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingRejections.WithLabelValues("conflict")))

	before = testutil.ToFloat64(availabilityScans.WithLabelValues("found"))
	IncAvailabilityScan("found")
	assert.Equal(t, before+1, testutil.ToFloat64(availabilityScans.WithLabelValues("found")))

	before = testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/bookings"))
	IncHTTP("/api/v1/bookings")
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/bookings")))
}
