package booking

import (
	"errors"
	"time"

	"hotelbook/internal/models"
)

// ScanDays is the fixed availability horizon: tomorrow through today+ScanDays.
const ScanDays = 31

// ErrRoomFullyBooked is returned when no free day exists within the horizon.
var ErrRoomFullyBooked = errors.New("Room fully booked.")

// FindAvailability scans the room's bookings for the earliest free day within
// the fixed horizon and returns a one-day slot. Index 0 of the occupancy
// window is tomorrow. Bookings reaching outside the window only mark the days
// that fall inside it; a booking entirely out of range marks nothing.
func FindAvailability(existing []models.Booking, roomNumber int64, today time.Time) (models.AvailablePeriod, error) {
	day := models.Day(today)
	tomorrow := day.AddDate(0, 0, 1)

	var occupied [ScanDays]bool
	for _, b := range existing {
		if b.RoomNumber != roomNumber {
			continue
		}
		startIndex := models.DaysBetween(tomorrow, b.StartDate)
		span := models.DaysBetween(b.StartDate, b.EndDate)
		for i := startIndex; i < startIndex+span; i++ {
			if i < 0 || i >= ScanDays {
				continue
			}
			occupied[i] = true
		}
	}

	for j := range occupied {
		if !occupied[j] {
			free := day.AddDate(0, 0, j+1)
			return models.AvailablePeriod{
				StartDate: free,
				EndDate:   free.AddDate(0, 0, 1),
			}, nil
		}
	}

	return models.AvailablePeriod{}, ErrRoomFullyBooked
}
