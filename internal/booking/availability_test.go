package booking

import (
	"testing"

	"hotelbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAvailability_EmptyRoom(t *testing.T) {
	period, err := FindAvailability(nil, 1, testToday)
	require.NoError(t, err)

	assert.Equal(t, testToday.AddDate(0, 0, 1), period.StartDate)
	assert.Equal(t, testToday.AddDate(0, 0, 2), period.EndDate)
}

func TestFindAvailability_SkipsOccupiedDays(t *testing.T) {
	// Occupies tomorrow and the day after; the end date itself stays free.
	existing := []models.Booking{rangeBooking(1, 1, 1, 3)}

	period, err := FindAvailability(existing, 1, testToday)
	require.NoError(t, err)

	assert.Equal(t, testToday.AddDate(0, 0, 3), period.StartDate)
	assert.Equal(t, testToday.AddDate(0, 0, 4), period.EndDate)
}

func TestFindAvailability_OtherRoomIgnored(t *testing.T) {
	existing := []models.Booking{rangeBooking(1, 2, 1, 3)}

	period, err := FindAvailability(existing, 1, testToday)
	require.NoError(t, err)
	assert.Equal(t, testToday.AddDate(0, 0, 1), period.StartDate)
}

func TestFindAvailability_FullHorizon(t *testing.T) {
	var existing []models.Booking
	for offset := 1; offset <= ScanDays; offset += 3 {
		existing = append(existing, rangeBooking(int64(offset), 1, offset, offset+3))
	}

	_, err := FindAvailability(existing, 1, testToday)
	assert.ErrorIs(t, err, ErrRoomFullyBooked)
}

func TestFindAvailability_BoundsChecked(t *testing.T) {
	t.Run("booking entirely beyond the horizon", func(t *testing.T) {
		existing := []models.Booking{rangeBooking(1, 1, 40, 42)}

		period, err := FindAvailability(existing, 1, testToday)
		require.NoError(t, err)
		assert.Equal(t, testToday.AddDate(0, 0, 1), period.StartDate)
	})

	t.Run("booking in the past", func(t *testing.T) {
		existing := []models.Booking{rangeBooking(1, 1, -5, -2)}

		period, err := FindAvailability(existing, 1, testToday)
		require.NoError(t, err)
		assert.Equal(t, testToday.AddDate(0, 0, 1), period.StartDate)
	})

	t.Run("booking straddling the horizon edge", func(t *testing.T) {
		existing := []models.Booking{rangeBooking(1, 1, 30, 35)}

		period, err := FindAvailability(existing, 1, testToday)
		require.NoError(t, err)
		assert.Equal(t, testToday.AddDate(0, 0, 1), period.StartDate)
	})
}
