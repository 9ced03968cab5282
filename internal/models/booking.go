package models

import "time"

// Booking reserves a room for a whole-day date range. StartDate and EndDate
// are normalized to midnight UTC; sub-day times are not modeled.
type Booking struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	RoomNumber int64     `json:"room_number"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AvailablePeriod is a free one-day slot offered for a room.
type AvailablePeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b. Both arguments are
// truncated to day precision first, so the result is exact.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}
