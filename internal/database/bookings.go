package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotelbook/internal/models"
)

const dateLayout = "2006-01-02"

const bookingColumns = `id, user_id, room_number, date(start_date), date(end_date), created_at, updated_at`

// CreateBooking inserts the booking and assigns the generated id.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (user_id, room_number, start_date, end_date, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.UserID,
		booking.RoomNumber,
		models.Day(booking.StartDate).Format(dateLayout),
		models.Day(booking.EndDate).Format(dateLayout),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.StartDate = models.Day(booking.StartDate)
	booking.EndDate = models.Day(booking.EndDate)

	return nil
}

// GetBooking returns the booking with the given id.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// GetAllBookings lists every stored booking.
func (db *DB) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY start_date, id`
	return db.queryBookings(ctx, query)
}

// GetRoomBookings lists the bookings for one room.
func (db *DB) GetRoomBookings(ctx context.Context, roomNumber int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE room_number = ? ORDER BY start_date, id`
	return db.queryBookings(ctx, query, roomNumber)
}

// GetBookingsByDateRange lists bookings whose start date falls in [start, end].
func (db *DB) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE date(start_date) BETWEEN ? AND ? ORDER BY start_date, id`
	return db.queryBookings(ctx, query,
		models.Day(start).Format(dateLayout),
		models.Day(end).Format(dateLayout))
}

// UpdateBooking persists the booking's mutable fields.
func (db *DB) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	query := `UPDATE bookings SET room_number = ?, start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.RoomNumber,
		models.Day(booking.StartDate).Format(dateLayout),
		models.Day(booking.EndDate).Format(dateLayout),
		now,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	booking.UpdatedAt = now

	return nil
}

// DeleteBooking removes the stored booking entirely.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var booking models.Booking
	var startStr, endStr string
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.RoomNumber,
		&startStr,
		&endStr,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if booking.StartDate, err = time.Parse(dateLayout, startStr); err != nil {
		return nil, fmt.Errorf("failed to parse start date %s: %w", startStr, err)
	}
	if booking.EndDate, err = time.Parse(dateLayout, endStr); err != nil {
		return nil, fmt.Errorf("failed to parse end date %s: %w", endStr, err)
	}
	return &booking, nil
}
