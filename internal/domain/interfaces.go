package domain

import (
	"context"
	"time"

	"hotelbook/internal/models"
)

type Repository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetAllBookings(ctx context.Context) ([]models.Booking, error)
	GetRoomBookings(ctx context.Context, roomNumber int64) ([]models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]models.Booking, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id int64) error
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status string, lastError string, nextRetryAt *time.Time) error
	GetRooms() []models.Room
	GetRoomByNumber(number int64) (models.Room, bool)
}

// SnapshotCache keeps per-room booking snapshots for availability scans and
// shared request-rate counters for the API.
type SnapshotCache interface {
	GetRoomSnapshot(ctx context.Context, roomNumber int64) ([]models.Booking, error)
	SetRoomSnapshot(ctx context.Context, roomNumber int64, bookings []models.Booking, ttl time.Duration) error
	InvalidateRoom(ctx context.Context, roomNumber int64) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking) error
}

// ReportWriter mirrors bookings to an external sheet.
type ReportWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, bookingID int64) error
	ReplaceBookingsSheet(ctx context.Context, bookings []models.Booking) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64, userID int64) error
	FindAvailability(ctx context.Context, roomNumber int64) (models.AvailablePeriod, error)
	OccupancyByDateRange(ctx context.Context, start, end time.Time) (map[int64][]models.Booking, error)
}
