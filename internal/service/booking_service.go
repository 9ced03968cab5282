package service

import (
	"context"
	"time"

	"hotelbook/internal/booking"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
)

const snapshotTTL = 5 * time.Minute

// BookingService runs the booking workflow: rule validation, conflict
// detection against the stored bookings, persistence and the follow-up
// side effects (events, export queue, snapshot invalidation).
type BookingService struct {
	repo       domain.Repository
	cache      domain.SnapshotCache
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	logger     *zerolog.Logger
	now        func() time.Time
}

func NewBookingService(repo domain.Repository, cache domain.SnapshotCache, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:       repo,
		cache:      cache,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, candidate *models.Booking) (*models.Booking, error) {
	candidate.StartDate = models.Day(candidate.StartDate)
	candidate.EndDate = models.Day(candidate.EndDate)

	if err := s.checkCandidate(ctx, *candidate); err != nil {
		return nil, err
	}

	if err := s.repo.CreateBooking(ctx, candidate); err != nil {
		return nil, err
	}

	metrics.IncBookingWrite("create")
	s.afterWrite(ctx, events.EventBookingCreated, *candidate, "upsert")

	return candidate, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return s.repo.GetAllBookings(ctx)
}

// UpdateBooking merges the incoming start date, end date and room number
// into the stored booking and revalidates the result. The booking owner
// never changes; a user id mismatch reads as a missing booking.
func (s *BookingService) UpdateBooking(ctx context.Context, incoming *models.Booking) (*models.Booking, error) {
	current, err := s.repo.GetBooking(ctx, incoming.ID)
	if err != nil {
		return nil, err
	}
	if current.UserID != incoming.UserID {
		// Other users' bookings are indistinguishable from missing ones.
		return nil, database.ErrBookingNotFound
	}

	previousRoom := current.RoomNumber

	merged := *current
	if !incoming.StartDate.IsZero() {
		merged.StartDate = models.Day(incoming.StartDate)
	}
	if !incoming.EndDate.IsZero() {
		merged.EndDate = models.Day(incoming.EndDate)
	}
	if incoming.RoomNumber != 0 {
		merged.RoomNumber = incoming.RoomNumber
	}

	if err := s.checkCandidate(ctx, merged); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBooking(ctx, &merged); err != nil {
		return nil, err
	}

	metrics.IncBookingWrite("update")
	s.afterWrite(ctx, events.EventBookingUpdated, merged, "upsert")
	if previousRoom != merged.RoomNumber {
		s.invalidateRoom(ctx, previousRoom)
	}

	return &merged, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id int64, userID int64) error {
	current, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if current.UserID != userID {
		return database.ErrBookingNotFound
	}

	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}

	metrics.IncBookingWrite("delete")
	s.afterWrite(ctx, events.EventBookingDeleted, *current, "delete")

	return nil
}

// FindAvailability scans the next month of the room's bookings and
// returns the first free one-night period. Booking snapshots come from
// the cache and fall back to the repository on a miss.
func (s *BookingService) FindAvailability(ctx context.Context, roomNumber int64) (models.AvailablePeriod, error) {
	bookings, err := s.roomSnapshot(ctx, roomNumber)
	if err != nil {
		return models.AvailablePeriod{}, err
	}

	period, err := booking.FindAvailability(bookings, roomNumber, s.now())
	if err != nil {
		metrics.IncAvailabilityScan("exhausted")
		return models.AvailablePeriod{}, err
	}

	metrics.IncAvailabilityScan("found")
	return period, nil
}

// OccupancyByDateRange groups stored bookings overlapping the range by room.
func (s *BookingService) OccupancyByDateRange(ctx context.Context, start, end time.Time) (map[int64][]models.Booking, error) {
	bookings, err := s.repo.GetBookingsByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byRoom := make(map[int64][]models.Booking)
	for _, b := range bookings {
		byRoom[b.RoomNumber] = append(byRoom[b.RoomNumber], b)
	}

	return byRoom, nil
}

// checkCandidate runs the booking rules and the conflict scan.
func (s *BookingService) checkCandidate(ctx context.Context, candidate models.Booking) error {
	if violations := booking.Validate(candidate, s.now()); !violations.Valid() {
		metrics.IncBookingRejection("validation")
		return &booking.ValidationError{Violations: violations}
	}

	existing, err := s.repo.GetAllBookings(ctx)
	if err != nil {
		return err
	}
	if !booking.NoConflict(existing, candidate) {
		metrics.IncBookingRejection("conflict")
		return booking.ErrRoomConflict
	}

	return nil
}

func (s *BookingService) afterWrite(ctx context.Context, eventType string, b models.Booking, taskType string) {
	payload := events.BookingEventPayload{
		BookingID:  b.ID,
		UserID:     b.UserID,
		RoomNumber: b.RoomNumber,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("Failed to publish booking event")
	}

	if s.syncWorker != nil {
		if err := s.syncWorker.EnqueueTask(ctx, taskType, b.ID, &b); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("Failed to enqueue export task")
		}
	}

	s.invalidateRoom(ctx, b.RoomNumber)
}

func (s *BookingService) invalidateRoom(ctx context.Context, roomNumber int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRoom(ctx, roomNumber); err != nil {
		s.logger.Error().Err(err).Int64("room", roomNumber).Msg("Failed to invalidate room snapshot")
	}
}

func (s *BookingService) roomSnapshot(ctx context.Context, roomNumber int64) ([]models.Booking, error) {
	if s.cache != nil {
		cached, err := s.cache.GetRoomSnapshot(ctx, roomNumber)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			s.logger.Warn().Err(err).Int64("room", roomNumber).Msg("Room snapshot cache read failed")
		}
	}

	bookings, err := s.repo.GetRoomBookings(ctx, roomNumber)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetRoomSnapshot(ctx, roomNumber, bookings, snapshotTTL); err != nil {
			s.logger.Warn().Err(err).Int64("room", roomNumber).Msg("Room snapshot cache write failed")
		}
	}

	return bookings, nil
}
