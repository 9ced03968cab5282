package repository

import (
	"context"
	"sync/atomic"
	"time"

	"hotelbook/internal/domain"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSnapshotCache routes to the primary cache until it fails,
// then serves from the fallback and probes the primary once a minute.
type FailoverSnapshotCache struct {
	primary   domain.SnapshotCache
	fallback  domain.SnapshotCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverSnapshotCache(primary, fallback domain.SnapshotCache, logger *zerolog.Logger) *FailoverSnapshotCache {
	return &FailoverSnapshotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSnapshotCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary snapshot cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck = time.Now()
}

func (r *FailoverSnapshotCache) GetRoomSnapshot(ctx context.Context, roomNumber int64) ([]models.Booking, error) {
	if !r.isDown.Load() {
		bookings, err := r.primary.GetRoomSnapshot(ctx, roomNumber)
		if err == nil {
			return bookings, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		bookings, err := r.primary.GetRoomSnapshot(ctx, roomNumber)
		if err == nil {
			r.isDown.Store(false)
			return bookings, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetRoomSnapshot(ctx, roomNumber)
}

func (r *FailoverSnapshotCache) SetRoomSnapshot(ctx context.Context, roomNumber int64, bookings []models.Booking, ttl time.Duration) error {
	if !r.isDown.Load() {
		err := r.primary.SetRoomSnapshot(ctx, roomNumber, bookings, ttl)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetRoomSnapshot(ctx, roomNumber, bookings, ttl)
}

func (r *FailoverSnapshotCache) InvalidateRoom(ctx context.Context, roomNumber int64) error {
	if !r.isDown.Load() {
		err := r.primary.InvalidateRoom(ctx, roomNumber)
		if err == nil {
			// Keep the fallback coherent so a later failover does not
			// serve a snapshot the primary already dropped.
			_ = r.fallback.InvalidateRoom(ctx, roomNumber)
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.InvalidateRoom(ctx, roomNumber)
}

func (r *FailoverSnapshotCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
