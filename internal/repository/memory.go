package repository

import (
	"context"
	"sync"
	"time"

	"hotelbook/internal/models"
)

type snapshotEntry struct {
	bookings  []models.Booking
	expiresAt time.Time
}

type MemorySnapshotCache struct {
	snapshots  sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemorySnapshotCache(ttl time.Duration) *MemorySnapshotCache {
	return &MemorySnapshotCache{
		ttl: ttl,
	}
}

func (r *MemorySnapshotCache) GetRoomSnapshot(ctx context.Context, roomNumber int64) ([]models.Booking, error) {
	val, ok := r.snapshots.Load(roomNumber)
	if !ok {
		return nil, nil
	}
	entry := val.(*snapshotEntry)
	if time.Now().After(entry.expiresAt) {
		r.snapshots.Delete(roomNumber)
		return nil, nil
	}
	return entry.bookings, nil
}

func (r *MemorySnapshotCache) SetRoomSnapshot(ctx context.Context, roomNumber int64, bookings []models.Booking, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	r.snapshots.Store(roomNumber, &snapshotEntry{
		bookings:  bookings,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

func (r *MemorySnapshotCache) InvalidateRoom(ctx context.Context, roomNumber int64) error {
	r.snapshots.Delete(roomNumber)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySnapshotCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
