package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySnapshotCache(t *testing.T) {
	cache := NewMemorySnapshotCache(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetSnapshot", func(t *testing.T) {
		bookings := sampleBookings()
		require.NoError(t, cache.SetRoomSnapshot(ctx, 3, bookings, 0))

		got, err := cache.GetRoomSnapshot(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, bookings, got)
	})

	t.Run("GetMissingSnapshot", func(t *testing.T) {
		got, err := cache.GetRoomSnapshot(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SnapshotExpires", func(t *testing.T) {
		require.NoError(t, cache.SetRoomSnapshot(ctx, 4, sampleBookings(), time.Nanosecond))
		time.Sleep(2 * time.Millisecond)

		got, err := cache.GetRoomSnapshot(ctx, 4)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("InvalidateRoom", func(t *testing.T) {
		require.NoError(t, cache.SetRoomSnapshot(ctx, 5, sampleBookings(), 0))
		require.NoError(t, cache.InvalidateRoom(ctx, 5))

		got, _ := cache.GetRoomSnapshot(ctx, 5)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		allowed, err := cache.CheckRateLimit(ctx, "client-b", 1, time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = cache.CheckRateLimit(ctx, "client-b", 1, time.Hour)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("RateLimitWindowResets", func(t *testing.T) {
		allowed, err := cache.CheckRateLimit(ctx, "client-c", 1, time.Nanosecond)
		require.NoError(t, err)
		assert.True(t, allowed)

		time.Sleep(2 * time.Millisecond)

		allowed, err = cache.CheckRateLimit(ctx, "client-c", 1, time.Nanosecond)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
