package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotelbook/internal/config"
	"hotelbook/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		client: client,
		ttl:    ttl,
	}
}

func roomKey(roomNumber int64) string {
	return fmt.Sprintf("room_bookings:%d", roomNumber)
}

// GetRoomSnapshot returns the cached booking list for a room.
// A cache miss yields a nil slice and no error.
func (r *RedisSnapshotCache) GetRoomSnapshot(ctx context.Context, roomNumber int64) ([]models.Booking, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, roomKey(roomNumber)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room snapshot from redis: %w", err)
	}

	var bookings []models.Booking
	if err := json.Unmarshal([]byte(val), &bookings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room snapshot: %w", err)
	}

	return bookings, nil
}

func (r *RedisSnapshotCache) SetRoomSnapshot(ctx context.Context, roomNumber int64, bookings []models.Booking, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("failed to marshal room snapshot: %w", err)
	}

	if err := r.client.Set(ctx, roomKey(roomNumber), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set room snapshot in redis: %w", err)
	}

	return nil
}

func (r *RedisSnapshotCache) InvalidateRoom(ctx context.Context, roomNumber int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, roomKey(roomNumber)).Err(); err != nil {
		return fmt.Errorf("failed to delete room snapshot from redis: %w", err)
	}
	return nil
}

func (r *RedisSnapshotCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	counterKey := fmt.Sprintf("rate_limit:%s", key)
	count, err := r.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, counterKey, window)
	}

	return count <= int64(limit), nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
