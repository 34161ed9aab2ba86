package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

type storedStay struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// RedisCalendarCache shares property calendars between replicas. Redis
// failures are logged and treated as cache misses.
type RedisCalendarCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCalendarCache connects to the Redis instance at url.
func NewRedisCalendarCache(ctx context.Context, url string, ttl time.Duration, logger *zap.Logger) (*RedisCalendarCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisCalendarCache{client: client, ttl: ttl, logger: logger}, nil
}

// Get returns the cached calendar for the property.
func (c *RedisCalendarCache) Get(ctx context.Context, propertyID int64) ([]bookingDomain.Stay, bool) {
	raw, err := c.client.Get(ctx, calendarKey(propertyID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("calendar cache read failed", zap.Int64("property_id", propertyID), zap.Error(err))
		}
		return nil, false
	}

	var stored []storedStay
	if err := json.Unmarshal(raw, &stored); err != nil {
		c.logger.Warn("calendar cache entry corrupt", zap.Int64("property_id", propertyID), zap.Error(err))
		return nil, false
	}
	stays := make([]bookingDomain.Stay, 0, len(stored))
	for _, s := range stored {
		stay, err := bookingDomain.ParseStay(s.StartDate, s.EndDate)
		if err != nil {
			return nil, false
		}
		stays = append(stays, stay)
	}
	return stays, true
}

// Set stores the calendar for the property.
func (c *RedisCalendarCache) Set(ctx context.Context, propertyID int64, stays []bookingDomain.Stay) {
	stored := make([]storedStay, len(stays))
	for i, s := range stays {
		stored[i] = storedStay{
			StartDate: s.Start().Format(bookingDomain.DateLayout),
			EndDate:   s.End().Format(bookingDomain.DateLayout),
		}
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, calendarKey(propertyID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("calendar cache write failed", zap.Int64("property_id", propertyID), zap.Error(err))
	}
}

// Invalidate drops the property's calendar.
func (c *RedisCalendarCache) Invalidate(ctx context.Context, propertyID int64) {
	if err := c.client.Del(ctx, calendarKey(propertyID)).Err(); err != nil {
		c.logger.Warn("calendar cache invalidation failed", zap.Int64("property_id", propertyID), zap.Error(err))
	}
}

// Close closes the Redis client.
func (c *RedisCalendarCache) Close() error {
	return c.client.Close()
}
