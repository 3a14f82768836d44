package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/pkg/metrics"
)

const defaultHoursTTL = 5 * time.Minute

// HoursCache stores computed hour totals in one hash per user.
// Key format: hours:<user_id>, field: <yyyy-mm-dd reference day>@<status version>.
// A clock-out moves readers to a new field and deletes the hash; a late write
// from a read that raced with it lands under the old field and expires.
type HoursCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHoursCache creates an HoursCache wrapping the given Redis client.
func NewHoursCache(client *redis.Client, ttl time.Duration) *HoursCache {
	if ttl <= 0 {
		ttl = defaultHoursTTL
	}
	return &HoursCache{client: client, ttl: ttl}
}

// Get returns the cached totals stored under field, if present.
func (c *HoursCache) Get(ctx context.Context, userID, field string) (*domain.ClockedHours, bool, error) {
	raw, err := c.client.HGet(ctx, c.key(userID), field).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.HoursCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.HoursCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("hours cache get: %w", err)
	}

	var h domain.ClockedHours
	if err := json.Unmarshal(raw, &h); err != nil {
		metrics.HoursCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("hours cache decode: %w", err)
	}
	metrics.HoursCacheTotal.WithLabelValues("hit").Inc()
	return &h, true, nil
}

// Set stores totals under field and refreshes the TTL.
func (c *HoursCache) Set(ctx context.Context, userID, field string, hours domain.ClockedHours) error {
	raw, err := json.Marshal(hours)
	if err != nil {
		return fmt.Errorf("hours cache encode: %w", err)
	}

	key := c.key(userID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field, raw)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("hours cache set: %w", err)
	}
	return nil
}

// Invalidate drops every cached entry for the user.
func (c *HoursCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("hours cache invalidate: %w", err)
	}
	return nil
}

func (c *HoursCache) key(userID string) string {
	return fmt.Sprintf("hours:%s", userID)
}
