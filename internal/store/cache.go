package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AggCache caches computed aggregates (streaks, monthly calendars) in Redis.
// Entries are invalidated whenever a session lands on a date they cover, so a
// cold read always falls through to the brute-force computation.
type AggCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAggCache builds a cache with the given TTL. A nil client disables caching.
func NewAggCache(client *redis.Client, ttl time.Duration) *AggCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AggCache{client: client, ttl: ttl}
}

func streakKey(ownerID string) string { return "agg:streak:" + ownerID }

func monthKey(ownerID string, year, month int) string {
	return fmt.Sprintf("agg:month:%s:%04d-%02d", ownerID, year, month)
}

// GetStreak returns the cached streak for an owner, with ok=false on miss.
func (c *AggCache) GetStreak(ctx context.Context, ownerID string) (int, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, streakKey(ownerID)).Int()
	if err != nil {
		return 0, false
	}
	return val, true
}

// SetStreak stores the streak for an owner.
func (c *AggCache) SetStreak(ctx context.Context, ownerID string, streak int) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, streakKey(ownerID), streak, c.ttl).Err()
}

// GetMonth unmarshals a cached monthly calendar into dst, with ok=false on miss.
func (c *AggCache) GetMonth(ctx context.Context, ownerID string, year, month int, dst any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, monthKey(ownerID, year, month)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// SetMonth stores a monthly calendar payload.
func (c *AggCache) SetMonth(ctx context.Context, ownerID string, year, month int, v any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, monthKey(ownerID, year, month), raw, c.ttl).Err()
}

// Invalidate drops the streak entry and the monthly entry covering date
// (YYYY-MM-DD) for an owner. Called after every session write.
func (c *AggCache) Invalidate(ctx context.Context, ownerID, date string) {
	if c == nil || c.client == nil {
		return
	}
	keys := []string{streakKey(ownerID)}
	var year, month, day int
	if _, err := fmt.Sscanf(date, "%d-%d-%d", &year, &month, &day); err == nil {
		keys = append(keys, monthKey(ownerID, year, month))
	}
	_ = c.client.Del(ctx, keys...).Err()
}
