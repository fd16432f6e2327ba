package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"habitledger/internal/calendar"
	"habitledger/internal/progress"
)

const defaultTTL = 5 * time.Minute

// StatsCache keeps computed stats in Redis. Entries are namespaced by a
// per-user version; Invalidate bumps the version so every cached period
// and anchor for that user is orphaned at once and left to expire.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func versionKey(userID string) string {
	return "stats:ver:" + userID
}

func dataKey(userID string, version int64, period progress.Period, anchor calendar.Day) string {
	return fmt.Sprintf("stats:%s:%d:%s:%s", userID, version, period, anchor)
}

// Version is the user's current cache generation; 0 before any invalidation.
func (c *StatsCache) Version(ctx context.Context, userID string) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stats cache version: %w", err)
	}
	return v, nil
}

func (c *StatsCache) Get(ctx context.Context, userID string, version int64, period progress.Period, anchor calendar.Day) (*progress.Stats, bool, error) {
	data, err := c.rdb.Get(ctx, dataKey(userID, version, period, anchor)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stats cache get: %w", err)
	}

	var stats progress.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, false, fmt.Errorf("stats cache decode: %w", err)
	}
	return &stats, true, nil
}

// Set stores stats under version, which must be the value read before the
// stats were computed. A stale version writes a key nobody reads again.
func (c *StatsCache) Set(ctx context.Context, userID string, version int64, period progress.Period, anchor calendar.Day, stats *progress.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, dataKey(userID, version, period, anchor), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("stats cache set: %w", err)
	}
	return nil
}

func (c *StatsCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.rdb.Incr(ctx, versionKey(userID)).Err(); err != nil {
		return fmt.Errorf("stats cache invalidate: %w", err)
	}
	return nil
}
