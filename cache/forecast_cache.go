package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"
)

// ForecastCache provides caching for reference sets and run summaries.
// Reference sets change rarely but are read on every pipeline run, so
// they are cached per subscriber and game with a short TTL; run
// summaries back the dashboard without hitting Postgres.
type ForecastCache struct {
	redis *RedisClient
}

// NewForecastCache creates a new forecast cache instance
func NewForecastCache(redis *RedisClient) *ForecastCache {
	return &ForecastCache{
		redis: redis,
	}
}

// GetReferenceSet retrieves a cached reference set for a subscriber
// and game. Returns the values and true if found.
func (c *ForecastCache) GetReferenceSet(ctx context.Context, subscriberID, game string) ([]string, bool) {
	if c.redis == nil {
		return nil, false
	}

	cacheKey := fmt.Sprintf("refs:%s:%s", subscriberID, game)
	var values []string

	if err := c.redis.Get(ctx, cacheKey, &values); err != nil {
		return nil, false
	}

	return values, true
}

// SetReferenceSet caches a subscriber's reference set for a game
func (c *ForecastCache) SetReferenceSet(ctx context.Context, subscriberID, game string, values []string, ttl time.Duration) error {
	if c.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	cacheKey := fmt.Sprintf("refs:%s:%s", subscriberID, game)
	return c.redis.Set(ctx, cacheKey, values, ttl)
}

// InvalidateReferenceSet drops the cached set after a replacement, so
// the next run reads the fresh values.
func (c *ForecastCache) InvalidateReferenceSet(ctx context.Context, subscriberID, game string) error {
	if c.redis == nil {
		return nil
	}

	cacheKey := fmt.Sprintf("refs:%s:%s", subscriberID, game)
	return c.redis.Delete(ctx, cacheKey)
}

// RunSummary is the cached shape of a completed run for dashboards.
type RunSummary struct {
	RunID      string `json:"run_id"`
	KitName    string `json:"kit_name"`
	RowCount   int    `json:"row_count"`
	CoreCount  int    `json:"core_count"`
	DurationMs int64  `json:"duration_ms"`
	DataHash   string `json:"data_hash"`
	FinishedAt int64  `json:"finished_at"`
}

// SetLastRun caches the latest run summary for a kit
func (c *ForecastCache) SetLastRun(ctx context.Context, summary *RunSummary, ttl time.Duration) error {
	if c.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	cacheKey := fmt.Sprintf("run:last:%s", summary.KitName)
	return c.redis.Set(ctx, cacheKey, summary, ttl)
}

// GetLastRun retrieves the latest cached run summary for a kit
func (c *ForecastCache) GetLastRun(ctx context.Context, kitName string) (*RunSummary, bool) {
	if c.redis == nil {
		return nil, false
	}

	cacheKey := fmt.Sprintf("run:last:%s", kitName)
	var summary RunSummary

	if err := c.redis.Get(ctx, cacheKey, &summary); err != nil {
		return nil, false
	}

	return &summary, true
}

// SetRunCooldown sets a cooldown period for a kit to prevent back-to-back runs
func (c *ForecastCache) SetRunCooldown(ctx context.Context, kitName string, ttl time.Duration) error {
	if c.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	cooldownKey := fmt.Sprintf("run:cooldown:%s", kitName)
	return c.redis.Set(ctx, cooldownKey, time.Now().Unix(), ttl)
}

// IsInRunCooldown checks if a kit is in cooldown period
func (c *ForecastCache) IsInRunCooldown(ctx context.Context, kitName string) bool {
	if c.redis == nil {
		return false
	}

	cooldownKey := fmt.Sprintf("run:cooldown:%s", kitName)
	return c.redis.Exists(ctx, cooldownKey)
}

// GenerateDataHash fingerprints a run's input rows. The hash rides on
// the cached run summary so dashboards can tell an unchanged re-run
// from fresh inputs.
func GenerateDataHash(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf("%x", hash[:8]) // Use first 8 bytes for shorter hash
}
