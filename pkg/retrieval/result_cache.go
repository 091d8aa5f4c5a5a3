package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"agent-chatbot-be/internal/pkg/logger"
)

// ResultStore caches final search results. Implementations are best-effort:
// a broken store behaves as a permanent miss and must never fail a search.
type ResultStore interface {
	// Get returns the cached results for the key, with a hit flag.
	Get(ctx context.Context, tenantID uuid.UUID, key string) ([]RetrievalResult, bool)

	// Set stores results under the key for the store's TTL.
	Set(ctx context.Context, tenantID uuid.UUID, key string, results []RetrievalResult)

	// InvalidateTenant drops every cached search for one tenant.
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID)
}

const resultKeyPrefix = "ragctx"

// RedisResultCache stores serialized result lists under tenant-prefixed keys
// (ragctx:{tenant}:{hash}), so invalidation sweeps one tenant's namespace
// instead of flushing everyone's warm cache. Any Redis failure degrades to a
// miss or no-op with a warning; search itself never fails on cache trouble.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration, log logger.ILogger) *RedisResultCache {
	return &RedisResultCache{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func resultKey(tenantID uuid.UUID, key string) string {
	return fmt.Sprintf("%s:%s:%s", resultKeyPrefix, tenantID, key)
}

func (c *RedisResultCache) Get(ctx context.Context, tenantID uuid.UUID, key string) ([]RetrievalResult, bool) {
	raw, err := c.client.Get(ctx, resultKey(tenantID, key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("ResultCache", "Redis get failed, treating as miss", map[string]interface{}{
			"tenant_id": tenantID.String(),
			"error":     err.Error(),
		})
		return nil, false
	}

	var results []RetrievalResult
	if err := json.Unmarshal(raw, &results); err != nil {
		c.logger.Warn("ResultCache", "Corrupt cache entry, treating as miss", map[string]interface{}{
			"tenant_id": tenantID.String(),
			"error":     err.Error(),
		})
		return nil, false
	}
	return results, true
}

func (c *RedisResultCache) Set(ctx context.Context, tenantID uuid.UUID, key string, results []RetrievalResult) {
	raw, err := json.Marshal(results)
	if err != nil {
		c.logger.Warn("ResultCache", "Failed to serialize results", map[string]interface{}{
			"tenant_id": tenantID.String(),
			"error":     err.Error(),
		})
		return
	}
	if err := c.client.Set(ctx, resultKey(tenantID, key), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("ResultCache", "Redis set failed, skipping cache write", map[string]interface{}{
			"tenant_id": tenantID.String(),
			"error":     err.Error(),
		})
	}
}

func (c *RedisResultCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) {
	pattern := fmt.Sprintf("%s:%s:*", resultKeyPrefix, tenantID)

	var deleted int
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)

	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			c.logger.Warn("ResultCache", "Redis delete failed during invalidation", map[string]interface{}{
				"tenant_id": tenantID.String(),
				"error":     err.Error(),
			})
			return false
		}
		deleted += len(batch)
		batch = batch[:0]
		return true
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 && !flush() {
			return
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("ResultCache", "Redis scan failed during invalidation", map[string]interface{}{
			"tenant_id": tenantID.String(),
			"error":     err.Error(),
		})
		return
	}
	flush()

	c.logger.Debug("ResultCache", "Invalidated tenant cache", map[string]interface{}{
		"tenant_id": tenantID.String(),
		"deleted":   deleted,
	})
}
