package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"agent-chatbot-be/internal/pkg/logger"
	"agent-chatbot-be/pkg/retrieval"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	opt, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opt)

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}
	return client
}

func TestRedisResultCache(t *testing.T) {
	client := openTestRedis(t)
	ctx := context.Background()

	cache := retrieval.NewRedisResultCache(client, time.Minute, logger.NewNopLogger())

	tenantA := uuid.New()
	tenantB := uuid.New()
	key := retrieval.SearchParams{TenantID: tenantA, Query: "hours", NResults: 4}.CacheKey()

	results := []retrieval.RetrievalResult{
		{ID: "unit_x", Document: "Title: Hours", Title: "Hours", Priority: 5, Score: 0.8},
	}

	cache.Set(ctx, tenantA, key, results)
	cache.Set(ctx, tenantB, key, results)

	t.Run("Check Round Trip", func(t *testing.T) {
		cached, hit := cache.Get(ctx, tenantA, key)
		require.True(t, hit)
		assert.Equal(t, results, cached)
	})

	t.Run("Check Miss On Unknown Key", func(t *testing.T) {
		_, hit := cache.Get(ctx, tenantA, "deadbeef")
		assert.False(t, hit)
	})

	t.Run("Check Tenant Scoped Invalidation", func(t *testing.T) {
		cache.InvalidateTenant(ctx, tenantA)

		_, hit := cache.Get(ctx, tenantA, key)
		assert.False(t, hit, "tenant A entries must be swept")

		_, hit = cache.Get(ctx, tenantB, key)
		assert.True(t, hit, "tenant B stays warm")
	})

	cache.InvalidateTenant(ctx, tenantB)
}
