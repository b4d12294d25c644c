package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewClientFromRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestGenerationCache(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	cache := NewGenerationCache(client, time.Minute, zerolog.Nop())

	_, ok := cache.Get(ctx, "gemini-pro", "prompt")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "gemini-pro", "prompt", "SELECT 1"))

	text, ok := cache.Get(ctx, "gemini-pro", "prompt")
	assert.True(t, ok)
	assert.Equal(t, "SELECT 1", text)

	_, ok = cache.Get(ctx, "text-unicorn", "prompt")
	assert.False(t, ok, "keys are scoped per model")

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, "gemini-pro", "prompt")
	assert.False(t, ok, "entries expire")
}

func TestGenerationCache_FlushAll(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	cache := NewGenerationCache(client, 0, zerolog.Nop())

	require.NoError(t, cache.Set(ctx, "gemini-pro", "a", "SELECT 1"))
	require.NoError(t, cache.Set(ctx, "gemini-pro", "b", "SELECT 2"))
	require.NoError(t, mr.Set("other", "value"))

	deleted, err := cache.FlushAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.True(t, mr.Exists("other"))
}

func TestGenerationKey(t *testing.T) {
	k1 := generationKey("gemini-pro", "prompt")
	assert.Equal(t, k1, generationKey("gemini-pro", "prompt"))
	assert.NotEqual(t, k1, generationKey("gemini-pro", "prompt "))
	assert.Contains(t, k1, "generation:gemini-pro:")
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client, 2, 1)
	limiter.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC) }

	for i := 0; i < 3; i++ {
		allowed, remaining, reset, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2-i, remaining)
		assert.Equal(t, time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC), reset)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, _, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "keys are independent")

	require.NoError(t, limiter.Reset(ctx, "10.0.0.1"))
	allowed, _, _, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}
