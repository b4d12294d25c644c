package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	generationCachePrefix = "generation:"
	defaultGenerationTTL  = 10 * time.Minute
)

// GenerationCache stores deterministic model replies keyed by model and prompt
type GenerationCache struct {
	client *Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewGenerationCache creates a new generation cache
func NewGenerationCache(client *Client, ttl time.Duration, logger zerolog.Logger) *GenerationCache {
	if ttl <= 0 {
		ttl = defaultGenerationTTL
	}
	return &GenerationCache{client: client, ttl: ttl, logger: logger}
}

func generationKey(modelID, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("%s%s:%s", generationCachePrefix, modelID, hex.EncodeToString(sum[:]))
}

// Get returns the cached reply; any Redis failure counts as a miss
func (c *GenerationCache) Get(ctx context.Context, modelID, prompt string) (string, bool) {
	text, err := c.client.rdb.Get(ctx, generationKey(modelID, prompt)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("model", modelID).Msg("generation cache lookup failed")
		}
		return "", false
	}
	return text, true
}

// Set caches a reply
func (c *GenerationCache) Set(ctx context.Context, modelID, prompt, text string) error {
	if err := c.client.rdb.Set(ctx, generationKey(modelID, prompt), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache generation: %w", err)
	}
	return nil
}

// FlushAll removes all cached generations
func (c *GenerationCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := generationCachePrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
