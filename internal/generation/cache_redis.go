package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis-backed ProgressCache for multi-node deployments,
// where every node must see the same generation progress.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed progress cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "generation:progress:"}
}

func (c *RedisCache) key(pathID string) string {
	return c.prefix + pathID
}

func (c *RedisCache) Get(ctx context.Context, pathID string) (Progress, bool, error) {
	raw, err := c.client.Get(ctx, c.key(pathID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Progress{}, false, nil
		}
		return Progress{}, false, fmt.Errorf("get progress: %w", err)
	}

	var p Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return Progress{}, false, fmt.Errorf("decode progress: %w", err)
	}
	return p, true, nil
}

func (c *RedisCache) Set(ctx context.Context, pathID string, p Progress) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	// No expiry while the run is live; DeleteAfter sets the terminal TTL.
	if err := c.client.Set(ctx, c.key(pathID), raw, 0).Err(); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

func (c *RedisCache) DeleteAfter(ctx context.Context, pathID string, ttl time.Duration) error {
	if err := c.client.Expire(ctx, c.key(pathID), ttl).Err(); err != nil {
		return fmt.Errorf("expire progress: %w", err)
	}
	return nil
}
