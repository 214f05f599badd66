package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/media-gateway/internal/application/service"
)

const defaultPagePrefix = "page:"

type redisPageCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisPageCache stores rendered pages under <prefix><path>. A zero ttl keeps entries
// until they are invalidated.
func NewRedisPageCache(rdb *redis.Client, prefix string, ttl time.Duration) service.PageCache {
	if prefix == "" {
		prefix = defaultPagePrefix
	}
	return &redisPageCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *redisPageCache) key(path string) string {
	return c.prefix + path
}

func (c *redisPageCache) Get(ctx context.Context, path string) ([]byte, bool, error) {
	body, err := c.rdb.Get(ctx, c.key(path)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cached page %s: %w", path, err)
	}
	return body, true, nil
}

func (c *redisPageCache) Set(ctx context.Context, path string, body []byte) error {
	if err := c.rdb.Set(ctx, c.key(path), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cached page %s: %w", path, err)
	}
	return nil
}

// Invalidate marks the cached render of path stale. Deleting a missing key is not an error.
func (c *redisPageCache) Invalidate(ctx context.Context, path string) error {
	if err := c.rdb.Del(ctx, c.key(path)).Err(); err != nil {
		return fmt.Errorf("invalidate cached page %s: %w", path, err)
	}
	return nil
}
