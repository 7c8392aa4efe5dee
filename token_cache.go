package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// TokenLifetime is how long a bearer token and the store id cookie live
const TokenLifetime = 24 * time.Hour

const tokenCachePrefix = "visacheck.auth_token."

// TokenCacheKey returns the cache key holding the bearer token of a user
func TokenCacheKey(userID string) string {
	return tokenCachePrefix + userID
}

// RedisTokenCache keeps bearer tokens in Redis, expiry is left to Redis TTLs
type RedisTokenCache struct {
	client redis.Cmdable
}

var _ TokenCache = (*RedisTokenCache)(nil)

func NewRedisTokenCache(client redis.Cmdable) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

func (c *RedisTokenCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryOperation, "token cache read failed").
			WithTextCode(TextCodeTokenCache).
			WithMetadata(map[string]any{"key": key})
	}
	return val, nil
}

func (c *RedisTokenCache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("token cache ttl must be positive", errors.CategoryBadInput).
			WithTextCode(TextCodeTokenCache).
			WithMetadata(map[string]any{"key": key})
	}

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "token cache write failed").
			WithTextCode(TextCodeTokenCache).
			WithMetadata(map[string]any{"key": key})
	}
	return nil
}
