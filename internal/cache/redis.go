package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backed cache, the production implementation
type RedisCache struct {
	client *redis.Client
}

func NewRedis(ctx context.Context, dsn string) (*RedisCache, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("can't parse redis dsn. Err: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("can't connect to redis. Err: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()

	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, redis.Nil):
		return "", ErrKeyNotFound
	default:
		return "", fmt.Errorf("cache error: %w", err)
	}
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache error: %w", err)
	}
	return nil
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache error: %w", err)
	}
	return nil
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cache error: %w", err)
	}
	return n > 0, nil
}

func (c *RedisCache) SAdd(ctx context.Context, set string, member string) error {
	if err := c.client.SAdd(ctx, set, member).Err(); err != nil {
		return fmt.Errorf("cache error: %w", err)
	}
	return nil
}

func (c *RedisCache) SIsMember(ctx context.Context, set string, member string) (bool, error) {
	ok, err := c.client.SIsMember(ctx, set, member).Result()
	if err != nil {
		return false, fmt.Errorf("cache error: %w", err)
	}
	return ok, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
