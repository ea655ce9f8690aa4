package cache

import (
	"context"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRouteCache keeps solved routes in Redis with a fixed TTL.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ *domain.RoutePlan, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.redis.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("redis route cache: client is nil")
	}

	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	plan, err := decodePlan(b)
	if err != nil {
		return nil, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}
	return plan, true, nil
}

func (c *RedisRouteCache) Set(ctx context.Context, key string, plan *domain.RoutePlan) (err error) {
	defer obs.Time(ctx, "route.cache.redis.Set")(&err)

	if c.Client == nil {
		return errors.New("redis route cache: client is nil")
	}

	b, err := encodePlan(plan)
	if err != nil {
		return fmt.Errorf("set route cache key=%q: %w", key, err)
	}
	if err := c.Client.Set(ctx, key, b, c.TTL).Err(); err != nil {
		return fmt.Errorf("set route cache key=%q: %w", key, err)
	}
	return nil
}
