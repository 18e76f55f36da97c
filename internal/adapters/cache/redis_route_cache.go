package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"location-distance-service/internal/ports"
)

// Aggregate routes are cheap to recompute from the distance store, so a
// short TTL keeps the cache honest after location edits.
const routeTTL = 7 * 24 * time.Hour

// RedisRouteCache holds computed multi-stop routes keyed by a hash of the
// ordered location id list.
type RedisRouteCache struct {
	rdb *redis.Client
}

func NewRedisRouteCache(rdb *redis.Client) *RedisRouteCache {
	return &RedisRouteCache{rdb: rdb}
}

func routeCacheKey(key string) string {
	return "multi_route:" + key
}

// Fetch a cached aggregate route.
func (c *RedisRouteCache) GetAggregate(
	ctx context.Context,
	key string,
) (*ports.AggregateRoute, bool, error) {
	if c.rdb == nil {
		return nil, false, errors.New("route cache: redis client is nil")
	}

	raw, err := c.rdb.Get(ctx, routeCacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	var route ports.AggregateRoute
	if err := json.Unmarshal(raw, &route); err != nil {
		return nil, false, fmt.Errorf("get route cache key=%q: decode: %w", key, err)
	}

	return &route, true, nil
}

// Store an aggregate route with the standard TTL.
func (c *RedisRouteCache) PutAggregate(
	ctx context.Context,
	key string,
	route *ports.AggregateRoute,
) error {
	if c.rdb == nil {
		return errors.New("route cache: redis client is nil")
	}
	if route == nil {
		return errors.New("put route cache: route is nil")
	}

	raw, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("put route cache key=%q: encode: %w", key, err)
	}

	if err := c.rdb.Set(ctx, routeCacheKey(key), raw, routeTTL).Err(); err != nil {
		return fmt.Errorf("put route cache key=%q: %w", key, err)
	}

	return nil
}
