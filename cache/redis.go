// Package cache keeps availability search results in Redis. Entries are
// namespaced by a per-restaurant version so a single INCR invalidates every
// cached search for that restaurant.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type SearchCache struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{Client: client, TTL: ttl, Prefix: "booktable"}
}

func (c *SearchCache) versionKey(restaurantID uint) string {
	return c.Prefix + ":ver:" + strconv.FormatUint(uint64(restaurantID), 10)
}

func (c *SearchCache) version(ctx context.Context, restaurantID uint) (int64, error) {
	v, err := c.Client.Get(ctx, c.versionKey(restaurantID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Key resolves the versioned entry key for a restaurant's search. Resolve it
// once per lookup and pass it to both Get and Set, so a result computed before
// an invalidation is stored under the old version.
func (c *SearchCache) Key(ctx context.Context, restaurantID uint, key string) (string, error) {
	v, err := c.version(ctx, restaurantID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:slots:%d:%d:%s", c.Prefix, restaurantID, v, key), nil
}

// Get decodes a cached value into dst and reports whether it was present.
func (c *SearchCache) Get(ctx context.Context, entryKey string, dst any) (bool, error) {
	raw, err := c.Client.Get(ctx, entryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *SearchCache) Set(ctx context.Context, entryKey string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, entryKey, raw, c.TTL).Err()
}

// Invalidate drops every cached entry for the restaurant.
func (c *SearchCache) Invalidate(ctx context.Context, restaurantID uint) error {
	return c.Client.Incr(ctx, c.versionKey(restaurantID)).Err()
}
