package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Availability figures go stale fast while batches run, so entries
// live only briefly.
const availabilityTTL = 2 * time.Minute

const availabilityKeyPrefix = "stock:"

// Redis-backed cache for POS availability lookups.
type RedisAvailabilityCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisAvailabilityCache(client *redis.Client) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{Client: client, TTL: availabilityTTL}
}

func availabilityKey(productID int64) string {
	return availabilityKeyPrefix + strconv.FormatInt(productID, 10)
}

// GetMany fetches cached availability for the given ids. Ids without a
// cached entry are absent from the result.
func (c *RedisAvailabilityCache) GetMany(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	if c.Client == nil {
		return nil, errors.New("availability cache: client is nil")
	}
	if len(productIDs) == 0 {
		return map[int64]int64{}, nil
	}

	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = availabilityKey(id)
	}

	values, err := c.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get availability cache: mget: %w", err)
	}

	out := make(map[int64]int64, len(productIDs))
	for i, v := range values {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		qty, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		out[productIDs[i]] = qty
	}
	return out, nil
}

// PutMany stores availability figures with a short TTL.
func (c *RedisAvailabilityCache) PutMany(ctx context.Context, availability map[int64]int64) error {
	if c.Client == nil {
		return errors.New("availability cache: client is nil")
	}
	if len(availability) == 0 {
		return nil
	}

	ttl := c.TTL
	if ttl <= 0 {
		ttl = availabilityTTL
	}

	pipe := c.Client.Pipeline()
	for id, qty := range availability {
		pipe.Set(ctx, availabilityKey(id), strconv.FormatInt(qty, 10), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put availability cache: pipeline exec: %w", err)
	}
	return nil
}
