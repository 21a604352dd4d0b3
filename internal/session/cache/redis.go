package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores session entries as JSON strings with EX expiry.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps an existing client. The caller owns the client and closes it on shutdown.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisClient parses url (redis://[:password@]host:port/db) and returns a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// Get returns the entry for id. A missing key is (Entry{}, false, nil).
func (c *RedisCache) Get(ctx context.Context, id string) (Entry, bool, error) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Set stores e under id with expiry ttl.
func (c *RedisCache) Set(ctx context.Context, id string, e Entry, ttl time.Duration) error {
	if ttl <= 0 {
		return c.Delete(ctx, id)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(id), payload, ttl).Err()
}

// Delete removes the entries for ids in a single DEL.
func (c *RedisCache) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping checks connectivity to Redis.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
