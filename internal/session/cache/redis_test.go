package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "h1", Entry{UserID: "u-1"}, time.Hour))

	raw, err := mr.Get("session:h1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"u-1"}`, raw)
	assert.Equal(t, time.Hour, mr.TTL("session:h1"))

	e, ok, err := c.Get(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u-1", e.UserID)
}

func TestRedisCache_MissAndExpiry(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "h1", Entry{UserID: "u-1"}, time.Minute))
	mr.FastForward(time.Minute)
	_, ok, err = c.Get(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire with its TTL")
}

func TestRedisCache_Delete(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", Entry{UserID: "u-1"}, time.Hour))
	require.NoError(t, c.Set(ctx, "b", Entry{}, time.Hour))
	require.NoError(t, c.Delete(ctx, "a", "b"))
	require.NoError(t, c.Delete(ctx))
	assert.False(t, mr.Exists("session:a"))
	assert.False(t, mr.Exists("session:b"))
}

func TestRedisCache_CorruptValue(t *testing.T) {
	c, mr := newTestRedis(t)
	require.NoError(t, mr.Set("session:bad", "not-json"))

	_, ok, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisCache_PingFailsWhenServerDown(t *testing.T) {
	c, mr := newTestRedis(t)
	require.NoError(t, c.Ping(context.Background()))
	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/2")
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, 2, client.Options().DB)

	_, err = NewRedisClient("http://nope")
	assert.Error(t, err)
}
