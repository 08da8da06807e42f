// internal/cache/redis_test.go
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

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, "test:", nil), mr
}

func TestRedis_SetGet(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("alpha"), time.Minute)

	val, ok := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("alpha"), val)

	// Prefixed under the hood.
	assert.True(t, mr.Exists("test:a"))

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestRedis_TTLExpiry(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("alpha"), time.Minute)
	mr.FastForward(time.Minute + time.Second)

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestRedis_Delete(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("alpha"), time.Minute)
	c.Delete(ctx, "a")

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestRedis_FailureDegradesToMiss(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	c := NewRedis(client, "test:", nil)

	mr.Close()

	_, ok := c.Get(context.Background(), "a")
	assert.False(t, ok)
	c.Set(context.Background(), "a", []byte("alpha"), time.Minute) // must not panic
}
