package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewRedisCache(client, "catalog")
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "product:1", []byte(`{"id":"1"}`), time.Hour))
	assert.True(t, mr.Exists("catalog:product:1"))
	assert.Equal(t, time.Hour, mr.TTL("catalog:product:1"))

	val, ok, err := c.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"1"}`, string(val))

	require.NoError(t, c.Delete(ctx, "product:1"))
	_, ok, err = c.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_FlushOnlyTouchesNamespace(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewRedisCache(client, "catalog")
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("products:page=%d", i), []byte("x"), time.Hour))
	}
	require.NoError(t, mr.Set("rl:10.0.0.1:1", "4"))

	require.NoError(t, c.Flush(ctx))

	assert.Equal(t, []string{"rl:10.0.0.1:1"}, mr.Keys())
}

func TestRedisCache_FlushWithoutPrefixClearsDB(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewRedisCache(client, "")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Flush(ctx))
	assert.Empty(t, mr.Keys())
}

func TestRedisCache_ErrorsSurfaceWhenServerDown(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewRedisCache(client, "catalog")
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, c.Flush(context.Background()))
}
