package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache(t *testing.T) {
	_, c := newTestRedis(t)
	exerciseCache(t, c)
}

func TestRedisCacheTTL(t *testing.T) {
	mr, c := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "user:1:posts", []byte("v"), 300*time.Second))
	require.Equal(t, 300*time.Second, mr.TTL("user:1:posts"))

	mr.FastForward(301 * time.Second)
	_, ok, err := c.Get(ctx, "user:1:posts")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCacheDeleteByPrefixManyKeys(t *testing.T) {
	mr, c := newTestRedis(t)
	ctx := context.Background()
	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set("user:7:k"+strconv.Itoa(i), "x"))
	}
	require.NoError(t, mr.Set("user:8:posts", "keep"))

	require.NoError(t, c.DeleteByPrefix(ctx, UserPrefix(7)))
	require.Equal(t, []string{"user:8:posts"}, mr.Keys())
}

func TestRedisCacheUnavailable(t *testing.T) {
	mr, c := newTestRedis(t)
	mr.Close()
	ctx := context.Background()

	_, _, err := c.Get(ctx, "user:1:posts")
	require.Error(t, err)
	require.Error(t, c.Ping(ctx))
	require.Error(t, c.DeleteByPrefix(ctx, UserPrefix(1)))
}

func TestEscapeGlob(t *testing.T) {
	require.Equal(t, `user:1:`, escapeGlob("user:1:"))
	require.Equal(t, `a\*b\?\[c\]\\`, escapeGlob(`a*b?[c]\`))
}
