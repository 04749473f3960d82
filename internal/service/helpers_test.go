package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xxxsen/mblog/internal/cache"
	"github.com/xxxsen/mblog/internal/repo"
	"github.com/xxxsen/mblog/internal/testutil"
)

type testEnv struct {
	users *UserService
	auth  *AuthService
	posts *PostService
	cache *spyCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, dialect, cleanup := testutil.OpenTestDB(t)
	t.Cleanup(cleanup)

	users := NewUserService(repo.NewUserRepo(conn, dialect))
	spy := &spyCache{inner: cache.NewLRU(100, time.Hour)}
	return &testEnv{
		users: users,
		auth:  NewAuthService(users, []byte("test-secret"), time.Hour),
		posts: NewPostService(repo.NewPostRepo(conn, dialect), spy, time.Minute, DefaultMaxPostBytes),
		cache: spy,
	}
}

var errCacheDown = errors.New("cache down")

// spyCache counts calls and can be switched into a failing mode.
type spyCache struct {
	inner cache.Cache

	mu          sync.Mutex
	failing     bool
	gets        int
	hits        int
	sets        int
	invalidates []string
}

func (c *spyCache) setFailing(failing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing = failing
}

func (c *spyCache) isFailing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failing
}

func (c *spyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	if c.isFailing() {
		return nil, false, errCacheDown
	}
	value, ok, err := c.inner.Get(ctx, key)
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
	}
	return value, ok, err
}

func (c *spyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	if c.isFailing() {
		return errCacheDown
	}
	return c.inner.Set(ctx, key, value, ttl)
}

func (c *spyCache) Delete(ctx context.Context, key string) error {
	if c.isFailing() {
		return errCacheDown
	}
	return c.inner.Delete(ctx, key)
}

func (c *spyCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	c.invalidates = append(c.invalidates, prefix)
	c.mu.Unlock()
	if c.isFailing() {
		return errCacheDown
	}
	return c.inner.DeleteByPrefix(ctx, prefix)
}

func (c *spyCache) Ping(ctx context.Context) error {
	if c.isFailing() {
		return errCacheDown
	}
	return c.inner.Ping(ctx)
}

func (c *spyCache) Close() error {
	return c.inner.Close()
}

func (c *spyCache) stats() (gets, hits, sets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets, c.hits, c.sets
}

func (c *spyCache) invalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidates...)
}

func text(n int) string {
	return strings.Repeat("a", n)
}
