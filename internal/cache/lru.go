package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultLRUSize   = 10000
	defaultLRUMaxTTL = time.Hour
)

type lruConfig struct {
	Size       int `json:"size"`
	TTLSeconds int `json:"ttl_seconds"`
}

type lruEntry struct {
	value    []byte
	expireAt time.Time
}

// lruCache keeps entries in process. The expirable LRU enforces the upper
// bound on lifetime; per-entry ttl is checked on read.
type lruCache struct {
	cache  *expirable.LRU[string, lruEntry]
	maxTTL time.Duration
	now    func() time.Time
}

func init() {
	Register("lru", createLRUCache)
}

func createLRUCache(args interface{}) (Cache, error) {
	cfg := &lruConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	maxTTL := time.Duration(cfg.TTLSeconds) * time.Second
	return NewLRU(cfg.Size, maxTTL), nil
}

func NewLRU(size int, maxTTL time.Duration) Cache {
	if size <= 0 {
		size = defaultLRUSize
	}
	if maxTTL <= 0 {
		maxTTL = defaultLRUMaxTTL
	}
	return &lruCache{
		cache:  expirable.NewLRU[string, lruEntry](size, nil, maxTTL),
		maxTTL: maxTTL,
		now:    time.Now,
	}
}

func (l *lruCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := l.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !l.now().Before(entry.expireAt) {
		l.cache.Remove(key)
		return nil, false, nil
	}
	return cloneBytes(entry.value), true, nil
}

func (l *lruCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > l.maxTTL {
		ttl = l.maxTTL
	}
	l.cache.Add(key, lruEntry{value: cloneBytes(value), expireAt: l.now().Add(ttl)})
	return nil
}

func (l *lruCache) Delete(ctx context.Context, key string) error {
	l.cache.Remove(key)
	return nil
}

func (l *lruCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, key := range l.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			l.cache.Remove(key)
		}
	}
	return nil
}

func (l *lruCache) Ping(ctx context.Context) error {
	return nil
}

func (l *lruCache) Close() error {
	l.cache.Purge()
	return nil
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return nil
	}
	clone := make([]byte, len(value))
	copy(clone, value)
	return clone
}
