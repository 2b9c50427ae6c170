package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

// LRUCache is a size-bounded in-process Store built on ristretto. It is used
// when no Redis server is available (CACHE_BACKEND=memory).
type LRUCache struct {
	cache      *ristretto.Cache
	defaultTTL time.Duration
	now        func() time.Time
}

var _ Store = (*LRUCache)(nil)

// cacheItem wraps the data with its expiration time so TTL can be answered.
type cacheItem struct {
	data      []byte
	expiresAt time.Time
}

// NewLRU creates a new LRU cache.
// maxSizeMB bounds the total payload size, maxEntries sizes the admission
// counters and defaultTTL applies when Set is called with a zero TTL.
func NewLRU(maxSizeMB int64, maxEntries int64, defaultTTL time.Duration) (*LRUCache, error) {
	// NumCounters should be ~10x the number of entries for optimal performance
	numCounters := maxEntries * 10
	if numCounters < 1000 {
		numCounters = 1000
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 1
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxSizeMB * 1024 * 1024,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &LRUCache{
		cache:      c,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// lookup returns the live item for key, dropping it if expired.
func (c *LRUCache) lookup(key string) (*cacheItem, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	item, ok := val.(*cacheItem)
	if !ok || !c.now().Before(item.expiresAt) {
		c.cache.Del(key)
		return nil, false
	}
	return item, true
}

func (c *LRUCache) Get(_ context.Context, key string) ([]byte, error) {
	item, ok := c.lookup(key)
	if !ok {
		return nil, ErrNotFound
	}
	return item.data, nil
}

func (c *LRUCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	item := &cacheItem{
		data:      value,
		expiresAt: c.now().Add(ttl),
	}

	// Rejections by the admission policy are indistinguishable from a later
	// eviction, so the return value is ignored.
	_ = c.cache.Set(key, item, int64(len(value)))

	// Make the value visible to the next Get.
	c.cache.Wait()
	return nil
}

func (c *LRUCache) Delete(_ context.Context, key string) (int64, error) {
	_, live := c.lookup(key)
	c.cache.Del(key)
	if live {
		return 1, nil
	}
	return 0, nil
}

func (c *LRUCache) TTL(_ context.Context, key string) (time.Duration, error) {
	item, ok := c.lookup(key)
	if !ok {
		return TTLMissing, nil
	}
	return item.expiresAt.Sub(c.now()), nil
}

func (c *LRUCache) Ping(context.Context) error { return nil }

// Close closes the cache and releases resources.
func (c *LRUCache) Close() error {
	c.cache.Close()
	return nil
}
