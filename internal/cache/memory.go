package cache

import (
	"context"
	"sync"
	"time"

	shardedcache "github.com/simp-lee/cache"
)

// Small bounded caches use a single shard so that maxSize stays an exact
// bound rather than a per-shard one.
const (
	defaultShards    = 32
	smallCacheShards = 1
	cleanupInterval  = time.Minute
)

// MemoryCache stores copies of values in a sharded in-process cache. When a
// shard is full the oldest entry in it is evicted.
type MemoryCache struct {
	mu     sync.RWMutex
	store  shardedcache.CacheInterface
	closed bool
}

// NewMemoryCache creates an in-memory cache. maxSize <= 0 means unbounded;
// defaultTTL <= 0 means entries set without a ttl never expire.
func NewMemoryCache(defaultTTL time.Duration, maxSize int) *MemoryCache {
	shards, perShard := defaultShards, 0
	if maxSize > 0 {
		if maxSize < defaultShards*8 {
			shards = smallCacheShards
		}
		perShard = (maxSize + shards - 1) / shards
	}
	return &MemoryCache{store: shardedcache.NewCache(shardedcache.Options{
		MaxSize:           perShard,
		DefaultExpiration: max(defaultTTL, 0),
		CleanupInterval:   cleanupInterval,
		ShardCount:        shards,
	})}
}

// Get returns a copy of the stored value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrCacheClosed
	}
	v, ok := shardedcache.GetTyped[[]byte](c.store, key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value. A zero ttl uses the cache default.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = shardedcache.DefaultExpiration
	}
	c.store.SetWithExpiration(key, append([]byte(nil), value...), ttl)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrCacheClosed
	}
	c.store.Delete(key)
	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrCacheClosed
	}
	c.store.Clear()
	return nil
}

// Has reports whether key holds an unexpired value.
func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false, ErrCacheClosed
	}
	return c.store.Has(key), nil
}

// Len returns the number of stored entries, expired ones not yet swept
// included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0
	}
	return c.store.Count()
}

// Close stops the cleaner. Later calls return ErrCacheClosed.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.store.Close()
	return nil
}
