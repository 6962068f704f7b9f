// Package cache provides the byte-oriented cache used for hot read paths,
// with in-memory and Redis backends and a JSON-typed wrapper.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Error is a sentinel error type for cache failures.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrCacheMiss is returned when a key is absent or expired.
	ErrCacheMiss Error = "cache miss"
	// ErrCacheClosed is returned by operations on a closed cache.
	ErrCacheClosed Error = "cache closed"
)

// Cache is implemented by every backend.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) (bool, error)
	Close() error
}

// Options selects and tunes a backend.
type Options struct {
	Driver   string
	TTL      time.Duration
	MaxSize  int
	RedisURL string
	Prefix   string
}

// New builds the backend named by opts.Driver ("memory" or "redis").
func New(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Driver {
	case "", "memory":
		return NewMemoryCache(opts.TTL, opts.MaxSize), nil
	case "redis":
		return NewRedisCache(ctx, opts.RedisURL, opts.Prefix, opts.TTL)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", opts.Driver)
	}
}
