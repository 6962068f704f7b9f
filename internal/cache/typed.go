package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Typed stores values of type T as JSON in an underlying Cache. A nil Typed
// or one wrapping a nil Cache is a pass-through that always misses, so callers
// can leave caching disabled without branching.
type Typed[T any] struct {
	cache Cache
	ttl   time.Duration
}

// NewTyped returns a typed view over c.
func NewTyped[T any](c Cache, ttl time.Duration) *Typed[T] {
	return &Typed[T]{cache: c, ttl: ttl}
}

// Get decodes the value under key. Undecodable entries count as a miss.
func (t *Typed[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	if t == nil || t.cache == nil {
		return zero, false
	}
	data, err := t.cache.Get(ctx, key)
	if err != nil {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false
	}
	return v, true
}

// Set encodes and stores v.
func (t *Typed[T]) Set(ctx context.Context, key string, v T) error {
	if t == nil || t.cache == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return t.cache.Set(ctx, key, data, t.ttl)
}

// Delete removes key.
func (t *Typed[T]) Delete(ctx context.Context, key string) error {
	if t == nil || t.cache == nil {
		return nil
	}
	err := t.cache.Delete(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return nil
	}
	return err
}

// GetOrSet returns the cached value or computes, stores and returns it.
// Errors from fn are returned unchanged and nothing is stored. A failure to
// store is ignored: the computed value is still returned.
func (t *Typed[T]) GetOrSet(ctx context.Context, key string, fn func() (T, error)) (T, error) {
	if v, ok := t.Get(ctx, key); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return v, err
	}
	_ = t.Set(ctx, key, v)
	return v, nil
}
