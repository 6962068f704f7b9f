package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get on empty cache: got %v, want ErrCacheMiss", err)
	}

	value := []byte("hello")
	if err := c.Set(ctx, "k", value, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'J'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get = %q, want %q", got, "hello")
	}

	got[0] = 'Y'
	again, _ := c.Get(ctx, "k")
	if string(again) != "hello" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(150*time.Millisecond, 0)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("a"), 20*time.Millisecond)
	_ = c.Set(ctx, "default", []byte("b"), 0)

	time.Sleep(50 * time.Millisecond)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry: got %v, want ErrCacheMiss", err)
	}
	if ok, _ := c.Has(ctx, "default"); !ok {
		t.Error("entry with default TTL should still be present")
	}

	time.Sleep(150 * time.Millisecond)
	if ok, _ := c.Has(ctx, "default"); ok {
		t.Error("entry should expire after the default TTL")
	}
}

func TestMemoryCache_NoDefaultTTL(t *testing.T) {
	c := NewMemoryCache(0, 0)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	time.Sleep(10 * time.Millisecond)
	if ok, _ := c.Has(ctx, "k"); !ok {
		t.Error("entry without a ttl should not expire")
	}
}

func TestMemoryCache_Eviction(t *testing.T) {
	c := NewMemoryCache(time.Hour, 2)
	defer c.Close()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
		time.Sleep(2 * time.Millisecond)
	}

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if ok, _ := c.Has(ctx, "a"); ok {
		t.Error("oldest entry should have been evicted")
	}

	// Overwriting an existing key never evicts.
	_ = c.Set(ctx, "b", []byte("22"), 0)
	if ok, _ := c.Has(ctx, "c"); !ok {
		t.Error("overwrite evicted an unrelated entry")
	}
	if c.Len() != 2 {
		t.Errorf("Len after overwrite = %d, want 2", c.Len())
	}
}

func TestMemoryCache_DeleteClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete missing key: %v", err)
	}
	if ok, _ := c.Has(ctx, "a"); ok {
		t.Error("deleted key still present")
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	ctx := context.Background()
	_ = c.Close()
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close: got %v, want ErrCacheClosed", err)
	}
	if err := c.Set(ctx, "k", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close: got %v, want ErrCacheClosed", err)
	}
	if _, err := c.Has(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Has after Close: got %v, want ErrCacheClosed", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		driver  string
		wantErr bool
	}{
		{driver: "", wantErr: false},
		{driver: "memory", wantErr: false},
		{driver: "memcached", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			c, err := New(context.Background(), Options{Driver: tt.driver, TTL: time.Minute})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.driver, err, tt.wantErr)
			}
			if c != nil {
				_ = c.Close()
			}
		})
	}
}
