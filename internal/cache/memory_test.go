// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCacheGetSet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get on missing key = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired Get = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheDeleteByPrefix(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"blog:posts:1", "blog:posts:2", "sitemap:xml"} {
		if err := c.Set(ctx, key, []byte("x"), 0); err != nil {
			t.Fatalf("Set(%q): %v", key, err)
		}
	}

	if err := c.DeleteByPrefix(ctx, "blog:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	for _, key := range []string{"blog:posts:1", "blog:posts:2"} {
		if has, _ := c.Has(ctx, key); has {
			t.Errorf("key %q should have been deleted", key)
		}
	}
	if has, _ := c.Has(ctx, "sitemap:xml"); !has {
		t.Error("key outside prefix should survive")
	}
}

func TestMemoryCacheIncrBy(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	got, err := c.IncrBy(ctx, "counter", 1)
	if err != nil {
		t.Fatalf("IncrBy: %v", err)
	}
	if got != 1 {
		t.Errorf("first IncrBy = %d, want 1", got)
	}

	got, err = c.IncrBy(ctx, "counter", 4)
	if err != nil {
		t.Fatalf("IncrBy: %v", err)
	}
	if got != 5 {
		t.Errorf("IncrBy = %d, want 5", got)
	}

	n, err := c.GetInt(ctx, "counter")
	if err != nil {
		t.Fatalf("GetInt: %v", err)
	}
	if n != 5 {
		t.Errorf("GetInt = %d, want 5", n)
	}
}

func TestMemoryCacheIncrByConcurrent(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.IncrBy(ctx, "counter", 1); err != nil {
				t.Errorf("IncrBy: %v", err)
			}
		}()
	}
	wg.Wait()

	n, err := c.GetInt(ctx, "counter")
	if err != nil {
		t.Fatalf("GetInt: %v", err)
	}
	if n != 50 {
		t.Errorf("concurrent IncrBy lost updates: got %d, want 50", n)
	}
}

func TestMemoryCacheDeleteIfEquals(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if _, err := c.IncrBy(ctx, "counter", 10); err != nil {
		t.Fatalf("IncrBy: %v", err)
	}

	deleted, err := c.DeleteIfEquals(ctx, "counter", 7)
	if err != nil {
		t.Fatalf("DeleteIfEquals: %v", err)
	}
	if deleted {
		t.Error("DeleteIfEquals with wrong value should not delete")
	}

	deleted, err = c.DeleteIfEquals(ctx, "counter", 10)
	if err != nil {
		t.Fatalf("DeleteIfEquals: %v", err)
	}
	if !deleted {
		t.Error("DeleteIfEquals with matching value should delete")
	}

	if _, err := c.GetInt(ctx, "counter"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("counter should be gone, got err %v", err)
	}

	// Deleting an absent key is a no-op, not an error
	deleted, err = c.DeleteIfEquals(ctx, "counter", 10)
	if err != nil {
		t.Fatalf("DeleteIfEquals on absent key: %v", err)
	}
	if deleted {
		t.Error("DeleteIfEquals on absent key should report false")
	}
}

func TestMemoryCacheGetIntNonInteger(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("not a number"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := c.GetInt(ctx, "key"); !errors.Is(err, ErrNotInteger) {
		t.Errorf("GetInt on text = %v, want ErrNotInteger", err)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(ctx, "key", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close = %v, want ErrCacheClosed", err)
	}
	if _, err := c.IncrBy(ctx, "key", 1); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("IncrBy after Close = %v, want ErrCacheClosed", err)
	}
}
