// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching layer for Madar: page/sitemap caching
// and the ephemeral counters behind view-count batching.
package cache

import (
	"context"
	"time"
)

// Cacher defines the interface for cache implementations.
// All implementations must be thread-safe.
// Values are []byte so in-memory and Redis backends stay interchangeable.
type Cacher interface {
	// Get retrieves a value from the cache.
	// Returns nil and ErrCacheMiss if not found or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the specified TTL.
	// If TTL is 0, uses the default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes all keys starting with the given prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Has checks if a key exists in the cache (and is not expired).
	Has(ctx context.Context, key string) (bool, error)

	// IncrBy atomically increments the integer stored at key by delta,
	// initializing it to delta when absent, and returns the new value.
	// Counter keys do not expire until deleted.
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)

	// GetInt returns the integer stored at key.
	// Returns 0 and ErrCacheMiss when the key is absent.
	GetInt(ctx context.Context, key string) (int64, error)

	// DeleteIfEquals removes key only while it still holds expected.
	// Returns true when the key was deleted. Used as a compare-and-delete
	// guard around counter flushes.
	DeleteIfEquals(ctx context.Context, key string, expected int64) (bool, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// StatsProvider is an optional interface for caches that provide statistics.
type StatsProvider interface {
	Stats() CacheStats
	ResetStats()
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
	Size    int64   `json:"size_bytes,omitempty"` // approximate, memory backend only
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"

	// ErrNotInteger indicates a counter operation hit a non-integer value.
	ErrNotInteger Error = "value is not an integer"
)
