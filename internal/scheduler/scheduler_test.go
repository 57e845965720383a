// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/madarhq/madar/internal/cache"
	"github.com/madarhq/madar/internal/middleware"
	"github.com/madarhq/madar/internal/seo"
	"github.com/madarhq/madar/internal/store"
)

func TestSchedulerStartStop(t *testing.T) {
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	seoService := seo.NewService(emptyStore{}, c, "https://example.com")
	limiter := middleware.NewRateLimiter(10, 20)

	s := New(seoService, limiter, slog.Default())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := len(s.cron.Entries()); got != 2 {
		t.Errorf("registered jobs = %d, want 2", got)
	}
	s.Stop()
}

type emptyStore struct{}

func (emptyStore) ListPostsForSitemap(_ context.Context) ([]store.SitemapEntry, error) {
	return nil, nil
}

func (emptyStore) ListActiveCategoriesForSitemap(_ context.Context) ([]store.SitemapEntry, error) {
	return nil, nil
}

func (emptyStore) ListTagsForSitemap(_ context.Context) ([]store.SitemapEntry, error) {
	return nil, nil
}
