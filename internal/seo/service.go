// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/madarhq/madar/internal/cache"
	"github.com/madarhq/madar/internal/store"
)

// SitemapTTL is how long a built sitemap stays cached.
const SitemapTTL = 24 * time.Hour

const sitemapCacheKey = "seo:sitemap.xml"
const robotsCacheKey = "seo:robots.txt"

// SitemapStore is the slice of the query layer the sitemap needs.
type SitemapStore interface {
	ListPostsForSitemap(ctx context.Context) ([]store.SitemapEntry, error)
	ListActiveCategoriesForSitemap(ctx context.Context) ([]store.SitemapEntry, error)
	ListTagsForSitemap(ctx context.Context) ([]store.SitemapEntry, error)
}

// Service builds and caches the sitemap and robots.txt documents.
type Service struct {
	store   SitemapStore
	cache   cache.Cacher
	siteURL string
}

// NewService creates an SEO service for the given site URL.
func NewService(s SitemapStore, c cache.Cacher, siteURL string) *Service {
	return &Service{store: s, cache: c, siteURL: siteURL}
}

// Sitemap returns the sitemap XML, building and caching it on a miss.
func (s *Service) Sitemap(ctx context.Context) ([]byte, error) {
	if cached, err := s.cache.Get(ctx, sitemapCacheKey); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, err
	}
	return s.RebuildSitemap(ctx)
}

// RebuildSitemap regenerates the sitemap from the store and refreshes the
// cached copy regardless of its current state.
func (s *Service) RebuildSitemap(ctx context.Context) ([]byte, error) {
	posts, err := s.store.ListPostsForSitemap(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing posts for sitemap: %w", err)
	}
	categories, err := s.store.ListActiveCategoriesForSitemap(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories for sitemap: %w", err)
	}
	tags, err := s.store.ListTagsForSitemap(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags for sitemap: %w", err)
	}

	xml, err := GenerateSitemap(s.siteURL, posts, categories, tags)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, sitemapCacheKey, xml, SitemapTTL); err != nil {
		return nil, err
	}
	return xml, nil
}

// Robots returns the robots.txt body, building and caching it on a miss.
func (s *Service) Robots(ctx context.Context, disallowAll bool) ([]byte, error) {
	if cached, err := s.cache.Get(ctx, robotsCacheKey); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, err
	}

	body := []byte(GenerateRobots(s.siteURL, disallowAll, ""))
	if err := s.cache.Set(ctx, robotsCacheKey, body, SitemapTTL); err != nil {
		return nil, err
	}
	return body, nil
}

// Invalidate drops the cached documents. Call after content changes.
func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.cache.Delete(ctx, sitemapCacheKey); err != nil {
		return err
	}
	return s.cache.Delete(ctx, robotsCacheKey)
}
