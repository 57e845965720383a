package seo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/madarhq/madar/internal/cache"
	"github.com/madarhq/madar/internal/model"
	"github.com/madarhq/madar/internal/store"
)

type fakeSitemapStore struct {
	posts      []store.SitemapEntry
	categories []store.SitemapEntry
	tags       []store.SitemapEntry
	listCalls  int
}

func (f *fakeSitemapStore) ListPostsForSitemap(_ context.Context) ([]store.SitemapEntry, error) {
	f.listCalls++
	return f.posts, nil
}

func (f *fakeSitemapStore) ListActiveCategoriesForSitemap(_ context.Context) ([]store.SitemapEntry, error) {
	return f.categories, nil
}

func (f *fakeSitemapStore) ListTagsForSitemap(_ context.Context) ([]store.SitemapEntry, error) {
	return f.tags, nil
}

func testService(t *testing.T) (*Service, *fakeSitemapStore) {
	t.Helper()
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	fs := &fakeSitemapStore{
		posts: []store.SitemapEntry{
			{Slug: model.TranslatedString{model.LocaleEN: "hello-world"}},
		},
	}
	return NewService(fs, c, "https://example.com"), fs
}

func TestServiceSitemapCaches(t *testing.T) {
	ctx := context.Background()
	svc, fs := testService(t)

	first, err := svc.Sitemap(ctx)
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if !strings.Contains(string(first), "hello-world") {
		t.Errorf("sitemap missing post:\n%s", first)
	}

	second, err := svc.Sitemap(ctx)
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if string(first) != string(second) {
		t.Error("cached sitemap differs from built sitemap")
	}
	if fs.listCalls != 1 {
		t.Errorf("store queried %d times, want 1", fs.listCalls)
	}
}

func TestServiceInvalidateForcesRebuild(t *testing.T) {
	ctx := context.Background()
	svc, fs := testService(t)

	if _, err := svc.Sitemap(ctx); err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	fs.posts = append(fs.posts, store.SitemapEntry{
		Slug: model.TranslatedString{model.LocaleEN: "second-post"},
	})

	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	rebuilt, err := svc.Sitemap(ctx)
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if !strings.Contains(string(rebuilt), "second-post") {
		t.Errorf("rebuilt sitemap missing new post:\n%s", rebuilt)
	}
}

func TestServiceRobots(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)

	body, err := svc.Robots(ctx, false)
	if err != nil {
		t.Fatalf("Robots: %v", err)
	}
	if !strings.Contains(string(body), "Sitemap: https://example.com/sitemap.xml") {
		t.Errorf("robots.txt missing sitemap line:\n%s", body)
	}
}
