package seo

import (
	"strings"
	"testing"
	"time"

	"github.com/madarhq/madar/internal/model"
	"github.com/madarhq/madar/internal/store"
)

func TestSitemapBuilderPerLocaleURLs(t *testing.T) {
	b := NewSitemapBuilder("https://example.com")
	b.AddPost(store.SitemapEntry{
		Slug: model.TranslatedString{
			model.LocaleEN: "hello-world",
			model.LocaleAR: "مرحبا-بالعالم",
		},
		UpdatedAt: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	})

	xml, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	out := string(xml)

	for _, want := range []string{
		"https://example.com/blog/hello-world",
		"https://example.com/blog/مرحبا-بالعالم",
		"2026-01-15T12:00:00Z",
		"<changefreq>weekly</changefreq>",
		"<priority>0.8</priority>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("sitemap missing %q:\n%s", want, out)
		}
	}
}

func TestSitemapBuilderSkipsEmptySlugSlots(t *testing.T) {
	b := NewSitemapBuilder("https://example.com")
	b.AddPost(store.SitemapEntry{
		Slug: model.TranslatedString{model.LocaleEN: "english-only"},
	})

	xml, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	out := string(xml)

	if got := strings.Count(out, "<url>"); got != 1 {
		t.Errorf("url entries = %d, want 1:\n%s", got, out)
	}
}

func TestSitemapBuilderDeduplicatesSharedSlugs(t *testing.T) {
	b := NewSitemapBuilder("https://example.com")
	// Numeric slugs can be identical across locales.
	b.AddTag(store.SitemapEntry{
		Slug: model.TranslatedString{
			model.LocaleEN: "2026",
			model.LocaleAR: "2026",
		},
	})

	xml, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := strings.Count(string(xml), "<url>"); got != 1 {
		t.Errorf("url entries = %d, want 1", got)
	}
}

func TestGenerateSitemap(t *testing.T) {
	posts := []store.SitemapEntry{
		{Slug: model.TranslatedString{model.LocaleEN: "first-post"}},
	}
	categories := []store.SitemapEntry{
		{Slug: model.TranslatedString{model.LocaleEN: "news"}},
	}
	tags := []store.SitemapEntry{
		{Slug: model.TranslatedString{model.LocaleEN: "golang"}},
	}

	xml, err := GenerateSitemap("https://example.com", posts, categories, tags)
	if err != nil {
		t.Fatalf("GenerateSitemap: %v", err)
	}
	out := string(xml)

	for _, want := range []string{
		XMLNamespace,
		"https://example.com/",
		"https://example.com/blog",
		"https://example.com/blog/first-post",
		"https://example.com/blog/category/news",
		"https://example.com/blog/tag/golang",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
	if !strings.HasPrefix(out, "<?xml") {
		t.Error("sitemap missing XML header")
	}
}
