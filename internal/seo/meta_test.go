package seo

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/madarhq/madar/internal/model"
)

func testSite() SiteConfig {
	return SiteConfig{
		SiteName:        "Madar",
		SiteURL:         "https://example.com",
		SiteDescription: "A bilingual blog",
		DefaultOGImage:  "/img/default-og.png",
	}
}

func TestBuildPostMetaFallbacks(t *testing.T) {
	post := &model.Post{
		Title:   model.TranslatedString{model.LocaleEN: "Hello World"},
		Slug:    model.TranslatedString{model.LocaleEN: "hello-world"},
		Excerpt: model.TranslatedString{model.LocaleEN: "A short excerpt."},
	}

	meta := BuildPostMeta(post, model.LocaleEN, testSite())

	if meta.Title != "Hello World" {
		t.Errorf("Title = %q, want post title fallback", meta.Title)
	}
	if meta.Description != "A short excerpt." {
		t.Errorf("Description = %q, want excerpt fallback", meta.Description)
	}
	if meta.Canonical != "https://example.com/blog/hello-world" {
		t.Errorf("Canonical = %q", meta.Canonical)
	}
	if meta.OGImage != "https://example.com/img/default-og.png" {
		t.Errorf("OGImage = %q, want absolute site default", meta.OGImage)
	}
	if meta.Robots != "index,follow" {
		t.Errorf("Robots = %q", meta.Robots)
	}
	if meta.OGType != "article" {
		t.Errorf("OGType = %q", meta.OGType)
	}
	if meta.Direction != "ltr" {
		t.Errorf("Direction = %q", meta.Direction)
	}
}

func TestBuildPostMetaExplicitFieldsWin(t *testing.T) {
	post := &model.Post{
		Title:           model.TranslatedString{model.LocaleEN: "Hello World"},
		Slug:            model.TranslatedString{model.LocaleEN: "hello-world"},
		MetaTitle:       "Custom Meta Title",
		MetaDescription: "Custom description.",
		CanonicalURL:    "https://other.example/canonical",
		OGImage:         "https://cdn.example.com/og.png",
		NoIndex:         true,
	}

	meta := BuildPostMeta(post, model.LocaleEN, testSite())

	if meta.Title != "Custom Meta Title" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Description != "Custom description." {
		t.Errorf("Description = %q", meta.Description)
	}
	if meta.Canonical != "https://other.example/canonical" {
		t.Errorf("Canonical = %q", meta.Canonical)
	}
	if meta.OGImage != "https://cdn.example.com/og.png" {
		t.Errorf("absolute OGImage rewritten: %q", meta.OGImage)
	}
	if meta.Robots != "noindex,nofollow" {
		t.Errorf("Robots = %q", meta.Robots)
	}
}

func TestBuildPostMetaArabic(t *testing.T) {
	post := &model.Post{
		Title: model.TranslatedString{model.LocaleAR: "مرحبا بالعالم"},
		Slug:  model.TranslatedString{model.LocaleAR: "مرحبا-بالعالم"},
		Body:  model.TranslatedString{model.LocaleAR: "<p>نص المقال الكامل هنا.</p>"},
	}

	meta := BuildPostMeta(post, model.LocaleAR, testSite())

	if meta.Title != "مرحبا بالعالم" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Description != "نص المقال الكامل هنا." {
		t.Errorf("Description = %q, want body-derived excerpt", meta.Description)
	}
	if meta.OGLocale != "ar_AR" {
		t.Errorf("OGLocale = %q", meta.OGLocale)
	}
	if meta.Direction != "rtl" {
		t.Errorf("Direction = %q", meta.Direction)
	}
}

func TestBuildSiteMeta(t *testing.T) {
	meta := BuildSiteMeta(model.LocaleEN, testSite())

	if meta.Title != "Madar" || meta.OGType != "website" {
		t.Errorf("meta = %+v", meta)
	}
	if meta.Description != "A bilingual blog" {
		t.Errorf("Description = %q", meta.Description)
	}
}

func TestBuildArticleSchema(t *testing.T) {
	published := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	post := &model.Post{
		Title:       model.TranslatedString{model.LocaleEN: "Hello World"},
		Slug:        model.TranslatedString{model.LocaleEN: "hello-world"},
		PublishedAt: sql.NullTime{Time: published, Valid: true},
		UpdatedAt:   published.Add(24 * time.Hour),
	}

	data := BuildArticleSchema(post, model.LocaleEN, testSite())
	if data == nil {
		t.Fatal("schema is nil")
	}
	out := string(data)

	for _, want := range []string{
		`"@type": "Article"`,
		`"headline": "Hello World"`,
		`"inLanguage": "en"`,
		`"datePublished": "2026-02-01T09:00:00Z"`,
		`"mainEntityOfPage": "https://example.com/blog/hello-world"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("schema missing %s:\n%s", want, out)
		}
	}
}

func TestBuildArticleSchemaMissingLocale(t *testing.T) {
	post := &model.Post{
		Title: model.TranslatedString{model.LocaleEN: "Hello World"},
	}
	if data := BuildArticleSchema(post, model.LocaleAR, testSite()); data != nil {
		t.Errorf("expected nil schema for untranslated post, got %s", data)
	}
}

func TestMakeAbsoluteURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"empty", "", ""},
		{"already absolute", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"rooted path", "/img/a.png", "https://example.com/img/a.png"},
		{"bare path", "img/a.png", "https://example.com/img/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := makeAbsoluteURL(tt.url, "https://example.com/"); got != tt.want {
				t.Errorf("makeAbsoluteURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
