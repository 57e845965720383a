// Package seo provides SEO utilities for building meta tags, structured data,
// sitemaps and robots.txt.
package seo

import (
	"encoding/xml"
	"time"

	"github.com/madarhq/madar/internal/model"
	"github.com/madarhq/madar/internal/store"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Valid change frequency values.
const (
	ChangeFreqAlways  ChangeFreq = "always"
	ChangeFreqHourly  ChangeFreq = "hourly"
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
	ChangeFreqNever   ChangeFreq = "never"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapBuilder builds sitemap XML from translatable content. Each entry
// contributes one URL per locale that has a slug, so English and Arabic
// readers both find their edition indexed.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
	seen    map[string]bool
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: siteURL,
		urls:    make([]SitemapURL, 0),
		seen:    make(map[string]bool),
	}
}

// add appends a URL unless an identical location was already added. Entries
// whose locales share a slug would otherwise appear twice.
func (b *SitemapBuilder) add(url SitemapURL) {
	if b.seen[url.Loc] {
		return
	}
	b.seen[url.Loc] = true
	b.urls = append(b.urls, url)
}

// addEntry emits one URL per localized slug of the entry under pathPrefix.
func (b *SitemapBuilder) addEntry(entry store.SitemapEntry, pathPrefix string, freq ChangeFreq, priority string) {
	for _, locale := range model.Locales {
		slug := entry.Slug.Get(locale)
		if slug == "" {
			continue
		}
		url := SitemapURL{
			Loc:        b.siteURL + pathPrefix + slug,
			ChangeFreq: freq,
			Priority:   priority,
		}
		if !entry.UpdatedAt.IsZero() {
			url.LastMod = entry.UpdatedAt.Format(time.RFC3339)
		}
		b.add(url)
	}
}

// AddHomepage adds the homepage and the blog index to the sitemap.
func (b *SitemapBuilder) AddHomepage() {
	now := time.Now().Format(time.RFC3339)
	b.add(SitemapURL{
		Loc:        b.siteURL + "/",
		LastMod:    now,
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	})
	b.add(SitemapURL{
		Loc:        b.siteURL + "/blog",
		LastMod:    now,
		ChangeFreq: ChangeFreqDaily,
		Priority:   "0.9",
	})
}

// AddPost adds a published post to the sitemap.
func (b *SitemapBuilder) AddPost(entry store.SitemapEntry) {
	b.addEntry(entry, "/blog/", ChangeFreqWeekly, "0.8")
}

// AddPosts adds multiple posts to the sitemap.
func (b *SitemapBuilder) AddPosts(entries []store.SitemapEntry) {
	for _, e := range entries {
		b.AddPost(e)
	}
}

// AddCategory adds a category archive page to the sitemap.
func (b *SitemapBuilder) AddCategory(entry store.SitemapEntry) {
	b.addEntry(entry, "/blog/category/", ChangeFreqWeekly, "0.7")
}

// AddCategories adds multiple categories to the sitemap.
func (b *SitemapBuilder) AddCategories(entries []store.SitemapEntry) {
	for _, e := range entries {
		b.AddCategory(e)
	}
}

// AddTag adds a tag archive page to the sitemap.
func (b *SitemapBuilder) AddTag(entry store.SitemapEntry) {
	b.addEntry(entry, "/blog/tag/", ChangeFreqMonthly, "0.6")
}

// AddTags adds multiple tags to the sitemap.
func (b *SitemapBuilder) AddTags(entries []store.SitemapEntry) {
	for _, e := range entries {
		b.AddTag(e)
	}
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}

// GenerateSitemap is a convenience function to generate a sitemap from content.
func GenerateSitemap(siteURL string, posts, categories, tags []store.SitemapEntry) ([]byte, error) {
	builder := NewSitemapBuilder(siteURL)
	builder.AddHomepage()
	builder.AddPosts(posts)
	builder.AddCategories(categories)
	builder.AddTags(tags)
	return builder.Build()
}
