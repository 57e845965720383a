// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/madarhq/madar/internal/content"
	"github.com/madarhq/madar/internal/model"
)

// Meta holds the SEO meta tag data for a rendered page.
type Meta struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Canonical     string `json:"canonical,omitempty"`
	OGTitle       string `json:"og_title,omitempty"`
	OGDescription string `json:"og_description,omitempty"`
	OGImage       string `json:"og_image,omitempty"`
	OGType        string `json:"og_type"`
	OGSiteName    string `json:"og_site_name,omitempty"`
	OGURL         string `json:"og_url,omitempty"`
	OGLocale      string `json:"og_locale,omitempty"`
	Robots        string `json:"robots"`
	Direction     string `json:"direction"` // ltr or rtl for the rendered locale
}

// SiteConfig contains site-wide settings for SEO.
type SiteConfig struct {
	SiteName        string
	SiteURL         string
	SiteDescription string
	DefaultOGImage  string
}

// ogLocale maps a content locale to the Open Graph locale code.
func ogLocale(locale model.Locale) string {
	switch locale {
	case model.LocaleAR:
		return "ar_AR"
	default:
		return "en_US"
	}
}

// BuildPostMeta creates Meta for a post rendered in the given locale,
// applying the fallback chain: explicit meta fields, then derived content,
// then site defaults.
func BuildPostMeta(post *model.Post, locale model.Locale, site SiteConfig) Meta {
	meta := Meta{
		OGType:     "article",
		OGSiteName: site.SiteName,
		OGLocale:   ogLocale(locale),
		Direction:  locale.Direction(),
	}

	meta.Title = post.SEOTitle(locale)
	if meta.Title == "" {
		meta.Title = site.SiteName
	}
	meta.OGTitle = post.OGTitle
	if meta.OGTitle == "" {
		meta.OGTitle = meta.Title
	}

	meta.Description = post.SEODescription(locale)
	if meta.Description == "" && post.Body.Has(locale) {
		meta.Description = content.Excerpt(post.Body.Get(locale))
	}
	meta.OGDescription = post.OGDescription
	if meta.OGDescription == "" {
		meta.OGDescription = meta.Description
	}

	if img := post.OGImageURL(); img != "" {
		meta.OGImage = makeAbsoluteURL(img, site.SiteURL)
	} else if site.DefaultOGImage != "" {
		meta.OGImage = makeAbsoluteURL(site.DefaultOGImage, site.SiteURL)
	}

	if post.CanonicalURL != "" {
		meta.Canonical = post.CanonicalURL
	} else if slug := post.Slug.Get(locale); slug != "" {
		meta.Canonical = site.SiteURL + "/blog/" + slug
	}
	meta.OGURL = meta.Canonical

	if post.NoIndex {
		meta.Robots = "noindex,nofollow"
	} else {
		meta.Robots = "index,follow"
	}

	return meta
}

// BuildSiteMeta creates Meta for the homepage and index pages.
func BuildSiteMeta(locale model.Locale, site SiteConfig) Meta {
	meta := Meta{
		Title:         site.SiteName,
		Description:   site.SiteDescription,
		Canonical:     site.SiteURL,
		OGTitle:       site.SiteName,
		OGDescription: site.SiteDescription,
		OGType:        "website",
		OGSiteName:    site.SiteName,
		OGURL:         site.SiteURL,
		OGLocale:      ogLocale(locale),
		Robots:        "index,follow",
		Direction:     locale.Direction(),
	}
	if site.DefaultOGImage != "" {
		meta.OGImage = makeAbsoluteURL(site.DefaultOGImage, site.SiteURL)
	}
	return meta
}

// ArticleSchema represents JSON-LD Article structured data.
type ArticleSchema struct {
	Context          string     `json:"@context"`
	Type             string     `json:"@type"`
	Headline         string     `json:"headline"`
	Description      string     `json:"description,omitempty"`
	Image            string     `json:"image,omitempty"`
	InLanguage       string     `json:"inLanguage,omitempty"`
	DatePublished    string     `json:"datePublished,omitempty"`
	DateModified     string     `json:"dateModified,omitempty"`
	Publisher        *OrgSchema `json:"publisher,omitempty"`
	MainEntityOfPage string     `json:"mainEntityOfPage,omitempty"`
}

// OrgSchema represents JSON-LD Organization structured data.
type OrgSchema struct {
	Type string       `json:"@type"`
	Name string       `json:"name"`
	Logo *ImageSchema `json:"logo,omitempty"`
}

// ImageSchema represents JSON-LD ImageObject structured data.
type ImageSchema struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

// BuildArticleSchema creates JSON-LD Article structured data for a post in
// the given locale. Returns nil when the post has no title in that locale.
func BuildArticleSchema(post *model.Post, locale model.Locale, site SiteConfig) []byte {
	if !post.Title.Has(locale) {
		return nil
	}

	article := ArticleSchema{
		Context:     "https://schema.org",
		Type:        "Article",
		Headline:    post.Title.Get(locale),
		Description: post.SEODescription(locale),
		InLanguage:  string(locale),
	}
	if slug := post.Slug.Get(locale); slug != "" {
		article.MainEntityOfPage = site.SiteURL + "/blog/" + slug
	}
	if img := post.OGImageURL(); img != "" {
		article.Image = makeAbsoluteURL(img, site.SiteURL)
	}
	if post.PublishedAt.Valid {
		article.DatePublished = post.PublishedAt.Time.Format(time.RFC3339)
	}
	if !post.UpdatedAt.IsZero() {
		article.DateModified = post.UpdatedAt.Format(time.RFC3339)
	}
	article.Publisher = &OrgSchema{
		Type: "Organization",
		Name: site.SiteName,
	}
	if site.DefaultOGImage != "" {
		article.Publisher.Logo = &ImageSchema{
			Type: "ImageObject",
			URL:  makeAbsoluteURL(site.DefaultOGImage, site.SiteURL),
		}
	}

	data, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return nil
	}
	return data
}

// makeAbsoluteURL ensures a URL is absolute by prepending site URL if needed.
func makeAbsoluteURL(url, siteURL string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	siteURL = strings.TrimSuffix(siteURL, "/")
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return siteURL + url
}
