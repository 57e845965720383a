// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post represents a blog post with per-locale content fields.
type Post struct {
	ID                 int64            `json:"id"`
	Title              TranslatedString `json:"title"`
	Slug               TranslatedString `json:"slug"`
	Excerpt            TranslatedString `json:"excerpt"`
	Body               TranslatedString `json:"body"`
	AuthorID           int64            `json:"author_id"`
	CategoryID         sql.NullInt64    `json:"category_id"`
	Status             string           `json:"status"`
	FeaturedImage      string           `json:"featured_image,omitempty"`
	MetaTitle          string           `json:"meta_title,omitempty"`
	MetaDescription    string           `json:"meta_description,omitempty"`
	CanonicalURL       string           `json:"canonical_url,omitempty"`
	OGTitle            string           `json:"og_title,omitempty"`
	OGDescription      string           `json:"og_description,omitempty"`
	OGImage            string           `json:"og_image,omitempty"`
	NoIndex            bool             `json:"no_index"`
	ViewsCount         int64            `json:"views_count"`
	ReadingTimeMinutes int64            `json:"reading_time_minutes"`
	PublishedAt        sql.NullTime     `json:"published_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// IsPublished returns true if the post is published and its publish date has
// passed.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished &&
		p.PublishedAt.Valid && !p.PublishedAt.Time.After(time.Now())
}

// IsDraft returns true if the post is a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}

// SEOTitle returns the meta title, falling back to the post title.
func (p *Post) SEOTitle(locale Locale) string {
	if p.MetaTitle != "" {
		return p.MetaTitle
	}
	return p.Title.Get(locale)
}

// SEODescription returns the meta description, falling back to the excerpt.
func (p *Post) SEODescription(locale Locale) string {
	if p.MetaDescription != "" {
		return p.MetaDescription
	}
	return p.Excerpt.Get(locale)
}

// OGImageURL returns the Open Graph image, falling back to the featured image.
func (p *Post) OGImageURL() string {
	if p.OGImage != "" {
		return p.OGImage
	}
	return p.FeaturedImage
}
