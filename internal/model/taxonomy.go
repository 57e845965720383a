// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Entity kinds for slug uniqueness scoping. Slugs are unique per kind per
// locale; a Post slug never collides with a Category slug.
const (
	KindPost     = "post"
	KindCategory = "category"
	KindTag      = "tag"
)

// Category groups posts and carries its own SEO metadata.
type Category struct {
	ID              int64            `json:"id"`
	Name            TranslatedString `json:"name"`
	Slug            TranslatedString `json:"slug"`
	Description     TranslatedString `json:"description"`
	Color           string           `json:"color"`
	MetaTitle       string           `json:"meta_title,omitempty"`
	MetaDescription string           `json:"meta_description,omitempty"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// SEOTitle returns the meta title, falling back to the category name.
func (c *Category) SEOTitle(locale Locale) string {
	if c.MetaTitle != "" {
		return c.MetaTitle
	}
	return c.Name.Get(locale)
}

// SEODescription returns the meta description, falling back to the
// category description.
func (c *Category) SEODescription(locale Locale) string {
	if c.MetaDescription != "" {
		return c.MetaDescription
	}
	return c.Description.Get(locale)
}

// Tag labels posts; posts and tags are linked many-to-many.
type Tag struct {
	ID              int64            `json:"id"`
	Name            TranslatedString `json:"name"`
	Slug            TranslatedString `json:"slug"`
	Description     TranslatedString `json:"description"`
	Color           string           `json:"color"`
	MetaTitle       string           `json:"meta_title,omitempty"`
	MetaDescription string           `json:"meta_description,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// SEOTitle returns the meta title, falling back to the tag name.
func (t *Tag) SEOTitle(locale Locale) string {
	if t.MetaTitle != "" {
		return t.MetaTitle
	}
	return t.Name.Get(locale)
}
