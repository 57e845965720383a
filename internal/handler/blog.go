// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madarhq/madar/internal/cache"
	"github.com/madarhq/madar/internal/content"
	"github.com/madarhq/madar/internal/middleware"
	"github.com/madarhq/madar/internal/model"
	"github.com/madarhq/madar/internal/render"
	"github.com/madarhq/madar/internal/seo"
	"github.com/madarhq/madar/internal/settings"
	"github.com/madarhq/madar/internal/store"
)

const (
	fallbackPostsPerPage = 12
	maxBlogPerPage       = 48
	relatedPostsLimit    = 3
	popularTagsLimit     = 10

	// Rendered post bodies are cached per post per locale. Content writes
	// drop the whole "blog:" prefix.
	postHTMLCacheTTL = time.Hour

	popularTagsCacheTTL = 10 * time.Minute
)

// Blog serves the public, locale-aware blog endpoints.
type Blog struct {
	queries  *store.Queries
	settings *settings.Service
	seo      *seo.Service
	views    *content.Recorder
	cache    cache.Cacher
	logger   *slog.Logger

	siteURL string
	isDev   bool
}

// NewBlog creates the public blog handler. siteURL is the configured base
// URL, used when the site_url setting is unset.
func NewBlog(db *sql.DB, settingsSvc *settings.Service, seoSvc *seo.Service,
	views *content.Recorder, c cache.Cacher, logger *slog.Logger, siteURL string, isDev bool) *Blog {
	return &Blog{
		queries:  store.New(db),
		settings: settingsSvc,
		seo:      seoSvc,
		views:    views,
		cache:    c,
		logger:   logger,
		siteURL:  siteURL,
		isDev:    isDev,
	}
}

// PostSummary is a post as it appears in listings, localized to the
// request locale.
type PostSummary struct {
	ID                 int64        `json:"id"`
	Title              string       `json:"title"`
	Slug               string       `json:"slug"`
	Excerpt            string       `json:"excerpt,omitempty"`
	FeaturedImage      string       `json:"featured_image,omitempty"`
	ReadingTimeMinutes int64        `json:"reading_time_minutes"`
	ViewsCount         int64        `json:"views_count"`
	Category           *CategoryRef `json:"category,omitempty"`
	PublishedAt        *time.Time   `json:"published_at,omitempty"`
}

// CategoryRef is a localized category reference embedded in post payloads.
type CategoryRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color,omitempty"`
}

// TagRef is a localized tag reference.
type TagRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color,omitempty"`
}

// PostView is the full post payload for the post page.
type PostView struct {
	PostSummary
	BodyHTML string          `json:"body_html"`
	Meta     seo.Meta        `json:"meta"`
	Schema   json.RawMessage `json:"schema,omitempty"`
	Tags     []TagRef        `json:"tags,omitempty"`
	Related  []PostSummary   `json:"related,omitempty"`
}

// PageMeta carries pagination info for blog listings.
type PageMeta struct {
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Pages   int    `json:"pages"`
	Locale  string `json:"locale"`
}

// ListResponse is the payload for blog listing endpoints.
type ListResponse struct {
	Posts []PostSummary `json:"posts"`
	Meta  PageMeta      `json:"meta"`
}

// ArchiveResponse is the payload for category and tag archives.
type ArchiveResponse struct {
	Category *CategoryRef  `json:"category,omitempty"`
	Tag      *TagRef       `json:"tag,omitempty"`
	Title    string        `json:"title"`
	Posts    []PostSummary `json:"posts"`
	Meta     PageMeta      `json:"meta"`
}

func writeBlogJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeBlogError(w http.ResponseWriter, statusCode int, message string) {
	writeBlogJSON(w, statusCode, map[string]any{"error": message})
}

// localized returns the locale's value, falling back to the first
// translated locale so untranslated content still renders.
func localized(t model.TranslatedString, locale model.Locale) string {
	if t.Has(locale) {
		return t.Get(locale)
	}
	return t.Primary()
}

// ListPosts handles GET /blog
func (b *Blog) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.GetLocale(r)

	page := ParsePageParam(r)
	perPage := b.postsPerPage(ctx, r)

	posts, err := b.queries.ListPublishedPosts(ctx, store.ListPostsParams{
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	})
	if err != nil {
		b.logger.Error("failed to list published posts", "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	total, err := b.queries.CountPublishedPosts(ctx)
	if err != nil {
		b.logger.Error("failed to count published posts", "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	writeBlogJSON(w, http.StatusOK, ListResponse{
		Posts: b.postSummaries(ctx, posts, locale),
		Meta: PageMeta{
			Total:   total,
			Page:    page,
			PerPage: perPage,
			Pages:   CalculateTotalPages(int(total), perPage),
			Locale:  string(locale),
		},
	})
}

// ShowPost handles GET /blog/{slug}
func (b *Blog) ShowPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.GetLocale(r)
	slug := chi.URLParam(r, "slug")

	post, err := b.queries.GetPublishedPostBySlug(ctx, locale, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeBlogError(w, http.StatusNotFound, "Post not found")
			return
		}
		b.logger.Error("failed to load post", "slug", slug, "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to load post")
		return
	}

	// View counting is best effort and must never fail the page.
	if err := b.views.Record(ctx, post.ID); err != nil {
		b.logger.Warn("failed to record post view", "post_id", post.ID, "error", err)
	}

	bodyHTML, err := b.renderBody(ctx, &post, locale)
	if err != nil {
		b.logger.Error("failed to render post body", "post_id", post.ID, "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to render post")
		return
	}

	site := b.siteConfig(ctx)
	view := PostView{
		PostSummary: b.postSummary(ctx, &post, locale),
		BodyHTML:    bodyHTML,
		Meta:        seo.BuildPostMeta(&post, locale, site),
		Schema:      seo.BuildArticleSchema(&post, locale, site),
	}

	tags, err := b.queries.ListTagsForPost(ctx, post.ID)
	if err == nil {
		for i := range tags {
			view.Tags = append(view.Tags, TagRef{
				ID:    tags[i].ID,
				Name:  localized(tags[i].Name, locale),
				Slug:  localized(tags[i].Slug, locale),
				Color: tags[i].Color,
			})
		}
	}

	if post.CategoryID.Valid {
		related, err := b.queries.ListRelatedPosts(ctx, store.ListRelatedPostsParams{
			CategoryID: post.CategoryID,
			ExcludeID:  post.ID,
			Limit:      relatedPostsLimit,
		})
		if err == nil {
			view.Related = b.postSummaries(ctx, related, locale)
		}
	}

	writeBlogJSON(w, http.StatusOK, view)
}

// CategoryArchive handles GET /blog/category/{slug}
func (b *Blog) CategoryArchive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.GetLocale(r)
	slug := chi.URLParam(r, "slug")

	category, err := b.queries.GetActiveCategoryBySlug(ctx, locale, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeBlogError(w, http.StatusNotFound, "Category not found")
			return
		}
		b.logger.Error("failed to load category", "slug", slug, "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to load category")
		return
	}

	page := ParsePageParam(r)
	perPage := b.postsPerPage(ctx, r)

	posts, err := b.queries.ListPublishedPostsByCategory(ctx, store.ListPublishedPostsByCategoryParams{
		CategoryID: category.ID,
		Limit:      int64(perPage),
		Offset:     int64((page - 1) * perPage),
	})
	if err != nil {
		b.logger.Error("failed to list category posts", "category_id", category.ID, "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	total, err := b.queries.CountPublishedPostsByCategory(ctx, category.ID)
	if err != nil {
		b.logger.Error("failed to count category posts", "category_id", category.ID, "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	ref := CategoryRef{
		ID:    category.ID,
		Name:  localized(category.Name, locale),
		Slug:  localized(category.Slug, locale),
		Color: category.Color,
	}

	writeBlogJSON(w, http.StatusOK, ArchiveResponse{
		Category: &ref,
		Title:    category.SEOTitle(locale),
		Posts:    b.postSummaries(ctx, posts, locale),
		Meta: PageMeta{
			Total:   total,
			Page:    page,
			PerPage: perPage,
			Pages:   CalculateTotalPages(int(total), perPage),
			Locale:  string(locale),
		},
	})
}

// TagArchive handles GET /blog/tag/{slug}
func (b *Blog) TagArchive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.GetLocale(r)
	slug := chi.URLParam(r, "slug")

	tag, err := b.queries.GetTagBySlug(ctx, locale, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeBlogError(w, http.StatusNotFound, "Tag not found")
			return
		}
		b.logger.Error("failed to load tag", "slug", slug, "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to load tag")
		return
	}

	page := ParsePageParam(r)
	perPage := b.postsPerPage(ctx, r)

	posts, err := b.queries.ListPublishedPostsByTag(ctx, store.ListPublishedPostsByTagParams{
		TagID:  tag.ID,
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	})
	if err != nil {
		b.logger.Error("failed to list tag posts", "tag_id", tag.ID, "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	total, err := b.queries.CountPublishedPostsByTag(ctx, tag.ID)
	if err != nil {
		b.logger.Error("failed to count tag posts", "tag_id", tag.ID, "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	ref := TagRef{
		ID:    tag.ID,
		Name:  localized(tag.Name, locale),
		Slug:  localized(tag.Slug, locale),
		Color: tag.Color,
	}

	writeBlogJSON(w, http.StatusOK, ArchiveResponse{
		Tag:   &ref,
		Title: tag.SEOTitle(locale),
		Posts: b.postSummaries(ctx, posts, locale),
		Meta: PageMeta{
			Total:   total,
			Page:    page,
			PerPage: perPage,
			Pages:   CalculateTotalPages(int(total), perPage),
			Locale:  string(locale),
		},
	})
}

// PopularTagsResponse is the payload for the popular tags endpoint.
type PopularTagsResponse struct {
	Tags []PopularTagItem `json:"tags"`
}

// PopularTagItem is a tag with its published post count.
type PopularTagItem struct {
	TagRef
	PublishedPosts int64 `json:"published_posts"`
}

// PopularTags handles GET /blog/tags
func (b *Blog) PopularTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.GetLocale(r)

	tagCache := cache.NewTypedCache[PopularTagsResponse](b.cache, popularTagsCacheTTL)
	cacheKey := "blog:tags:popular:" + string(locale)
	if cached, ok := tagCache.Get(ctx, cacheKey); ok {
		writeBlogJSON(w, http.StatusOK, cached)
		return
	}

	popular, err := b.queries.ListPopularTags(ctx, popularTagsLimit)
	if err != nil {
		b.logger.Error("failed to list popular tags", "error", err)
		writeBlogError(w, http.StatusInternalServerError, "Failed to load tags")
		return
	}

	resp := PopularTagsResponse{Tags: make([]PopularTagItem, 0, len(popular))}
	for i := range popular {
		resp.Tags = append(resp.Tags, PopularTagItem{
			TagRef: TagRef{
				ID:    popular[i].Tag.ID,
				Name:  localized(popular[i].Tag.Name, locale),
				Slug:  localized(popular[i].Tag.Slug, locale),
				Color: popular[i].Tag.Color,
			},
			PublishedPosts: popular[i].PublishedPosts,
		})
	}

	if err := tagCache.Set(ctx, cacheKey, &resp); err != nil {
		b.logger.Warn("failed to cache popular tags", "error", err)
	}

	writeBlogJSON(w, http.StatusOK, resp)
}

// Sitemap handles GET /sitemap.xml
func (b *Blog) Sitemap(w http.ResponseWriter, r *http.Request) {
	data, err := b.seo.Sitemap(r.Context())
	if err != nil {
		b.logger.Error("failed to build sitemap", "error", err)
		http.Error(w, "Failed to build sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(data)
}

// Robots handles GET /robots.txt
// Non-production environments are told to stay out of search indexes.
func (b *Blog) Robots(w http.ResponseWriter, r *http.Request) {
	data, err := b.seo.Robots(r.Context(), b.isDev)
	if err != nil {
		b.logger.Error("failed to build robots.txt", "error", err)
		http.Error(w, "Failed to build robots.txt", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}

// renderBody converts the post body from Markdown, caching the result per
// post per locale.
func (b *Blog) renderBody(ctx context.Context, post *model.Post, locale model.Locale) (string, error) {
	key := fmt.Sprintf("blog:post:%d:html:%s", post.ID, locale)
	if cached, err := b.cache.Get(ctx, key); err == nil {
		return string(cached), nil
	}

	html, err := render.Markdown(localized(post.Body, locale))
	if err != nil {
		return "", err
	}

	if err := b.cache.Set(ctx, key, []byte(html), postHTMLCacheTTL); err != nil {
		b.logger.Warn("failed to cache rendered post body", "post_id", post.ID, "error", err)
	}
	return html, nil
}

// postsPerPage reads the posts_per_page setting, clamped by the per_page
// query parameter when one is given.
func (b *Blog) postsPerPage(ctx context.Context, r *http.Request) int {
	perPage, err := b.settings.GetInt(ctx, model.SettingKeyPostsPerPage, fallbackPostsPerPage)
	if err != nil || perPage < 1 {
		perPage = fallbackPostsPerPage
	}
	if perPage > maxBlogPerPage {
		perPage = maxBlogPerPage
	}
	return ParsePerPageParam(r, perPage, maxBlogPerPage)
}

func (b *Blog) siteConfig(ctx context.Context) seo.SiteConfig {
	cfg := seo.SiteConfig{SiteURL: b.siteURL}

	if name, err := b.settings.Get(ctx, model.SettingKeySiteName); err == nil && name != "" {
		cfg.SiteName = name
	}
	if desc, err := b.settings.Get(ctx, model.SettingKeySiteDescription); err == nil {
		cfg.SiteDescription = desc
	}
	if u, err := b.settings.Get(ctx, model.SettingKeySiteURL); err == nil && u != "" {
		cfg.SiteURL = u
	}

	return cfg
}

func (b *Blog) postSummary(ctx context.Context, p *model.Post, locale model.Locale) PostSummary {
	s := PostSummary{
		ID:                 p.ID,
		Title:              localized(p.Title, locale),
		Slug:               localized(p.Slug, locale),
		Excerpt:            localized(p.Excerpt, locale),
		FeaturedImage:      p.FeaturedImage,
		ReadingTimeMinutes: p.ReadingTimeMinutes,
		ViewsCount:         p.ViewsCount,
	}

	if p.PublishedAt.Valid {
		t := p.PublishedAt.Time
		s.PublishedAt = &t
	}

	if p.CategoryID.Valid {
		category, err := b.queries.GetCategoryByID(ctx, p.CategoryID.Int64)
		if err == nil && category.IsActive {
			s.Category = &CategoryRef{
				ID:    category.ID,
				Name:  localized(category.Name, locale),
				Slug:  localized(category.Slug, locale),
				Color: category.Color,
			}
		}
	}

	return s
}

func (b *Blog) postSummaries(ctx context.Context, posts []model.Post, locale model.Locale) []PostSummary {
	summaries := make([]PostSummary, 0, len(posts))
	for i := range posts {
		summaries = append(summaries, b.postSummary(ctx, &posts[i], locale))
	}
	return summaries
}
