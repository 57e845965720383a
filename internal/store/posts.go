// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/madarhq/madar/internal/model"
)

const postColumns = `id, title, slug, excerpt, body, author_id, category_id, status,
	featured_image, meta_title, meta_description, canonical_url,
	og_title, og_description, og_image, no_index, views_count,
	reading_time_minutes, published_at, created_at, updated_at`

// postColumnsQualified disambiguates post columns in queries that join
// post_tags, which also has a created_at column.
const postColumnsQualified = `posts.id, posts.title, posts.slug, posts.excerpt,
	posts.body, posts.author_id, posts.category_id, posts.status,
	posts.featured_image, posts.meta_title, posts.meta_description,
	posts.canonical_url, posts.og_title, posts.og_description, posts.og_image,
	posts.no_index, posts.views_count, posts.reading_time_minutes,
	posts.published_at, posts.created_at, posts.updated_at`

func scanPost(row interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Body, &p.AuthorID, &p.CategoryID,
		&p.Status, &p.FeaturedImage, &p.MetaTitle, &p.MetaDescription, &p.CanonicalURL,
		&p.OGTitle, &p.OGDescription, &p.OGImage, &p.NoIndex, &p.ViewsCount,
		&p.ReadingTimeMinutes, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (q *Queries) queryPosts(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreatePostParams holds the fields for creating a post.
type CreatePostParams struct {
	Title              model.TranslatedString
	Slug               model.TranslatedString
	Excerpt            model.TranslatedString
	Body               model.TranslatedString
	AuthorID           int64
	CategoryID         sql.NullInt64
	Status             string
	FeaturedImage      string
	MetaTitle          string
	MetaDescription    string
	CanonicalURL       string
	OGTitle            string
	OGDescription      string
	OGImage            string
	NoIndex            bool
	ReadingTimeMinutes int64
	PublishedAt        sql.NullTime
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CreatePost inserts a post and returns the stored row.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO posts (title, slug, excerpt, body, author_id, category_id, status,
			featured_image, meta_title, meta_description, canonical_url,
			og_title, og_description, og_image, no_index,
			reading_time_minutes, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.Excerpt, arg.Body, arg.AuthorID, arg.CategoryID,
		arg.Status, arg.FeaturedImage, arg.MetaTitle, arg.MetaDescription,
		arg.CanonicalURL, arg.OGTitle, arg.OGDescription, arg.OGImage,
		arg.NoIndex, arg.ReadingTimeMinutes, arg.PublishedAt,
		arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return model.Post{}, wrapWriteErr("creating post", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, fmt.Errorf("creating post: %w", err)
	}
	return q.GetPostByID(ctx, id)
}

// UpdatePostParams holds the fields for updating a post.
type UpdatePostParams struct {
	ID                 int64
	Title              model.TranslatedString
	Slug               model.TranslatedString
	Excerpt            model.TranslatedString
	Body               model.TranslatedString
	CategoryID         sql.NullInt64
	Status             string
	FeaturedImage      string
	MetaTitle          string
	MetaDescription    string
	CanonicalURL       string
	OGTitle            string
	OGDescription      string
	OGImage            string
	NoIndex            bool
	ReadingTimeMinutes int64
	PublishedAt        sql.NullTime
	UpdatedAt          time.Time
}

// UpdatePost rewrites a post's editable fields and returns the stored row.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (model.Post, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, slug = ?, excerpt = ?, body = ?, category_id = ?,
			status = ?, featured_image = ?, meta_title = ?, meta_description = ?,
			canonical_url = ?, og_title = ?, og_description = ?, og_image = ?,
			no_index = ?, reading_time_minutes = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Slug, arg.Excerpt, arg.Body, arg.CategoryID, arg.Status,
		arg.FeaturedImage, arg.MetaTitle, arg.MetaDescription, arg.CanonicalURL,
		arg.OGTitle, arg.OGDescription, arg.OGImage, arg.NoIndex,
		arg.ReadingTimeMinutes, arg.PublishedAt, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return model.Post{}, wrapWriteErr("updating post", err)
	}
	return q.GetPostByID(ctx, arg.ID)
}

// GetPostByID fetches a post by primary key.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// GetPublishedPostBySlug fetches a published post by its slug in the given
// locale. Scheduled posts (published_at in the future) are not returned.
func (q *Queries) GetPublishedPostBySlug(ctx context.Context, locale model.Locale, slug string) (model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE json_extract(slug, ?) = ? AND status = ? AND published_at <= ?`,
		slugPath(locale), slug, model.PostStatusPublished, time.Now())
	return scanPost(row)
}

// DeletePost removes a post; post_tags rows cascade.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

// ListPostsParams holds pagination for post listings.
type ListPostsParams struct {
	Limit  int64
	Offset int64
}

// ListPosts returns posts of any status, newest first (admin listing).
func (q *Queries) ListPosts(ctx context.Context, arg ListPostsParams) ([]model.Post, error) {
	return q.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
}

// CountPosts returns the total number of posts.
func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	return n, err
}

// ListPublishedPosts returns published posts, newest publish date first.
func (q *Queries) ListPublishedPosts(ctx context.Context, arg ListPostsParams) ([]model.Post, error) {
	return q.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE status = ? AND published_at <= ?
		 ORDER BY published_at DESC LIMIT ? OFFSET ?`,
		model.PostStatusPublished, time.Now(), arg.Limit, arg.Offset)
}

// CountPublishedPosts returns the number of published posts.
func (q *Queries) CountPublishedPosts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE status = ? AND published_at <= ?`,
		model.PostStatusPublished, time.Now()).Scan(&n)
	return n, err
}

// ListPublishedPostsByCategoryParams filters published posts by category.
type ListPublishedPostsByCategoryParams struct {
	CategoryID int64
	Limit      int64
	Offset     int64
}

// ListPublishedPostsByCategory returns published posts within a category.
func (q *Queries) ListPublishedPostsByCategory(ctx context.Context, arg ListPublishedPostsByCategoryParams) ([]model.Post, error) {
	return q.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE category_id = ? AND status = ? AND published_at <= ?
		 ORDER BY published_at DESC LIMIT ? OFFSET ?`,
		arg.CategoryID, model.PostStatusPublished, time.Now(), arg.Limit, arg.Offset)
}

// CountPublishedPostsByCategory counts published posts within a category.
func (q *Queries) CountPublishedPostsByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE category_id = ? AND status = ? AND published_at <= ?`,
		categoryID, model.PostStatusPublished, time.Now()).Scan(&n)
	return n, err
}

// ListPublishedPostsByTagParams filters published posts by tag.
type ListPublishedPostsByTagParams struct {
	TagID  int64
	Limit  int64
	Offset int64
}

// ListPublishedPostsByTag returns published posts carrying a tag.
func (q *Queries) ListPublishedPostsByTag(ctx context.Context, arg ListPublishedPostsByTagParams) ([]model.Post, error) {
	return q.queryPosts(ctx,
		`SELECT `+postColumnsQualified+` FROM posts
		 JOIN post_tags pt ON pt.post_id = posts.id
		 WHERE pt.tag_id = ? AND status = ? AND published_at <= ?
		 ORDER BY published_at DESC LIMIT ? OFFSET ?`,
		arg.TagID, model.PostStatusPublished, time.Now(), arg.Limit, arg.Offset)
}

// CountPublishedPostsByTag counts published posts carrying a tag.
func (q *Queries) CountPublishedPostsByTag(ctx context.Context, tagID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts
		 JOIN post_tags pt ON pt.post_id = posts.id
		 WHERE pt.tag_id = ? AND status = ? AND published_at <= ?`,
		tagID, model.PostStatusPublished, time.Now()).Scan(&n)
	return n, err
}

// ListRelatedPostsParams selects published posts sharing a category.
type ListRelatedPostsParams struct {
	CategoryID sql.NullInt64
	ExcludeID  int64
	Limit      int64
}

// ListRelatedPosts returns recent published posts from the same category,
// excluding the post itself.
func (q *Queries) ListRelatedPosts(ctx context.Context, arg ListRelatedPostsParams) ([]model.Post, error) {
	return q.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE category_id = ? AND id != ? AND status = ? AND published_at <= ?
		 ORDER BY published_at DESC LIMIT ?`,
		arg.CategoryID, arg.ExcludeID, model.PostStatusPublished, time.Now(), arg.Limit)
}

// IncrementPostViews atomically adds delta to a post's durable view counter.
func (q *Queries) IncrementPostViews(ctx context.Context, id int64, delta int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET views_count = views_count + ? WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("incrementing post views: %w", err)
	}
	return nil
}

// SitemapEntry carries the fields needed to place content in the sitemap.
type SitemapEntry struct {
	Slug      model.TranslatedString
	UpdatedAt time.Time
}

// ListPostsForSitemap returns slug and update time for all published posts.
func (q *Queries) ListPostsForSitemap(ctx context.Context) ([]SitemapEntry, error) {
	return q.querySitemapEntries(ctx,
		`SELECT slug, updated_at FROM posts
		 WHERE status = ? AND published_at <= ? ORDER BY id`,
		model.PostStatusPublished, time.Now())
}

func (q *Queries) querySitemapEntries(ctx context.Context, query string, args ...any) ([]SitemapEntry, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []SitemapEntry
	for rows.Next() {
		var e SitemapEntry
		if err := rows.Scan(&e.Slug, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
