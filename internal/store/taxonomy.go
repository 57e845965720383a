// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/madarhq/madar/internal/model"
)

const categoryColumns = `id, name, slug, description, color, meta_title,
	meta_description, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var c model.Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color,
		&c.MetaTitle, &c.MetaDescription, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// CreateCategoryParams holds the fields for creating a category.
type CreateCategoryParams struct {
	Name            model.TranslatedString
	Slug            model.TranslatedString
	Description     model.TranslatedString
	Color           string
	MetaTitle       string
	MetaDescription string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateCategory inserts a category and returns the stored row.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (model.Category, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (name, slug, description, color, meta_title,
			meta_description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.Description, arg.Color,
		arg.MetaTitle, arg.MetaDescription, arg.IsActive, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return model.Category{}, wrapWriteErr("creating category", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, fmt.Errorf("creating category: %w", err)
	}
	return q.GetCategoryByID(ctx, id)
}

// UpdateCategoryParams holds the fields for updating a category.
type UpdateCategoryParams struct {
	ID              int64
	Name            model.TranslatedString
	Slug            model.TranslatedString
	Description     model.TranslatedString
	Color           string
	MetaTitle       string
	MetaDescription string
	IsActive        bool
	UpdatedAt       time.Time
}

// UpdateCategory rewrites a category and returns the stored row.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (model.Category, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, slug = ?, description = ?, color = ?,
			meta_title = ?, meta_description = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		arg.Name, arg.Slug, arg.Description, arg.Color,
		arg.MetaTitle, arg.MetaDescription, arg.IsActive, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return model.Category{}, wrapWriteErr("updating category", err)
	}
	return q.GetCategoryByID(ctx, arg.ID)
}

// GetCategoryByID fetches a category by primary key.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

// GetActiveCategoryBySlug fetches an active category by its slug in the
// given locale.
func (q *Queries) GetActiveCategoryBySlug(ctx context.Context, locale model.Locale, slug string) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE json_extract(slug, ?) = ? AND is_active = 1`,
		slugPath(locale), slug)
	return scanCategory(row)
}

// DeleteCategory removes a category; posts keep NULL category_id.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}

// ListCategories returns all categories ordered by creation.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	return q.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY id`)
}

// ListActiveCategories returns active categories only.
func (q *Queries) ListActiveCategories(ctx context.Context) ([]model.Category, error) {
	return q.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE is_active = 1 ORDER BY id`)
}

func (q *Queries) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListActiveCategoriesForSitemap returns slug and update time for active categories.
func (q *Queries) ListActiveCategoriesForSitemap(ctx context.Context) ([]SitemapEntry, error) {
	return q.querySitemapEntries(ctx,
		`SELECT slug, updated_at FROM categories WHERE is_active = 1 ORDER BY id`)
}

const tagColumns = `id, name, slug, description, color, meta_title,
	meta_description, created_at, updated_at`

// tagColumnsQualified disambiguates tag columns in queries that join
// tables sharing column names (post_tags, posts).
const tagColumnsQualified = `tags.id, tags.name, tags.slug, tags.description,
	tags.color, tags.meta_title, tags.meta_description, tags.created_at,
	tags.updated_at`

func scanTag(row interface{ Scan(...any) error }) (model.Tag, error) {
	var t model.Tag
	err := row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Description, &t.Color,
		&t.MetaTitle, &t.MetaDescription, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// CreateTagParams holds the fields for creating a tag.
type CreateTagParams struct {
	Name            model.TranslatedString
	Slug            model.TranslatedString
	Description     model.TranslatedString
	Color           string
	MetaTitle       string
	MetaDescription string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateTag inserts a tag and returns the stored row.
func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) (model.Tag, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO tags (name, slug, description, color, meta_title,
			meta_description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.Description, arg.Color,
		arg.MetaTitle, arg.MetaDescription, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return model.Tag{}, wrapWriteErr("creating tag", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Tag{}, fmt.Errorf("creating tag: %w", err)
	}
	return q.GetTagByID(ctx, id)
}

// UpdateTagParams holds the fields for updating a tag.
type UpdateTagParams struct {
	ID              int64
	Name            model.TranslatedString
	Slug            model.TranslatedString
	Description     model.TranslatedString
	Color           string
	MetaTitle       string
	MetaDescription string
	UpdatedAt       time.Time
}

// UpdateTag rewrites a tag and returns the stored row.
func (q *Queries) UpdateTag(ctx context.Context, arg UpdateTagParams) (model.Tag, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE tags SET name = ?, slug = ?, description = ?, color = ?,
			meta_title = ?, meta_description = ?, updated_at = ?
		WHERE id = ?`,
		arg.Name, arg.Slug, arg.Description, arg.Color,
		arg.MetaTitle, arg.MetaDescription, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return model.Tag{}, wrapWriteErr("updating tag", err)
	}
	return q.GetTagByID(ctx, arg.ID)
}

// GetTagByID fetches a tag by primary key.
func (q *Queries) GetTagByID(ctx context.Context, id int64) (model.Tag, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	return scanTag(row)
}

// GetTagBySlug fetches a tag by its slug in the given locale.
func (q *Queries) GetTagBySlug(ctx context.Context, locale model.Locale, slug string) (model.Tag, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE json_extract(slug, ?) = ?`,
		slugPath(locale), slug)
	return scanTag(row)
}

// DeleteTag removes a tag; post_tags rows cascade.
func (q *Queries) DeleteTag(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	return nil
}

// ListTags returns all tags ordered by creation.
func (q *Queries) ListTags(ctx context.Context) ([]model.Tag, error) {
	return q.queryTags(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY id`)
}

// ListTagsForPost returns the tags attached to a post.
func (q *Queries) ListTagsForPost(ctx context.Context, postID int64) ([]model.Tag, error) {
	return q.queryTags(ctx,
		`SELECT `+tagColumnsQualified+` FROM tags
		 JOIN post_tags pt ON pt.tag_id = tags.id
		 WHERE pt.post_id = ? ORDER BY tags.id`, postID)
}

// PopularTag pairs a tag with its published post count.
type PopularTag struct {
	Tag            model.Tag
	PublishedPosts int64
}

// ListPopularTags returns tags ordered by how many published posts carry
// them, dropping unused tags.
func (q *Queries) ListPopularTags(ctx context.Context, limit int64) ([]PopularTag, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+tagColumnsQualified+`, COUNT(p.id) AS published_posts
		 FROM tags
		 JOIN post_tags pt ON pt.tag_id = tags.id
		 JOIN posts p ON p.id = pt.post_id AND p.status = ? AND p.published_at <= ?
		 GROUP BY tags.id
		 HAVING published_posts > 0
		 ORDER BY published_posts DESC
		 LIMIT ?`,
		model.PostStatusPublished, time.Now(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PopularTag
	for rows.Next() {
		var pt PopularTag
		t := &pt.Tag
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Slug, &t.Description, &t.Color,
			&t.MetaTitle, &t.MetaDescription, &t.CreatedAt, &t.UpdatedAt,
			&pt.PublishedPosts,
		); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

func (q *Queries) queryTags(ctx context.Context, query string, args ...any) ([]model.Tag, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SetPostTags replaces the tag set attached to a post.
func (q *Queries) SetPostTags(ctx context.Context, postID int64, tagIDs []int64) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("clearing post tags: %w", err)
	}

	now := time.Now()
	for _, tagID := range tagIDs {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id, created_at) VALUES (?, ?, ?)`,
			postID, tagID, now); err != nil {
			return fmt.Errorf("attaching tag %d: %w", tagID, err)
		}
	}
	return nil
}

// ListTagsForSitemap returns slug and update time for all tags.
func (q *Queries) ListTagsForSitemap(ctx context.Context) ([]SitemapEntry, error) {
	return q.querySitemapEntries(ctx,
		`SELECT slug, updated_at FROM tags ORDER BY id`)
}
