// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/madarhq/madar/internal/content"
	"github.com/madarhq/madar/internal/handler"
	"github.com/madarhq/madar/internal/model"
	"github.com/madarhq/madar/internal/store"
)

const (
	defaultPostsPerPage = 20
	maxPostsPerPage     = 100
)

// PostAPIResponse represents a post in API responses. Translatable fields
// carry all locale slots so the admin UI can edit both languages at once.
type PostAPIResponse struct {
	ID                 int64                  `json:"id"`
	Title              model.TranslatedString `json:"title"`
	Slug               model.TranslatedString `json:"slug"`
	Excerpt            model.TranslatedString `json:"excerpt"`
	Body               model.TranslatedString `json:"body"`
	AuthorID           int64                  `json:"author_id"`
	CategoryID         *int64                 `json:"category_id,omitempty"`
	Status             string                 `json:"status"`
	FeaturedImage      string                 `json:"featured_image,omitempty"`
	MetaTitle          string                 `json:"meta_title,omitempty"`
	MetaDescription    string                 `json:"meta_description,omitempty"`
	CanonicalURL       string                 `json:"canonical_url,omitempty"`
	OGTitle            string                 `json:"og_title,omitempty"`
	OGDescription      string                 `json:"og_description,omitempty"`
	OGImage            string                 `json:"og_image,omitempty"`
	NoIndex            bool                   `json:"no_index"`
	ViewsCount         int64                  `json:"views_count"`
	ReadingTimeMinutes int64                  `json:"reading_time_minutes"`
	Tags               []TagAPIResponse       `json:"tags,omitempty"`
	PublishedAt        *time.Time             `json:"published_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// CreatePostRequest represents the request body for creating a post.
// Empty slug slots are generated from the matching title slots.
type CreatePostRequest struct {
	Title           model.TranslatedString `json:"title"`
	Slug            model.TranslatedString `json:"slug,omitempty"`
	Excerpt         model.TranslatedString `json:"excerpt,omitempty"`
	Body            model.TranslatedString `json:"body,omitempty"`
	AuthorID        int64                  `json:"author_id,omitempty"`
	CategoryID      *int64                 `json:"category_id,omitempty"`
	Status          string                 `json:"status,omitempty"`
	FeaturedImage   string                 `json:"featured_image,omitempty"`
	MetaTitle       string                 `json:"meta_title,omitempty"`
	MetaDescription string                 `json:"meta_description,omitempty"`
	CanonicalURL    string                 `json:"canonical_url,omitempty"`
	OGTitle         string                 `json:"og_title,omitempty"`
	OGDescription   string                 `json:"og_description,omitempty"`
	OGImage         string                 `json:"og_image,omitempty"`
	NoIndex         bool                   `json:"no_index,omitempty"`
	PublishedAt     *string                `json:"published_at,omitempty"`
	TagIDs          []int64                `json:"tag_ids,omitempty"`
}

// UpdatePostRequest represents the request body for updating a post.
// Nil fields are left unchanged.
type UpdatePostRequest struct {
	Title           model.TranslatedString `json:"title,omitempty"`
	Slug            model.TranslatedString `json:"slug,omitempty"`
	Excerpt         model.TranslatedString `json:"excerpt,omitempty"`
	Body            model.TranslatedString `json:"body,omitempty"`
	CategoryID      *int64                 `json:"category_id,omitempty"`
	Status          *string                `json:"status,omitempty"`
	FeaturedImage   *string                `json:"featured_image,omitempty"`
	MetaTitle       *string                `json:"meta_title,omitempty"`
	MetaDescription *string                `json:"meta_description,omitempty"`
	CanonicalURL    *string                `json:"canonical_url,omitempty"`
	OGTitle         *string                `json:"og_title,omitempty"`
	OGDescription   *string                `json:"og_description,omitempty"`
	OGImage         *string                `json:"og_image,omitempty"`
	NoIndex         *bool                  `json:"no_index,omitempty"`
	PublishedAt     *string                `json:"published_at,omitempty"`
	TagIDs          []int64                `json:"tag_ids,omitempty"`
}

// ListPosts handles GET /api/v1/posts
// Returns posts of all statuses, newest first.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, defaultPostsPerPage, maxPostsPerPage)
	offset := (page - 1) * perPage

	posts, err := h.queries.ListPosts(ctx, store.ListPostsParams{
		Limit:  int64(perPage),
		Offset: int64(offset),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list posts")
		return
	}

	total, err := h.queries.CountPosts(ctx)
	if err != nil {
		WriteInternalError(w, "Failed to count posts")
		return
	}

	responses := make([]PostAPIResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, h.postToResponse(ctx, &posts[i]))
	}

	WriteSuccess(w, responses, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   handler.CalculateTotalPages(int(total), perPage),
	})
}

// GetPost handles GET /api/v1/posts/{id}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, ok := h.requirePost(w, r)
	if !ok {
		return
	}

	resp := h.postToResponse(ctx, &post)
	WriteSuccess(w, resp, nil)
}

// CreatePost handles POST /api/v1/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if req.Status == "" {
		req.Status = model.PostStatusDraft
	}

	validationErrors := validatePostFields(req.Title, req.Slug, req.Status, req.MetaTitle, req.MetaDescription)
	publishedAt, err := parsePublishedAt(req.PublishedAt, req.Status)
	if err != nil {
		validationErrors["published_at"] = "Must be a valid RFC 3339 timestamp"
	}
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	categoryID, ok := h.resolveCategoryID(w, r, req.CategoryID)
	if !ok {
		return
	}

	slugs := req.Slug.Clone()
	if err := content.FillSlugsOnCreate(ctx, h.queries, model.KindPost, req.Title, slugs); err != nil {
		WriteInternalError(w, "Failed to generate slug")
		return
	}

	derived := model.Post{
		Title:   req.Title,
		Slug:    slugs,
		Excerpt: req.Excerpt.Clone(),
		Body:    req.Body,
	}
	content.DerivePostFields(&derived)

	now := time.Now()
	params := store.CreatePostParams{
		Title:              req.Title,
		Slug:               slugs,
		Excerpt:            derived.Excerpt,
		Body:               req.Body,
		AuthorID:           req.AuthorID,
		CategoryID:         categoryID,
		Status:             req.Status,
		FeaturedImage:      req.FeaturedImage,
		MetaTitle:          req.MetaTitle,
		MetaDescription:    req.MetaDescription,
		CanonicalURL:       req.CanonicalURL,
		OGTitle:            req.OGTitle,
		OGDescription:      req.OGDescription,
		OGImage:            req.OGImage,
		NoIndex:            req.NoIndex,
		ReadingTimeMinutes: derived.ReadingTimeMinutes,
		PublishedAt:        publishedAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	post, err := h.queries.CreatePost(ctx, params)
	if errors.Is(err, store.ErrSlugTaken) {
		// Lost a slug race between resolution and insert. Re-resolve
		// against the current state and retry once.
		if rerr := h.reresolveSlugs(ctx, model.KindPost, 0, params.Slug); rerr != nil {
			WriteInternalError(w, "Failed to generate slug")
			return
		}
		post, err = h.queries.CreatePost(ctx, params)
	}
	if err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		WriteInternalError(w, "Failed to create post")
		return
	}

	if len(req.TagIDs) > 0 {
		if err := h.queries.SetPostTags(ctx, post.ID, req.TagIDs); err != nil {
			WriteInternalError(w, "Failed to assign tags")
			return
		}
	}

	h.invalidateContentCaches(ctx)

	resp := h.postToResponse(ctx, &post)
	WriteCreated(w, resp)
}

// UpdatePost handles PUT /api/v1/posts/{id}
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requirePost(w, r)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdatePostParams{
		ID:                 existing.ID,
		Title:              existing.Title,
		Slug:               existing.Slug,
		Excerpt:            existing.Excerpt,
		Body:               existing.Body,
		CategoryID:         existing.CategoryID,
		Status:             existing.Status,
		FeaturedImage:      existing.FeaturedImage,
		MetaTitle:          existing.MetaTitle,
		MetaDescription:    existing.MetaDescription,
		CanonicalURL:       existing.CanonicalURL,
		OGTitle:            existing.OGTitle,
		OGDescription:      existing.OGDescription,
		OGImage:            existing.OGImage,
		NoIndex:            existing.NoIndex,
		ReadingTimeMinutes: existing.ReadingTimeMinutes,
		PublishedAt:        existing.PublishedAt,
		UpdatedAt:          time.Now(),
	}

	if req.Title != nil {
		params.Title = req.Title
	}
	if req.Slug != nil {
		params.Slug = req.Slug.Clone()
	}
	if req.Excerpt != nil {
		params.Excerpt = req.Excerpt.Clone()
	}
	if req.Body != nil {
		params.Body = req.Body
	}
	if req.Status != nil {
		params.Status = *req.Status
	}
	if req.FeaturedImage != nil {
		params.FeaturedImage = *req.FeaturedImage
	}
	if req.MetaTitle != nil {
		params.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		params.MetaDescription = *req.MetaDescription
	}
	if req.CanonicalURL != nil {
		params.CanonicalURL = *req.CanonicalURL
	}
	if req.OGTitle != nil {
		params.OGTitle = *req.OGTitle
	}
	if req.OGDescription != nil {
		params.OGDescription = *req.OGDescription
	}
	if req.OGImage != nil {
		params.OGImage = *req.OGImage
	}
	if req.NoIndex != nil {
		params.NoIndex = *req.NoIndex
	}

	validationErrors := validatePostFields(params.Title, req.Slug, params.Status, params.MetaTitle, params.MetaDescription)
	if req.PublishedAt != nil {
		publishedAt, err := parsePublishedAt(req.PublishedAt, params.Status)
		if err != nil {
			validationErrors["published_at"] = "Must be a valid RFC 3339 timestamp"
		} else {
			params.PublishedAt = publishedAt
		}
	} else if params.Status == model.PostStatusPublished && !params.PublishedAt.Valid {
		// First publish without an explicit date.
		params.PublishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	if req.CategoryID != nil {
		categoryID, ok := h.resolveCategoryID(w, r, req.CategoryID)
		if !ok {
			return
		}
		params.CategoryID = categoryID
	}

	// Regenerate slugs only for locales whose title changed and whose slug
	// slot was cleared; an explicit slug always wins.
	if err := content.FillSlugsOnUpdate(ctx, h.queries, model.KindPost, existing.ID,
		params.Title, existing.Title, params.Slug); err != nil {
		WriteInternalError(w, "Failed to generate slug")
		return
	}

	derived := model.Post{
		Title:              params.Title,
		Slug:               params.Slug,
		Excerpt:            params.Excerpt,
		Body:               params.Body,
		ReadingTimeMinutes: params.ReadingTimeMinutes,
	}
	content.DerivePostFieldsOnUpdate(&derived, existing.Body)
	params.Excerpt = derived.Excerpt
	params.ReadingTimeMinutes = derived.ReadingTimeMinutes

	post, err := h.queries.UpdatePost(ctx, params)
	if errors.Is(err, store.ErrSlugTaken) {
		if rerr := h.reresolveSlugs(ctx, model.KindPost, existing.ID, params.Slug); rerr != nil {
			WriteInternalError(w, "Failed to generate slug")
			return
		}
		post, err = h.queries.UpdatePost(ctx, params)
	}
	if err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		WriteInternalError(w, "Failed to update post")
		return
	}

	if req.TagIDs != nil {
		if err := h.queries.SetPostTags(ctx, post.ID, req.TagIDs); err != nil {
			WriteInternalError(w, "Failed to assign tags")
			return
		}
	}

	h.invalidateContentCaches(ctx)

	resp := h.postToResponse(ctx, &post)
	WriteSuccess(w, resp, nil)
}

// DeletePost handles DELETE /api/v1/posts/{id}
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, ok := h.requirePost(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeletePost(ctx, post.ID); err != nil {
		WriteInternalError(w, "Failed to delete post")
		return
	}

	h.invalidateContentCaches(ctx)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requirePost(w http.ResponseWriter, r *http.Request) (model.Post, bool) {
	return requireEntityByID(w, r, "post", func(id int64) (model.Post, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
}

// resolveCategoryID validates an optional category reference. A nil or zero
// id clears the category.
func (h *Handler) resolveCategoryID(w http.ResponseWriter, r *http.Request, id *int64) (sql.NullInt64, bool) {
	if id == nil || *id == 0 {
		return sql.NullInt64{}, true
	}

	_, err := h.queries.GetCategoryByID(r.Context(), *id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteValidationError(w, map[string]string{"category_id": "Category not found"})
		} else {
			WriteInternalError(w, "Failed to validate category")
		}
		return sql.NullInt64{}, false
	}
	return sql.NullInt64{Int64: *id, Valid: true}, true
}

// reresolveSlugs re-runs uniqueness resolution for every occupied slug slot.
// Used after the unique index rejected a write that lost a slug race.
func (h *Handler) reresolveSlugs(ctx context.Context, kind string, id int64, slugs model.TranslatedString) error {
	for _, locale := range model.Locales {
		if !slugs.Has(locale) {
			continue
		}
		resolved, err := content.ResolveSlug(ctx, h.queries, kind, locale, slugs.Get(locale), id)
		if err != nil {
			return err
		}
		slugs.Set(locale, resolved)
	}
	return nil
}

func validatePostFields(title, slugs model.TranslatedString, status, metaTitle, metaDescription string) map[string]string {
	validationErrors := make(map[string]string)
	if !title.Has(model.DefaultLocale) {
		validationErrors["title."+string(model.DefaultLocale)] = "Title is required in the default locale"
	}
	validateSlugFields(slugs, validationErrors)
	if status != model.PostStatusDraft && status != model.PostStatusPublished {
		validationErrors["status"] = "Status must be draft or published"
	}
	if len(metaTitle) > 60 {
		validationErrors["meta_title"] = "Must be at most 60 characters"
	}
	if len(metaDescription) > 160 {
		validationErrors["meta_description"] = "Must be at most 160 characters"
	}
	return validationErrors
}

// parsePublishedAt parses an optional RFC 3339 publish date. A published
// post without an explicit date is published now.
func parsePublishedAt(raw *string, status string) (sql.NullTime, error) {
	if raw != nil && *raw != "" {
		t, err := time.Parse(time.RFC3339, *raw)
		if err != nil {
			return sql.NullTime{}, err
		}
		return sql.NullTime{Time: t, Valid: true}, nil
	}
	if status == model.PostStatusPublished {
		return sql.NullTime{Time: time.Now(), Valid: true}, nil
	}
	return sql.NullTime{}, nil
}

func (h *Handler) postToResponse(ctx context.Context, p *model.Post) PostAPIResponse {
	resp := PostAPIResponse{
		ID:                 p.ID,
		Title:              p.Title,
		Slug:               p.Slug,
		Excerpt:            p.Excerpt,
		Body:               p.Body,
		AuthorID:           p.AuthorID,
		Status:             p.Status,
		FeaturedImage:      p.FeaturedImage,
		MetaTitle:          p.MetaTitle,
		MetaDescription:    p.MetaDescription,
		CanonicalURL:       p.CanonicalURL,
		OGTitle:            p.OGTitle,
		OGDescription:      p.OGDescription,
		OGImage:            p.OGImage,
		NoIndex:            p.NoIndex,
		ViewsCount:         p.ViewsCount,
		ReadingTimeMinutes: p.ReadingTimeMinutes,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}

	if p.CategoryID.Valid {
		resp.CategoryID = &p.CategoryID.Int64
	}
	if p.PublishedAt.Valid {
		t := p.PublishedAt.Time
		resp.PublishedAt = &t
	}

	tags, err := h.queries.ListTagsForPost(ctx, p.ID)
	if err == nil && len(tags) > 0 {
		resp.Tags = make([]TagAPIResponse, 0, len(tags))
		for i := range tags {
			resp.Tags = append(resp.Tags, tagToResponse(&tags[i]))
		}
	}

	return resp
}
