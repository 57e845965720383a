// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/madarhq/madar/internal/content"
	"github.com/madarhq/madar/internal/model"
	"github.com/madarhq/madar/internal/store"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// TagAPIResponse represents a tag in API responses.
type TagAPIResponse struct {
	ID              int64                  `json:"id"`
	Name            model.TranslatedString `json:"name"`
	Slug            model.TranslatedString `json:"slug"`
	Description     model.TranslatedString `json:"description"`
	Color           string                 `json:"color,omitempty"`
	MetaTitle       string                 `json:"meta_title,omitempty"`
	MetaDescription string                 `json:"meta_description,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// CategoryAPIResponse represents a category in API responses.
type CategoryAPIResponse struct {
	ID              int64                  `json:"id"`
	Name            model.TranslatedString `json:"name"`
	Slug            model.TranslatedString `json:"slug"`
	Description     model.TranslatedString `json:"description"`
	Color           string                 `json:"color,omitempty"`
	MetaTitle       string                 `json:"meta_title,omitempty"`
	MetaDescription string                 `json:"meta_description,omitempty"`
	IsActive        bool                   `json:"is_active"`
	PostCount       int64                  `json:"post_count"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// CreateTagRequest represents the request body for creating a tag.
type CreateTagRequest struct {
	Name            model.TranslatedString `json:"name"`
	Slug            model.TranslatedString `json:"slug,omitempty"`
	Description     model.TranslatedString `json:"description,omitempty"`
	Color           string                 `json:"color,omitempty"`
	MetaTitle       string                 `json:"meta_title,omitempty"`
	MetaDescription string                 `json:"meta_description,omitempty"`
}

// UpdateTagRequest represents the request body for updating a tag.
// Nil fields are left unchanged.
type UpdateTagRequest struct {
	Name            model.TranslatedString `json:"name,omitempty"`
	Slug            model.TranslatedString `json:"slug,omitempty"`
	Description     model.TranslatedString `json:"description,omitempty"`
	Color           *string                `json:"color,omitempty"`
	MetaTitle       *string                `json:"meta_title,omitempty"`
	MetaDescription *string                `json:"meta_description,omitempty"`
}

// CreateCategoryRequest represents the request body for creating a category.
type CreateCategoryRequest struct {
	Name            model.TranslatedString `json:"name"`
	Slug            model.TranslatedString `json:"slug,omitempty"`
	Description     model.TranslatedString `json:"description,omitempty"`
	Color           string                 `json:"color,omitempty"`
	MetaTitle       string                 `json:"meta_title,omitempty"`
	MetaDescription string                 `json:"meta_description,omitempty"`
	IsActive        *bool                  `json:"is_active,omitempty"`
}

// UpdateCategoryRequest represents the request body for updating a category.
// Nil fields are left unchanged.
type UpdateCategoryRequest struct {
	Name            model.TranslatedString `json:"name,omitempty"`
	Slug            model.TranslatedString `json:"slug,omitempty"`
	Description     model.TranslatedString `json:"description,omitempty"`
	Color           *string                `json:"color,omitempty"`
	MetaTitle       *string                `json:"meta_title,omitempty"`
	MetaDescription *string                `json:"meta_description,omitempty"`
	IsActive        *bool                  `json:"is_active,omitempty"`
}

// ============================================================================
// Tag Endpoints
// ============================================================================

// ListTags handles GET /api/v1/tags
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tags, err := h.queries.ListTags(ctx)
	if err != nil {
		WriteInternalError(w, "Failed to list tags")
		return
	}

	responses := make([]TagAPIResponse, 0, len(tags))
	for i := range tags {
		responses = append(responses, tagToResponse(&tags[i]))
	}

	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// GetTag handles GET /api/v1/tags/{id}
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, ok := h.requireTag(w, r)
	if !ok {
		return
	}

	resp := tagToResponse(&tag)
	WriteSuccess(w, resp, nil)
}

// CreateTag handles POST /api/v1/tags
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	validationErrors := validateTaxonomyFields(req.Name, req.Slug, req.Color, req.MetaTitle, req.MetaDescription)
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	slugs := req.Slug.Clone()
	if err := content.FillSlugsOnCreate(ctx, h.queries, model.KindTag, req.Name, slugs); err != nil {
		WriteInternalError(w, "Failed to generate slug")
		return
	}

	now := time.Now()
	params := store.CreateTagParams{
		Name:            req.Name,
		Slug:            slugs,
		Description:     req.Description,
		Color:           req.Color,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	tag, err := h.queries.CreateTag(ctx, params)
	if errors.Is(err, store.ErrSlugTaken) {
		if rerr := h.reresolveSlugs(ctx, model.KindTag, 0, params.Slug); rerr != nil {
			WriteInternalError(w, "Failed to generate slug")
			return
		}
		tag, err = h.queries.CreateTag(ctx, params)
	}
	if err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		WriteInternalError(w, "Failed to create tag")
		return
	}

	h.invalidateContentCaches(ctx)

	resp := tagToResponse(&tag)
	WriteCreated(w, resp)
}

// UpdateTag handles PUT /api/v1/tags/{id}
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requireTag(w, r)
	if !ok {
		return
	}

	var req UpdateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdateTagParams{
		ID:              existing.ID,
		Name:            existing.Name,
		Slug:            existing.Slug,
		Description:     existing.Description,
		Color:           existing.Color,
		MetaTitle:       existing.MetaTitle,
		MetaDescription: existing.MetaDescription,
		UpdatedAt:       time.Now(),
	}

	if req.Name != nil {
		params.Name = req.Name
	}
	if req.Slug != nil {
		params.Slug = req.Slug.Clone()
	}
	if req.Description != nil {
		params.Description = req.Description
	}
	if req.Color != nil {
		params.Color = *req.Color
	}
	if req.MetaTitle != nil {
		params.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		params.MetaDescription = *req.MetaDescription
	}

	validationErrors := validateTaxonomyFields(params.Name, req.Slug, params.Color, params.MetaTitle, params.MetaDescription)
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	if err := content.FillSlugsOnUpdate(ctx, h.queries, model.KindTag, existing.ID,
		params.Name, existing.Name, params.Slug); err != nil {
		WriteInternalError(w, "Failed to generate slug")
		return
	}

	tag, err := h.queries.UpdateTag(ctx, params)
	if errors.Is(err, store.ErrSlugTaken) {
		if rerr := h.reresolveSlugs(ctx, model.KindTag, existing.ID, params.Slug); rerr != nil {
			WriteInternalError(w, "Failed to generate slug")
			return
		}
		tag, err = h.queries.UpdateTag(ctx, params)
	}
	if err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		WriteInternalError(w, "Failed to update tag")
		return
	}

	h.invalidateContentCaches(ctx)

	resp := tagToResponse(&tag)
	WriteSuccess(w, resp, nil)
}

// DeleteTag handles DELETE /api/v1/tags/{id}
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tag, ok := h.requireTag(w, r)
	if !ok {
		return
	}

	// post_tags associations cascade.
	if err := h.queries.DeleteTag(ctx, tag.ID); err != nil {
		WriteInternalError(w, "Failed to delete tag")
		return
	}

	h.invalidateContentCaches(ctx)

	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Category Endpoints
// ============================================================================

// ListCategories handles GET /api/v1/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		categories []model.Category
		err        error
	)
	if r.URL.Query().Get("active") == "true" {
		categories, err = h.queries.ListActiveCategories(ctx)
	} else {
		categories, err = h.queries.ListCategories(ctx)
	}
	if err != nil {
		WriteInternalError(w, "Failed to list categories")
		return
	}

	responses := make([]CategoryAPIResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, h.categoryToResponse(ctx, &categories[i]))
	}

	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// GetCategory handles GET /api/v1/categories/{id}
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, ok := h.requireCategory(w, r)
	if !ok {
		return
	}

	resp := h.categoryToResponse(ctx, &category)
	WriteSuccess(w, resp, nil)
}

// CreateCategory handles POST /api/v1/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	validationErrors := validateTaxonomyFields(req.Name, req.Slug, req.Color, req.MetaTitle, req.MetaDescription)
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	slugs := req.Slug.Clone()
	if err := content.FillSlugsOnCreate(ctx, h.queries, model.KindCategory, req.Name, slugs); err != nil {
		WriteInternalError(w, "Failed to generate slug")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now()
	params := store.CreateCategoryParams{
		Name:            req.Name,
		Slug:            slugs,
		Description:     req.Description,
		Color:           req.Color,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		IsActive:        isActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	category, err := h.queries.CreateCategory(ctx, params)
	if errors.Is(err, store.ErrSlugTaken) {
		if rerr := h.reresolveSlugs(ctx, model.KindCategory, 0, params.Slug); rerr != nil {
			WriteInternalError(w, "Failed to generate slug")
			return
		}
		category, err = h.queries.CreateCategory(ctx, params)
	}
	if err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		WriteInternalError(w, "Failed to create category")
		return
	}

	h.invalidateContentCaches(ctx)

	resp := h.categoryToResponse(ctx, &category)
	WriteCreated(w, resp)
}

// UpdateCategory handles PUT /api/v1/categories/{id}
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := h.requireCategory(w, r)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	params := store.UpdateCategoryParams{
		ID:              existing.ID,
		Name:            existing.Name,
		Slug:            existing.Slug,
		Description:     existing.Description,
		Color:           existing.Color,
		MetaTitle:       existing.MetaTitle,
		MetaDescription: existing.MetaDescription,
		IsActive:        existing.IsActive,
		UpdatedAt:       time.Now(),
	}

	if req.Name != nil {
		params.Name = req.Name
	}
	if req.Slug != nil {
		params.Slug = req.Slug.Clone()
	}
	if req.Description != nil {
		params.Description = req.Description
	}
	if req.Color != nil {
		params.Color = *req.Color
	}
	if req.MetaTitle != nil {
		params.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		params.MetaDescription = *req.MetaDescription
	}
	if req.IsActive != nil {
		params.IsActive = *req.IsActive
	}

	validationErrors := validateTaxonomyFields(params.Name, req.Slug, params.Color, params.MetaTitle, params.MetaDescription)
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	if err := content.FillSlugsOnUpdate(ctx, h.queries, model.KindCategory, existing.ID,
		params.Name, existing.Name, params.Slug); err != nil {
		WriteInternalError(w, "Failed to generate slug")
		return
	}

	category, err := h.queries.UpdateCategory(ctx, params)
	if errors.Is(err, store.ErrSlugTaken) {
		if rerr := h.reresolveSlugs(ctx, model.KindCategory, existing.ID, params.Slug); rerr != nil {
			WriteInternalError(w, "Failed to generate slug")
			return
		}
		category, err = h.queries.UpdateCategory(ctx, params)
	}
	if err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		WriteInternalError(w, "Failed to update category")
		return
	}

	h.invalidateContentCaches(ctx)

	resp := h.categoryToResponse(ctx, &category)
	WriteSuccess(w, resp, nil)
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, ok := h.requireCategory(w, r)
	if !ok {
		return
	}

	// Posts referencing the category keep their rows; category_id is set
	// NULL by the schema's ON DELETE SET NULL.
	if err := h.queries.DeleteCategory(ctx, category.ID); err != nil {
		WriteInternalError(w, "Failed to delete category")
		return
	}

	h.invalidateContentCaches(ctx)

	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Helper Functions
// ============================================================================

func (h *Handler) requireTag(w http.ResponseWriter, r *http.Request) (model.Tag, bool) {
	return requireEntityByID(w, r, "tag", func(id int64) (model.Tag, error) {
		return h.queries.GetTagByID(r.Context(), id)
	})
}

func (h *Handler) requireCategory(w http.ResponseWriter, r *http.Request) (model.Category, bool) {
	return requireEntityByID(w, r, "category", func(id int64) (model.Category, error) {
		return h.queries.GetCategoryByID(r.Context(), id)
	})
}

func validateTaxonomyFields(name, slugs model.TranslatedString, color, metaTitle, metaDescription string) map[string]string {
	validationErrors := make(map[string]string)
	if !name.Has(model.DefaultLocale) {
		validationErrors["name."+string(model.DefaultLocale)] = "Name is required in the default locale"
	}
	validateSlugFields(slugs, validationErrors)
	if color != "" && !hexColorRe.MatchString(color) {
		validationErrors["color"] = "Must be a hex color like #336699"
	}
	if len(metaTitle) > 60 {
		validationErrors["meta_title"] = "Must be at most 60 characters"
	}
	if len(metaDescription) > 160 {
		validationErrors["meta_description"] = "Must be at most 160 characters"
	}
	return validationErrors
}

func tagToResponse(t *model.Tag) TagAPIResponse {
	return TagAPIResponse{
		ID:              t.ID,
		Name:            t.Name,
		Slug:            t.Slug,
		Description:     t.Description,
		Color:           t.Color,
		MetaTitle:       t.MetaTitle,
		MetaDescription: t.MetaDescription,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (h *Handler) categoryToResponse(ctx context.Context, c *model.Category) CategoryAPIResponse {
	postCount, err := h.queries.CountPublishedPostsByCategory(ctx, c.ID)
	if err != nil {
		postCount = 0
	}

	return CategoryAPIResponse{
		ID:              c.ID,
		Name:            c.Name,
		Slug:            c.Slug,
		Description:     c.Description,
		Color:           c.Color,
		MetaTitle:       c.MetaTitle,
		MetaDescription: c.MetaDescription,
		IsActive:        c.IsActive,
		PostCount:       postCount,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
