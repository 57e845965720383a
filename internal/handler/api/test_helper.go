// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madarhq/madar/internal/cache"
	"github.com/madarhq/madar/internal/model"
	"github.com/madarhq/madar/internal/seo"
	"github.com/madarhq/madar/internal/settings"
	"github.com/madarhq/madar/internal/store"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "madar-api-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	return db
}

// testSetup creates a test database and API handler for testing.
func testSetup(t *testing.T) (*sql.DB, *Handler) {
	t.Helper()

	db := testDB(t)
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	queries := store.New(db)
	settingsSvc := settings.New(queries)
	seoSvc := seo.NewService(queries, c, "https://example.com")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return db, NewHandler(db, settingsSvc, seoSvc, c, logger)
}

// createTestTag creates a test tag in the database.
func createTestTag(t *testing.T, db *sql.DB, name, slug string) model.Tag {
	t.Helper()

	now := time.Now()
	tag, err := store.New(db).CreateTag(context.Background(), store.CreateTagParams{
		Name:      model.TranslatedString{model.LocaleEN: name},
		Slug:      model.TranslatedString{model.LocaleEN: slug},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("creating test tag: %v", err)
	}
	return tag
}

// createTestCategory creates a test category in the database.
func createTestCategory(t *testing.T, db *sql.DB, name, slug string) model.Category {
	t.Helper()

	now := time.Now()
	category, err := store.New(db).CreateCategory(context.Background(), store.CreateCategoryParams{
		Name:      model.TranslatedString{model.LocaleEN: name},
		Slug:      model.TranslatedString{model.LocaleEN: slug},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("creating test category: %v", err)
	}
	return category
}

// createTestPost creates a published test post in the database.
func createTestPost(t *testing.T, db *sql.DB, titleEN, slugEN string) model.Post {
	t.Helper()

	now := time.Now()
	post, err := store.New(db).CreatePost(context.Background(), store.CreatePostParams{
		Title:       model.TranslatedString{model.LocaleEN: titleEN},
		Slug:        model.TranslatedString{model.LocaleEN: slugEN},
		Body:        model.TranslatedString{model.LocaleEN: "Body of " + titleEN},
		Status:      model.PostStatusPublished,
		PublishedAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("creating test post: %v", err)
	}
	return post
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
