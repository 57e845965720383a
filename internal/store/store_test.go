// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/madarhq/madar/internal/model"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "madar-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
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

func createTestPost(t *testing.T, q *Queries, slugEN, status string, publishedAt time.Time) model.Post {
	t.Helper()

	now := time.Now()
	post, err := q.CreatePost(context.Background(), CreatePostParams{
		Title:       model.TranslatedString{model.LocaleEN: "Title " + slugEN},
		Slug:        model.TranslatedString{model.LocaleEN: slugEN},
		Excerpt:     model.TranslatedString{},
		Body:        model.TranslatedString{model.LocaleEN: "Body text"},
		AuthorID:    1,
		Status:      status,
		PublishedAt: sql.NullTime{Time: publishedAt, Valid: !publishedAt.IsZero()},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreatePost(%q): %v", slugEN, err)
	}
	return post
}

func TestCreateAndGetPost(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	post := createTestPost(t, q, "hello-world", model.PostStatusDraft, time.Time{})

	if post.ID == 0 {
		t.Error("post.ID should not be 0")
	}
	if got := post.Slug.Get(model.LocaleEN); got != "hello-world" {
		t.Errorf("Slug.en = %q, want hello-world", got)
	}

	fetched, err := q.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if fetched.Title.Get(model.LocaleEN) != "Title hello-world" {
		t.Errorf("Title.en = %q", fetched.Title.Get(model.LocaleEN))
	}
}

func TestSlugExists(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	post := createTestPost(t, q, "taken", model.PostStatusDraft, time.Time{})

	exists, err := q.SlugExists(ctx, model.KindPost, model.LocaleEN, "taken", 0)
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if !exists {
		t.Error("slug should be reported taken")
	}

	// Excluding the holder itself ignores the collision
	exists, err = q.SlugExists(ctx, model.KindPost, model.LocaleEN, "taken", post.ID)
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if exists {
		t.Error("self-collision should be ignored with exclude id")
	}

	// Other locale slot is independent
	exists, err = q.SlugExists(ctx, model.KindPost, model.LocaleAR, "taken", 0)
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if exists {
		t.Error("ar slot should be free")
	}

	// Other kinds are scoped independently
	exists, err = q.SlugExists(ctx, model.KindTag, model.LocaleEN, "taken", 0)
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if exists {
		t.Error("tag slugs should not see post slugs")
	}
}

func TestSlugUniqueIndexBackstop(t *testing.T) {
	db := testDB(t)
	q := New(db)

	createTestPost(t, q, "duplicate", model.PostStatusDraft, time.Time{})

	now := time.Now()
	_, err := q.CreatePost(context.Background(), CreatePostParams{
		Title:     model.TranslatedString{model.LocaleEN: "Other"},
		Slug:      model.TranslatedString{model.LocaleEN: "duplicate"},
		Status:    model.PostStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("duplicate slug insert = %v, want ErrSlugTaken", err)
	}
}

func TestEmptySlugSlotsDoNotCollide(t *testing.T) {
	db := testDB(t)
	q := New(db)

	// Two posts with empty ar slots must not trip the partial unique index.
	createTestPost(t, q, "first", model.PostStatusDraft, time.Time{})
	createTestPost(t, q, "second", model.PostStatusDraft, time.Time{})
}

func TestGetPublishedPostBySlug(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	createTestPost(t, q, "published", model.PostStatusPublished, past)
	createTestPost(t, q, "scheduled", model.PostStatusPublished, future)
	createTestPost(t, q, "draft", model.PostStatusDraft, time.Time{})

	if _, err := q.GetPublishedPostBySlug(ctx, model.LocaleEN, "published"); err != nil {
		t.Errorf("published post should be found: %v", err)
	}
	if _, err := q.GetPublishedPostBySlug(ctx, model.LocaleEN, "scheduled"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("scheduled post lookup = %v, want ErrNoRows", err)
	}
	if _, err := q.GetPublishedPostBySlug(ctx, model.LocaleEN, "draft"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("draft post lookup = %v, want ErrNoRows", err)
	}
}

func TestIncrementPostViews(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	post := createTestPost(t, q, "viewed", model.PostStatusDraft, time.Time{})

	if err := q.IncrementPostViews(ctx, post.ID, 10); err != nil {
		t.Fatalf("IncrementPostViews: %v", err)
	}
	if err := q.IncrementPostViews(ctx, post.ID, 10); err != nil {
		t.Fatalf("IncrementPostViews: %v", err)
	}

	fetched, err := q.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if fetched.ViewsCount != 20 {
		t.Errorf("ViewsCount = %d, want 20", fetched.ViewsCount)
	}
}

func TestPostTags(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	now := time.Now()

	post := createTestPost(t, q, "tagged", model.PostStatusPublished, now.Add(-time.Hour))

	var tagIDs []int64
	for _, name := range []string{"go", "web"} {
		tag, err := q.CreateTag(ctx, CreateTagParams{
			Name:      model.TranslatedString{model.LocaleEN: name},
			Slug:      model.TranslatedString{model.LocaleEN: name},
			Color:     "#FF0000",
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateTag(%q): %v", name, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	if err := q.SetPostTags(ctx, post.ID, tagIDs); err != nil {
		t.Fatalf("SetPostTags: %v", err)
	}

	tags, err := q.ListTagsForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListTagsForPost: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("len(tags) = %d, want 2", len(tags))
	}

	popular, err := q.ListPopularTags(ctx, 10)
	if err != nil {
		t.Fatalf("ListPopularTags: %v", err)
	}
	if len(popular) != 2 {
		t.Fatalf("len(popular) = %d, want 2", len(popular))
	}
	if popular[0].PublishedPosts != 1 {
		t.Errorf("PublishedPosts = %d, want 1", popular[0].PublishedPosts)
	}

	// Replacing with a subset drops the removed link
	if err := q.SetPostTags(ctx, post.ID, tagIDs[:1]); err != nil {
		t.Fatalf("SetPostTags: %v", err)
	}
	tags, err = q.ListTagsForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListTagsForPost: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("len(tags) after replace = %d, want 1", len(tags))
	}
}

func TestCategoryQueries(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	now := time.Now()

	cat, err := q.CreateCategory(ctx, CreateCategoryParams{
		Name:      model.TranslatedString{model.LocaleEN: "News", model.LocaleAR: "أخبار"},
		Slug:      model.TranslatedString{model.LocaleEN: "news", model.LocaleAR: "أخبار"},
		Color:     "#00FF00",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	got, err := q.GetActiveCategoryBySlug(ctx, model.LocaleAR, "أخبار")
	if err != nil {
		t.Fatalf("GetActiveCategoryBySlug(ar): %v", err)
	}
	if got.ID != cat.ID {
		t.Errorf("found category %d, want %d", got.ID, cat.ID)
	}

	// Deactivate and confirm the public lookup stops finding it
	if _, err := q.UpdateCategory(ctx, UpdateCategoryParams{
		ID: cat.ID, Name: cat.Name, Slug: cat.Slug, Description: cat.Description,
		Color: cat.Color, IsActive: false, UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if _, err := q.GetActiveCategoryBySlug(ctx, model.LocaleEN, "news"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("inactive category lookup = %v, want ErrNoRows", err)
	}
}

func TestSettings(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	now := time.Now()

	s, err := q.UpsertSetting(ctx, UpsertSettingParams{
		Name: model.SettingKeySiteName, Value: "Madar", Type: model.SettingTypeString, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpsertSetting: %v", err)
	}
	if s.Value != "Madar" {
		t.Errorf("Value = %q, want Madar", s.Value)
	}

	// Upsert with same name overwrites
	s, err = q.UpsertSetting(ctx, UpsertSettingParams{
		Name: model.SettingKeySiteName, Value: "Madar Blog", Type: model.SettingTypeString, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpsertSetting: %v", err)
	}
	if s.Value != "Madar Blog" {
		t.Errorf("Value after upsert = %q, want Madar Blog", s.Value)
	}

	all, err := q.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(settings) = %d, want 1", len(all))
	}

	if err := q.DeleteSetting(ctx, model.SettingKeySiteName); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	if _, err := q.GetSetting(ctx, model.SettingKeySiteName); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("deleted setting lookup = %v, want ErrNoRows", err)
	}
}
