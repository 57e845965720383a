// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/madarhq/madar/internal/model"
)

// defaultSettings are written on first start so the site renders with
// sensible values before the admin touches the settings screen.
var defaultSettings = []struct {
	Name  string
	Value string
	Type  string
}{
	{model.SettingKeySiteName, "Madar", model.SettingTypeString},
	{model.SettingKeySiteDescription, "Bilingual publishing, English and Arabic", model.SettingTypeString},
	{model.SettingKeyPostsPerPage, "12", model.SettingTypeInt},
}

// Seed writes default settings and a starter category when the database is
// empty. Safe to call on every start.
func Seed(ctx context.Context, db *sql.DB) error {
	q := New(db)
	now := time.Now()

	for _, s := range defaultSettings {
		_, err := q.GetSetting(ctx, s.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("seeding settings: %w", err)
		}
		if _, err := q.UpsertSetting(ctx, UpsertSettingParams{
			Name: s.Name, Value: s.Value, Type: s.Type, UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("seeding setting %q: %w", s.Name, err)
		}
		slog.Info("seeded setting", "name", s.Name)
	}

	count, err := q.CountPosts(ctx)
	if err != nil {
		return fmt.Errorf("seeding: counting posts: %w", err)
	}
	categories, err := q.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("seeding: listing categories: %w", err)
	}
	if count > 0 || len(categories) > 0 {
		return nil
	}

	_, err = q.CreateCategory(ctx, CreateCategoryParams{
		Name:        model.TranslatedString{model.LocaleEN: "General", model.LocaleAR: "عام"},
		Slug:        model.TranslatedString{model.LocaleEN: "general", model.LocaleAR: "عام"},
		Description: model.TranslatedString{},
		Color:       "#6B7280",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("seeding category: %w", err)
	}
	slog.Info("seeded starter category")

	return nil
}
