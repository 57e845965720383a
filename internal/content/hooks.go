// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"

	"github.com/madarhq/madar/internal/model"
	"github.com/madarhq/madar/internal/slug"
)

// FillSlugsOnCreate populates empty slug slots from the matching title
// slots before first persistence. For each locale: when slug[locale] is
// empty and title[locale] is not, the slug is generated from the title and
// resolved to be unique within kind/locale.
//
// A locale with neither title nor slug is left empty — form validation is
// expected to require the primary-locale title upstream, and secondary
// locales may legitimately stay untranslated.
func FillSlugsOnCreate(ctx context.Context, checker SlugChecker, kind string, title, slugs model.TranslatedString) error {
	for _, locale := range model.Locales {
		if slugs.Has(locale) || !title.Has(locale) {
			continue
		}

		base := slug.Make(title.Get(locale), locale)
		if base == "" {
			continue
		}

		resolved, err := ResolveSlug(ctx, checker, kind, locale, base, 0)
		if err != nil {
			return err
		}
		slugs.Set(locale, resolved)
	}
	return nil
}

// FillSlugsOnUpdate regenerates a locale's slug only when the title for
// that locale just changed AND the slug slot is currently empty. An
// explicit slug always wins and is never overwritten. The entity's own id
// is excluded from uniqueness checks so it cannot collide with itself.
func FillSlugsOnUpdate(ctx context.Context, checker SlugChecker, kind string, id int64, title, prevTitle, slugs model.TranslatedString) error {
	for _, locale := range model.Locales {
		if slugs.Has(locale) {
			continue
		}
		if title.Get(locale) == prevTitle.Get(locale) || !title.Has(locale) {
			continue
		}

		base := slug.Make(title.Get(locale), locale)
		if base == "" {
			continue
		}

		resolved, err := ResolveSlug(ctx, checker, kind, locale, base, id)
		if err != nil {
			return err
		}
		slugs.Set(locale, resolved)
	}
	return nil
}

// DerivePostFields computes reading time and excerpt from the post body on
// create. Reading time is only computed when unset; each locale's excerpt
// is backfilled from that locale's body when empty.
func DerivePostFields(post *model.Post) {
	if post.Excerpt == nil {
		post.Excerpt = model.TranslatedString{}
	}

	if post.ReadingTimeMinutes == 0 && post.Body.Has(model.DefaultLocale) {
		post.ReadingTimeMinutes = ReadingTime(post.Body.Get(model.DefaultLocale))
	}

	for _, locale := range model.Locales {
		if !post.Excerpt.Has(locale) && post.Body.Has(locale) {
			post.Excerpt.Set(locale, Excerpt(post.Body.Get(locale)))
		}
	}
}

// DerivePostFieldsOnUpdate recomputes reading time when the body changed,
// and backfills empty excerpt slots. An explicit excerpt is preserved.
func DerivePostFieldsOnUpdate(post *model.Post, prevBody model.TranslatedString) {
	if post.Excerpt == nil {
		post.Excerpt = model.TranslatedString{}
	}

	bodyChanged := false
	for _, locale := range model.Locales {
		if post.Body.Get(locale) != prevBody.Get(locale) {
			bodyChanged = true
			break
		}
	}

	if post.Body.Has(model.DefaultLocale) && (bodyChanged || post.ReadingTimeMinutes == 0) {
		post.ReadingTimeMinutes = ReadingTime(post.Body.Get(model.DefaultLocale))
	}

	for _, locale := range model.Locales {
		if !post.Excerpt.Has(locale) && post.Body.Has(locale) {
			post.Excerpt.Set(locale, Excerpt(post.Body.Get(locale)))
		}
	}
}
