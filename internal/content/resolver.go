// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"fmt"

	"github.com/madarhq/madar/internal/model"
)

// SlugChecker is the read the uniqueness resolver needs from the store:
// does any entity of kind hold slug in the locale slot, excluding id
// excludeID (0 = nothing excluded).
type SlugChecker interface {
	SlugExists(ctx context.Context, kind string, locale model.Locale, slug string, excludeID int64) (bool, error)
}

// ResolveSlug finds the first free slug for kind/locale starting from base:
// base itself, then base-1, base-2, ... Suffixes restart at 1 on every call,
// so a suffix freed by a deleted entity can be reassigned later — accepted
// behavior, not a bug.
//
// No cross-request lock is taken; two concurrent saves can both observe a
// candidate as free. The per-locale unique index is the backstop, and the
// store reports that as ErrSlugTaken so the caller can retry.
func ResolveSlug(ctx context.Context, checker SlugChecker, kind string, locale model.Locale, base string, excludeID int64) (string, error) {
	candidate := base
	for counter := 1; ; counter++ {
		exists, err := checker.SlugExists(ctx, kind, locale, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("resolving slug %q: %w", base, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
