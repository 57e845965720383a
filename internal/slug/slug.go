// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package slug generates URL-safe slugs from display strings, with
// locale-aware handling of Arabic content and Unicode normalization for
// Latin-script input.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/madarhq/madar/internal/model"
)

var (
	// latinSlugRegex matches characters not allowed in Latin-script slugs.
	latinSlugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// arabicSlugRegex matches characters not allowed in Arabic slugs:
	// everything outside ASCII alphanumerics, hyphens and the Arabic
	// block U+0600..U+06FF.
	arabicSlugRegex = regexp.MustCompile(`[^a-z0-9\x{0600}-\x{06FF}-]+`)
	// whitespaceRegex matches runs of whitespace
	whitespaceRegex = regexp.MustCompile(`\s+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Make converts a display string to a URL-friendly slug for the given
// locale. It lowercases, replaces whitespace runs with hyphens, strips
// disallowed characters, collapses repeated hyphens and trims them from
// both ends. The result is deterministic for identical input.
//
// Returns the empty string when nothing survives stripping; the caller
// decides whether to reject the save or fall back to another identifier.
func Make(s string, locale model.Locale) string {
	result := strings.ToLower(s)
	result = whitespaceRegex.ReplaceAllString(result, "-")

	if locale == model.LocaleAR {
		result = arabicSlugRegex.ReplaceAllString(result, "")
	} else {
		// Normalize unicode characters (decompose accents)
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		result, _, _ = transform.String(t, result)

		// Transliterate whatever is still outside ASCII
		result = strings.ToLower(unidecode.Unidecode(result))
		result = whitespaceRegex.ReplaceAllString(result, "-")

		result = latinSlugRegex.ReplaceAllString(result, "")
	}

	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// IsValid checks whether s is a well-formed slug for the locale: non-empty,
// only allowed characters, no leading/trailing or doubled hyphens.
func IsValid(s string, locale model.Locale) bool {
	if s == "" {
		return false
	}

	if locale == model.LocaleAR {
		if arabicSlugRegex.MatchString(s) {
			return false
		}
	} else {
		if latinSlugRegex.MatchString(s) {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
