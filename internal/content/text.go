// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content implements the editorial rules applied when posts,
// categories and tags are saved: per-locale slug generation and uniqueness
// resolution, excerpt and reading-time derivation, and batched view
// counting.
package content

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// WordsPerMinute is the average reading speed used for reading-time
// estimates.
const WordsPerMinute = 200

// ExcerptLength is the maximum excerpt length in characters.
const ExcerptLength = 160

var (
	stripPolicy    = bluemonday.StrictPolicy()
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// StripMarkup removes HTML tags and entities from s, returning plain text
// with collapsed whitespace.
func StripMarkup(s string) string {
	text := stripPolicy.Sanitize(s)
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
}

// ReadingTime estimates reading time in whole minutes for a markup body,
// with a floor of one minute.
func ReadingTime(body string) int64 {
	words := len(strings.Fields(StripMarkup(body)))
	minutes := (int64(words) + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Excerpt derives a short plain-text summary from a markup body: the first
// ExcerptLength characters, cut back to a word boundary so no word is ever
// split.
func Excerpt(body string) string {
	text := StripMarkup(body)
	runes := []rune(text)
	if len(runes) <= ExcerptLength {
		return text
	}

	cut := string(runes[:ExcerptLength])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ")
}
