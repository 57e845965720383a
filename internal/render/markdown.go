// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render converts stored post bodies to HTML safe for embedding in
// responses.
package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// htmlSanitizer allows the safe HTML subset for user-generated content.
var htmlSanitizer = bluemonday.UGCPolicy()

// markdown converts CommonMark plus tables, strikethrough and autolinks.
// Raw HTML in the source passes through and is caught by the sanitizer.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Markdown converts a markdown body to sanitized HTML.
func Markdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

// SanitizeHTML strips unsafe markup from an HTML fragment.
func SanitizeHTML(fragment string) string {
	return htmlSanitizer.Sanitize(fragment)
}
