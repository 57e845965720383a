// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Text directions
const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// Locale identifies a content language.
type Locale string

// Supported content locales.
const (
	LocaleEN Locale = "en"
	LocaleAR Locale = "ar"
)

// DefaultLocale is the primary content locale. Required fields (title, name)
// are validated against it.
const DefaultLocale = LocaleEN

// Locales lists all configured content locales in display order.
var Locales = []Locale{LocaleEN, LocaleAR}

// IsValidLocale reports whether code is a configured content locale.
func IsValidLocale(code string) bool {
	for _, l := range Locales {
		if string(l) == code {
			return true
		}
	}
	return false
}

// ParseLocale returns the locale for code, falling back to DefaultLocale
// when code is not configured.
func ParseLocale(code string) Locale {
	if IsValidLocale(code) {
		return Locale(code)
	}
	return DefaultLocale
}

// Direction returns the text direction for the locale.
func (l Locale) Direction() string {
	if l == LocaleAR {
		return DirectionRTL
	}
	return DirectionLTR
}

// IsRTL returns true if the locale is written right-to-left.
func (l Locale) IsRTL() bool {
	return l.Direction() == DirectionRTL
}
