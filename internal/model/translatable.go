// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// TranslatedString holds one value per content locale for a translatable
// field. It is stored as a JSON object column ({"en": "...", "ar": "..."}),
// matching the shape content importers and the admin API exchange.
// Each locale slot is independently empty; absent and empty are equivalent.
type TranslatedString map[Locale]string

// Get returns the value for the given locale, or "" when unset.
func (t TranslatedString) Get(locale Locale) string {
	if t == nil {
		return ""
	}
	return t[locale]
}

// Set stores value under locale. The receiver must be non-nil.
func (t TranslatedString) Set(locale Locale, value string) {
	t[locale] = value
}

// Has reports whether a non-empty value exists for the locale.
func (t TranslatedString) Has(locale Locale) bool {
	return strings.TrimSpace(t.Get(locale)) != ""
}

// IsEmpty reports whether no locale carries a non-empty value.
func (t TranslatedString) IsEmpty() bool {
	for _, l := range Locales {
		if t.Has(l) {
			return false
		}
	}
	return true
}

// Primary returns the default-locale value, falling back to the first
// non-empty locale. Used for admin listings and log lines.
func (t TranslatedString) Primary() string {
	if t.Has(DefaultLocale) {
		return t.Get(DefaultLocale)
	}
	for _, l := range Locales {
		if t.Has(l) {
			return t.Get(l)
		}
	}
	return ""
}

// Clone returns a copy that shares no storage with the receiver.
func (t TranslatedString) Clone() TranslatedString {
	out := make(TranslatedString, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Value implements driver.Valuer, serializing the map to a JSON object.
// A nil map is stored as an empty object rather than NULL so columns can
// stay NOT NULL.
func (t TranslatedString) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshaling translated string: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for TEXT/BLOB JSON columns.
func (t *TranslatedString) Scan(src any) error {
	if src == nil {
		*t = TranslatedString{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scanning translated string: unsupported type %T", src)
	}

	if len(data) == 0 {
		*t = TranslatedString{}
		return nil
	}

	m := make(TranslatedString)
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("unmarshaling translated string: %w", err)
	}
	*t = m
	return nil
}
