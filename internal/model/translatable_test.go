// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
)

func TestTranslatedStringGetSet(t *testing.T) {
	ts := TranslatedString{}
	if got := ts.Get(LocaleEN); got != "" {
		t.Errorf("Get on empty = %q, want empty", got)
	}

	ts.Set(LocaleEN, "Hello")
	ts.Set(LocaleAR, "مرحبا")

	if got := ts.Get(LocaleEN); got != "Hello" {
		t.Errorf("Get(en) = %q, want %q", got, "Hello")
	}
	if got := ts.Get(LocaleAR); got != "مرحبا" {
		t.Errorf("Get(ar) = %q, want %q", got, "مرحبا")
	}
}

func TestTranslatedStringGetNilMap(t *testing.T) {
	var ts TranslatedString
	if got := ts.Get(LocaleEN); got != "" {
		t.Errorf("Get on nil map = %q, want empty", got)
	}
	if ts.Has(LocaleEN) {
		t.Error("Has on nil map should be false")
	}
	if !ts.IsEmpty() {
		t.Error("nil map should be empty")
	}
}

func TestTranslatedStringHas(t *testing.T) {
	tests := []struct {
		name   string
		ts     TranslatedString
		locale Locale
		want   bool
	}{
		{"set value", TranslatedString{LocaleEN: "Hello"}, LocaleEN, true},
		{"other locale", TranslatedString{LocaleEN: "Hello"}, LocaleAR, false},
		{"whitespace only", TranslatedString{LocaleEN: "   "}, LocaleEN, false},
		{"empty string", TranslatedString{LocaleEN: ""}, LocaleEN, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ts.Has(tt.locale); got != tt.want {
				t.Errorf("Has(%s) = %v, want %v", tt.locale, got, tt.want)
			}
		})
	}
}

func TestTranslatedStringPrimary(t *testing.T) {
	tests := []struct {
		name string
		ts   TranslatedString
		want string
	}{
		{"default locale wins", TranslatedString{LocaleEN: "Hello", LocaleAR: "مرحبا"}, "Hello"},
		{"falls back to other locale", TranslatedString{LocaleAR: "مرحبا"}, "مرحبا"},
		{"empty", TranslatedString{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ts.Primary(); got != tt.want {
				t.Errorf("Primary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslatedStringValueScan(t *testing.T) {
	ts := TranslatedString{LocaleEN: "Hello World", LocaleAR: "مرحبا"}

	val, err := ts.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var got TranslatedString
	if err := got.Scan(val); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if got.Get(LocaleEN) != "Hello World" {
		t.Errorf("en = %q, want %q", got.Get(LocaleEN), "Hello World")
	}
	if got.Get(LocaleAR) != "مرحبا" {
		t.Errorf("ar = %q, want %q", got.Get(LocaleAR), "مرحبا")
	}
}

func TestTranslatedStringScanNull(t *testing.T) {
	var ts TranslatedString
	if err := ts.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if !ts.IsEmpty() {
		t.Error("scanned NULL should yield empty map")
	}
}

func TestTranslatedStringValueNil(t *testing.T) {
	var ts TranslatedString
	val, err := ts.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if val != "{}" {
		t.Errorf("nil map Value() = %v, want {}", val)
	}
}

func TestTranslatedStringClone(t *testing.T) {
	ts := TranslatedString{LocaleEN: "original"}
	clone := ts.Clone()
	clone.Set(LocaleEN, "changed")

	if ts.Get(LocaleEN) != "original" {
		t.Error("Clone should not share storage with original")
	}
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		input string
		want  Locale
	}{
		{"en", LocaleEN},
		{"ar", LocaleAR},
		{"fr", DefaultLocale},
		{"", DefaultLocale},
	}

	for _, tt := range tests {
		if got := ParseLocale(tt.input); got != tt.want {
			t.Errorf("ParseLocale(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLocaleDirection(t *testing.T) {
	if LocaleEN.Direction() != DirectionLTR {
		t.Error("en should be ltr")
	}
	if LocaleAR.Direction() != DirectionRTL {
		t.Error("ar should be rtl")
	}
	if !LocaleAR.IsRTL() {
		t.Error("ar IsRTL should be true")
	}
}
