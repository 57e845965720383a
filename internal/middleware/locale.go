// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/madarhq/madar/internal/model"
)

// ContextKeyLocale is the context key for the resolved content locale.
const ContextKeyLocale ContextKey = "locale"

// LocaleCookieName is the cookie name for the locale preference.
const LocaleCookieName = "madar_lang"

// Locale creates middleware that resolves the content locale for the
// request. Priority order:
//  1. Query parameter ?locale=xx (explicit switch, updates the cookie)
//  2. Cookie preference
//  3. Accept-Language header
//  4. Default locale
func Locale() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if q := strings.ToLower(r.URL.Query().Get("locale")); model.IsValidLocale(q) {
				locale := model.Locale(q)
				SetLocaleCookie(w, locale)
				serveWithLocale(next, w, r, locale)
				return
			}

			if cookie, err := r.Cookie(LocaleCookieName); err == nil {
				if v := strings.ToLower(cookie.Value); model.IsValidLocale(v) {
					serveWithLocale(next, w, r, model.Locale(v))
					return
				}
			}

			if accept := r.Header.Get("Accept-Language"); accept != "" {
				if locale, ok := matchAcceptLanguage(accept); ok {
					serveWithLocale(next, w, r, locale)
					return
				}
			}

			serveWithLocale(next, w, r, model.DefaultLocale)
		})
	}
}

func serveWithLocale(next http.Handler, w http.ResponseWriter, r *http.Request, locale model.Locale) {
	ctx := context.WithValue(r.Context(), ContextKeyLocale, locale)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// matchAcceptLanguage finds the first supported locale in an Accept-Language
// header. Quality values are ignored; header order decides.
func matchAcceptLanguage(accept string) (model.Locale, bool) {
	for _, part := range strings.Split(accept, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.Split(part, ";")[0]))
		if tag == "" {
			continue
		}
		// Reduce region subtags: ar-EG matches ar.
		if idx := strings.Index(tag, "-"); idx > 0 {
			tag = tag[:idx]
		}
		if model.IsValidLocale(tag) {
			return model.Locale(tag), true
		}
	}
	return "", false
}

// GetLocale retrieves the resolved locale from the request context.
// Falls back to the default locale when the middleware did not run.
func GetLocale(r *http.Request) model.Locale {
	locale, ok := r.Context().Value(ContextKeyLocale).(model.Locale)
	if !ok {
		return model.DefaultLocale
	}
	return locale
}

// SetLocaleCookie sets the locale preference cookie.
func SetLocaleCookie(w http.ResponseWriter, locale model.Locale) {
	http.SetCookie(w, &http.Cookie{
		Name:     LocaleCookieName,
		Value:    string(locale),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
