// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/madarhq/madar/internal/model"
)

func localeEcho(t *testing.T, want model.Locale) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := GetLocale(r); got != want {
			t.Errorf("GetLocale = %q, want %q", got, want)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestLocaleMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *http.Request)
		want   model.Locale
		cookie bool // a preference cookie should be set
	}{
		{
			name:  "default without hints",
			setup: func(r *http.Request) {},
			want:  model.LocaleEN,
		},
		{
			name: "query parameter switches locale",
			setup: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("locale", "ar")
				r.URL.RawQuery = q.Encode()
			},
			want:   model.LocaleAR,
			cookie: true,
		},
		{
			name: "uppercase query parameter is normalized",
			setup: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("locale", "AR")
				r.URL.RawQuery = q.Encode()
			},
			want:   model.LocaleAR,
			cookie: true,
		},
		{
			name: "invalid query parameter ignored",
			setup: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("locale", "fr")
				r.URL.RawQuery = q.Encode()
			},
			want: model.LocaleEN,
		},
		{
			name: "cookie preference",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: LocaleCookieName, Value: "ar"})
			},
			want: model.LocaleAR,
		},
		{
			name: "mixed case cookie value",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: LocaleCookieName, Value: "Ar"})
			},
			want: model.LocaleAR,
		},
		{
			name: "accept language header",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "ar-EG,ar;q=0.9,en;q=0.8")
			},
			want: model.LocaleAR,
		},
		{
			name: "unsupported accept language falls through",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "fr-FR,de;q=0.9")
			},
			want: model.LocaleEN,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/blog", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			Locale()(localeEcho(t, tt.want)).ServeHTTP(rec, req)

			cookies := rec.Result().Cookies()
			hasCookie := false
			for _, c := range cookies {
				if c.Name == LocaleCookieName {
					hasCookie = true
				}
			}
			if hasCookie != tt.cookie {
				t.Errorf("preference cookie set = %v, want %v", hasCookie, tt.cookie)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("burst requests rejected: %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", statuses[2])
	}

	// A different IP gets its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("fresh IP = %d, want 200", rec.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	for i := 0; i < 5; i++ {
		rl.cache.get(string(rune('a' + i)))
	}
	rl.Cleanup(3)
	if len(rl.cache.limiters) != 0 {
		t.Errorf("cache not cleared: %d entries", len(rl.cache.limiters))
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(DefaultSecurityHeadersConfig(false))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Strict-Transport-Security"); got == "" {
		t.Error("HSTS header missing in production mode")
	}

	// Development mode disables HSTS.
	devHandler := SecurityHeaders(DefaultSecurityHeadersConfig(true))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec = httptest.NewRecorder()
	devHandler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS set in development: %q", got)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{
			name:  "remote addr fallback",
			setup: func(r *http.Request) { r.RemoteAddr = "192.0.2.1:5000" },
			want:  "192.0.2.1:5000",
		},
		{
			name: "x-real-ip preferred",
			setup: func(r *http.Request) {
				r.RemoteAddr = "192.0.2.1:5000"
				r.Header.Set("X-Real-IP", "203.0.113.9")
			},
			want: "203.0.113.9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
