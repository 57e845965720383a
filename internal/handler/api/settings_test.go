// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/madarhq/madar/internal/model"
)

func getSettingResponse(t *testing.T, h *Handler, name string) SettingAPIResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/"+name, nil)
	req = requestWithURLParams(req, map[string]string{"name": name})
	rec := httptest.NewRecorder()
	h.GetSetting(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GetSetting(%q): status = %d; body: %s", name, rec.Code, rec.Body.String())
	}

	var resp struct {
		Data SettingAPIResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp.Data
}

func TestListSettingsIncludesDefaults(t *testing.T) {
	_, h := testSetup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	rec := httptest.NewRecorder()
	h.ListSettings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Data []SettingAPIResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	byName := make(map[string]SettingAPIResponse, len(resp.Data))
	for _, s := range resp.Data {
		byName[s.Name] = s
	}

	if got, ok := byName[model.SettingKeySiteName]; !ok || got.Value != "Madar" {
		t.Errorf("site_name = %+v, want default %q", got, "Madar")
	}
	if got, ok := byName[model.SettingKeyPostsPerPage]; !ok || got.Value != "12" {
		t.Errorf("posts_per_page = %+v, want default %q", got, "12")
	}
}

func TestUpdateSettingTypedValue(t *testing.T) {
	_, h := testSetup(t)

	body := `{"value": "24"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/posts_per_page", strings.NewReader(body))
	req = requestWithURLParams(req, map[string]string{"name": model.SettingKeyPostsPerPage})
	rec := httptest.NewRecorder()
	h.UpdateSetting(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	got := getSettingResponse(t, h, model.SettingKeyPostsPerPage)
	if got.Value != "24" {
		t.Errorf("value = %q, want %q", got.Value, "24")
	}
	if got.Type != model.SettingTypeInt {
		t.Errorf("type = %q, want %q", got.Type, model.SettingTypeInt)
	}
}

func TestUpdateSettingValidation(t *testing.T) {
	_, h := testSetup(t)

	tests := []struct {
		name    string
		setting string
		body    string
	}{
		{"posts_per_page not a number", model.SettingKeyPostsPerPage, `{"value": "lots"}`},
		{"posts_per_page out of range", model.SettingKeyPostsPerPage, `{"value": "500"}`},
		{"bad admin email", model.SettingKeyAdminEmail, `{"value": "not-an-email"}`},
		{"bad site url", model.SettingKeySiteURL, `{"value": "ftp://example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/"+tt.setting, strings.NewReader(tt.body))
			req = requestWithURLParams(req, map[string]string{"name": tt.setting})
			rec := httptest.NewRecorder()
			h.UpdateSetting(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
			}
		})
	}
}

func TestDeleteSettingRestoresDefault(t *testing.T) {
	_, h := testSetup(t)

	body := `{"value": "30"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/posts_per_page", strings.NewReader(body))
	req = requestWithURLParams(req, map[string]string{"name": model.SettingKeyPostsPerPage})
	rec := httptest.NewRecorder()
	h.UpdateSetting(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("updating: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/settings/posts_per_page", nil)
	req = requestWithURLParams(req, map[string]string{"name": model.SettingKeyPostsPerPage})
	rec = httptest.NewRecorder()
	h.DeleteSetting(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("deleting: status = %d", rec.Code)
	}

	got := getSettingResponse(t, h, model.SettingKeyPostsPerPage)
	if got.Value != "12" {
		t.Errorf("value after delete = %q, want default %q", got.Value, "12")
	}
}

func TestUpdateSettingCustomKey(t *testing.T) {
	_, h := testSetup(t)

	body := `{"value": "true", "type": "bool"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/maintenance_mode", strings.NewReader(body))
	req = requestWithURLParams(req, map[string]string{"name": "maintenance_mode"})
	rec := httptest.NewRecorder()
	h.UpdateSetting(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Data SettingAPIResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Data.TypedValue != true {
		t.Errorf("typed_value = %v, want true", resp.Data.TypedValue)
	}
}
