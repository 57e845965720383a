// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madarhq/madar/internal/model"
)

// SettingAPIResponse represents a setting in API responses. Value carries
// the raw stored string; TypedValue carries it cast to the declared type.
type SettingAPIResponse struct {
	Name       string     `json:"name"`
	Value      string     `json:"value"`
	Type       string     `json:"type"`
	TypedValue any        `json:"typed_value"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// UpdateSettingRequest represents the request body for updating a setting.
type UpdateSettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// ListSettings handles GET /api/v1/settings
// Returns all settings, merging stored values with defaults for keys that
// have never been saved.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	all, err := h.settings.All(ctx)
	if err != nil {
		WriteInternalError(w, "Failed to list settings")
		return
	}

	responses := make([]SettingAPIResponse, 0, len(all))
	for _, s := range all {
		resp := SettingAPIResponse{
			Name:       s.Name,
			Value:      s.Value,
			Type:       s.Type,
			TypedValue: model.CastSettingValue(s.Value, s.Type),
		}
		if !s.UpdatedAt.IsZero() {
			t := s.UpdatedAt
			resp.UpdatedAt = &t
		}
		responses = append(responses, resp)
	}

	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// GetSetting handles GET /api/v1/settings/{name}
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := chi.URLParam(r, "name")
	if name == "" {
		WriteBadRequest(w, "Missing setting name", nil)
		return
	}

	value, err := h.settings.Get(ctx, name)
	if err != nil {
		WriteInternalError(w, "Failed to read setting")
		return
	}

	valueType := settingType(name)
	WriteSuccess(w, SettingAPIResponse{
		Name:       name,
		Value:      value,
		Type:       valueType,
		TypedValue: model.CastSettingValue(value, valueType),
	}, nil)
}

// UpdateSetting handles PUT /api/v1/settings/{name}
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := chi.URLParam(r, "name")
	if name == "" {
		WriteBadRequest(w, "Missing setting name", nil)
		return
	}

	var req UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	valueType := req.Type
	if valueType == "" {
		valueType = settingType(name)
	}

	if fieldErr := validateSettingValue(name, req.Value, valueType); fieldErr != "" {
		WriteValidationError(w, map[string]string{"value": fieldErr})
		return
	}

	if err := h.settings.Set(ctx, name, req.Value, valueType); err != nil {
		WriteInternalError(w, "Failed to save setting")
		return
	}

	WriteSuccess(w, SettingAPIResponse{
		Name:       name,
		Value:      req.Value,
		Type:       valueType,
		TypedValue: model.CastSettingValue(req.Value, valueType),
	}, nil)
}

// DeleteSetting handles DELETE /api/v1/settings/{name}
// Deleting a defined setting restores its default value.
func (h *Handler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := chi.URLParam(r, "name")
	if name == "" {
		WriteBadRequest(w, "Missing setting name", nil)
		return
	}

	if err := h.settings.Delete(ctx, name); err != nil {
		WriteInternalError(w, "Failed to delete setting")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// settingType returns the declared type for a defined setting, or string
// for custom keys.
func settingType(name string) string {
	for _, f := range model.StandardSettingFields {
		if f.Name == name {
			return f.Type
		}
	}
	return model.SettingTypeString
}

// validateSettingValue checks that the value parses as its declared type,
// plus per-key rules for the well-known settings.
func validateSettingValue(name, value, valueType string) string {
	switch valueType {
	case model.SettingTypeInt:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return "Must be an integer"
		}
	case model.SettingTypeBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return "Must be a boolean"
		}
	case model.SettingTypeFloat:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return "Must be a number"
		}
	case model.SettingTypeJSON:
		if !json.Valid([]byte(value)) {
			return "Must be valid JSON"
		}
	}

	switch name {
	case model.SettingKeyPostsPerPage:
		n, _ := strconv.ParseInt(value, 10, 64)
		if n < 1 || n > 100 {
			return "Must be between 1 and 100"
		}
	case model.SettingKeyAdminEmail:
		if value != "" {
			if _, err := mail.ParseAddress(value); err != nil {
				return "Must be a valid email address"
			}
		}
	case model.SettingKeySiteURL, model.SettingKeyAffiliateURL:
		if value != "" {
			u, err := url.Parse(value)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return "Must be an absolute http(s) URL"
			}
		}
	}

	return ""
}
