// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// Setting value types
const (
	SettingTypeString = "string"
	SettingTypeInt    = "int"
	SettingTypeBool   = "bool"
	SettingTypeFloat  = "float"
	SettingTypeJSON   = "json"
)

// Well-known setting keys.
const (
	SettingKeySiteName        = "site_name"
	SettingKeySiteDescription = "site_description"
	SettingKeySiteURL         = "site_url"
	SettingKeyAdminEmail      = "admin_email"
	SettingKeyPostsPerPage    = "posts_per_page"
	SettingKeyAffiliateURL    = "affiliate_url"
)

// StandardSettingFields lists every setting the admin form exposes, with
// the default used when the key has never been saved.
var StandardSettingFields = []SettingField{
	{Name: SettingKeySiteName, Type: SettingTypeString, Default: "Madar", Label: "Site Name"},
	{Name: SettingKeySiteDescription, Type: SettingTypeString, Default: "", Label: "Site Description"},
	{Name: SettingKeySiteURL, Type: SettingTypeString, Default: "", Label: "Site URL"},
	{Name: SettingKeyAdminEmail, Type: SettingTypeString, Default: "", Label: "Admin Email"},
	{Name: SettingKeyPostsPerPage, Type: SettingTypeInt, Default: "12", Label: "Posts Per Page"},
	{Name: SettingKeyAffiliateURL, Type: SettingTypeString, Default: "", Label: "Affiliate URL"},
}

// Setting is a single key-value configuration item persisted in the store.
type Setting struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Type      string    `json:"type"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingField describes a defined setting: its key, value type and default.
// Definitions supply defaults for keys that have never been saved.
type SettingField struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default string `json:"default"`
	Label   string `json:"label,omitempty"`
}

// CastSettingValue converts the stored string representation to the Go type
// named by valueType. Unknown types pass the string through unchanged.
func CastSettingValue(value, valueType string) any {
	switch valueType {
	case SettingTypeInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	case SettingTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false
		}
		return b
	case SettingTypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return float64(0)
		}
		return f
	case SettingTypeJSON:
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil
		}
		return v
	default:
		return value
	}
}
