// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/madarhq/madar/internal/model"
)

const settingColumns = `id, name, value, type, updated_at`

func scanSetting(row interface{ Scan(...any) error }) (model.Setting, error) {
	var s model.Setting
	err := row.Scan(&s.ID, &s.Name, &s.Value, &s.Type, &s.UpdatedAt)
	return s, err
}

// UpsertSettingParams holds a setting write.
type UpsertSettingParams struct {
	Name      string
	Value     string
	Type      string
	UpdatedAt time.Time
}

// UpsertSetting inserts or replaces a setting by name.
func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) (model.Setting, error) {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings (name, value, type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value,
			type = excluded.type, updated_at = excluded.updated_at`,
		arg.Name, arg.Value, arg.Type, arg.UpdatedAt,
	)
	if err != nil {
		return model.Setting{}, fmt.Errorf("upserting setting %q: %w", arg.Name, err)
	}
	return q.GetSetting(ctx, arg.Name)
}

// GetSetting fetches a setting by name.
func (q *Queries) GetSetting(ctx context.Context, name string) (model.Setting, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+settingColumns+` FROM settings WHERE name = ?`, name)
	return scanSetting(row)
}

// ListSettings returns all stored settings ordered by name.
func (q *Queries) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+settingColumns+` FROM settings ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// DeleteSetting removes a setting by name.
func (q *Queries) DeleteSetting(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM settings WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting setting %q: %w", name, err)
	}
	return nil
}
