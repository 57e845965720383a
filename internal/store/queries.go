// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/madarhq/madar/internal/model"
)

// ErrSlugTaken indicates a per-locale slug unique index rejected a write.
// Callers should re-resolve the slug and retry once.
var ErrSlugTaken = errors.New("slug already taken")

// DBTX is the subset of *sql.DB / *sql.Tx the queries need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries provides typed access to the database.
type Queries struct {
	db DBTX
}

// New creates a Queries instance over a database or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// slugPath builds the json_extract path for a locale slot. Locales come
// from the fixed model.Locales set, never from user input.
func slugPath(locale model.Locale) string {
	return "$." + string(locale)
}

// wrapWriteErr translates unique-index violations on slug columns into
// ErrSlugTaken so callers can distinguish a lost slug race from other
// failures.
func wrapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") &&
		strings.Contains(err.Error(), "slug") {
		return fmt.Errorf("%s: %w", op, ErrSlugTaken)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// SlugExists reports whether any entity of kind holds slug in the given
// locale slot, excluding the entity with id excludeID (0 = exclude nothing).
// This is the read the uniqueness resolver performs per candidate.
func (q *Queries) SlugExists(ctx context.Context, kind string, locale model.Locale, slug string, excludeID int64) (bool, error) {
	var table string
	switch kind {
	case model.KindPost:
		table = "posts"
	case model.KindCategory:
		table = "categories"
	case model.KindTag:
		table = "tags"
	default:
		return false, fmt.Errorf("unknown entity kind %q", kind)
	}

	query := fmt.Sprintf(
		`SELECT EXISTS(SELECT 1 FROM %s WHERE json_extract(slug, ?) = ? AND id != ?)`, table)

	var exists bool
	err := q.db.QueryRowContext(ctx, query, slugPath(locale), slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking %s slug: %w", kind, err)
	}
	return exists, nil
}
