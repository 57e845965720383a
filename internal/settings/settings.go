// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package settings provides cached, typed access to the site settings
// stored in the database. All values load once and are served from memory
// until an update invalidates the cache.
package settings

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/madarhq/madar/internal/model"
	"github.com/madarhq/madar/internal/store"
)

// Store is the slice of the query layer the settings service needs.
type Store interface {
	ListSettings(ctx context.Context) ([]model.Setting, error)
	UpsertSetting(ctx context.Context, arg store.UpsertSettingParams) (model.Setting, error)
	DeleteSetting(ctx context.Context, name string) error
}

// Service serves setting values from an in-memory map, falling back to the
// defaults in model.StandardSettingFields for keys never written. Writes go
// through Set, which invalidates the map so the next read reloads.
type Service struct {
	store Store

	mu     sync.RWMutex
	loaded bool
	values map[string]model.Setting
}

// New creates a settings service backed by the given store.
func New(s Store) *Service {
	return &Service{
		store:  s,
		values: make(map[string]model.Setting),
	}
}

// defaultFor returns the standard field definition for a key, if any.
func defaultFor(name string) (model.SettingField, bool) {
	for _, def := range model.StandardSettingFields {
		if def.Name == name {
			return def, true
		}
	}
	return model.SettingField{}, false
}

func (s *Service) loadAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have loaded while we waited for the lock.
	if s.loaded {
		return nil
	}

	all, err := s.store.ListSettings(ctx)
	if err != nil {
		return err
	}

	s.values = make(map[string]model.Setting, len(all))
	for _, setting := range all {
		s.values[setting.Name] = setting
	}
	s.loaded = true
	return nil
}

// lookup returns the stored setting for name, loading the map on first use.
func (s *Service) lookup(ctx context.Context, name string) (model.Setting, bool, error) {
	s.mu.RLock()
	if s.loaded {
		setting, ok := s.values[name]
		s.mu.RUnlock()
		return setting, ok, nil
	}
	s.mu.RUnlock()

	if err := s.loadAll(ctx); err != nil {
		return model.Setting{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	setting, ok := s.values[name]
	return setting, ok, nil
}

// Get returns the raw string value for name. A key never saved falls back
// to its standard default, or the empty string when no default exists.
func (s *Service) Get(ctx context.Context, name string) (string, error) {
	setting, ok, err := s.lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if ok {
		return setting.Value, nil
	}
	if def, ok := defaultFor(name); ok {
		return def.Default, nil
	}
	return "", nil
}

// GetInt returns the value for name parsed as an integer.
// Unparseable or missing values fall back to the given default.
func (s *Service) GetInt(ctx context.Context, name string, fallback int) (int, error) {
	raw, err := s.Get(ctx, name)
	if err != nil {
		return fallback, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, nil
	}
	return n, nil
}

// GetBool returns the value for name parsed as a boolean.
func (s *Service) GetBool(ctx context.Context, name string) (bool, error) {
	raw, err := s.Get(ctx, name)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return b, nil
}

// GetTyped returns the value for name cast to the Go type its stored type
// names. Unsaved keys cast their standard default.
func (s *Service) GetTyped(ctx context.Context, name string) (any, error) {
	setting, ok, err := s.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if ok {
		return model.CastSettingValue(setting.Value, setting.Type), nil
	}
	if def, ok := defaultFor(name); ok {
		return model.CastSettingValue(def.Default, def.Type), nil
	}
	return "", nil
}

// All returns every setting, merging the stored values over the standard
// field defaults so the admin form sees all expected keys.
func (s *Service) All(ctx context.Context) ([]model.Setting, error) {
	s.mu.RLock()
	if !s.loaded {
		s.mu.RUnlock()
		if err := s.loadAll(ctx); err != nil {
			return nil, err
		}
		s.mu.RLock()
	}
	defer s.mu.RUnlock()

	result := make([]model.Setting, 0, len(model.StandardSettingFields))
	seen := make(map[string]bool, len(model.StandardSettingFields))
	for _, def := range model.StandardSettingFields {
		if setting, ok := s.values[def.Name]; ok {
			result = append(result, setting)
		} else {
			result = append(result, model.Setting{
				Name:  def.Name,
				Value: def.Default,
				Type:  def.Type,
			})
		}
		seen[def.Name] = true
	}
	for _, setting := range s.values {
		if !seen[setting.Name] {
			result = append(result, setting)
		}
	}
	return result, nil
}

// Set writes a setting and invalidates the cache.
func (s *Service) Set(ctx context.Context, name, value, valueType string) error {
	_, err := s.store.UpsertSetting(ctx, store.UpsertSettingParams{
		Name:      name,
		Value:     value,
		Type:      valueType,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// Delete removes a setting and invalidates the cache. Reads of the key
// afterwards see its standard default again.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.store.DeleteSetting(ctx, name); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// Invalidate drops the in-memory map, forcing a reload on the next read.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.values = make(map[string]model.Setting)
}
