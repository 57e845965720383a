// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"MADAR_DB_PATH" envDefault:"./data/madar.db"`
	ServerHost string `env:"MADAR_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"MADAR_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"MADAR_ENV" envDefault:"development"`
	LogLevel   string `env:"MADAR_LOG_LEVEL" envDefault:"info"`

	// SiteURL is the canonical public base URL, used in sitemap and meta tags.
	SiteURL string `env:"MADAR_SITE_URL" envDefault:"http://localhost:8080"`

	// Cache configuration
	RedisURL     string `env:"MADAR_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"MADAR_CACHE_PREFIX" envDefault:"madar:"`  // Redis key prefix
	CacheTTL     int    `env:"MADAR_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"MADAR_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// API rate limiting (requests per second per client, with burst)
	APIRateLimit float64 `env:"MADAR_API_RATE_LIMIT" envDefault:"10"`
	APIRateBurst int     `env:"MADAR_API_RATE_BURST" envDefault:"20"`

	// Seeding configuration
	DoSeed bool `env:"MADAR_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	u, err := url.Parse(cfg.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("MADAR_SITE_URL must be an absolute URL, got %q", cfg.SiteURL)
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")

	if cfg.APIRateLimit <= 0 {
		return nil, fmt.Errorf("MADAR_API_RATE_LIMIT must be positive, got %v", cfg.APIRateLimit)
	}

	return cfg, nil
}
