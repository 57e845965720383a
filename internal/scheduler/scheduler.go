// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance: keeping the cached sitemap
// warm and bounding the rate limiter cache.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/madarhq/madar/internal/middleware"
	"github.com/madarhq/madar/internal/seo"
)

// limiterMaxEntries bounds the per-IP limiter cache before it is reset.
const limiterMaxEntries = 10000

// Scheduler handles periodic background jobs.
type Scheduler struct {
	cron    *cron.Cron
	seo     *seo.Service
	limiter *middleware.RateLimiter
	logger  *slog.Logger
}

// New creates a new scheduler instance.
func New(seoService *seo.Service, limiter *middleware.RateLimiter, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		seo:     seoService,
		limiter: limiter,
		logger:  logger,
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	// Hourly sitemap rebuild keeps the cached copy warm so crawlers never
	// pay the build cost.
	if _, err := s.cron.AddFunc("@hourly", s.rebuildSitemap); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("@hourly", func() {
		s.limiter.Cleanup(limiterMaxEntries)
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) rebuildSitemap() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	xml, err := s.seo.RebuildSitemap(ctx)
	if err != nil {
		s.logger.Error("failed to rebuild sitemap", "error", err)
		return
	}
	s.logger.Info("sitemap rebuilt", "size_bytes", len(xml))
}
