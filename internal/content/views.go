// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/madarhq/madar/internal/cache"
)

// ViewBatchSize is how many views accumulate in cache before a single
// batched write hits the database.
const ViewBatchSize = 10

// ViewIncrementer applies a batched view delta to a post row.
type ViewIncrementer interface {
	IncrementPostViews(ctx context.Context, id, delta int64) error
}

// Recorder coalesces per-post view counts in cache and flushes them to the
// database in batches of ViewBatchSize. Views between flushes live only in
// cache, so up to ViewBatchSize-1 views can be lost on cache restart. That
// is an accepted trade for not writing the posts table on every request.
type Recorder struct {
	cache cache.Cacher
	store ViewIncrementer
}

// NewRecorder returns a view Recorder backed by the given cache and store.
func NewRecorder(c cache.Cacher, store ViewIncrementer) *Recorder {
	return &Recorder{cache: c, store: store}
}

func viewKey(postID int64) string {
	return fmt.Sprintf("views:post:%d", postID)
}

// Record counts one view for the post. Every ViewBatchSize-th view flushes
// the batch to the database and resets the counter. The counter reset uses
// compare-and-delete so views recorded between the flush and the reset are
// kept for the next batch instead of being wiped.
func (r *Recorder) Record(ctx context.Context, postID int64) error {
	key := viewKey(postID)

	n, err := r.cache.IncrBy(ctx, key, 1)
	if err != nil {
		return fmt.Errorf("increment view counter: %w", err)
	}

	if n%ViewBatchSize != 0 {
		return nil
	}

	if err := r.store.IncrementPostViews(ctx, postID, ViewBatchSize); err != nil {
		return fmt.Errorf("flush view batch: %w", err)
	}

	if _, err := r.cache.DeleteIfEquals(ctx, key, n); err != nil {
		return fmt.Errorf("reset view counter: %w", err)
	}
	return nil
}

// Pending reports the number of views accumulated in cache for the post
// that have not yet been flushed. Missing counter means zero.
func (r *Recorder) Pending(ctx context.Context, postID int64) (int64, error) {
	n, err := r.cache.GetInt(ctx, viewKey(postID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
