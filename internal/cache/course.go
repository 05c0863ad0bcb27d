// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"learnhub/internal/metrics"
)

// CourseCache is the read-through cache in front of the course API.
// Concurrent misses for one key share a single fetch.
type CourseCache struct {
	store Store
	group singleflight.Group

	mu  sync.Mutex
	gen map[Key]uint64
}

// NewCourseCache wraps a backend store.
func NewCourseCache(store Store) *CourseCache {
	return &CourseCache{store: store, gen: make(map[Key]uint64)}
}

// fetchTimeout bounds a shared fetch, which outlives the caller that
// started it.
const fetchTimeout = 30 * time.Second

// Invalidate marks keys stale. A fetch that started before the call will
// not write its result back, and later misses start a new fetch.
func (c *CourseCache) Invalidate(ctx context.Context, keys ...Key) error {
	c.mu.Lock()
	for _, k := range keys {
		c.gen[k]++
	}
	c.mu.Unlock()

	if err := c.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate %v: %w", keys, err)
	}
	slog.Debug("read cache invalidated", "keys", keys)
	return nil
}

func (c *CourseCache) generation(k Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[k]
}

// Load returns the cached value for key or calls fetch and caches the
// result. Use it for values every caller may see; LoadFor shares a fetch
// only between callers of the same scope.
func Load[T any](ctx context.Context, c *CourseCache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	return LoadFor(ctx, c, key, "", fetch)
}

// LoadFor is Load with concurrent misses coalesced per scope, usually the
// requesting user. fetch sees the first caller's context values without
// its cancellation, so one caller giving up does not fail the others, and
// a fetch error reaches only callers of the same scope. Errors are never
// cached. Callers sharing a fetch receive the same value and must not
// modify it.
func LoadFor[T any](ctx context.Context, c *CourseCache, key Key, scope string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if raw, ok := c.store.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.CourseCache.WithLabelValues("hit").Inc()
			return v, nil
		}
		slog.Warn("read cache entry unreadable", "key", key)
	}
	metrics.CourseCache.WithLabelValues("miss").Inc()

	gen := c.generation(key)
	flight := fmt.Sprintf("%s|%d|%s", key, gen, scope)
	ch := c.group.DoChan(flight, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		val, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		if c.generation(key) == gen {
			if raw, err := json.Marshal(val); err == nil {
				c.store.Set(fctx, key, raw)
			}
		}
		return val, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
