// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// category.go provides a process-wide, time-bounded cache of the category
// lookup table. Categories change rarely, so the read path serves them from
// memory and only refetches once the freshness window has elapsed.
package cache

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"quillpress/internal/models"
)

// DefaultCategoryTTL is how long a fetched category list stays fresh.
const DefaultCategoryTTL = 5 * time.Minute

// CategoryFetchFunc loads the full category list from the backing store.
type CategoryFetchFunc func() ([]models.Category, error)

// CategoryCache serves category lookups with bounded staleness. It is a
// constructed object with an injected clock and fetch function so tests can
// control time and observe fetch counts. A stale read triggers a synchronous
// refetch; on refetch failure the previous list (or an empty list) is served
// instead; category lookup failure must never abort a post listing.
type CategoryCache struct {
	mu        sync.Mutex
	fetch     CategoryFetchFunc
	now       func() time.Time
	ttl       time.Duration
	entries   []models.Category
	fetchedAt time.Time
	primed    bool
}

// NewCategoryCache creates a category cache over the given fetch function.
// A zero ttl falls back to DefaultCategoryTTL; a nil clock uses time.Now.
func NewCategoryCache(fetch CategoryFetchFunc, ttl time.Duration, now func() time.Time) *CategoryCache {
	if ttl == 0 {
		ttl = DefaultCategoryTTL
	}
	if now == nil {
		now = time.Now
	}
	return &CategoryCache{fetch: fetch, now: now, ttl: ttl}
}

// Get returns the cached category list, refetching first if the entry is
// stale. It never returns an error: on fetch failure it degrades to the
// previously cached list, or an empty list if nothing was ever fetched.
// The refetch happens under the lock, so concurrent callers hitting an
// expired entry trigger a single upstream fetch between them.
func (c *CategoryCache) Get() []models.Category {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.primed && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.entries
	}

	fresh, err := c.fetch()
	if err != nil {
		slog.Warn("category cache refetch failed, serving stale data", "error", err)
		return c.entries // nil before the first successful fetch
	}

	c.entries = fresh
	c.fetchedAt = c.now()
	c.primed = true
	return c.entries
}

// ResolveName finds a category by name, matching case-insensitively.
// The second return is false when no category with that name exists.
func (c *CategoryCache) ResolveName(name string) (models.Category, bool) {
	for _, cat := range c.Get() {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return models.Category{}, false
}

// NameByID returns the display name for a category id. The second return
// is false for dangling ids, where callers substitute a fallback name.
func (c *CategoryCache) NameByID(id int64) (string, bool) {
	for _, cat := range c.Get() {
		if cat.ID == id {
			return cat.Name, true
		}
	}
	return "", false
}
