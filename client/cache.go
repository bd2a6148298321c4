// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package client is the Go consumer for the Quillpress API. It bundles a
// short-lived response cache, a thin HTTP client over the JSON envelope,
// and a paginated list controller for building reader frontends.
package client

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached response stays fresh.
const DefaultCacheTTL = 5 * time.Minute

// ResponseCache memoizes raw response payloads per canonical request key.
// Entries expire after the TTL; Clear drops everything at once, which the
// list controller uses when the category filter changes.
type ResponseCache struct {
	mu      sync.Mutex
	now     func() time.Time
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	body     []byte
	storedAt time.Time
}

// NewResponseCache creates a response cache. A zero ttl falls back to
// DefaultCacheTTL; a nil clock uses time.Now.
func NewResponseCache(ttl time.Duration, now func() time.Time) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ResponseCache{
		now:     now,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// CacheKey builds the canonical key for an endpoint and its parameters.
// Parameters are sorted by name so equivalent requests share one entry
// regardless of construction order; blank parameters are dropped.
func CacheKey(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}

	names := make([]string, 0, len(params))
	for name := range params {
		if params.Get(name) != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return endpoint
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(endpoint)
	for i, name := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(name)))
	}
	return b.String()
}

// Get returns the cached body for the key if it is still fresh.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.body, true
}

// Set stores a response body under the key.
func (c *ResponseCache) Set(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{body: body, storedAt: c.now()}
}

// Clear drops every cached entry.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports the number of cached entries, fresh or not.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
