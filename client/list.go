// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"context"
	"sync"
)

// State is the list controller's lifecycle phase.
type State int

const (
	// StateIdle means no load has happened yet.
	StateIdle State = iota
	// StateLoading means a page request is in flight.
	StateLoading
	// StateCategoryChanging means a category switch is resetting the list
	// before its first page request starts.
	StateCategoryChanging
	// StateLoaded means the current page set is displayable.
	StateLoaded
	// StateFailed means the last load errored; the previous posts remain.
	StateFailed
)

// ListController drives a paginated, category-filterable post listing the
// way a frontend would: switching category clears the accumulated posts and
// the response cache, loading more appends, and every request carries a
// sequence token so a response that arrives after a newer request started
// is discarded instead of clobbering fresher results.
type ListController struct {
	mu       sync.Mutex
	api      *Client
	pageSize int

	category string
	search   string
	posts    []Post
	offset   int
	hasMore  bool
	state    State
	seq      uint64
}

// NewListController creates a controller over the API client. pageSize <= 0
// defers to the server's default page size.
func NewListController(api *Client, pageSize int) *ListController {
	return &ListController{api: api, pageSize: pageSize}
}

// Posts returns a snapshot of the accumulated posts.
func (l *ListController) Posts() []Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Post, len(l.posts))
	copy(out, l.posts)
	return out
}

// State returns the current lifecycle phase.
func (l *ListController) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// HasMore reports whether another page is expected to exist.
func (l *ListController) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}

// Category returns the active category filter; blank means all.
func (l *ListController) Category() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.category
}

// Load fetches the first page for the current filters.
func (l *ListController) Load(ctx context.Context) error {
	l.mu.Lock()
	l.posts = nil
	l.offset = 0
	req := l.beginLoadLocked()
	l.mu.Unlock()

	return l.fetch(ctx, req, false)
}

// SetCategory switches the category filter, drops the accumulated posts
// and the response cache, and loads the first page. A blank name means all
// categories. Setting the already-active category is a no-op.
func (l *ListController) SetCategory(ctx context.Context, name string) error {
	l.mu.Lock()
	if name == l.category {
		l.mu.Unlock()
		return nil
	}
	l.category = name
	l.posts = nil
	l.offset = 0
	l.hasMore = false
	l.state = StateCategoryChanging
	l.mu.Unlock()

	if l.api.cache != nil {
		l.api.cache.Clear()
	}

	l.mu.Lock()
	req := l.beginLoadLocked()
	l.mu.Unlock()

	return l.fetch(ctx, req, false)
}

// SetSearch applies a search term and reloads from the first page.
func (l *ListController) SetSearch(ctx context.Context, query string) error {
	l.mu.Lock()
	l.search = query
	l.posts = nil
	l.offset = 0
	req := l.beginLoadLocked()
	l.mu.Unlock()

	return l.fetch(ctx, req, false)
}

// LoadMore fetches the next page and appends it. It is a no-op when the
// server reported no further pages.
func (l *ListController) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if !l.hasMore {
		l.mu.Unlock()
		return nil
	}
	req := l.beginLoadLocked()
	l.mu.Unlock()

	return l.fetch(ctx, req, true)
}

// Suggestions fetches posts matching the query without touching the
// controller's own state, for live search dropdowns.
func (l *ListController) Suggestions(ctx context.Context, query string, limit int) ([]Post, error) {
	list, err := l.api.ListPosts(ctx, ListParams{Search: query, Limit: limit})
	if err != nil {
		return nil, err
	}
	return list.Posts, nil
}

// loadRequest snapshots everything a fetch needs, plus the sequence token
// that decides whether its response is still wanted on arrival.
type loadRequest struct {
	seq      uint64
	category string
	search   string
	offset   int
}

// beginLoadLocked bumps the sequence, marks the controller loading, and
// snapshots the request parameters. Callers must hold the mutex.
func (l *ListController) beginLoadLocked() loadRequest {
	l.seq++
	l.state = StateLoading
	return loadRequest{
		seq:      l.seq,
		category: l.category,
		search:   l.search,
		offset:   l.offset,
	}
}

// fetch performs the page request outside the lock and applies the result
// only if no newer request has started in the meantime.
func (l *ListController) fetch(ctx context.Context, req loadRequest, appendPage bool) error {
	list, err := l.api.ListPosts(ctx, ListParams{
		Category: req.category,
		Search:   req.search,
		Limit:    l.pageSize,
		Offset:   req.offset,
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	if req.seq != l.seq {
		// A newer request superseded this one; drop the response.
		return nil
	}

	if err != nil {
		l.state = StateFailed
		return err
	}

	if appendPage {
		l.posts = append(l.posts, list.Posts...)
	} else {
		l.posts = list.Posts
	}
	l.offset = req.offset + len(list.Posts)
	l.hasMore = list.HasMore
	l.state = StateLoaded
	return nil
}
