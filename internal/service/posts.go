// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service composes the post store and category cache into the
// public read path: filtered, paginated post listings whose summaries are
// always fully populated: missing display fields are replaced with fixed
// fallback values at this boundary, never passed through as nulls.
package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quillpress/internal/markdown"
	"quillpress/internal/models"
	"quillpress/internal/store"
)

// Fallback values substituted for missing display fields. API consumers
// never see null or empty strings for these.
const (
	FallbackTitle       = "Untitled"
	FallbackDescription = "No description available."
	FallbackContent     = "This post has no content yet."
	FallbackImage       = "https://placehold.co/600x400?text=Quillpress"
	FallbackCategory    = "General"
)

// legacySentinel is the historical "show all" category value sent by old
// clients. Accepted at the boundary for compatibility and mapped to the
// explicit all-categories filter.
const legacySentinel = "Highlight"

// CategoryFilter is an explicit tagged option for category filtering:
// either all categories or a single named one. It replaces the legacy
// magic-string sentinel.
type CategoryFilter struct {
	name string
	all  bool
}

// CategoryAll returns the filter that disables category filtering.
func CategoryAll() CategoryFilter {
	return CategoryFilter{all: true}
}

// CategoryNamed returns a filter for a single category name.
func CategoryNamed(name string) CategoryFilter {
	return CategoryFilter{name: name}
}

// ParseCategoryFilter maps a raw query-string value to a CategoryFilter.
// Empty strings and the legacy sentinel mean "all categories".
func ParseCategoryFilter(raw string) CategoryFilter {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, legacySentinel) {
		return CategoryAll()
	}
	return CategoryNamed(raw)
}

// IsAll reports whether the filter disables category filtering.
func (f CategoryFilter) IsAll() bool { return f.all }

// Name returns the category name for a named filter.
func (f CategoryFilter) Name() string { return f.name }

// ListRequest describes one post-listing request from the HTTP layer.
type ListRequest struct {
	Category CategoryFilter
	Search   string
	Limit    int // <= 0 falls back to the store default page size
	Offset   int
}

// Author identifies the displayed author of a post summary.
type Author struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Username string `json:"username"`
}

// DefaultAuthor is the fixed identity attributed to posts with no author
// row. The platform is effectively single-author today.
var DefaultAuthor = Author{
	ID:       "00000000-0000-0000-0000-000000000000",
	Name:     "Admin User",
	Image:    "https://placehold.co/96x96?text=A",
	Username: "admin",
}

// AuthorResolver maps a raw post row to its displayed author. The default
// resolver returns DefaultAuthor for every post; deployments with real
// multi-author data can supply their own.
type AuthorResolver func(post models.Post) Author

// PostSummary is a fully self-contained post representation: every display
// field is non-empty and no further joins are needed by the caller.
type PostSummary struct {
	ID          int64     `json:"id"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Slug        string    `json:"slug"`
	Date        time.Time `json:"date"`
	LikesCount  int64     `json:"likes_count"`
	Status      string    `json:"status"`
	Author      Author    `json:"author"`
}

// PostDetail extends a summary with the Markdown body rendered to HTML.
type PostDetail struct {
	PostSummary
	ContentHTML string `json:"content_html"`
}

// ListResult carries one page of summaries plus the derived has-more flag.
type ListResult struct {
	Posts   []PostSummary `json:"posts"`
	HasMore bool          `json:"has_more"`
}

// PostLister executes a filter's query plan against the post store.
type PostLister interface {
	List(f store.PostFilter) ([]models.Post, error)
	FindByID(id int64) (*models.Post, error)
}

// CategorySource serves category lookups. Implemented by cache.CategoryCache.
type CategorySource interface {
	Get() []models.Category
	ResolveName(name string) (models.Category, bool)
	NameByID(id int64) (string, bool)
}

// Reader is the post read service.
type Reader struct {
	posts      PostLister
	categories CategorySource
	author     AuthorResolver
}

// NewReader creates a post read service. A nil resolver attributes every
// post to DefaultAuthor.
func NewReader(posts PostLister, categories CategorySource, author AuthorResolver) *Reader {
	if author == nil {
		author = func(models.Post) Author { return DefaultAuthor }
	}
	return &Reader{posts: posts, categories: categories, author: author}
}

// List returns one page of post summaries for the request.
//
// A named category that matches no known category yields an empty result,
// not an error; it means "this category has zero posts", not "invalid
// request". Category lookup failures never fail the listing (the cache
// degrades and posts fall back to the General category); a base post query
// failure fails the whole call with no partial page.
func (r *Reader) List(req ListRequest) (*ListResult, error) {
	filter := store.PostFilter{
		Search: req.Search,
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	if !req.Category.IsAll() {
		cat, ok := r.categories.ResolveName(req.Category.Name())
		if !ok {
			slog.Debug("category filter matched nothing", "category", req.Category.Name())
			return &ListResult{Posts: []PostSummary{}, HasMore: false}, nil
		}
		filter.CategoryID = &cat.ID
	}

	rows, err := r.posts.List(filter)
	if err != nil {
		return nil, fmt.Errorf("post listing: %w", err)
	}

	summaries := make([]PostSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, r.transform(row))
	}

	limit := req.Limit
	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	return &ListResult{Posts: summaries, HasMore: HasMore(len(summaries), limit)}, nil
}

// GetPublished returns the full detail for a published post, with the
// Markdown body rendered to HTML. Returns nil when the post does not exist
// or is not published.
func (r *Reader) GetPublished(id int64) (*PostDetail, error) {
	row, err := r.posts.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("post detail: %w", err)
	}
	if row == nil || !row.IsPublished() {
		return nil, nil
	}

	summary := r.transform(*row)
	rendered, err := markdown.ToHTML(summary.Content)
	if err != nil {
		slog.Warn("markdown conversion failed, serving raw content", "post", row.ID, "error", err)
		rendered = summary.Content
	}
	return &PostDetail{PostSummary: summary, ContentHTML: rendered}, nil
}

// transform turns a raw post row into a self-contained summary,
// substituting fallback values for every missing display field.
func (r *Reader) transform(row models.Post) PostSummary {
	category := FallbackCategory
	if row.CategoryID != nil {
		if name, ok := r.categories.NameByID(*row.CategoryID); ok {
			category = name
		}
	}

	return PostSummary{
		ID:          row.ID,
		Image:       orFallback(row.Image, FallbackImage),
		Category:    category,
		Title:       orFallback(row.Title, FallbackTitle),
		Description: orFallback(row.Description, FallbackDescription),
		Content:     orFallback(row.Content, FallbackContent),
		Slug:        row.Slug,
		Date:        row.Date,
		LikesCount:  row.LikesCount,
		Status:      row.StatusID.Name(),
		Author:      r.author(row),
	}
}

// HasMore is the pagination heuristic: another page is assumed to exist
// when the last page came back exactly full. It over-estimates when the
// remaining count is an exact multiple of the page size, a documented
// trade-off that avoids a second COUNT query per request. Swap this for a
// total-count calculation without touching callers if that ever matters.
func HasMore(returned, limit int) bool {
	return limit > 0 && returned == limit
}

// orFallback dereferences a nullable column, substituting the fallback for
// NULL or whitespace-only values.
func orFallback(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}
