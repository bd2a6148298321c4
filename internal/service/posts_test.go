// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"quillpress/internal/models"
	"quillpress/internal/store"
)

// fakePosts is an in-memory PostLister recording the filters it receives.
type fakePosts struct {
	rows    []models.Post
	err     error
	filters []store.PostFilter
}

func (f *fakePosts) List(filter store.PostFilter) ([]models.Post, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakePosts) FindByID(id int64) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i], nil
		}
	}
	return nil, nil
}

// fakeCategories is an in-memory CategorySource.
type fakeCategories struct {
	entries []models.Category
}

func (f *fakeCategories) Get() []models.Category { return f.entries }

func (f *fakeCategories) ResolveName(name string) (models.Category, bool) {
	for _, c := range f.entries {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return models.Category{}, false
}

func (f *fakeCategories) NameByID(id int64) (string, bool) {
	for _, c := range f.entries {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

func strPtr(s string) *string { return &s }
func idPtr(n int64) *int64    { return &n }

func catSource() *fakeCategories {
	return &fakeCategories{entries: []models.Category{
		{ID: 1, Name: "Cat"},
		{ID: 2, Name: "Travel"},
	}}
}

func TestListResolvesCategoryToID(t *testing.T) {
	posts := &fakePosts{}
	r := NewReader(posts, catSource(), nil)

	_, err := r.List(ListRequest{Category: CategoryNamed("cat"), Limit: 6})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(posts.filters) != 1 {
		t.Fatalf("store queried %d times, want 1", len(posts.filters))
	}
	f := posts.filters[0]
	if f.CategoryID == nil || *f.CategoryID != 1 {
		t.Errorf("filter category = %v, want 1 (case-insensitive resolution)", f.CategoryID)
	}
}

func TestListUnknownCategoryIsEmptyNotError(t *testing.T) {
	posts := &fakePosts{rows: []models.Post{{ID: 1}}}
	r := NewReader(posts, catSource(), nil)

	result, err := r.List(ListRequest{Category: CategoryNamed("nonexistent")})
	if err != nil {
		t.Fatalf("List returned error for unknown category: %v", err)
	}
	if len(result.Posts) != 0 {
		t.Errorf("got %d posts, want 0 for unknown category", len(result.Posts))
	}
	if result.HasMore {
		t.Error("HasMore should be false for an empty result")
	}
	if len(posts.filters) != 0 {
		t.Error("store must not be queried when the category resolves to nothing")
	}
}

func TestListSentinelAndEmptyMeanAllCategories(t *testing.T) {
	for _, raw := range []string{"", "Highlight", "highlight", "  Highlight  "} {
		if f := ParseCategoryFilter(raw); !f.IsAll() {
			t.Errorf("ParseCategoryFilter(%q) should be the all-categories filter", raw)
		}
	}
	if f := ParseCategoryFilter("Travel"); f.IsAll() || f.Name() != "Travel" {
		t.Errorf("ParseCategoryFilter(Travel) = %+v, want named filter", f)
	}
}

func TestTransformSubstitutesFallbacks(t *testing.T) {
	blank := "   "
	posts := &fakePosts{rows: []models.Post{
		{
			ID:          10,
			Title:       nil,
			Description: &blank,
			Content:     nil,
			Image:       nil,
			CategoryID:  nil,
			StatusID:    models.PostStatusPublished,
			Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	r := NewReader(posts, catSource(), nil)

	result, err := r.List(ListRequest{Category: CategoryAll()})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(result.Posts))
	}

	p := result.Posts[0]
	checks := map[string][2]string{
		"title":       {p.Title, FallbackTitle},
		"description": {p.Description, FallbackDescription},
		"content":     {p.Content, FallbackContent},
		"image":       {p.Image, FallbackImage},
		"category":    {p.Category, FallbackCategory},
		"author.name": {p.Author.Name, "Admin User"},
	}
	for field, pair := range checks {
		if pair[0] != pair[1] {
			t.Errorf("%s = %q, want fallback %q", field, pair[0], pair[1])
		}
		if pair[0] == "" {
			t.Errorf("%s must never be empty", field)
		}
	}
	if p.Status != "published" {
		t.Errorf("status = %q, want published", p.Status)
	}
}

func TestTransformDanglingCategoryIsGeneral(t *testing.T) {
	posts := &fakePosts{rows: []models.Post{
		{ID: 1, Title: strPtr("t"), CategoryID: idPtr(99), StatusID: models.PostStatusPublished},
	}}
	r := NewReader(posts, catSource(), nil)

	result, err := r.List(ListRequest{Category: CategoryAll()})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := result.Posts[0].Category; got != "General" {
		t.Errorf("dangling category_id rendered as %q, want General", got)
	}
}

func TestTransformJoinsCategoryName(t *testing.T) {
	posts := &fakePosts{rows: []models.Post{
		{ID: 1, Title: strPtr("t"), CategoryID: idPtr(2), StatusID: models.PostStatusPublished},
	}}
	r := NewReader(posts, catSource(), nil)

	result, err := r.List(ListRequest{Category: CategoryAll()})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := result.Posts[0].Category; got != "Travel" {
		t.Errorf("category = %q, want Travel", got)
	}
}

func TestListStoreErrorFailsWholeCall(t *testing.T) {
	posts := &fakePosts{err: errors.New("connection refused")}
	r := NewReader(posts, catSource(), nil)

	result, err := r.List(ListRequest{Category: CategoryAll()})
	if err == nil {
		t.Fatal("expected error when the base post query fails")
	}
	if result != nil {
		t.Error("no partial page may be returned on store failure")
	}
}

func TestListCustomAuthorResolver(t *testing.T) {
	posts := &fakePosts{rows: []models.Post{
		{ID: 1, Title: strPtr("t"), StatusID: models.PostStatusPublished},
	}}
	r := NewReader(posts, catSource(), func(models.Post) Author {
		return Author{ID: "u1", Name: "Jamie", Image: "img", Username: "jamie"}
	})

	result, err := r.List(ListRequest{Category: CategoryAll()})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Posts[0].Author.Name != "Jamie" {
		t.Errorf("author = %q, want Jamie", result.Posts[0].Author.Name)
	}
}

func TestHasMoreHeuristic(t *testing.T) {
	tests := []struct {
		returned, limit int
		want            bool
	}{
		{6, 6, true},  // exactly full page, assume more
		{4, 6, false}, // short page, last page
		{0, 6, false},
		{5, 5, true},
		{0, 0, false}, // degenerate limit
	}
	for _, tt := range tests {
		if got := HasMore(tt.returned, tt.limit); got != tt.want {
			t.Errorf("HasMore(%d, %d) = %v, want %v", tt.returned, tt.limit, got, tt.want)
		}
	}
}

func TestHasMoreUsesDefaultPageSize(t *testing.T) {
	rows := make([]models.Post, store.DefaultPageSize)
	for i := range rows {
		rows[i] = models.Post{ID: int64(i + 1), Title: strPtr("t"), StatusID: models.PostStatusPublished}
	}
	posts := &fakePosts{rows: rows}
	r := NewReader(posts, catSource(), nil)

	result, err := r.List(ListRequest{Category: CategoryAll()}) // Limit omitted
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !result.HasMore {
		t.Error("full default-size page should report HasMore")
	}
}

func TestGetPublishedHidesDrafts(t *testing.T) {
	posts := &fakePosts{rows: []models.Post{
		{ID: 1, Title: strPtr("draft"), StatusID: models.PostStatusDraft},
		{ID: 2, Title: strPtr("live"), Content: strPtr("# Heading"), StatusID: models.PostStatusPublished},
	}}
	r := NewReader(posts, catSource(), nil)

	hidden, err := r.GetPublished(1)
	if err != nil {
		t.Fatalf("GetPublished: %v", err)
	}
	if hidden != nil {
		t.Error("draft post must not be returned")
	}

	detail, err := r.GetPublished(2)
	if err != nil {
		t.Fatalf("GetPublished: %v", err)
	}
	if detail == nil {
		t.Fatal("published post should be returned")
	}
	if detail.ContentHTML == "" || detail.ContentHTML == detail.Content {
		t.Errorf("content should be rendered to HTML, got %q", detail.ContentHTML)
	}

	missing, err := r.GetPublished(404)
	if err != nil || missing != nil {
		t.Errorf("missing post: got (%v, %v), want (nil, nil)", missing, err)
	}
}
