package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestAPI starts a test server that serves a fixed page of posts and
// counts requests per endpoint.
func newTestAPI(t *testing.T, hasMore bool, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/posts":
			posts := []Post{
				{ID: 1, Title: "First", Category: "General", Date: time.Now()},
				{ID: 2, Title: "Second", Category: "General", Date: time.Now()},
			}
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    PostList{Posts: posts, HasMore: hasMore},
			})
		case "/api/categories":
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    []Category{{ID: 1, Name: "General", Slug: "general"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "not found"})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientListPosts(t *testing.T) {
	var hits atomic.Int64
	srv := newTestAPI(t, true, &hits)
	c := New(srv.URL, nil)

	list, err := c.ListPosts(context.Background(), ListParams{Limit: 2})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(list.Posts) != 2 {
		t.Errorf("got %d posts, want 2", len(list.Posts))
	}
	if !list.HasMore {
		t.Error("HasMore should be true")
	}
}

func TestClientUsesCache(t *testing.T) {
	var hits atomic.Int64
	srv := newTestAPI(t, false, &hits)
	c := New(srv.URL, NewResponseCache(5*time.Minute, nil))

	params := ListParams{Category: "General", Limit: 6}
	if _, err := c.ListPosts(context.Background(), params); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := c.ListPosts(context.Background(), params); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("server hits: got %d, want 1 (second call should be cached)", got)
	}

	// Different params bypass the cached entry.
	if _, err := c.ListPosts(context.Background(), ListParams{Category: "Other"}); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits: got %d, want 2", got)
	}
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"limit must be an integer between 1 and 50"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, nil)
	_, err := c.ListPosts(context.Background(), ListParams{})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Message == "" {
		t.Error("message should carry the server error")
	}
}

func TestClientCategories(t *testing.T) {
	var hits atomic.Int64
	srv := newTestAPI(t, false, &hits)
	c := New(srv.URL, nil)

	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "General" {
		t.Errorf("got %+v", cats)
	}
}
