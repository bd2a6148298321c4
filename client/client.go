// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// requestTimeout bounds every API call made by the client.
const requestTimeout = 10 * time.Second

// Author mirrors the author block of a post summary.
type Author struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Username string `json:"username"`
}

// Post mirrors the fully populated post summary the API serves. Display
// fields are guaranteed non-empty by the server.
type Post struct {
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

// Category mirrors the category payload.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	PostCount int    `json:"post_count"`
}

// PostList is one page of posts plus the server's has-more flag.
type PostList struct {
	Posts   []Post `json:"posts"`
	HasMore bool   `json:"has_more"`
}

// ListParams selects a page of posts. A blank Category means all
// categories. Limit <= 0 uses the server default page size.
type ListParams struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// APIError is a failure envelope from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client calls the Quillpress JSON API. GET responses flow through the
// response cache when one is attached.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *ResponseCache
}

// New creates an API client for the given base URL, for example
// "https://blog.example.com". cache may be nil to disable caching.
func New(baseURL string, cache *ResponseCache) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		cache:   cache,
	}
}

// ListPosts fetches one page of posts.
func (c *Client) ListPosts(ctx context.Context, p ListParams) (*PostList, error) {
	params := url.Values{}
	if p.Category != "" {
		params.Set("category", p.Category)
	}
	if p.Search != "" {
		params.Set("search", p.Search)
	}
	if p.Limit > 0 {
		params.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		params.Set("offset", strconv.Itoa(p.Offset))
	}

	var list PostList
	if err := c.get(ctx, "/api/posts", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Categories fetches the category list.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := c.get(ctx, "/api/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// get performs a cached GET against the API and decodes the envelope's
// data field into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	key := CacheKey(endpoint, params)
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			return json.Unmarshal(body, out)
		}
	}

	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}

	if c.cache != nil {
		c.cache.Set(key, env.Data)
	}
	return json.Unmarshal(env.Data, out)
}
