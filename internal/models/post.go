// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"
)

// PostStatus represents the publishing state of a post.
// Statuses live in a lookup table; these constants mirror its seeded rows.
type PostStatus int64

const (
	PostStatusDraft     PostStatus = 1
	PostStatusPublished PostStatus = 2
)

// Name returns the human-readable status name.
func (s PostStatus) Name() string {
	switch s {
	case PostStatusDraft:
		return "draft"
	case PostStatusPublished:
		return "published"
	default:
		return "unknown"
	}
}

// Post represents a blog post row. Display fields are nullable in the
// database; consumers must go through the read service, which substitutes
// fallback values so API responses never carry nulls.
type Post struct {
	ID          int64      `json:"id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Content     *string    `json:"content"`
	Image       *string    `json:"image"`
	Slug        string     `json:"slug"`
	Date        time.Time  `json:"date"`
	LikesCount  int64      `json:"likes_count"`
	CategoryID  *int64     `json:"category_id"`
	StatusID    PostStatus `json:"status_id"`
	AuthorID    *string    `json:"author_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPublished returns true if the post is visible on the public surface.
func (p *Post) IsPublished() bool {
	return p.StatusID == PostStatusPublished
}
