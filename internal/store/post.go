// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"quillpress/internal/models"
)

// DefaultPageSize matches the public listing's six-card page.
const DefaultPageSize = 6

// PostFilter describes one post-listing request after category resolution.
// The zero value lists the first DefaultPageSize published posts.
type PostFilter struct {
	CategoryID    *int64 // nil = no category constraint
	Search        string // empty = no search constraint; matched as a contains
	Limit         int    // <= 0 falls back to DefaultPageSize
	Offset        int    // < 0 treated as 0
	IncludeDrafts bool   // admin listings see drafts too
}

const postColumns = `id, title, description, content, image, slug, date,
	       likes_count, category_id, status_id, author_id, created_at, updated_at`

// BuildListQuery translates a PostFilter into the exact SQL plan executed
// against the posts table. It is a pure function so the plan is testable
// without a database. Ordering is always date descending with id descending
// as an explicit tiebreak, which keeps sequential pages disjoint.
func BuildListQuery(f PostFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if !f.IncludeDrafts {
		args = append(args, models.PostStatusPublished)
		conds = append(conds, "status_id = $"+strconv.Itoa(len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, "category_id = $"+strconv.Itoa(len(args)))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := strconv.Itoa(len(args))
		conds = append(conds, "(title ILIKE $"+n+" OR description ILIKE $"+n+" OR content ILIKE $"+n+")")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + postColumns + " FROM posts")
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY date DESC, id DESC")

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	args = append(args, limit)
	sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))

	if f.Offset > 0 {
		args = append(args, f.Offset)
		sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	return sb.String(), args
}

// escapeLike neutralizes LIKE wildcards in user-supplied search text so a
// search for "100%" matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// scanPost scans a row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Description, &p.Content, &p.Image, &p.Slug,
		&p.Date, &p.LikesCount, &p.CategoryID, &p.StatusID, &p.AuthorID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List executes the query plan for the given filter and returns the matching
// page of raw post rows. A fresh call re-executes against current data.
func (s *PostStore) List(f PostFilter) ([]models.Post, error) {
	query, args := BuildListQuery(f)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// FindByID retrieves a post by id. Returns nil if not found.
func (s *PostStore) FindByID(id int64) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(slug string) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// SlugExists reports whether a post already uses the given slug.
func (s *PostStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("post slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new post and returns it with server-assigned fields.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	row := s.db.QueryRow(`
		INSERT INTO posts (title, description, content, image, slug, category_id, status_id, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+postColumns,
		p.Title, p.Description, p.Content, p.Image, p.Slug,
		p.CategoryID, p.StatusID, p.AuthorID,
	)
	result, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies an existing post.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, description = $2, content = $3, image = $4, slug = $5,
			date = $6, category_id = $7, status_id = $8, updated_at = NOW()
		WHERE id = $9
	`, p.Title, p.Description, p.Content, p.Image, p.Slug,
		p.Date, p.CategoryID, p.StatusID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by id. Comments cascade in the database.
func (s *PostStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// IncrementLikes bumps the like counter and returns the new value.
// Returns (0, nil) with found=false semantics via sql.ErrNoRows mapping:
// the boolean reports whether the post exists.
func (s *PostStore) IncrementLikes(id int64) (int64, bool, error) {
	var likes int64
	err := s.db.QueryRow(`
		UPDATE posts SET likes_count = likes_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING likes_count
	`, id).Scan(&likes)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("increment likes: %w", err)
	}
	return likes, true, nil
}

// CountByStatus returns the number of posts in the given status.
func (s *PostStore) CountByStatus(status models.PostStatus) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE status_id = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}
