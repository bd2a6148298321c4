// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"quillpress/internal/models"
)

// CommentStore manages reader comments and their moderation state.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ListApprovedByPost returns approved comments for a post, newest first,
// with the commenter's display name joined in.
func (s *CommentStore) ListApprovedByPost(postID int64) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT cm.id, cm.post_id, cm.user_id, cm.content, cm.status, cm.created_at,
		       u.display_name
		FROM comments cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.post_id = $1 AND cm.status = $2
		ORDER BY cm.created_at DESC
	`, postID, models.CommentStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.UserID, &c.Content, &c.Status, &c.CreatedAt,
			&c.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListByStatus returns comments in the given moderation state, newest first,
// with commenter name and post title joined in. Used by the admin queue.
func (s *CommentStore) ListByStatus(status models.CommentStatus) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT cm.id, cm.post_id, cm.user_id, cm.content, cm.status, cm.created_at,
		       u.display_name, COALESCE(p.title, 'Untitled')
		FROM comments cm
		JOIN users u ON u.id = cm.user_id
		JOIN posts p ON p.id = cm.post_id
		WHERE cm.status = $1
		ORDER BY cm.created_at DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("list comments by status: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.UserID, &c.Content, &c.Status, &c.CreatedAt,
			&c.AuthorName, &c.PostTitle,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Create inserts a new pending comment and returns it.
func (s *CommentStore) Create(postID int64, userID uuid.UUID, content string) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, content, status, created_at
	`, postID, userID, content).Scan(
		&c.ID, &c.PostID, &c.UserID, &c.Content, &c.Status, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// SetStatus moves a comment into a new moderation state. The boolean
// reports whether the comment exists.
func (s *CommentStore) SetStatus(id int64, status models.CommentStatus) (bool, error) {
	res, err := s.db.Exec(`UPDATE comments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return false, fmt.Errorf("set comment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set comment status: %w", err)
	}
	return n > 0, nil
}

// Delete removes a comment by id.
func (s *CommentStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// CountPending returns the number of comments awaiting moderation.
func (s *CommentStore) CountPending() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE status = $1`,
		models.CommentStatusPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending comments: %w", err)
	}
	return count, nil
}
