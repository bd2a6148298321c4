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

// NotificationStore manages in-app notifications.
type NotificationStore struct {
	db *sql.DB
}

// NewNotificationStore returns a new NotificationStore.
func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Create inserts a new unread notification for a user.
func (s *NotificationStore) Create(n *models.Notification) (*models.Notification, error) {
	result := &models.Notification{}
	err := s.db.QueryRow(`
		INSERT INTO notifications (user_id, type, message, post_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, type, message, post_id, read, created_at
	`, n.UserID, n.Type, n.Message, n.PostID).Scan(
		&result.ID, &result.UserID, &result.Type, &result.Message,
		&result.PostID, &result.Read, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return result, nil
}

// ListByUser returns a user's notifications, newest first.
func (s *NotificationStore) ListByUser(userID uuid.UUID) ([]models.Notification, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, type, message, post_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var items []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Message, &n.PostID, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// MarkRead flags a notification as read. The user id guards against
// marking someone else's notification. The boolean reports whether a
// matching row existed.
func (s *NotificationStore) MarkRead(id int64, userID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return n > 0, nil
}

// CountUnread returns the number of unread notifications for a user.
func (s *NotificationStore) CountUnread(userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
