// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quillpress/internal/cache"
	"quillpress/internal/mailer"
	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/service"
	"quillpress/internal/store"
)

// Public groups the unauthenticated read endpoints plus the reader actions
// (comments, likes) that only need a logged-in session.
type Public struct {
	reader        *service.Reader
	categoryCache *cache.CategoryCache
	posts         *store.PostStore
	comments      *store.CommentStore
	notifications *store.NotificationStore
	users         *store.UserStore
	mail          *mailer.Mailer
}

// NewPublic creates the public handler group. mail may be nil when SMTP is
// not configured; comment notifications then stay in-app only.
func NewPublic(reader *service.Reader, categoryCache *cache.CategoryCache, posts *store.PostStore, comments *store.CommentStore, notifications *store.NotificationStore, users *store.UserStore, mail *mailer.Mailer) *Public {
	return &Public{
		reader:        reader,
		categoryCache: categoryCache,
		posts:         posts,
		comments:      comments,
		notifications: notifications,
		users:         users,
		mail:          mail,
	}
}

// ListPosts serves GET /api/posts with optional category, search, limit and
// offset query parameters.
func (p *Public) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := parseBoundedInt(q.Get("limit"), 0, maxPageLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, "limit must be an integer between 0 and 50")
		return
	}
	offset, err := parseBoundedInt(q.Get("offset"), 0, 1_000_000)
	if err != nil {
		respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	result, err := p.reader.List(service.ListRequest{
		Category: service.ParseCategoryFilter(q.Get("category")),
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondInternal(w, "post listing failed", err)
		return
	}

	respondData(w, http.StatusOK, result)
}

// GetPost serves GET /api/posts/{id}. Drafts are indistinguishable from
// missing posts to unauthenticated callers.
func (p *Public) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	detail, err := p.reader.GetPublished(id)
	if err != nil {
		respondInternal(w, "post lookup failed", err)
		return
	}
	if detail == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	respondData(w, http.StatusOK, detail)
}

// ListCategories serves GET /api/categories from the category cache.
func (p *Public) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, p.categoryCache.Get())
}

// ListComments serves GET /api/posts/{id}/comments. Only approved comments
// are visible publicly.
func (p *Public) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	comments, err := p.comments.ListApprovedByPost(id)
	if err != nil {
		respondInternal(w, "comment listing failed", err)
		return
	}

	respondData(w, http.StatusOK, comments)
}

// CreateComment serves POST /api/posts/{id}/comments. Requires a session.
// The new comment enters the moderation queue in pending status.
func (p *Public) CreateComment(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	postID, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateCommentContent(req.Content); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	post, err := p.posts.FindByID(postID)
	if err != nil {
		respondInternal(w, "post lookup failed", err)
		return
	}
	if post == nil || !post.IsPublished() {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	comment, err := p.comments.Create(postID, sess.UserID, req.Content)
	if err != nil {
		respondInternal(w, "comment create failed", err)
		return
	}

	p.notifyPostAuthor(post, sess.DisplayName)

	respondData(w, http.StatusCreated, comment)
}

// LikePost serves POST /api/posts/{id}/like and returns the new count.
func (p *Public) LikePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	count, found, err := p.posts.IncrementLikes(id)
	if err != nil {
		respondInternal(w, "like failed", err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	respondData(w, http.StatusOK, map[string]int64{"likes_count": count})
}

// notifyPostAuthor records an in-app notification for the post's author and
// sends an email when SMTP is configured. Notification failures are logged
// but never fail the comment request.
func (p *Public) notifyPostAuthor(post *models.Post, commenterName string) {
	author, err := p.resolveAuthorUser(post)
	if err != nil {
		slog.Warn("notification author lookup failed", "post", post.ID, "error", err)
		return
	}
	if author == nil {
		return
	}

	title := "your post"
	if post.Title != nil && *post.Title != "" {
		title = fmt.Sprintf("%q", *post.Title)
	}
	message := fmt.Sprintf("%s commented on %s", commenterName, title)

	postID := post.ID
	if _, err := p.notifications.Create(&models.Notification{
		UserID:  author.ID,
		Type:    models.NotificationComment,
		Message: message,
		PostID:  &postID,
	}); err != nil {
		slog.Warn("notification create failed", "post", post.ID, "error", err)
	}

	if p.mail != nil {
		go func(to, subject, body string) {
			if err := p.mail.Send(to, subject, body); err != nil {
				slog.Warn("notification email failed", "error", err)
			}
		}(author.Email, "New comment on "+title,
			message+"\n\nIt is waiting for your approval in the moderation queue.")
	}
}

// resolveAuthorUser finds the user to notify for a post. Posts without an
// author row fall back to the first admin account.
func (p *Public) resolveAuthorUser(post *models.Post) (*models.User, error) {
	if post.AuthorID != nil {
		if uid, err := uuid.Parse(*post.AuthorID); err == nil {
			user, err := p.users.FindByID(uid)
			if err != nil || user != nil {
				return user, err
			}
		}
	}
	return p.users.FirstAdmin()
}

// parseID extracts the {id} URL parameter as a positive int64.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

// parseBoundedInt parses an optional non-negative integer query parameter.
// Empty input yields zero. Values above max are rejected.
func parseBoundedInt(raw string, min, max int) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("out of range")
	}
	return n, nil
}
