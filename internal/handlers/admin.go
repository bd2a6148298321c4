// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/slug"
	"quillpress/internal/storage"
	"quillpress/internal/store"
)

const (
	// maxUploadSize caps image uploads (10 MB).
	maxUploadSize = 10 << 20

	// slugRetryLimit bounds the suffix search for a free slug.
	slugRetryLimit = 50
)

// allowedImageTypes defines MIME types accepted for post image upload.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Admin groups the moderation and content-management endpoints. All routes
// sit behind RequireAuth, Require2FA and RequireAdmin.
type Admin struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	comments   *store.CommentStore
	storage    *storage.Client
}

// NewAdmin creates the admin handler group. storageClient may be nil when
// object storage is not configured; image upload then returns 503.
func NewAdmin(posts *store.PostStore, categories *store.CategoryStore, comments *store.CommentStore, storageClient *storage.Client) *Admin {
	return &Admin{
		posts:      posts,
		categories: categories,
		comments:   comments,
		storage:    storageClient,
	}
}

// postInput is the JSON body for post create and update.
type postInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	Image       string  `json:"image"`
	CategoryID  *int64  `json:"category_id"`
	Status      string  `json:"status"`
	Date        *string `json:"date"` // RFC 3339; defaults to now on create
}

// ListPosts serves GET /api/admin/posts. Drafts are included.
func (a *Admin) ListPosts(w http.ResponseWriter, r *http.Request) {
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

	rows, err := a.posts.List(store.PostFilter{
		Search:        q.Get("search"),
		Limit:         limit,
		Offset:        offset,
		IncludeDrafts: true,
	})
	if err != nil {
		respondInternal(w, "post listing failed", err)
		return
	}

	respondData(w, http.StatusOK, rows)
}

// GetPost serves GET /api/admin/posts/{id}, returning the raw row so the
// edit form sees stored values rather than display fallbacks.
func (a *Admin) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := a.posts.FindByID(id)
	if err != nil {
		respondInternal(w, "post lookup failed", err)
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	respondData(w, http.StatusOK, post)
}

// CreatePost serves POST /api/admin/posts.
func (a *Admin) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validatePostInput(req.Title, req.Description, req.Content, req.Image); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	status, ok := parsePostStatus(req.Status)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "status must be draft or published")
		return
	}

	date := time.Now()
	if req.Date != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "date must be RFC 3339")
			return
		}
		date = parsed
	}

	if req.CategoryID != nil {
		if ok, err := a.categoryExists(*req.CategoryID); err != nil {
			respondInternal(w, "category lookup failed", err)
			return
		} else if !ok {
			respondError(w, http.StatusUnprocessableEntity, "category does not exist")
			return
		}
	}

	postSlug, err := a.uniqueSlug(req.Title)
	if err != nil {
		respondInternal(w, "slug generation failed", err)
		return
	}

	post := &models.Post{
		Title:       optional(req.Title),
		Description: optional(req.Description),
		Content:     optional(req.Content),
		Image:       optional(req.Image),
		Slug:        postSlug,
		Date:        date,
		CategoryID:  req.CategoryID,
		StatusID:    status,
	}
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		authorID := sess.UserID.String()
		post.AuthorID = &authorID
	}

	created, err := a.posts.Create(post)
	if err != nil {
		respondInternal(w, "post create failed", err)
		return
	}

	respondData(w, http.StatusCreated, created)
}

// UpdatePost serves PUT /api/admin/posts/{id}. The slug is regenerated only
// when the title changes.
func (a *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	existing, err := a.posts.FindByID(id)
	if err != nil {
		respondInternal(w, "post lookup failed", err)
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	var req postInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validatePostInput(req.Title, req.Description, req.Content, req.Image); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	status, ok := parsePostStatus(req.Status)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "status must be draft or published")
		return
	}

	if req.CategoryID != nil {
		if ok, err := a.categoryExists(*req.CategoryID); err != nil {
			respondInternal(w, "category lookup failed", err)
			return
		} else if !ok {
			respondError(w, http.StatusUnprocessableEntity, "category does not exist")
			return
		}
	}

	titleChanged := existing.Title == nil || *existing.Title != req.Title
	if titleChanged {
		newSlug, err := a.uniqueSlug(req.Title)
		if err != nil {
			respondInternal(w, "slug generation failed", err)
			return
		}
		existing.Slug = newSlug
	}

	existing.Title = optional(req.Title)
	existing.Description = optional(req.Description)
	existing.Content = optional(req.Content)
	existing.Image = optional(req.Image)
	existing.CategoryID = req.CategoryID
	existing.StatusID = status
	if req.Date != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "date must be RFC 3339")
			return
		}
		existing.Date = parsed
	}

	if err := a.posts.Update(existing); err != nil {
		respondInternal(w, "post update failed", err)
		return
	}

	respondData(w, http.StatusOK, existing)
}

// DeletePost serves DELETE /api/admin/posts/{id}.
func (a *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := a.posts.Delete(id); err != nil {
		respondInternal(w, "post delete failed", err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// CreateCategory serves POST /api/admin/categories.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if msg := validateCategoryName(name); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if existing, err := a.categories.FindByName(name); err != nil {
		respondInternal(w, "category lookup failed", err)
		return
	} else if existing != nil {
		respondError(w, http.StatusConflict, "a category with this name already exists")
		return
	}

	created, err := a.categories.Create(&models.Category{
		Name: name,
		Slug: slug.Generate(name),
	})
	if err != nil {
		respondInternal(w, "category create failed", err)
		return
	}

	respondData(w, http.StatusCreated, created)
}

// UpdateCategory serves PUT /api/admin/categories/{id}.
func (a *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	existing, err := a.categories.FindByID(id)
	if err != nil {
		respondInternal(w, "category lookup failed", err)
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if msg := validateCategoryName(name); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if other, err := a.categories.FindByName(name); err != nil {
		respondInternal(w, "category lookup failed", err)
		return
	} else if other != nil && other.ID != id {
		respondError(w, http.StatusConflict, "a category with this name already exists")
		return
	}

	existing.Name = name
	existing.Slug = slug.Generate(name)
	if err := a.categories.Update(existing); err != nil {
		respondInternal(w, "category update failed", err)
		return
	}

	respondData(w, http.StatusOK, existing)
}

// DeleteCategory serves DELETE /api/admin/categories/{id}. Posts in the
// category remain and fall back to the default category on display.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := a.categories.Delete(id); err != nil {
		respondInternal(w, "category delete failed", err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// ListCommentQueue serves GET /api/admin/comments?status=pending.
func (a *Admin) ListCommentQueue(w http.ResponseWriter, r *http.Request) {
	status := models.CommentStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.CommentStatusPending
	}
	switch status {
	case models.CommentStatusPending, models.CommentStatusApproved, models.CommentStatusRejected:
	default:
		respondError(w, http.StatusBadRequest, "status must be pending, approved or rejected")
		return
	}

	comments, err := a.comments.ListByStatus(status)
	if err != nil {
		respondInternal(w, "comment listing failed", err)
		return
	}

	respondData(w, http.StatusOK, comments)
}

// ApproveComment serves POST /api/admin/comments/{id}/approve.
func (a *Admin) ApproveComment(w http.ResponseWriter, r *http.Request) {
	a.moderateComment(w, r, models.CommentStatusApproved)
}

// RejectComment serves POST /api/admin/comments/{id}/reject.
func (a *Admin) RejectComment(w http.ResponseWriter, r *http.Request) {
	a.moderateComment(w, r, models.CommentStatusRejected)
}

func (a *Admin) moderateComment(w http.ResponseWriter, r *http.Request, status models.CommentStatus) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	ok, err := a.comments.SetStatus(id, status)
	if err != nil {
		respondInternal(w, "comment update failed", err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "comment not found")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": string(status)})
}

// DeleteComment serves DELETE /api/admin/comments/{id}.
func (a *Admin) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := a.comments.Delete(id); err != nil {
		respondInternal(w, "comment delete failed", err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

// Stats serves GET /api/admin/stats for the dashboard.
func (a *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	published, err := a.posts.CountByStatus(models.PostStatusPublished)
	if err != nil {
		respondInternal(w, "stats failed", err)
		return
	}
	drafts, err := a.posts.CountByStatus(models.PostStatusDraft)
	if err != nil {
		respondInternal(w, "stats failed", err)
		return
	}
	pending, err := a.comments.CountPending()
	if err != nil {
		respondInternal(w, "stats failed", err)
		return
	}

	respondData(w, http.StatusOK, map[string]int{
		"published_posts":  published,
		"draft_posts":      drafts,
		"pending_comments": pending,
	})
}

// UploadImage serves POST /api/admin/uploads. The file lands in S3 under a
// random key and the public URL comes back for use as a post image.
func (a *Admin) UploadImage(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	contentType, err := sniffContentType(file)
	if err != nil {
		respondInternal(w, "file read failed", err)
		return
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		respondError(w, http.StatusUnsupportedMediaType, "only JPEG, PNG, GIF and WebP images are accepted")
		return
	}

	key := fmt.Sprintf("posts/%s/%s%s",
		time.Now().UTC().Format("2006/01"),
		uuid.NewString(),
		ext,
	)

	if err := a.storage.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		respondInternal(w, "upload failed", err)
		return
	}

	respondData(w, http.StatusCreated, map[string]string{
		"key":      key,
		"url":      a.storage.FileURL(key),
		"filename": filepath.Base(header.Filename),
	})
}

// sniffContentType detects the MIME type from the first 512 bytes and
// rewinds the file for the subsequent upload.
func sniffContentType(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// uniqueSlug derives a URL slug from the title, appending a numeric suffix
// until it is free.
func (a *Admin) uniqueSlug(title string) (string, error) {
	base := slug.Generate(title)

	exists, err := a.posts.SlugExists(base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}

	for i := 2; i <= slugRetryLimit; i++ {
		candidate := slug.WithSuffix(base, i)
		exists, err := a.posts.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	// Practically unreachable; fall back to a random suffix.
	return base + "-" + uuid.NewString()[:8], nil
}

func (a *Admin) categoryExists(id int64) (bool, error) {
	cat, err := a.categories.FindByID(id)
	if err != nil {
		return false, err
	}
	return cat != nil, nil
}

// parsePostStatus maps the wire status names to the lookup-table IDs.
// Empty input defaults to draft.
func parsePostStatus(s string) (models.PostStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "draft":
		return models.PostStatusDraft, true
	case "published":
		return models.PostStatusPublished, true
	default:
		return 0, false
	}
}

// optional converts a form value to a nullable column, storing NULL for
// blank strings.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
