// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"quillpress/internal/cache"
	"quillpress/internal/database"
	"quillpress/internal/middleware"
	"quillpress/internal/service"
	"quillpress/internal/session"
	"quillpress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "quillpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "quillpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Sessions      *session.Store
	Posts         *store.PostStore
	Categories    *store.CategoryStore
	Comments      *store.CommentStore
	Notifications *store.NotificationStore
	Users         *store.UserStore
	CategoryCache *cache.CategoryCache
	Reader        *service.Reader
	Admin         *Admin
	Auth          *Auth
	Public        *Public
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	posts := store.NewPostStore(db)
	categories := store.NewCategoryStore(db)
	comments := store.NewCommentStore(db)
	notifications := store.NewNotificationStore(db)
	users := store.NewUserStore(db)

	categoryCache := cache.NewCategoryCache(categories.List, cache.DefaultCategoryTTL, nil)
	reader := service.NewReader(posts, categoryCache, nil)

	admin := NewAdmin(posts, categories, comments, nil)
	auth := NewAuth(sessions, users, notifications)
	public := NewPublic(reader, categoryCache, posts, comments, notifications, users, nil)

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Sessions:      sessions,
		Posts:         posts,
		Categories:    categories,
		Comments:      comments,
		Notifications: notifications,
		Users:         users,
		CategoryCache: categoryCache,
		Reader:        reader,
		Admin:         admin,
		Auth:          auth,
		Public:        public,
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		Username:    "tester",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// decodeEnvelope parses a response body into the envelope plus a typed data
// payload via a second unmarshal of the data field.
func decodeEnvelope(t *testing.T, body []byte, data any) envelope {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, body)
	}
	if data != nil && raw.Data != nil {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return envelope{Success: raw.Success, Error: raw.Error}
}

// seedAdmin creates (or finds) an admin user for tests.
func seedAdmin(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()

	admin, err := env.Users.FirstAdmin()
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if admin != nil {
		return admin.ID
	}

	created, err := env.Users.Create("admin@quillpress.local", "admin", "admin", "Admin User", "admin")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return created.ID
}

// cleanPostsBySlug removes test posts by slug prefix.
func cleanPostsBySlug(t *testing.T, db *sql.DB, prefix string) {
	t.Helper()
	db.Exec("DELETE FROM posts WHERE slug LIKE $1", prefix+"%")
}

// cleanCategoriesByName removes test categories by name.
func cleanCategoriesByName(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		db.Exec("DELETE FROM categories WHERE name = $1", n)
	}
}

// cleanUsersByEmail removes test users by email.
func cleanUsersByEmail(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", e)
	}
}
