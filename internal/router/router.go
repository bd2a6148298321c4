// Package router sets up all HTTP routes and middleware chains for the
// Quillpress API. It organizes routes into public, account and admin groups
// with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"quillpress/internal/handlers"
	"quillpress/internal/middleware"
	"quillpress/internal/session"
)

// loginRateLimit guards the credential endpoints against brute force.
const (
	loginRateLimit  = 10
	loginRateWindow = 1 * time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. The returned stop function terminates the
// rate limiter's background cleanup.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) (chi.Router, func()) {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	loginLimiter := middleware.NewRateLimiter(loginRateLimit, loginRateWindow)

	// Health check, no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Public read surface.
		r.Get("/posts", public.ListPosts)
		r.Get("/posts/{id}", public.GetPost)
		r.Get("/posts/{id}/comments", public.ListComments)
		r.Post("/posts/{id}/like", public.LikePost)
		r.Get("/categories", public.ListCategories)

		// Credential endpoints, rate limited.
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Post("/auth/register", auth.Register)
			r.Post("/auth/login", auth.Login)
		})
		r.Post("/auth/logout", auth.Logout)

		// Signed-in surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/auth/me", auth.Me)
			r.Post("/auth/2fa/setup", auth.TwoFASetup)
			r.Post("/auth/2fa/verify", auth.TwoFAVerify)

			r.Post("/posts/{id}/comments", public.CreateComment)

			r.Get("/notifications", auth.ListNotifications)
			r.Post("/notifications/{id}/read", auth.MarkNotificationRead)
		})

		// Admin surface: authenticated, 2FA-verified, admin role.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireAdmin)

			r.Get("/stats", admin.Stats)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", admin.ListPosts)
				r.Post("/", admin.CreatePost)
				r.Get("/{id}", admin.GetPost)
				r.Put("/{id}", admin.UpdatePost)
				r.Delete("/{id}", admin.DeletePost)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", admin.CreateCategory)
				r.Put("/{id}", admin.UpdateCategory)
				r.Delete("/{id}", admin.DeleteCategory)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/", admin.ListCommentQueue)
				r.Post("/{id}/approve", admin.ApproveComment)
				r.Post("/{id}/reject", admin.RejectComment)
				r.Delete("/{id}", admin.DeleteComment)
			})

			r.Post("/uploads", admin.UploadImage)
		})
	})

	return r, loginLimiter.Stop
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
