// Package router sets up all HTTP routes and middleware chains for the
// blogcms API. Routes are organized into public, auth and admin groups with
// appropriate middleware stacks.
package router

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogcms/internal/handlers"
	"blogcms/internal/middleware"
)

// Deps holds everything the router wires together.
type Deps struct {
	Sessions middleware.SessionLoader
	Public   *handlers.Public
	Auth     *handlers.Auth
	Admin    *handlers.Admin
	AI       *handlers.AI

	// Recorder receives per-request metrics; may be nil.
	Recorder middleware.HTTPRecorder
	// Metrics serves /metrics when non-nil. MetricsToken, when set, must
	// be presented as a bearer token.
	Metrics      http.Handler
	MetricsToken string

	CORSOrigins   []string
	SecureCookies bool

	// Optional per-client limiters for the expensive endpoints.
	AILimiter    *middleware.RateLimiter
	LoginLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger(d.Recorder))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(d.CORSOrigins))

	r.Get("/health", healthHandler)
	if d.Metrics != nil {
		r.Handle("/metrics", requireToken(d.MetricsToken, d.Metrics))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))
		r.Use(middleware.LoadSession(d.Sessions))

		// Public blog.
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Public.ListPosts)
			r.Get("/featured", d.Public.FeaturedPosts)
			r.Get("/trending", d.Public.TrendingPosts)
			r.Get("/{slug}", d.Public.Post)
			r.Get("/{slug}/comments", d.Public.Comments)
			r.With(middleware.RequireAuth).Post("/{slug}/comments", d.Public.CreateComment)
		})
		r.Get("/categories", d.Public.ListCategories)
		r.Get("/categories/{slug}/posts", d.Public.CategoryPosts)

		// Auth.
		r.Route("/auth", func(r chi.Router) {
			r.With(limit(d.LoginLimiter)).Post("/login", d.Auth.Login)
			r.Post("/logout", d.Auth.Logout)
			r.Get("/me", d.Auth.Me)
		})

		// Admin area.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/dashboard", d.Admin.Dashboard)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", d.Admin.ListPosts)
				r.Post("/", d.Admin.CreatePost)
				r.Patch("/{id}", d.Admin.UpdatePost)
				r.Delete("/{id}", d.Admin.DeletePost)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", d.Admin.CreateCategory)
				r.Put("/{id}", d.Admin.UpdateCategory)
				r.Delete("/{id}", d.Admin.DeleteCategory)
			})

			r.Get("/users", d.Admin.ListUsers)

			r.Route("/ai", func(r chi.Router) {
				r.With(limit(d.AILimiter)).Post("/drafts", d.AI.GenerateDraft)
				r.Get("/provider", d.AI.Provider)
				r.Put("/provider", d.AI.SetProvider)
			})
		})
	})

	return r
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// requireToken guards h with a static bearer token. An empty token leaves
// h open.
func requireToken(token string, h http.Handler) http.Handler {
	if token == "" {
		return h
	}
	want := []byte("Bearer " + token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), want) != 1 {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
