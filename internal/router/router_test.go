// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"blogcms/internal/handlers"
	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/session"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

// stubSessions resolves every request to a fixed session (or none).
type stubSessions struct{ data *session.Data }

func (s stubSessions) Get(context.Context, *http.Request) (*session.Data, error) {
	return s.data, nil
}

// stubPosts serves an empty published listing; other methods are unused.
type stubPosts struct{ handlers.Posts }

func (stubPosts) ListPublished(context.Context) ([]models.Post, error) { return nil, nil }

func newTestRouter(sess *session.Data, metricsToken string) http.Handler {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	return New(Deps{
		Sessions:     stubSessions{sess},
		Public:       handlers.NewPublic(stubPosts{}, nil, nil, nil, nil),
		Auth:         handlers.NewAuth(nil, nil),
		Admin:        handlers.NewAdmin(nil, nil, nil, nil, nil, nil, nil),
		AI:           handlers.NewAI(nil, nil),
		Metrics:      metrics,
		MetricsToken: metricsToken,
		CORSOrigins:  []string{"http://localhost:5173"},
	})
}

func TestRouterPublicListing(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(nil, "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if body := rr.Body.String(); body != "[]" {
		t.Errorf("body: got %q, want []", body)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("secure headers not applied")
	}

	var csrf bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.CSRFCookieName {
			csrf = true
		}
	}
	if !csrf {
		t.Error("API responses should issue the CSRF cookie")
	}
}

func TestRouterAdminGuards(t *testing.T) {
	user := &session.Data{UserID: uuid.New(), Email: "u@blogcms.local", Role: "user"}

	tests := []struct {
		name string
		sess *session.Data
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"non-admin", user, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/admin/dashboard", "/api/admin/users", "/api/admin/ai/provider"} {
				rr := httptest.NewRecorder()
				newTestRouter(tt.sess, "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
				if rr.Code != tt.want {
					t.Errorf("GET %s: got %d, want %d", path, rr.Code, tt.want)
				}
			}
		})
	}
}

func TestRouterRejectsMutationWithoutCSRFToken(t *testing.T) {
	admin := &session.Data{UserID: uuid.New(), Email: "a@blogcms.local", Role: "admin"}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/ai/drafts", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: "token"})
	rr := httptest.NewRecorder()
	newTestRouter(admin, "").ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestRouterMetricsToken(t *testing.T) {
	h := newTestRouter(nil, "s3cret")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("without token: got %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("with token: got %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	newTestRouter(nil, "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("open metrics: got %d, want 200", rr.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(nil, "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}
