// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the blogcms JSON API.
// Handlers are grouped by concern (public, auth, admin, AI) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogcms/internal/models"
	"blogcms/internal/session"
	"blogcms/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Posts is the post persistence used by the handlers. *store.PostStore
// satisfies it.
type Posts interface {
	ListPublished(ctx context.Context) ([]models.Post, error)
	ListFeatured(ctx context.Context) ([]models.Post, error)
	ListTrending(ctx context.Context) ([]models.Post, error)
	ListByCategory(ctx context.Context, categorySlug string) ([]models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) error
	SetFlags(ctx context.Context, id uuid.UUID, featured, trending bool) error
	SetFeaturedImage(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, slug string) (bool, error)
	Stats(ctx context.Context) (*models.PostStats, error)
}

// Categories is the category persistence. *store.CategoryStore satisfies it.
type Categories interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Users is the user persistence. *store.UserStore satisfies it.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int, error)
	CheckPassword(user *models.User, password string) bool
}

// Comments is the comment persistence. *store.CommentStore satisfies it.
type Comments interface {
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	Create(ctx context.Context, postID, authorID uuid.UUID, content string) (*models.Comment, error)
	Count(ctx context.Context) (int, error)
}

// Sessions creates and destroys login sessions. *session.Store satisfies it.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("write json response failed", "error", err)
	}
}

// writeError writes {"error": msg} with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fieldError is the body of a 400 naming the offending field.
type fieldError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeFieldError(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, fieldError{Error: msg, Field: field})
}

// internalError logs err with context and sends a generic 500.
func internalError(w http.ResponseWriter, msg string, err error, args ...any) {
	slog.Error(msg, append([]any{"error", err}, args...)...)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown
// fields. On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is empty"
		case errors.As(err, &maxErr):
			msg = fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// idParam parses the {id} URL parameter. On failure it writes a 400.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// storeError maps persistence sentinels to HTTP responses. Returns false
// if err was not a known sentinel and nothing was written.
func storeError(w http.ResponseWriter, err error, what string) bool {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, what+" already exists")
	case errors.Is(err, store.ErrInUse):
		writeError(w, http.StatusConflict, what+" is still in use")
	default:
		return false
	}
	return true
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
