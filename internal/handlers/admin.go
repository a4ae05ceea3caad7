// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"blogcms/internal/cache"
	"blogcms/internal/middleware"
	"blogcms/internal/models"
	"blogcms/internal/slug"
)

// ImageMirror copies a featured image into owned storage and returns the
// URL to use. *storage.Mirror satisfies it, including as a nil pointer.
type ImageMirror interface {
	Image(ctx context.Context, src string) string
}

// ObjectRemover deletes stored objects by their public URL.
// *storage.Client satisfies it.
type ObjectRemover interface {
	ExtractKey(rawURL string) (string, bool)
	Delete(ctx context.Context, key string) error
}

// Admin groups the admin API handlers and their dependencies.
type Admin struct {
	posts      Posts
	categories Categories
	users      Users
	comments   Comments
	cache      *cache.ResponseCache
	mirror     ImageMirror
	objects    ObjectRemover
}

// NewAdmin creates a new Admin handler group. rc, mirror and objects may be
// nil when Valkey caching or object storage are not in use.
func NewAdmin(posts Posts, categories Categories, users Users, comments Comments, rc *cache.ResponseCache, mirror ImageMirror, objects ObjectRemover) *Admin {
	return &Admin{
		posts:      posts,
		categories: categories,
		users:      users,
		comments:   comments,
		cache:      rc,
		mirror:     mirror,
		objects:    objects,
	}
}

// Dashboard is the body of GET /api/admin/dashboard.
type Dashboard struct {
	Posts      *models.PostStats `json:"posts"`
	Users      int               `json:"users"`
	Comments   int               `json:"comments"`
	Categories int               `json:"categories"`
}

// Dashboard returns site-wide counters.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := a.posts.Stats(ctx)
	if err != nil {
		internalError(w, "post stats failed", err)
		return
	}
	users, err := a.users.Count(ctx)
	if err != nil {
		internalError(w, "count users failed", err)
		return
	}
	comments, err := a.comments.Count(ctx)
	if err != nil {
		internalError(w, "count comments failed", err)
		return
	}
	cats, err := a.categories.List(ctx)
	if err != nil {
		internalError(w, "list categories failed", err)
		return
	}

	writeJSON(w, http.StatusOK, Dashboard{
		Posts:      stats,
		Users:      users,
		Comments:   comments,
		Categories: len(cats),
	})
}

// ListPosts returns every post including drafts.
func (a *Admin) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.ListAll(r.Context())
	if err != nil {
		internalError(w, "list all posts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(posts))
}

// createPostRequest is a reviewed draft submitted for persistence.
type createPostRequest struct {
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt"`
	FeaturedImage string    `json:"featured_image"`
	CategoryID    uuid.UUID `json:"category_id"`
	Published     bool      `json:"published"`
	Featured      bool      `json:"featured"`
	Trending      bool      `json:"trending"`
}

// CreatePost persists a reviewed draft under a unique slug derived from its
// title. Published posts get their featured image mirrored first.
func (a *Admin) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Excerpt = strings.TrimSpace(req.Excerpt)
	req.FeaturedImage = strings.TrimSpace(req.FeaturedImage)

	if field, msg := validatePost(req.Title, req.Content, req.Excerpt, req.FeaturedImage); field != "" {
		writeFieldError(w, field, msg)
		return
	}
	if req.CategoryID == uuid.Nil {
		writeFieldError(w, "category_id", "Category is required.")
		return
	}
	exists, err := a.categories.Exists(ctx, req.CategoryID)
	if err != nil {
		internalError(w, "category lookup failed", err, "category", req.CategoryID)
		return
	}
	if !exists {
		writeFieldError(w, "category_id", "Category does not exist.")
		return
	}

	base := slug.Generate(req.Title)
	if base == "" {
		base = "post"
	}
	postSlug, err := slug.Unique(base, func(s string) (bool, error) {
		return a.posts.SlugExists(ctx, s)
	})
	if err != nil {
		internalError(w, "slug allocation failed", err, "base", base)
		return
	}

	image := req.FeaturedImage
	if image == "" {
		image = models.DefaultFeaturedImage
	}
	if req.Published && a.mirror != nil {
		image = a.mirror.Image(ctx, image)
	}

	post, err := a.posts.Create(ctx, &models.Post{
		Title:         req.Title,
		Slug:          postSlug,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: image,
		CategoryID:    req.CategoryID,
		AuthorID:      sess.UserID,
		Published:     req.Published,
		Featured:      req.Featured,
		Trending:      req.Trending,
	})
	if err != nil {
		if storeError(w, err, "post") {
			return
		}
		internalError(w, "create post failed", err, "slug", postSlug)
		return
	}

	a.cache.InvalidateAll(ctx)
	slog.Info("post created", "id", post.ID, "slug", post.Slug, "published", post.Published, "author", sess.UserID)
	writeJSON(w, http.StatusCreated, post)
}

// updatePostRequest carries the moderation flags; absent fields are kept.
type updatePostRequest struct {
	Published *bool `json:"published"`
	Featured  *bool `json:"featured"`
	Trending  *bool `json:"trending"`
}

// UpdatePost toggles published, featured and trending. Publishing mirrors
// the featured image.
func (a *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req updatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Published == nil && req.Featured == nil && req.Trending == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	post, err := a.posts.FindByID(ctx, id)
	if err != nil {
		internalError(w, "find post failed", err, "id", id)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	if req.Published != nil && *req.Published != post.Published {
		if err := a.posts.SetPublished(ctx, id, *req.Published); err != nil {
			if storeError(w, err, "post") {
				return
			}
			internalError(w, "set published failed", err, "id", id)
			return
		}
		if *req.Published && a.mirror != nil {
			if mirrored := a.mirror.Image(ctx, post.ImageOrDefault()); mirrored != post.FeaturedImage {
				if err := a.posts.SetFeaturedImage(ctx, id, mirrored); err != nil {
					slog.Warn("store mirrored image failed", "id", id, "error", err)
				}
			}
		}
	}

	if req.Featured != nil || req.Trending != nil {
		featured, trending := post.Featured, post.Trending
		if req.Featured != nil {
			featured = *req.Featured
		}
		if req.Trending != nil {
			trending = *req.Trending
		}
		if err := a.posts.SetFlags(ctx, id, featured, trending); err != nil {
			if storeError(w, err, "post") {
				return
			}
			internalError(w, "set flags failed", err, "id", id)
			return
		}
	}

	a.cache.InvalidateAll(ctx)

	updated, err := a.posts.FindByID(ctx, id)
	if err != nil {
		internalError(w, "reload post failed", err, "id", id)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeletePost removes a post, its comments, and its mirrored image.
func (a *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	post, err := a.posts.FindByID(ctx, id)
	if err != nil {
		internalError(w, "find post failed", err, "id", id)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := a.posts.Delete(ctx, id); err != nil {
		if storeError(w, err, "post") {
			return
		}
		internalError(w, "delete post failed", err, "id", id)
		return
	}

	if a.objects != nil {
		if key, owned := a.objects.ExtractKey(post.FeaturedImage); owned {
			if err := a.objects.Delete(ctx, key); err != nil {
				slog.Warn("delete featured image failed", "key", key, "error", err)
			}
		}
	}

	a.cache.InvalidateAll(ctx)
	slog.Info("post deleted", "id", id, "slug", post.Slug)
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// normalize trims the fields and derives the slug from the name when it
// is empty. Returns false if no usable slug results.
func (c *categoryRequest) normalize() bool {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.Color = strings.TrimSpace(c.Color)
	if strings.TrimSpace(c.Slug) == "" {
		c.Slug = c.Name
	}
	c.Slug = slug.Generate(c.Slug)
	return c.Slug != ""
}

func (a *Admin) decodeCategory(w http.ResponseWriter, r *http.Request) (*categoryRequest, bool) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}
	if field, msg := validateCategory(req.Name, req.Description, req.Color); field != "" {
		writeFieldError(w, field, msg)
		return nil, false
	}
	if !req.normalize() {
		writeFieldError(w, "slug", "Slug must contain letters or digits.")
		return nil, false
	}
	return &req, true
}

// CreateCategory adds a category.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeCategory(w, r)
	if !ok {
		return
	}

	cat, err := a.categories.Create(r.Context(), &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		if storeError(w, err, "category") {
			return
		}
		internalError(w, "create category failed", err, "slug", req.Slug)
		return
	}

	a.cache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusCreated, cat)
}

// UpdateCategory replaces a category's fields.
func (a *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	req, ok := a.decodeCategory(w, r)
	if !ok {
		return
	}

	cat, err := a.categories.FindByID(ctx, id)
	if err != nil {
		internalError(w, "find category failed", err, "id", id)
		return
	}
	if cat == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	cat.Name = req.Name
	cat.Slug = req.Slug
	cat.Description = req.Description
	if req.Color != "" {
		cat.Color = req.Color
	}

	if err := a.categories.Update(ctx, cat); err != nil {
		if storeError(w, err, "category") {
			return
		}
		internalError(w, "update category failed", err, "id", id)
		return
	}

	a.cache.InvalidateAll(ctx)
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory removes a category that no post references.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := a.categories.Delete(r.Context(), id); err != nil {
		if storeError(w, err, "category") {
			return
		}
		internalError(w, "delete category failed", err, "id", id)
		return
	}

	a.cache.InvalidateAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers returns every account.
func (a *Admin) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List(r.Context())
	if err != nil {
		internalError(w, "list users failed", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}
