// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogcms/internal/cache"
	"blogcms/internal/markdown"
	"blogcms/internal/middleware"
	"blogcms/internal/models"
)

// ViewRecorder counts post detail views. *metrics.Metrics satisfies it.
type ViewRecorder interface {
	RecordPostView()
}

// Public groups the read-only blog endpoints and comment posting. Listings
// go through the Valkey response cache; post detail never does, since every
// hit increments the view counter.
type Public struct {
	posts      Posts
	categories Categories
	comments   Comments
	cache      *cache.ResponseCache
	views      ViewRecorder
}

// NewPublic creates a new Public handler group. cache and views may be nil.
func NewPublic(posts Posts, categories Categories, comments Comments, rc *cache.ResponseCache, views ViewRecorder) *Public {
	return &Public{
		posts:      posts,
		categories: categories,
		comments:   comments,
		cache:      rc,
		views:      views,
	}
}

// PostDetail is the public post detail body: the post plus its rendered
// markdown and an estimated reading time.
type PostDetail struct {
	models.Post
	ContentHTML    string `json:"content_html"`
	ReadingMinutes int    `json:"reading_minutes"`
}

// cachedList serves key from the response cache, or loads it, encodes it
// and caches the result on miss.
func (p *Public) cachedList(w http.ResponseWriter, r *http.Request, key string, load func(context.Context) (any, error)) {
	ctx := r.Context()
	if body, ok := p.cache.Get(ctx, key); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(body)
		return
	}

	data, err := load(ctx)
	if err != nil {
		internalError(w, "load listing failed", err, "key", key)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		internalError(w, "encode listing failed", err, "key", key)
		return
	}
	p.cache.Set(ctx, key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(body)
}

// ListPosts returns all published posts, newest first.
func (p *Public) ListPosts(w http.ResponseWriter, r *http.Request) {
	p.cachedList(w, r, cache.KeyPosts, func(ctx context.Context) (any, error) {
		posts, err := p.posts.ListPublished(ctx)
		return nonNil(posts), err
	})
}

// FeaturedPosts returns the published featured posts.
func (p *Public) FeaturedPosts(w http.ResponseWriter, r *http.Request) {
	p.cachedList(w, r, cache.KeyFeatured, func(ctx context.Context) (any, error) {
		posts, err := p.posts.ListFeatured(ctx)
		return nonNil(posts), err
	})
}

// TrendingPosts returns the published trending posts, most viewed first.
func (p *Public) TrendingPosts(w http.ResponseWriter, r *http.Request) {
	p.cachedList(w, r, cache.KeyTrending, func(ctx context.Context) (any, error) {
		posts, err := p.posts.ListTrending(ctx)
		return nonNil(posts), err
	})
}

// ListCategories returns every category with its published post count.
func (p *Public) ListCategories(w http.ResponseWriter, r *http.Request) {
	p.cachedList(w, r, cache.KeyCategories, func(ctx context.Context) (any, error) {
		cats, err := p.categories.List(ctx)
		return nonNil(cats), err
	})
}

// CategoryPosts returns the published posts of one category, or 404.
func (p *Public) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	cat, err := p.categories.FindBySlug(r.Context(), slugParam)
	if err != nil {
		internalError(w, "find category failed", err, "slug", slugParam)
		return
	}
	if cat == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	p.cachedList(w, r, cache.CategoryPostsKey(cat.Slug), func(ctx context.Context) (any, error) {
		posts, err := p.posts.ListByCategory(ctx, cat.Slug)
		return nonNil(posts), err
	})
}

// Post returns one published post with rendered HTML and counts the view.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	post, err := p.posts.FindBySlug(ctx, slugParam)
	if err != nil {
		internalError(w, "find post failed", err, "slug", slugParam)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	counted, err := p.posts.IncrementViews(ctx, post.Slug)
	if err != nil {
		// The post is still served; only the counter is lost.
		slog.Warn("increment views failed", "error", err, "slug", post.Slug)
	} else if counted {
		post.Views++
		if p.views != nil {
			p.views.RecordPostView()
		}
	}

	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		internalError(w, "render markdown failed", err, "slug", post.Slug)
		return
	}

	writeJSON(w, http.StatusOK, PostDetail{
		Post:           *post,
		ContentHTML:    html,
		ReadingMinutes: markdown.ReadingTime(post.Content),
	})
}

// Comments lists the comments of a published post, oldest first.
func (p *Public) Comments(w http.ResponseWriter, r *http.Request) {
	post, ok := p.publishedPost(w, r)
	if !ok {
		return
	}

	list, err := p.comments.ListByPost(r.Context(), post.ID)
	if err != nil {
		internalError(w, "list comments failed", err, "post", post.ID)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

type commentRequest struct {
	Content string `json:"content"`
}

// CreateComment adds a comment by the signed-in user to a published post.
func (p *Public) CreateComment(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateComment(req.Content); msg != "" {
		writeFieldError(w, "content", msg)
		return
	}

	post, ok := p.publishedPost(w, r)
	if !ok {
		return
	}

	c, err := p.comments.Create(r.Context(), post.ID, sess.UserID, req.Content)
	if err != nil {
		if storeError(w, err, "post") {
			return
		}
		internalError(w, "create comment failed", err, "post", post.ID)
		return
	}

	// Listings embed comment counters.
	p.cache.InvalidateAll(r.Context())

	writeJSON(w, http.StatusCreated, c)
}

// publishedPost resolves {slug} to a published post, writing 404 or 500 on
// failure.
func (p *Public) publishedPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	slugParam := chi.URLParam(r, "slug")
	post, err := p.posts.FindBySlug(r.Context(), slugParam)
	if err != nil {
		internalError(w, "find post failed", err, "slug", slugParam)
		return nil, false
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return nil, false
	}
	return post, true
}
