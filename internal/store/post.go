// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blogcms/internal/models"
)

// Limits for the homepage sections.
const (
	FeaturedLimit = 3
	TrendingLimit = 6
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postSelect joins each post with its category and author summary.
const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.excerpt, p.featured_image,
	       p.category_id, p.author_id, p.published, p.status, p.featured,
	       p.trending, p.views, p.likes, p.comments, p.created_at, p.updated_at,
	       c.id, c.name, c.slug, c.color,
	       u.id, u.name, u.avatar
	FROM posts p
	JOIN categories c ON c.id = p.category_id
	JOIN users u ON u.id = p.author_id`

func scanPost(scanner rowScanner) (*models.Post, error) {
	p := &models.Post{Category: &models.Category{}, Author: &models.User{}}
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.FeaturedImage,
		&p.CategoryID, &p.AuthorID, &p.Published, &p.Status, &p.Featured,
		&p.Trending, &p.Views, &p.Likes, &p.Comments, &p.CreatedAt, &p.UpdatedAt,
		&p.Category.ID, &p.Category.Name, &p.Category.Slug, &p.Category.Color,
		&p.Author.ID, &p.Author.Name, &p.Author.Avatar,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostStore) queryPosts(ctx context.Context, op, query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (s *PostStore) queryPost(ctx context.Context, op, query string, args ...any) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPublished returns all published posts, newest first.
func (s *PostStore) ListPublished(ctx context.Context) ([]models.Post, error) {
	return s.queryPosts(ctx, "list published posts",
		postSelect+` WHERE p.published ORDER BY p.created_at DESC`)
}

// ListFeatured returns the newest published posts flagged as featured.
func (s *PostStore) ListFeatured(ctx context.Context) ([]models.Post, error) {
	return s.queryPosts(ctx, "list featured posts",
		postSelect+` WHERE p.published AND p.featured ORDER BY p.created_at DESC LIMIT $1`, FeaturedLimit)
}

// ListTrending returns the most viewed published posts flagged as trending.
func (s *PostStore) ListTrending(ctx context.Context) ([]models.Post, error) {
	return s.queryPosts(ctx, "list trending posts",
		postSelect+` WHERE p.published AND p.trending ORDER BY p.views DESC, p.created_at DESC LIMIT $1`, TrendingLimit)
}

// ListByCategory returns published posts in the category with the given slug.
func (s *PostStore) ListByCategory(ctx context.Context, categorySlug string) ([]models.Post, error) {
	return s.queryPosts(ctx, "list posts by category",
		postSelect+` WHERE p.published AND c.slug = $1 ORDER BY p.created_at DESC`, categorySlug)
}

// ListAll returns every post regardless of status, newest first. Admin only.
func (s *PostStore) ListAll(ctx context.Context) ([]models.Post, error) {
	return s.queryPosts(ctx, "list all posts",
		postSelect+` ORDER BY p.created_at DESC`)
}

// FindBySlug retrieves a published post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.queryPost(ctx, "find post by slug",
		postSelect+` WHERE p.slug = $1 AND p.published`, slug)
}

// FindByID retrieves a post by ID regardless of status. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.queryPost(ctx, "find post by id",
		postSelect+` WHERE p.id = $1`, id)
}

// SlugExists reports whether any post (published or not) uses slug.
func (s *PostStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

// Create inserts a post and returns it with its generated ID and joins.
// The status column follows the published flag.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	status := models.PostStatusDraft
	if p.Published {
		status = models.PostStatusPublished
	}

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, featured_image, category_id,
		                   author_id, published, status, featured, trending)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.FeaturedImage, p.CategoryID,
		p.AuthorID, p.Published, status, p.Featured, p.Trending,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", classify(err))
	}
	return s.FindByID(ctx, id)
}

// SetPublished publishes or unpublishes a post.
func (s *PostStore) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	status := models.PostStatusDraft
	if published {
		status = models.PostStatusPublished
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET published = $1, status = $2, updated_at = NOW() WHERE id = $3
	`, published, status, id)
	if err != nil {
		return fmt.Errorf("set post published: %w", err)
	}
	return requireRow(res, "set post published")
}

// SetFlags updates the featured and trending flags.
func (s *PostStore) SetFlags(ctx context.Context, id uuid.UUID, featured, trending bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET featured = $1, trending = $2, updated_at = NOW() WHERE id = $3
	`, featured, trending, id)
	if err != nil {
		return fmt.Errorf("set post flags: %w", err)
	}
	return requireRow(res, "set post flags")
}

// SetFeaturedImage replaces the featured image URL.
func (s *PostStore) SetFeaturedImage(ctx context.Context, id uuid.UUID, url string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET featured_image = $1, updated_at = NOW() WHERE id = $2
	`, url, id)
	if err != nil {
		return fmt.Errorf("set featured image: %w", err)
	}
	return requireRow(res, "set featured image")
}

// Delete removes a post and its comments.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireRow(res, "delete post")
}

// IncrementViews atomically bumps the view counter of a published post.
// Returns false when no published post has the slug.
func (s *PostStore) IncrementViews(ctx context.Context, slug string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET views = views + 1 WHERE slug = $1 AND published
	`, slug)
	if err != nil {
		return false, fmt.Errorf("increment post views: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment post views rows affected: %w", err)
	}
	return n > 0, nil
}

// Stats returns the dashboard totals.
func (s *PostStore) Stats(ctx context.Context) (*models.PostStats, error) {
	var st models.PostStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE published),
		       COUNT(*) FILTER (WHERE NOT published),
		       COALESCE(SUM(views), 0),
		       COALESCE(SUM(likes), 0)
		FROM posts
	`).Scan(&st.Total, &st.Published, &st.Drafts, &st.TotalViews, &st.TotalLikes)
	if err != nil {
		return nil, fmt.Errorf("post stats: %w", err)
	}
	return &st, nil
}
