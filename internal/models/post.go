// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultFeaturedImage is shown for posts stored without a featured image.
const DefaultFeaturedImage = "https://images.unsplash.com/photo-1486312338219-ce68d2c6f44d?w=800&h=600&fit=crop"

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Post is a blog article. Category and Author are populated by joined
// store queries and are nil otherwise.
type Post struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	FeaturedImage string     `json:"featured_image"`
	CategoryID    uuid.UUID  `json:"category_id"`
	Category      *Category  `json:"category,omitempty"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Author        *User      `json:"author,omitempty"`
	Published     bool       `json:"published"`
	Status        PostStatus `json:"status"`
	Featured      bool       `json:"featured"`
	Trending      bool       `json:"trending"`
	Views         int        `json:"views"`
	Likes         int        `json:"likes"`
	Comments      int        `json:"comments"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsPublished returns true if the post is visible to visitors.
func (p *Post) IsPublished() bool {
	return p.Published && p.Status == PostStatusPublished
}

// ImageOrDefault returns the featured image, or DefaultFeaturedImage when unset.
func (p *Post) ImageOrDefault() string {
	if p.FeaturedImage == "" {
		return DefaultFeaturedImage
	}
	return p.FeaturedImage
}

// PostStats summarises post counters for the admin dashboard.
type PostStats struct {
	Total      int `json:"total"`
	Published  int `json:"published"`
	Drafts     int `json:"drafts"`
	TotalViews int `json:"total_views"`
	TotalLikes int `json:"total_likes"`
}
