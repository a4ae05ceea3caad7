// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogcms/internal/models"
)

// CommentStore handles post comments.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ListByPost returns a post's comments, oldest first, with author names.
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cm.id, cm.content, cm.post_id, cm.author_id, cm.created_at,
		       u.id, u.name, u.avatar
		FROM comments cm
		JOIN users u ON u.id = cm.author_id
		WHERE cm.post_id = $1
		ORDER BY cm.created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c := models.Comment{Author: &models.User{}}
		if err := rows.Scan(
			&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt,
			&c.Author.ID, &c.Author.Name, &c.Author.Avatar,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Create inserts a comment and bumps the post's comment counter in the
// same transaction.
func (s *CommentStore) Create(ctx context.Context, postID, authorID uuid.UUID, content string) (*models.Comment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin comment tx: %w", err)
	}
	defer tx.Rollback()

	c := &models.Comment{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO comments (content, post_id, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, content, post_id, author_id, created_at
	`, content, postID, authorID).Scan(&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", classify(err))
	}

	if _, err := tx.ExecContext(ctx, `UPDATE posts SET comments = comments + 1 WHERE id = $1`, postID); err != nil {
		return nil, fmt.Errorf("bump comment count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit comment: %w", err)
	}
	return c, nil
}

// Count returns the total number of comments.
func (s *CommentStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}
