// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/langeng/internal/models"
)

const commentColumns = `id, post_id, author_id, reply_id, content, created_at, updated_at, deleted_at`

// CreateComment inserts a comment.
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO post_comments (post_id, author_id, reply_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.PostID, comment.AuthorID, comment.ReplyID, comment.Content, now, now)
	if err != nil {
		return wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	comment.ID = id
	comment.CreatedAt = now
	comment.UpdatedAt = now
	return nil
}

// GetComment retrieves a live comment.
func (r *Repository) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.q.GetContext(ctx, &comment,
		`SELECT `+commentColumns+` FROM post_comments WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &comment, nil
}

// ListComments returns the live comments of a post, oldest first.
func (r *Repository) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.q.SelectContext(ctx, &comments,
		`SELECT `+commentColumns+` FROM post_comments
		 WHERE post_id = ? AND deleted_at IS NULL ORDER BY id`, postID)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// SoftDeleteComment marks a comment deleted.
func (r *Repository) SoftDeleteComment(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	n, err := rowsAffected(r.q.ExecContext(ctx,
		`UPDATE post_comments SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
