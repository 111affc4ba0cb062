// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"github.com/vinovest/sqlx"

	"codeberg.org/oliverandrich/langeng/internal/models"
)

const postColumns = `id, slug, content, comment_availability, author_id, group_id, created_at, updated_at, deleted_at`

// CreatePost inserts a post and links its hashtags. A slug collision
// returns ErrDuplicate.
func (r *Repository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.WithTx(ctx, func(tx *Repository) error {
		now := time.Now().UTC()
		res, err := tx.q.ExecContext(ctx,
			`INSERT INTO posts (slug, content, comment_availability, author_id, group_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			post.Slug, post.Content, post.CommentAvailability, post.AuthorID, post.GroupID, now, now)
		if err != nil {
			return wrapError(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		post.ID = id
		post.CreatedAt = now
		post.UpdatedAt = now
		return tx.linkHashtags(ctx, post.ID, post.Hashtags)
	})
}

func (r *Repository) linkHashtags(ctx context.Context, postID int64, names []string) error {
	for _, name := range names {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO hashtags (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
			return err
		}
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO post_hashtags (post_id, hashtag_id)
			 SELECT ?, id FROM hashtags WHERE name = ?
			 ON CONFLICT DO NOTHING`, postID, name); err != nil {
			return err
		}
	}
	return nil
}

// PostSlugExists reports whether any post, live or deleted, uses slug.
func (r *Repository) PostSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = ?)`, slug)
	return exists, err
}

// GetPostBySlug retrieves a live post with its hashtags.
func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.q.GetContext(ctx, &post,
		`SELECT `+postColumns+` FROM posts WHERE slug = ? AND deleted_at IS NULL`, slug)
	if err != nil {
		return nil, wrapError(err)
	}
	tags, err := r.postHashtags(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Hashtags = tags
	return &post, nil
}

// GetPostByID retrieves a live post without its hashtags.
func (r *Repository) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	err := r.q.GetContext(ctx, &post,
		`SELECT `+postColumns+` FROM posts WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &post, nil
}

func (r *Repository) postHashtags(ctx context.Context, postID int64) ([]string, error) {
	tags := []string{}
	err := r.q.SelectContext(ctx, &tags,
		`SELECT h.name FROM hashtags h
		 JOIN post_hashtags ph ON ph.hashtag_id = h.id
		 WHERE ph.post_id = ? ORDER BY h.name`, postID)
	return tags, err
}

// ListGroupPosts returns the live posts of a group, newest first.
func (r *Repository) ListGroupPosts(ctx context.Context, groupID int64) ([]models.Post, error) {
	var posts []models.Post
	err := r.q.SelectContext(ctx, &posts,
		`SELECT `+postColumns+` FROM posts WHERE group_id = ? AND deleted_at IS NULL ORDER BY id DESC`,
		groupID)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		tags, err := r.postHashtags(ctx, posts[i].ID)
		if err != nil {
			return nil, err
		}
		posts[i].Hashtags = tags
	}
	return posts, nil
}

// ListPosts returns one page of live posts matching filter, most recently
// updated first, plus the total number of matches. Posts in groups the
// viewer may not see are excluded.
func (r *Repository) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, int64, error) {
	where := []string{
		`p.deleted_at IS NULL`,
		`a.deleted_at IS NULL`,
		`(p.group_id IS NULL OR (g.deleted_at IS NULL AND (
			g.privacy = 'public'
			OR (? > 0 AND g.privacy = 'limited')
			OR g.creator_id = ?
			OR EXISTS (SELECT 1 FROM group_members m
				WHERE m.group_id = g.id AND m.account_id = ? AND m.status = 'approved'))))`,
	}
	args := []any{filter.ViewerID, filter.ViewerID, filter.ViewerID}

	if len(filter.Tags) > 0 {
		where = append(where, `EXISTS (SELECT 1 FROM post_hashtags ph JOIN hashtags h ON h.id = ph.hashtag_id
			WHERE ph.post_id = p.id AND h.name IN (?))`)
		args = append(args, filter.Tags)
	}
	if filter.Author != "" {
		where = append(where, `(lower(a.username) LIKE ? ESCAPE '\' OR lower(a.fullname) LIKE ? ESCAPE '\')`)
		pattern := likePattern(filter.Author)
		args = append(args, pattern, pattern)
	}
	if filter.Group != "" {
		where = append(where, `(lower(g.slug) LIKE ? ESCAPE '\' OR lower(g.name) LIKE ? ESCAPE '\')`)
		pattern := likePattern(filter.Group)
		args = append(args, pattern, pattern)
	}
	if filter.Keyword != "" {
		where = append(where, `(lower(p.content) LIKE ? ESCAPE '\'
			OR lower(a.username) LIKE ? ESCAPE '\' OR lower(a.fullname) LIKE ? ESCAPE '\'
			OR lower(coalesce(g.slug, '')) LIKE ? ESCAPE '\' OR lower(coalesce(g.name, '')) LIKE ? ESCAPE '\')`)
		pattern := likePattern(filter.Keyword)
		args = append(args, pattern, pattern, pattern, pattern, pattern)
	}

	from := ` FROM posts p
		JOIN accounts a ON a.id = p.author_id
		LEFT JOIN social_groups g ON g.id = p.group_id
		WHERE ` + strings.Join(where, " AND ")

	countQuery, countArgs, err := sqlx.In(`SELECT COUNT(*)`+from, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.q.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}

	pageQuery, pageArgs, err := sqlx.In(
		`SELECT p.id, p.slug, p.content, p.comment_availability, p.author_id, p.group_id,
			p.created_at, p.updated_at, p.deleted_at`+from+`
		 ORDER BY p.updated_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		append(args, filter.Limit, (filter.Page-1)*filter.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	posts := []models.Post{}
	if err := r.q.SelectContext(ctx, &posts, pageQuery, pageArgs...); err != nil {
		return nil, 0, err
	}
	for i := range posts {
		tags, err := r.postHashtags(ctx, posts[i].ID)
		if err != nil {
			return nil, 0, err
		}
		posts[i].Hashtags = tags
	}
	return posts, total, nil
}

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(term))
	return "%" + escaped + "%"
}

// SoftDeletePost marks a post deleted.
func (r *Repository) SoftDeletePost(ctx context.Context, postID int64) error {
	now := time.Now().UTC()
	n, err := rowsAffected(r.q.ExecContext(ctx,
		`UPDATE posts SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, postID))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
