// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package comments manages threaded comments on posts.
package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"codeberg.org/oliverandrich/langeng/internal/metrics"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/services/groups"
	"codeberg.org/oliverandrich/langeng/internal/services/posts"
)

var (
	ErrNotFound     = apperr.NotFound("comment not found")
	ErrDisabled     = apperr.Unauthorized("comments are disabled for this post")
	ErrForbidden    = apperr.Unauthorized("only the comment or post author can do this")
	ErrNotMember    = apperr.Unauthorized("only group members can comment here")
	ErrEmptyContent = apperr.Invalid("comment content is required")
	ErrInvalidReply = apperr.Invalid("reply target is not a comment on this post")
)

// Service implements the comment use cases.
type Service struct {
	repo   *repository.Repository
	posts  *posts.Service
	groups *groups.Service
}

// NewService creates a comment service.
func NewService(repo *repository.Repository, postService *posts.Service, groupService *groups.Service) *Service {
	return &Service{repo: repo, posts: postService, groups: groupService}
}

// Create adds a comment to a post. replyID, when set, must name a live
// comment on the same post.
func (s *Service) Create(ctx context.Context, author *models.Account, postSlug, content string, replyID *int64) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	post, err := s.posts.Get(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if !post.CommentAvailability {
		return nil, ErrDisabled
	}
	if post.GroupID != nil {
		if err := s.requireMember(ctx, *post.GroupID, author); err != nil {
			return nil, err
		}
	}

	if replyID != nil {
		parent, err := s.repo.GetComment(ctx, *replyID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidReply
			}
			return nil, fmt.Errorf("failed to get comment: %w", err)
		}
		if parent.PostID != post.ID {
			return nil, ErrInvalidReply
		}
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		ReplyID:  replyID,
		Content:  content,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	metrics.Commented()
	slog.Info("comment_created", "id", comment.ID, "post", post.Slug, "author_id", author.ID)
	return comment, nil
}

func (s *Service) requireMember(ctx context.Context, groupID int64, account *models.Account) error {
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return posts.ErrNotFound
		}
		return fmt.Errorf("failed to get group: %w", err)
	}
	member, err := s.groups.IsMember(ctx, group, account)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotMember
	}
	return nil
}

// List returns the live comments of a post, oldest first.
func (s *Service) List(ctx context.Context, postSlug string) ([]models.Comment, error) {
	post, err := s.posts.Get(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Get returns a live comment.
func (s *Service) Get(ctx context.Context, id int64) (*models.Comment, error) {
	comment, err := s.repo.GetComment(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// Delete soft-deletes a comment. The comment author and the author of the
// post may do it. Replies stay in place.
func (s *Service) Delete(ctx context.Context, id int64, actor *models.Account) error {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	allowed := comment.AuthorID == actor.ID
	if !allowed {
		post, err := s.repo.GetPostByID(ctx, comment.PostID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to get post: %w", err)
		}
		allowed = post != nil && post.AuthorID == actor.ID
	}
	if !allowed {
		return ErrForbidden
	}

	if err := s.repo.SoftDeleteComment(ctx, comment.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	slog.Info("comment_deleted", "id", comment.ID, "actor_id", actor.ID)
	return nil
}
