// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package reactions stores one typed reaction per account on posts and
// comments.
package reactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"codeberg.org/oliverandrich/langeng/internal/metrics"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/services/comments"
	"codeberg.org/oliverandrich/langeng/internal/services/posts"
)

var (
	ErrNotFound    = apperr.NotFound("reaction not found")
	ErrInvalidType = apperr.Invalid("invalid reaction type")
)

// Service implements the reaction use cases.
type Service struct {
	repo     *repository.Repository
	posts    *posts.Service
	comments *comments.Service
}

// NewService creates a reaction service.
func NewService(repo *repository.Repository, postService *posts.Service, commentService *comments.Service) *Service {
	return &Service{repo: repo, posts: postService, comments: commentService}
}

// ReactPost sets the reaction of actor on a post, replacing an earlier one.
func (s *Service) ReactPost(ctx context.Context, actor *models.Account, postSlug string, typ models.ReactionType) error {
	if !typ.Valid() {
		return ErrInvalidType
	}
	post, err := s.posts.Get(ctx, postSlug)
	if err != nil {
		return err
	}
	return s.react(ctx, repository.ReactionOnPost, post.ID, actor, typ)
}

// UnreactPost removes the reaction of actor from a post.
func (s *Service) UnreactPost(ctx context.Context, actor *models.Account, postSlug string) error {
	post, err := s.posts.Get(ctx, postSlug)
	if err != nil {
		return err
	}
	return s.unreact(ctx, repository.ReactionOnPost, post.ID, actor)
}

// ReactComment sets the reaction of actor on a comment.
func (s *Service) ReactComment(ctx context.Context, actor *models.Account, commentID int64, typ models.ReactionType) error {
	if !typ.Valid() {
		return ErrInvalidType
	}
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	return s.react(ctx, repository.ReactionOnComment, comment.ID, actor, typ)
}

// UnreactComment removes the reaction of actor from a comment.
func (s *Service) UnreactComment(ctx context.Context, actor *models.Account, commentID int64) error {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	return s.unreact(ctx, repository.ReactionOnComment, comment.ID, actor)
}

// PostSummary counts the reactions on a post per type.
func (s *Service) PostSummary(ctx context.Context, postSlug string) (map[models.ReactionType]int64, error) {
	post, err := s.posts.Get(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountReactions(ctx, repository.ReactionOnPost, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reactions: %w", err)
	}
	return counts, nil
}

// CommentSummary counts the reactions on a comment per type.
func (s *Service) CommentSummary(ctx context.Context, commentID int64) (map[models.ReactionType]int64, error) {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountReactions(ctx, repository.ReactionOnComment, comment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reactions: %w", err)
	}
	return counts, nil
}

func (s *Service) react(ctx context.Context, target repository.ReactionTarget, targetID int64, actor *models.Account, typ models.ReactionType) error {
	if err := s.repo.UpsertReaction(ctx, target, targetID, actor.ID, typ); err != nil {
		return fmt.Errorf("failed to save reaction: %w", err)
	}
	metrics.Reaction(target.String(), string(typ))
	slog.Info("reaction_saved", "target", target.String(), "target_id", targetID, "type", typ, "account_id", actor.ID)
	return nil
}

func (s *Service) unreact(ctx context.Context, target repository.ReactionTarget, targetID int64, actor *models.Account) error {
	if err := s.repo.DeleteReaction(ctx, target, targetID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	slog.Info("reaction_removed", "target", target.String(), "target_id", targetID, "account_id", actor.ID)
	return nil
}
