// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package posts manages user posts and their hashtags.
package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"codeberg.org/oliverandrich/langeng/internal/metrics"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/services/groups"
	"codeberg.org/oliverandrich/langeng/internal/services/slug"
)

// phraseWords is how many leading words of the content seed the slug.
const phraseWords = 4

const (
	DefaultPageSize = 16
	MaxPageSize     = 100
)

var (
	ErrNotFound     = apperr.NotFound("post not found")
	ErrForbidden    = apperr.Unauthorized("only the author or the group creator can do this")
	ErrNotMember    = apperr.Unauthorized("only group members can post here")
	ErrEmptyContent = apperr.Invalid("post content is required")
)

var hashtagExpression = regexp.MustCompile(`#(\w+)`)

// Service implements the post use cases.
type Service struct {
	repo   *repository.Repository
	groups *groups.Service
	slugs  *slug.Generator
}

// NewService creates a post service. maxAttempts bounds slug generation.
func NewService(repo *repository.Repository, groupService *groups.Service, maxAttempts int) *Service {
	g := slug.NewGenerator(maxAttempts)
	g.OnAttempt = func() { metrics.SlugAttempt("post") }
	return &Service{repo: repo, groups: groupService, slugs: g}
}

// CreateParams holds the parameters for a new post.
type CreateParams struct {
	Content             string
	CommentAvailability bool
	// GroupSlug, when set, posts into that group.
	GroupSlug string
}

// Hashtags extracts the distinct lowercased hashtags of content in order
// of appearance.
func Hashtags(content string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, m := range hashtagExpression.FindAllStringSubmatch(content, -1) {
		tag := strings.ToLower(m[1])
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

func slugPhrase(content string) string {
	words := strings.Fields(hashtagExpression.ReplaceAllString(content, "$1"))
	if len(words) > phraseWords {
		words = words[:phraseWords]
	}
	return strings.Join(words, " ")
}

// Create stores a post under a fresh slug.
func (s *Service) Create(ctx context.Context, author *models.Account, params CreateParams) (*models.Post, error) {
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	post := &models.Post{
		Content:             content,
		CommentAvailability: params.CommentAvailability,
		AuthorID:            author.ID,
		Hashtags:            Hashtags(content),
	}

	if params.GroupSlug != "" {
		group, err := s.groups.Get(ctx, params.GroupSlug, author)
		if err != nil {
			return nil, err
		}
		member, err := s.groups.IsMember(ctx, group, author)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrNotMember
		}
		post.GroupID = &group.ID
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return s.slugs.Create(ctx, slugPhrase(content), tx.PostSlugExists, func(ctx context.Context, candidate string) error {
			post.Slug = candidate
			if err := tx.CreatePost(ctx, post); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return slug.ErrTaken
				}
				return fmt.Errorf("failed to create post: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, slug.ErrExhausted) {
			metrics.SlugExhausted("post")
			slog.Error("slug_exhausted", "kind", "post", "author_id", author.ID)
		}
		return nil, err
	}

	slog.Info("post_created", "slug", post.Slug, "author_id", author.ID)
	return post, nil
}

// Get returns a live post.
func (s *Service) Get(ctx context.Context, postSlug string) (*models.Post, error) {
	post, err := s.repo.GetPostBySlug(ctx, postSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// ListParams filters a post listing. Tags match any of the given hashtags;
// the other filters are case-insensitive substrings.
type ListParams struct {
	Tags    []string
	Author  string
	Group   string
	Keyword string
	Page    int
	Limit   int
}

// List returns one page of posts visible to viewer, most recently updated
// first.
func (s *Service) List(ctx context.Context, params ListParams, viewer *models.Account) (*models.PostPage, error) {
	filter := models.PostFilter{
		Author:  strings.TrimSpace(params.Author),
		Group:   strings.TrimSpace(params.Group),
		Keyword: strings.TrimSpace(params.Keyword),
		Page:    max(params.Page, 1),
		Limit:   params.Limit,
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	filter.Limit = min(filter.Limit, MaxPageSize)
	if viewer != nil {
		filter.ViewerID = viewer.ID
	}
	for _, tag := range params.Tags {
		tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag != "" {
			filter.Tags = append(filter.Tags, tag)
		}
	}

	posts, total, err := s.repo.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return &models.PostPage{Page: filter.Page, Limit: filter.Limit, Total: total, Posts: posts}, nil
}

// GroupPosts lists the posts of a group visible to viewer.
func (s *Service) GroupPosts(ctx context.Context, groupSlug string, viewer *models.Account) ([]models.Post, error) {
	group, err := s.groups.Get(ctx, groupSlug, viewer)
	if err != nil {
		return nil, err
	}
	posts, err := s.repo.ListGroupPosts(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Delete soft-deletes a post. The author and the creator of the post's
// group may do it.
func (s *Service) Delete(ctx context.Context, postSlug string, actor *models.Account) error {
	post, err := s.Get(ctx, postSlug)
	if err != nil {
		return err
	}

	allowed := post.AuthorID == actor.ID
	if !allowed && post.GroupID != nil {
		creator, err := s.groupCreator(ctx, *post.GroupID)
		if err != nil {
			return err
		}
		allowed = creator == actor.ID
	}
	if !allowed {
		return ErrForbidden
	}

	if err := s.repo.SoftDeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	slog.Info("post_deleted", "slug", post.Slug, "actor_id", actor.ID)
	return nil
}

func (s *Service) groupCreator(ctx context.Context, groupID int64) (int64, error) {
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get group: %w", err)
	}
	return group.CreatorID, nil
}
