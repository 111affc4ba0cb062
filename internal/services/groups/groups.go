// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package groups manages communities addressed by generated slugs.
package groups

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
	"codeberg.org/oliverandrich/langeng/internal/services/slug"
)

var (
	ErrNotFound      = apperr.NotFound("group not found")
	ErrForbidden     = apperr.Unauthorized("only the group creator can do this")
	ErrPrivate       = apperr.Unauthorized("private groups cannot be joined")
	ErrAlreadyMember = apperr.Conflict("already a member of this group")
	ErrInvalidName   = apperr.Invalid("group name is required")
	ErrInvalidScope  = apperr.Invalid("invalid group privacy")
	ErrInvalidStatus = apperr.Invalid("invalid member status")
	ErrNoRequest     = apperr.NotFound("member request not available")
)

// Service implements the group use cases.
type Service struct {
	repo  *repository.Repository
	slugs *slug.Generator
}

// NewService creates a group service. maxAttempts bounds slug generation.
func NewService(repo *repository.Repository, maxAttempts int) *Service {
	g := slug.NewGenerator(maxAttempts)
	g.OnAttempt = func() { metrics.SlugAttempt("group") }
	return &Service{repo: repo, slugs: g}
}

// CreateParams holds the parameters for a new group.
type CreateParams struct {
	Name        string
	Privacy     models.Privacy
	Description string
}

// Create stores a group under a fresh slug and makes the creator its
// first approved member.
func (s *Service) Create(ctx context.Context, creator *models.Account, params CreateParams) (*models.Group, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	privacy := params.Privacy
	if privacy == "" {
		privacy = models.PrivacyPublic
	}
	if !privacy.Valid() {
		return nil, ErrInvalidScope
	}

	group := &models.Group{
		Name:        name,
		Privacy:     privacy,
		Description: strings.TrimSpace(params.Description),
		CreatorID:   creator.ID,
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		err := s.slugs.Create(ctx, name, tx.GroupSlugExists, func(ctx context.Context, candidate string) error {
			group.Slug = candidate
			if err := tx.CreateGroup(ctx, group); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return slug.ErrTaken
				}
				return fmt.Errorf("failed to create group: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		return tx.UpsertGroupMember(ctx, &models.GroupMember{
			GroupID:   group.ID,
			AccountID: creator.ID,
			Status:    models.MemberApproved,
		})
	})
	if err != nil {
		if errors.Is(err, slug.ErrExhausted) {
			metrics.SlugExhausted("group")
			slog.Error("slug_exhausted", "kind", "group", "creator_id", creator.ID)
		}
		return nil, err
	}

	slog.Info("group_created", "slug", group.Slug, "creator_id", creator.ID)
	return group, nil
}

// Get returns a group if viewer may see it. A nil viewer sees public
// groups only; members and the creator also see private ones.
func (s *Service) Get(ctx context.Context, groupSlug string, viewer *models.Account) (*models.Group, error) {
	group, err := s.lookup(ctx, groupSlug)
	if err != nil {
		return nil, err
	}

	visible, err := s.visible(ctx, group, viewer)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrNotFound
	}
	return group, nil
}

func (s *Service) lookup(ctx context.Context, groupSlug string) (*models.Group, error) {
	group, err := s.repo.GetGroupBySlug(ctx, groupSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

func (s *Service) visible(ctx context.Context, group *models.Group, viewer *models.Account) (bool, error) {
	if group.Privacy == models.PrivacyPublic {
		return true, nil
	}
	if viewer == nil {
		return false, nil
	}
	if group.Privacy == models.PrivacyLimited || group.CreatorID == viewer.ID {
		return true, nil
	}
	return s.isMember(ctx, group.ID, viewer.ID)
}

func (s *Service) isMember(ctx context.Context, groupID, accountID int64) (bool, error) {
	member, err := s.repo.GetGroupMember(ctx, groupID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get membership: %w", err)
	}
	return member.Status == models.MemberApproved, nil
}

// IsMember reports whether account is an approved member of the group.
func (s *Service) IsMember(ctx context.Context, group *models.Group, account *models.Account) (bool, error) {
	return s.isMember(ctx, group.ID, account.ID)
}

// Members lists the approved members of a visible group.
func (s *Service) Members(ctx context.Context, groupSlug string, viewer *models.Account) ([]models.GroupMember, error) {
	group, err := s.Get(ctx, groupSlug, viewer)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListGroupMembers(ctx, group.ID, models.MemberApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Delete soft-deletes a group and its posts. Only the creator may do it.
func (s *Service) Delete(ctx context.Context, groupSlug string, actor *models.Account) error {
	group, err := s.lookup(ctx, groupSlug)
	if err != nil {
		return err
	}
	if group.CreatorID != actor.ID {
		return ErrForbidden
	}

	if err := s.repo.SoftDeleteGroup(ctx, group.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete group: %w", err)
	}

	slog.Info("group_deleted", "slug", group.Slug, "actor_id", actor.ID)
	return nil
}

// Join records a membership request of actor for a public or limited
// group. The creator approves or rejects it with UpdateMemberStatus.
func (s *Service) Join(ctx context.Context, groupSlug string, actor *models.Account) (*models.GroupMember, error) {
	group, err := s.lookup(ctx, groupSlug)
	if err != nil {
		return nil, err
	}
	if group.Privacy == models.PrivacyPrivate {
		return nil, ErrPrivate
	}

	member := &models.GroupMember{GroupID: group.ID, AccountID: actor.ID, Status: models.MemberRequest}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		_, err := tx.GetGroupMember(ctx, group.ID, actor.ID)
		if err == nil {
			return ErrAlreadyMember
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to get membership: %w", err)
		}
		if err := tx.UpsertGroupMember(ctx, member); err != nil {
			return fmt.Errorf("failed to join group: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("group_join_requested", "slug", group.Slug, "account_id", actor.ID)
	return member, nil
}

// UpdateMemberStatus settles the pending request of memberID. The creator
// may set any status; other accounts may only withdraw their own request
// (left) or leave it pending.
func (s *Service) UpdateMemberStatus(ctx context.Context, groupSlug string, actor *models.Account, memberID int64, status models.MemberStatus) (*models.GroupMember, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	group, err := s.lookup(ctx, groupSlug)
	if err != nil {
		return nil, err
	}
	if group.CreatorID != actor.ID {
		selfService := status == models.MemberLeft || status == models.MemberRequest
		if !selfService || memberID != actor.ID {
			return nil, ErrForbidden
		}
	}

	var member *models.GroupMember
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.SettleGroupMemberRequest(ctx, group.ID, memberID, status); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoRequest
			}
			return fmt.Errorf("failed to update membership: %w", err)
		}
		got, err := tx.GetGroupMember(ctx, group.ID, memberID)
		if err != nil {
			return fmt.Errorf("failed to get membership: %w", err)
		}
		member = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("group_member_updated", "slug", group.Slug, "member_id", memberID, "status", string(status), "actor_id", actor.ID)
	return member, nil
}

// Requests lists the pending membership requests. Only the creator may see them.
func (s *Service) Requests(ctx context.Context, groupSlug string, actor *models.Account) ([]models.GroupMember, error) {
	group, err := s.lookup(ctx, groupSlug)
	if err != nil {
		return nil, err
	}
	if group.CreatorID != actor.ID {
		return nil, ErrForbidden
	}
	members, err := s.repo.ListGroupMembers(ctx, group.ID, models.MemberRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return members, nil
}
