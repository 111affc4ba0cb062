// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/langeng/internal/models"
)

const groupColumns = `id, slug, name, privacy, description, creator_id, created_at, updated_at, deleted_at`

// CreateGroup inserts a group. A slug collision returns ErrDuplicate.
func (r *Repository) CreateGroup(ctx context.Context, group *models.Group) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO social_groups (slug, name, privacy, description, creator_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		group.Slug, group.Name, group.Privacy, group.Description, group.CreatorID, now, now)
	if err != nil {
		return wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	group.ID = id
	group.CreatedAt = now
	group.UpdatedAt = now
	return nil
}

// GroupSlugExists reports whether any group, live or deleted, uses slug.
func (r *Repository) GroupSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM social_groups WHERE slug = ?)`, slug)
	return exists, err
}

// GetGroupBySlug retrieves a live group.
func (r *Repository) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := r.q.GetContext(ctx, &group,
		`SELECT `+groupColumns+` FROM social_groups WHERE slug = ? AND deleted_at IS NULL`, slug)
	if err != nil {
		return nil, wrapError(err)
	}
	return &group, nil
}

// GetGroupByID retrieves a live group by its primary key.
func (r *Repository) GetGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	var group models.Group
	err := r.q.GetContext(ctx, &group,
		`SELECT `+groupColumns+` FROM social_groups WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &group, nil
}

// UpdateGroup saves the mutable fields of a group.
func (r *Repository) UpdateGroup(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().UTC()
	n, err := rowsAffected(r.q.ExecContext(ctx,
		`UPDATE social_groups SET name = ?, privacy = ?, description = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		group.Name, group.Privacy, group.Description, group.UpdatedAt, group.ID))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteGroup marks a group and all of its posts deleted.
func (r *Repository) SoftDeleteGroup(ctx context.Context, groupID int64) error {
	return r.WithTx(ctx, func(tx *Repository) error {
		now := time.Now().UTC()
		n, err := rowsAffected(tx.q.ExecContext(ctx,
			`UPDATE social_groups SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
			now, now, groupID))
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		_, err = tx.q.ExecContext(ctx,
			`UPDATE posts SET deleted_at = ?, updated_at = ? WHERE group_id = ? AND deleted_at IS NULL`,
			now, now, groupID)
		return err
	})
}

// UpsertGroupMember creates a membership or overwrites its status.
func (r *Repository) UpsertGroupMember(ctx context.Context, member *models.GroupMember) error {
	now := time.Now().UTC()
	if member.Status == models.MemberApproved && member.JoinedAt == nil {
		member.JoinedAt = &now
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO group_members (group_id, account_id, status, joined_at, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(group_id, account_id) DO UPDATE SET status = excluded.status, joined_at = excluded.joined_at`,
		member.GroupID, member.AccountID, member.Status, member.JoinedAt, now)
	return wrapError(err)
}

// SettleGroupMemberRequest moves a pending request to status. It returns
// ErrNotFound when the account has no pending request in the group.
func (r *Repository) SettleGroupMemberRequest(ctx context.Context, groupID, accountID int64, status models.MemberStatus) error {
	var joinedAt *time.Time
	if status == models.MemberApproved {
		now := time.Now().UTC()
		joinedAt = &now
	}
	n, err := rowsAffected(r.q.ExecContext(ctx,
		`UPDATE group_members SET status = ?, joined_at = COALESCE(?, joined_at)
		 WHERE group_id = ? AND account_id = ? AND status = ?`,
		status, joinedAt, groupID, accountID, models.MemberRequest))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetGroupMember retrieves the membership of an account in a group.
func (r *Repository) GetGroupMember(ctx context.Context, groupID, accountID int64) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.q.GetContext(ctx, &member,
		`SELECT id, group_id, account_id, status, joined_at, created_at
		 FROM group_members WHERE group_id = ? AND account_id = ?`, groupID, accountID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &member, nil
}

// ListGroupMembers returns the members of a group with the given status.
func (r *Repository) ListGroupMembers(ctx context.Context, groupID int64, status models.MemberStatus) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := r.q.SelectContext(ctx, &members,
		`SELECT id, group_id, account_id, status, joined_at, created_at
		 FROM group_members WHERE group_id = ? AND status = ? ORDER BY id`, groupID, status)
	if err != nil {
		return nil, err
	}
	return members, nil
}
