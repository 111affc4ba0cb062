// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/langeng/internal/models"
)

// ReactionTarget selects what a reaction is attached to.
type ReactionTarget int

const (
	ReactionOnPost ReactionTarget = iota
	ReactionOnComment
)

func (t ReactionTarget) String() string {
	if t == ReactionOnComment {
		return "comment"
	}
	return "post"
}

func (t ReactionTarget) table() (table, column string) {
	if t == ReactionOnComment {
		return "comment_reactions", "comment_id"
	}
	return "post_reactions", "post_id"
}

// UpsertReaction stores the reaction of an account on a target,
// replacing its previous type.
func (r *Repository) UpsertReaction(ctx context.Context, target ReactionTarget, targetID, accountID int64, typ models.ReactionType) error {
	table, column := target.table()
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO `+table+` (`+column+`, account_id, type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(`+column+`, account_id) DO UPDATE SET type = excluded.type, updated_at = excluded.updated_at`,
		targetID, accountID, typ, now, now)
	return wrapError(err)
}

// DeleteReaction removes the reaction of an account on a target.
func (r *Repository) DeleteReaction(ctx context.Context, target ReactionTarget, targetID, accountID int64) error {
	table, column := target.table()
	n, err := rowsAffected(r.q.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE `+column+` = ? AND account_id = ?`, targetID, accountID))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetReaction retrieves the reaction of an account on a target.
func (r *Repository) GetReaction(ctx context.Context, target ReactionTarget, targetID, accountID int64) (*models.Reaction, error) {
	table, column := target.table()
	var reaction models.Reaction
	err := r.q.GetContext(ctx, &reaction,
		`SELECT id, `+column+` AS target_id, account_id, type, created_at, updated_at
		 FROM `+table+` WHERE `+column+` = ? AND account_id = ?`, targetID, accountID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &reaction, nil
}

// CountReactions returns the number of reactions per type on a target.
func (r *Repository) CountReactions(ctx context.Context, target ReactionTarget, targetID int64) (map[models.ReactionType]int64, error) {
	table, column := target.table()
	var rows []struct {
		Type  models.ReactionType `db:"type"`
		Count int64               `db:"n"`
	}
	err := r.q.SelectContext(ctx, &rows,
		`SELECT type, COUNT(*) AS n FROM `+table+` WHERE `+column+` = ? GROUP BY type`, targetID)
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ReactionType]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}
