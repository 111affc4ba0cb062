// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/langeng/internal/models"
)

// CreateAccountStatus inserts the status row of a new account.
func (r *Repository) CreateAccountStatus(ctx context.Context, accountID int64, status models.Status) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO account_statuses (account_id, status, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		accountID, status, now, now)
	return wrapError(err)
}

// GetAccountStatus retrieves the status row of an account.
func (r *Repository) GetAccountStatus(ctx context.Context, accountID int64) (*models.AccountStatus, error) {
	var status models.AccountStatus
	err := r.q.GetContext(ctx, &status,
		`SELECT id, account_id, status, created_at, updated_at FROM account_statuses WHERE account_id = ?`,
		accountID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &status, nil
}

// TransitionAccountStatus moves an account from one status to another only
// if it currently holds from. It returns the number of rows changed so
// callers can detect a concurrent transition.
func (r *Repository) TransitionAccountStatus(ctx context.Context, accountID int64, from, to models.Status) (int64, error) {
	return rowsAffected(r.q.ExecContext(ctx,
		`UPDATE account_statuses SET status = ?, updated_at = ? WHERE account_id = ? AND status = ?`,
		to, time.Now().UTC(), accountID, from))
}
