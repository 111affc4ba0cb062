// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/langeng/internal/models"
)

const accountColumns = `id, username, email, password_hash, fullname, created_at, updated_at, deleted_at`

// CreateAccount inserts a new account and fills in its ID and timestamps.
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts (username, email, password_hash, fullname, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		account.Username, account.Email, account.PasswordHash, account.Fullname, now, now)
	if err != nil {
		return wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = id
	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

// GetAccountByID retrieves a live account by ID.
func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	err := r.q.GetContext(ctx, &account,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByIDIncludeDeleted retrieves an account by ID even if it
// was soft-deleted.
func (r *Repository) GetAccountByIDIncludeDeleted(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	err := r.q.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByEmail retrieves a live account by email address.
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.q.GetContext(ctx, &account,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ? AND deleted_at IS NULL`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByUsername retrieves a live account by username.
func (r *Repository) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	err := r.q.GetContext(ctx, &account,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ? AND deleted_at IS NULL`, username)
	if err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// EmailExists checks if a live account uses the given email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.q.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = ? AND deleted_at IS NULL)`, email)
	return exists, err
}

// UsernameExists checks if a live account uses the given username.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.q.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE username = ? AND deleted_at IS NULL)`, username)
	return exists, err
}

// SoftDeleteAccount marks an account deleted. Deleted accounts disappear
// from every read above and free their username and email.
func (r *Repository) SoftDeleteAccount(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	n, err := rowsAffected(r.q.ExecContext(ctx,
		`UPDATE accounts SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
