// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/langeng/internal/models"
)

// ReplaceSessionCredential removes any credential of the account and stores
// the given one. Callers run it inside WithTx so the swap is atomic.
func (r *Repository) ReplaceSessionCredential(ctx context.Context, cred *models.SessionCredential) error {
	if err := r.DeleteSessionCredentials(ctx, cred.AccountID); err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO session_credentials (account_id, token_hash, issued_at, expires_at) VALUES (?, ?, ?, ?)`,
		cred.AccountID, cred.TokenHash, cred.IssuedAt.UTC(), cred.ExpiresAt.UTC())
	if err != nil {
		return wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cred.ID = id
	return nil
}

// GetSessionCredentialByHash retrieves a credential by its token hash.
func (r *Repository) GetSessionCredentialByHash(ctx context.Context, tokenHash string) (*models.SessionCredential, error) {
	var cred models.SessionCredential
	err := r.q.GetContext(ctx, &cred,
		`SELECT id, account_id, token_hash, issued_at, expires_at FROM session_credentials WHERE token_hash = ?`,
		tokenHash)
	if err != nil {
		return nil, wrapError(err)
	}
	return &cred, nil
}

// CountSessionCredentials returns how many credentials an account holds.
func (r *Repository) CountSessionCredentials(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	err := r.q.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM session_credentials WHERE account_id = ?`, accountID)
	return count, err
}

// DeleteSessionCredentials deletes every credential of an account.
func (r *Repository) DeleteSessionCredentials(ctx context.Context, accountID int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM session_credentials WHERE account_id = ?`, accountID)
	return err
}

// DeleteSessionCredentialByHash deletes a single credential.
func (r *Repository) DeleteSessionCredentialByHash(ctx context.Context, tokenHash string) (int64, error) {
	return rowsAffected(r.q.ExecContext(ctx,
		`DELETE FROM session_credentials WHERE token_hash = ?`, tokenHash))
}
