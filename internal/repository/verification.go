// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/langeng/internal/models"
)

const verificationColumns = `id, account_id, type, channel, secret_hash, email, expires_at, consumed_at, created_at`

// CreateVerificationEntry stores a new pending entry.
func (r *Repository) CreateVerificationEntry(ctx context.Context, entry *models.VerificationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO verification_entries (account_id, type, channel, secret_hash, email, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.AccountID, entry.Type, entry.Channel, entry.SecretHash, entry.Email,
		entry.ExpiresAt.UTC(), entry.CreatedAt.UTC())
	if err != nil {
		return wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// FindPendingVerification returns the newest unconsumed entry matching the
// account, secret hash and type. Expired entries are returned too so the
// caller can tell expiry apart from a wrong secret.
func (r *Repository) FindPendingVerification(ctx context.Context, accountID int64, secretHash string, typ models.VerificationType) (*models.VerificationEntry, error) {
	var entry models.VerificationEntry
	err := r.q.GetContext(ctx, &entry,
		`SELECT `+verificationColumns+` FROM verification_entries
		 WHERE account_id = ? AND secret_hash = ? AND type = ? AND consumed_at IS NULL
		 ORDER BY id DESC LIMIT 1`,
		accountID, secretHash, typ)
	if err != nil {
		return nil, wrapError(err)
	}
	return &entry, nil
}

// GetVerificationEntry retrieves an entry by ID.
func (r *Repository) GetVerificationEntry(ctx context.Context, id int64) (*models.VerificationEntry, error) {
	var entry models.VerificationEntry
	err := r.q.GetContext(ctx, &entry,
		`SELECT `+verificationColumns+` FROM verification_entries WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &entry, nil
}

// ListVerificationEntries returns all entries of an account, newest first.
func (r *Repository) ListVerificationEntries(ctx context.Context, accountID int64) ([]models.VerificationEntry, error) {
	var entries []models.VerificationEntry
	err := r.q.SelectContext(ctx, &entries,
		`SELECT `+verificationColumns+` FROM verification_entries WHERE account_id = ? ORDER BY id DESC`,
		accountID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ConsumeVerificationEntry marks an entry consumed if it is still pending
// and unexpired at now. A zero row count means another request won.
func (r *Repository) ConsumeVerificationEntry(ctx context.Context, id int64, now time.Time) (int64, error) {
	now = now.UTC()
	return rowsAffected(r.q.ExecContext(ctx,
		`UPDATE verification_entries SET consumed_at = ?
		 WHERE id = ? AND consumed_at IS NULL AND expires_at >= ?`,
		now, id, now))
}

// DeleteExpiredVerificationEntries removes unconsumed entries that expired
// before the given time.
func (r *Repository) DeleteExpiredVerificationEntries(ctx context.Context, before time.Time) (int64, error) {
	return rowsAffected(r.q.ExecContext(ctx,
		`DELETE FROM verification_entries WHERE consumed_at IS NULL AND expires_at < ?`,
		before.UTC()))
}
