// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// SessionCredential binds the one live bearer token of an account.
// Only the SHA256 hash of the token is stored.
type SessionCredential struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	AccountID int64     `db:"account_id" json:"account_id"`
	TokenHash string    `db:"token_hash" json:"-"`
	IssuedAt  time.Time `db:"issued_at" json:"issued_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// IsExpired reports whether the credential is past its expiry at now.
func (s *SessionCredential) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
