// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"fmt"
	"strconv"
	"time"
)

// VerificationType identifies the action a verification entry authorizes.
// The numeric values appear in emailed links and must stay stable.
type VerificationType uint8

const (
	VerificationRegister            VerificationType = 1
	VerificationUsernameChanges     VerificationType = 10
	VerificationPasswordChanges     VerificationType = 20
	VerificationPasswordReset       VerificationType = 21
	VerificationAccountDeactivation VerificationType = 40
	VerificationAccountDeletion     VerificationType = 41
)

var verificationTypeNames = map[VerificationType]string{
	VerificationRegister:            "register",
	VerificationUsernameChanges:     "username_changes",
	VerificationPasswordChanges:     "password_changes",
	VerificationPasswordReset:       "password_reset",
	VerificationAccountDeactivation: "account_deactivation",
	VerificationAccountDeletion:     "account_deletion",
}

func (t VerificationType) String() string {
	if name, ok := verificationTypeNames[t]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is a known verification type.
func (t VerificationType) Valid() bool {
	_, ok := verificationTypeNames[t]
	return ok
}

// ParseVerificationType accepts either the numeric value or the name.
func ParseVerificationType(s string) (VerificationType, error) {
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		t := VerificationType(n)
		if t.Valid() {
			return t, nil
		}
		return 0, fmt.Errorf("unknown verification type %q", s)
	}
	for t, name := range verificationTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown verification type %q", s)
}

// Channel is how a verification secret reaches the user.
type Channel string

const (
	// ChannelCode delivers a 6-digit code entered in-app.
	ChannelCode Channel = "code"
	// ChannelLink delivers an opaque token embedded in an emailed link.
	ChannelLink Channel = "link"
)

// VerificationEntry is a pending or consumed ledger entry.
type VerificationEntry struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64            `db:"id" json:"id"`
	AccountID  int64            `db:"account_id" json:"account_id"`
	Type       VerificationType `db:"type" json:"type"`
	Channel    Channel          `db:"channel" json:"channel"`
	SecretHash string           `db:"secret_hash" json:"-"` // SHA256 hash
	Email      string           `db:"email" json:"email"`
	ExpiresAt  time.Time        `db:"expires_at" json:"expires_at"`
	ConsumedAt *time.Time       `db:"consumed_at" json:"consumed_at,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// IsExpired reports whether the entry can no longer be consumed at now.
func (v *VerificationEntry) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// IsConsumed reports whether the entry has already been used.
func (v *VerificationEntry) IsConsumed() bool {
	return v.ConsumedAt != nil
}
