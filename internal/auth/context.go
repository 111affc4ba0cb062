// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"

	"codeberg.org/oliverandrich/langeng/internal/ctxkeys"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/services/session"
)

// WithSession stores a resolved session in the context.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, ctxkeys.Session{}, sess)
}

// GetSession returns the session from the context, or nil if not authenticated.
func GetSession(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(ctxkeys.Session{}).(*session.Session); ok {
		return sess
	}
	return nil
}

// GetAccount returns the authenticated account, or nil.
func GetAccount(ctx context.Context) *models.Account {
	if sess := GetSession(ctx); sess != nil {
		return sess.Account
	}
	return nil
}

// IsAuthenticated returns true if the context has an authenticated session.
func IsAuthenticated(ctx context.Context) bool {
	return GetSession(ctx) != nil
}
