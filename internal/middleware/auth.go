// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware contains the Echo middlewares shared by all routes.
package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"codeberg.org/oliverandrich/langeng/internal/auth"
	"codeberg.org/oliverandrich/langeng/internal/services/session"
)

// SessionResolver turns a bearer token into a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// LoadSession resolves the bearer token, if any, and stores the session in
// the request context. Invalid tokens are ignored here; RequireAuth
// rejects them on protected routes.
func LoadSession(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return next(c)
			}

			sess, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				if !apperr.Is(err, apperr.KindUnauthorized) {
					return err
				}
				slog.Debug("bearer_rejected", "error", err)
				return next(c)
			}

			ctx := auth.WithSession(c.Request().Context(), sess)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireAuth rejects requests without a resolved session.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !auth.IsAuthenticated(c.Request().Context()) {
			return session.ErrInvalidSession
		}
		return next(c)
	}
}
