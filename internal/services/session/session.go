// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session issues and revokes the single live bearer token of an
// account and resolves tokens back to accounts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"codeberg.org/oliverandrich/langeng/internal/metrics"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/services/email"
	"codeberg.org/oliverandrich/langeng/internal/services/token"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid username or password")
	ErrInvalidSession     = apperr.Unauthorized("invalid or expired session")
)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Session is a resolved, live bearer token.
type Session struct {
	Account   *models.Account
	Token     string
	ExpiresAt time.Time
}

// Service manages session credentials.
type Service struct {
	repo   *repository.Repository
	issuer *token.Issuer
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a new session service.
func NewService(repo *repository.Repository, issuer *token.Issuer, ttl time.Duration) *Service {
	return &Service{repo: repo, issuer: issuer, ttl: ttl, now: time.Now}
}

// WithRepository returns a copy of the service bound to repo, typically a
// transaction-scoped repository.
func (s *Service) WithRepository(repo *repository.Repository) *Service {
	cp := *s
	cp.repo = repo
	return &cp
}

// Start issues a token for account and makes it the only live credential.
func (s *Service) Start(ctx context.Context, account *models.Account) (*token.Issued, error) {
	issued, err := s.issuer.Issue(account.Username, s.ttl)
	if err != nil {
		return nil, err
	}

	cred := &models.SessionCredential{
		AccountID: account.ID,
		TokenHash: email.HashToken(issued.Token),
		IssuedAt:  issued.IssuedAt,
		ExpiresAt: issued.ExpiresAt,
	}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.ReplaceSessionCredential(ctx, cred)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return issued, nil
}

// Login authenticates by username (or email) and password and returns a
// new token. Any previous token of the account stops resolving.
func (s *Service) Login(ctx context.Context, username, password string) (*token.Issued, *models.Account, error) {
	account, err := s.lookup(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "username", username, "reason", "account_not_found")
			metrics.Login("failure")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "username", username, "reason", "invalid_password")
		metrics.Login("failure")
		return nil, nil, ErrInvalidCredentials
	}

	issued, err := s.Start(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("login_success", "account_id", account.ID, "username", account.Username)
	metrics.Login("success")
	return issued, account, nil
}

func (s *Service) lookup(ctx context.Context, username string) (*models.Account, error) {
	if strings.Contains(username, "@") {
		return s.repo.GetAccountByEmail(ctx, strings.ToLower(username))
	}
	return s.repo.GetAccountByUsername(ctx, username)
}

// Resolve validates the token signature and requires a live credential row
// for exactly this token and the account named in its subject.
func (s *Service) Resolve(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, ErrInvalidSession
	}

	claims, err := s.issuer.Verify(tokenString)
	if err != nil {
		slog.Debug("session_rejected", "reason", "token_invalid", "error", err)
		return nil, ErrInvalidSession
	}

	cred, err := s.repo.GetSessionCredentialByHash(ctx, email.HashToken(tokenString))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Debug("session_rejected", "reason", "superseded", "username", claims.Subject)
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if cred.IsExpired(s.now()) {
		return nil, ErrInvalidSession
	}

	account, err := s.repo.GetAccountByID(ctx, cred.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account.Username != claims.Subject {
		return nil, ErrInvalidSession
	}

	return &Session{Account: account, Token: tokenString, ExpiresAt: cred.ExpiresAt}, nil
}

// Logout revokes the given token.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	sess, err := s.Resolve(ctx, tokenString)
	if err != nil {
		return err
	}

	n, err := s.repo.DeleteSessionCredentialByHash(ctx, email.HashToken(tokenString))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrInvalidSession
	}

	slog.Info("logout", "account_id", sess.Account.ID)
	return nil
}
