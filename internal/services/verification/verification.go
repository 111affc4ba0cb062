// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package verification keeps the ledger of pending verification actions
// and applies the account status transitions they authorize.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"time"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"codeberg.org/oliverandrich/langeng/internal/i18n"
	"codeberg.org/oliverandrich/langeng/internal/metrics"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/services/email"
	"codeberg.org/oliverandrich/langeng/internal/services/slug"
)

// DefaultTTL is how long a verification entry can be consumed.
const DefaultTTL = 8 * time.Minute

var (
	ErrNotFound        = apperr.NotFound("verification not found or already used")
	ErrExpired         = apperr.Expired("verification expired, request a new one")
	ErrInvalidType     = apperr.Invalid("invalid verification type")
	ErrInvalidChannel  = apperr.Invalid("invalid verification channel")
	ErrStatusMissing   = apperr.Integrity("account status is missing")
	ErrTransition      = apperr.Integrity("account status does not allow this verification")
	ErrAlreadyVerified = apperr.Conflict("account is already verified")
)

// transition describes which statuses a verification type may leave and
// the status it leads to.
type transition struct {
	from      []models.Status
	to        models.Status
	messageID string
}

var transitions = map[models.VerificationType]transition{
	models.VerificationRegister: {
		from:      []models.Status{models.StatusUnverified},
		to:        models.StatusVerified,
		messageID: "account_verified",
	},
	models.VerificationAccountDeactivation: {
		from:      []models.Status{models.StatusVerified, models.StatusUnverified},
		to:        models.StatusInactive,
		messageID: "account_deactivated",
	},
	models.VerificationAccountDeletion: {
		from:      []models.Status{models.StatusVerified, models.StatusUnverified, models.StatusInactive},
		to:        models.StatusDeleted,
		messageID: "account_deleted",
	},
}

// Supports reports whether typ drives a status transition.
func Supports(typ models.VerificationType) bool {
	_, ok := transitions[typ]
	return ok
}

// Allowed reports whether an account in status from may consume typ.
func Allowed(from models.Status, typ models.VerificationType) (models.Status, bool) {
	t, ok := transitions[typ]
	if !ok || !slices.Contains(t.from, from) {
		return "", false
	}
	return t.to, true
}

// Result describes a successful consumption.
type Result struct {
	Type    models.VerificationType
	From    models.Status
	To      models.Status
	Message string
}

// Service manages verification entries.
type Service struct {
	repo *repository.Repository
	ttl  time.Duration
	now  func() time.Time
}

// NewService creates a verification service. A zero ttl uses DefaultTTL.
func NewService(repo *repository.Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{repo: repo, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of new entries.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// WithRepository returns a copy of the service bound to repo.
func (s *Service) WithRepository(repo *repository.Repository) *Service {
	cp := *s
	cp.repo = repo
	return &cp
}

// Request records a new entry for account and returns the plaintext secret
// to deliver. Code secrets are 6 digits, link secrets are slugs of the
// username.
func (s *Service) Request(ctx context.Context, account *models.Account, typ models.VerificationType, channel models.Channel) (string, *models.VerificationEntry, error) {
	if !Supports(typ) {
		return "", nil, ErrInvalidType
	}

	var secret string
	switch channel {
	case models.ChannelCode:
		code, err := newCode()
		if err != nil {
			return "", nil, err
		}
		secret = code
	case models.ChannelLink:
		secret = slug.Generate(account.Username)
	default:
		return "", nil, ErrInvalidChannel
	}

	now := s.now().UTC()
	entry := &models.VerificationEntry{
		AccountID:  account.ID,
		Type:       typ,
		Channel:    channel,
		SecretHash: email.HashToken(secret),
		Email:      account.Email,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
	}
	if err := s.repo.CreateVerificationEntry(ctx, entry); err != nil {
		return "", nil, fmt.Errorf("failed to create verification entry: %w", err)
	}

	slog.Info("verification_requested", "account_id", account.ID, "type", typ.String(), "channel", string(channel))
	metrics.VerificationRequested(typ.String(), string(channel))
	return secret, entry, nil
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Consume validates the entry matching (account, secret, type), marks it
// consumed and applies the status transition, all in one transaction.
func (s *Service) Consume(ctx context.Context, accountID int64, secret string, typ models.VerificationType) (*Result, error) {
	res, err := s.consume(ctx, accountID, secret, typ)

	outcome := "success"
	if err != nil {
		outcome = string(apperr.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		slog.Warn("verification_failed", "account_id", accountID, "type", typ.String(), "error", err)
	} else {
		slog.Info("verification_consumed", "account_id", accountID, "type", typ.String(),
			"from", string(res.From), "to", string(res.To))
	}
	metrics.VerificationConsumed(typ.String(), outcome)

	return res, err
}

func (s *Service) consume(ctx context.Context, accountID int64, secret string, typ models.VerificationType) (*Result, error) {
	t, ok := transitions[typ]
	if !ok {
		return nil, ErrInvalidType
	}
	if secret == "" {
		return nil, ErrNotFound
	}

	var result *Result
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		now := s.now().UTC()

		entry, err := tx.FindPendingVerification(ctx, accountID, email.HashToken(secret), typ)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to find verification entry: %w", err)
		}
		if entry.IsExpired(now) {
			return ErrExpired
		}

		status, err := tx.GetAccountStatus(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrStatusMissing
			}
			return fmt.Errorf("failed to get account status: %w", err)
		}
		to, ok := Allowed(status.Status, typ)
		if !ok {
			return ErrTransition
		}

		n, err := tx.ConsumeVerificationEntry(ctx, entry.ID, now)
		if err != nil {
			return fmt.Errorf("failed to consume verification entry: %w", err)
		}
		if n != 1 {
			return ErrNotFound
		}

		n, err = tx.TransitionAccountStatus(ctx, accountID, status.Status, to)
		if err != nil {
			return fmt.Errorf("failed to update account status: %w", err)
		}
		if n != 1 {
			return apperr.Integrity(fmt.Sprintf("status update affected %d rows", n))
		}

		if to == models.StatusDeleted {
			if err := deleteAccount(ctx, tx, accountID); err != nil {
				return err
			}
		}

		result = &Result{Type: typ, From: status.Status, To: to, Message: i18n.T(ctx, t.messageID)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func deleteAccount(ctx context.Context, tx *repository.Repository, accountID int64) error {
	if err := tx.SoftDeleteAccount(ctx, accountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Integrity("account row is missing")
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if err := tx.DeleteProfile(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if err := tx.DeleteSessionCredentials(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// PurgeExpired deletes unconsumed entries that expired before now.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpiredVerificationEntries(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge verification entries: %w", err)
	}
	slog.Info("verification_purged", "count", n)
	return n, nil
}
