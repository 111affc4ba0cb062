// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package account handles registration, verification requests and profiles.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"codeberg.org/oliverandrich/langeng/internal/metrics"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/services/email"
	"codeberg.org/oliverandrich/langeng/internal/services/session"
	"codeberg.org/oliverandrich/langeng/internal/services/slug"
	"codeberg.org/oliverandrich/langeng/internal/services/token"
	"codeberg.org/oliverandrich/langeng/internal/services/verification"
)

var (
	ErrEmailTaken      = apperr.Conflict("email is already registered")
	ErrInvalidEmail    = apperr.Invalid("invalid email format")
	ErrUsernameFailed  = apperr.Exhausted("failed to derive a free username, try again later")
	ErrProfileNotFound = apperr.NotFound("profile not found")
	ErrAccountNotFound = apperr.NotFound("account not found")
)

var usernameChars = regexp.MustCompile(`[^a-zA-Z0-9._]`)

// DefaultMailTimeout bounds a verification send. Sends run inside a write
// transaction, so it stays below the SQLite busy timeout.
const DefaultMailTimeout = 4 * time.Second

// Service implements the account use cases.
type Service struct {
	repo              *repository.Repository
	sessions          *session.Service
	verifications     *verification.Service
	mailer            email.Sender
	composer          *email.Composer
	passwordValidator *PasswordValidator
	maxAttempts       int
	bcryptCost        int
	mailTimeout       time.Duration
}

// NewService creates a new account service.
func NewService(
	repo *repository.Repository,
	sessions *session.Service,
	verifications *verification.Service,
	mailer email.Sender,
	composer *email.Composer,
) *Service {
	return &Service{
		repo:              repo,
		sessions:          sessions,
		verifications:     verifications,
		mailer:            mailer,
		composer:          composer,
		passwordValidator: DefaultPasswordValidator(),
		maxAttempts:       slug.DefaultMaxAttempts,
		bcryptCost:        bcrypt.DefaultCost,
		mailTimeout:       DefaultMailTimeout,
	}
}

// SetBcryptCost overrides the hashing cost; tests lower it.
func (s *Service) SetBcryptCost(cost int) {
	s.bcryptCost = cost
}

// SetMailTimeout overrides how long a verification send may take.
func (s *Service) SetMailTimeout(timeout time.Duration) {
	s.mailTimeout = timeout
}

// RegisterParams holds the parameters for registration.
type RegisterParams struct {
	Fullname string
	Email    string
	Password string
}

// Registration is the outcome of a successful registration.
type Registration struct {
	Account *models.Account
	Token   *token.Issued
}

// Register creates an unverified account with a session and emails a
// verification link. Nothing is stored if the email cannot be sent.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Registration, error) {
	addr, err := mail.ParseAddress(params.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	emailAddr := strings.ToLower(addr.Address)

	if err := s.passwordValidator.Validate(params.Password, emailAddr, params.Fullname); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var reg *Registration
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		username, err := s.freeUsername(ctx, tx, emailAddr)
		if err != nil {
			return err
		}

		account := &models.Account{
			Username:     username,
			Email:        emailAddr,
			PasswordHash: string(passwordHash),
			Fullname:     strings.TrimSpace(params.Fullname),
		}
		if err := tx.CreateAccount(ctx, account); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to create account: %w", err)
		}
		if err := tx.CreateAccountStatus(ctx, account.ID, models.StatusUnverified); err != nil {
			return fmt.Errorf("failed to create account status: %w", err)
		}

		issued, err := s.sessions.WithRepository(tx).Start(ctx, account)
		if err != nil {
			return err
		}

		if err := s.sendVerification(ctx, tx, account, issued.Token, models.VerificationRegister, models.ChannelLink); err != nil {
			return err
		}

		reg = &Registration{Account: account, Token: issued}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("register_success", "account_id", reg.Account.ID, "username", reg.Account.Username)
	metrics.Registered()
	return reg, nil
}

// DeriveUsername turns an email address into a username candidate.
func DeriveUsername(emailAddr string) string {
	local := emailAddr
	if i := strings.LastIndexByte(emailAddr, '@'); i >= 0 {
		local = emailAddr[:i]
	}
	name := usernameChars.ReplaceAllString(local, "")
	if name == "" {
		name = "user"
	}
	return strings.ToLower(name)
}

// freeUsername returns the derived username or the first free numbered
// variant of it.
func (s *Service) freeUsername(ctx context.Context, repo *repository.Repository, emailAddr string) (string, error) {
	base := DeriveUsername(emailAddr)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = base + strconv.Itoa(attempt)
		}
		taken, err := repo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrUsernameFailed
}

// sendVerification records an entry and emails its secret inside tx, so a
// failed send rolls the entry back.
func (s *Service) sendVerification(ctx context.Context, tx *repository.Repository, account *models.Account, sessionToken string, typ models.VerificationType, channel models.Channel) error {
	secret, _, err := s.verifications.WithRepository(tx).Request(ctx, account, typ, channel)
	if err != nil {
		return err
	}

	var msg email.Message
	if channel == models.ChannelCode {
		msg, err = s.composer.CodeMessage(ctx, account.Email, displayName(account), typ, secret)
	} else {
		link := s.composer.LinkURL(sessionToken, secret, typ)
		msg, err = s.composer.LinkMessage(ctx, account.Email, displayName(account), typ, link)
	}
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	if err := s.mailer.Send(sendCtx, msg); err != nil {
		slog.Error("verification_email_failed", "account_id", account.ID, "type", typ.String(), "error", err)
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func displayName(account *models.Account) string {
	if account.Fullname != "" {
		return account.Fullname
	}
	return account.Username
}

// RequestVerification issues a new verification of typ for the session's
// account and emails it. The current status must allow the transition.
func (s *Service) RequestVerification(ctx context.Context, sess *session.Session, typ models.VerificationType, channel models.Channel) error {
	if !verification.Supports(typ) {
		return verification.ErrInvalidType
	}

	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		status, err := tx.GetAccountStatus(ctx, sess.Account.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return verification.ErrStatusMissing
			}
			return fmt.Errorf("failed to get account status: %w", err)
		}
		if _, ok := verification.Allowed(status.Status, typ); !ok {
			if typ == models.VerificationRegister && status.Status == models.StatusVerified {
				return verification.ErrAlreadyVerified
			}
			return verification.ErrTransition
		}

		return s.sendVerification(ctx, tx, sess.Account, sess.Token, typ, channel)
	})
}

// RequestDeletion emails a link confirming the deletion of the account.
func (s *Service) RequestDeletion(ctx context.Context, sess *session.Session) error {
	return s.RequestVerification(ctx, sess, models.VerificationAccountDeletion, models.ChannelLink)
}

// RequestDeactivation emails a link confirming the deactivation of the account.
func (s *Service) RequestDeactivation(ctx context.Context, sess *session.Session) error {
	return s.RequestVerification(ctx, sess, models.VerificationAccountDeactivation, models.ChannelLink)
}

// Status returns the current status of an account.
func (s *Service) Status(ctx context.Context, accountID int64) (models.Status, error) {
	status, err := s.repo.GetAccountStatus(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", verification.ErrStatusMissing
		}
		return "", fmt.Errorf("failed to get account status: %w", err)
	}
	return status.Status, nil
}

// ProfileParams holds editable profile fields.
type ProfileParams struct {
	Bio         string
	PhoneNumber string
	CityBorn    string
	CityHome    string
	BirthDate   *time.Time
}

// Profile returns the profile of an account.
func (s *Service) Profile(ctx context.Context, accountID int64) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// PublicProfile returns the account and profile behind a username.
func (s *Service) PublicProfile(ctx context.Context, username string) (*models.Account, *models.Profile, error) {
	account, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrAccountNotFound
		}
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}
	profile, err := s.Profile(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	return account, profile, nil
}

// UpdateProfile creates or replaces the profile of an account.
func (s *Service) UpdateProfile(ctx context.Context, accountID int64, params ProfileParams) (*models.Profile, error) {
	profile := &models.Profile{
		AccountID:   accountID,
		Bio:         strings.TrimSpace(params.Bio),
		PhoneNumber: strings.TrimSpace(params.PhoneNumber),
		CityBorn:    strings.TrimSpace(params.CityBorn),
		CityHome:    strings.TrimSpace(params.CityHome),
		BirthDate:   params.BirthDate,
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	slog.Info("profile_updated", "account_id", accountID)
	return s.Profile(ctx, accountID)
}
