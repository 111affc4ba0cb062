// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"

	"codeberg.org/oliverandrich/langeng/internal/config"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/services/account"
	"codeberg.org/oliverandrich/langeng/internal/services/comments"
	"codeberg.org/oliverandrich/langeng/internal/services/email"
	"codeberg.org/oliverandrich/langeng/internal/services/groups"
	"codeberg.org/oliverandrich/langeng/internal/services/posts"
	"codeberg.org/oliverandrich/langeng/internal/services/reactions"
	"codeberg.org/oliverandrich/langeng/internal/services/session"
	"codeberg.org/oliverandrich/langeng/internal/services/token"
	"codeberg.org/oliverandrich/langeng/internal/services/verification"
)

// App bundles the services behind the HTTP API.
type App struct {
	Repo          *repository.Repository
	Sessions      *session.Service
	Verifications *verification.Service
	Accounts      *account.Service
	Groups        *groups.Service
	Posts         *posts.Service
	Comments      *comments.Service
	Reactions     *reactions.Service
}

// NewApp wires the services for cfg on top of repo.
func NewApp(cfg *config.Config, repo *repository.Repository, mailer email.Sender) (*App, error) {
	issuer, err := token.NewIssuer([]byte(cfg.Token.Secret), cfg.Token.Issuer, cfg.Token.Audience)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	sessions := session.NewService(repo, issuer, cfg.Token.TTL)
	verifications := verification.NewService(repo, cfg.Verification.TTL)
	composer := email.NewComposer(cfg.Server.BaseURL, verifications.TTL())
	groupService := groups.NewService(repo, cfg.Slug.MaxAttempts)
	postService := posts.NewService(repo, groupService, cfg.Slug.MaxAttempts)
	commentService := comments.NewService(repo, postService, groupService)

	return &App{
		Repo:          repo,
		Sessions:      sessions,
		Verifications: verifications,
		Accounts:      account.NewService(repo, sessions, verifications, mailer, composer),
		Groups:        groupService,
		Posts:         postService,
		Comments:      commentService,
		Reactions:     reactions.NewService(repo, postService, commentService),
	}, nil
}
