// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/auth"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/services/account"
	"codeberg.org/oliverandrich/langeng/internal/services/session"
	"codeberg.org/oliverandrich/langeng/internal/services/token"
	"codeberg.org/oliverandrich/langeng/internal/services/verification"
)

// AuthHandlers contains handlers for registration, sessions and verification.
type AuthHandlers struct {
	accounts      *account.Service
	sessions      *session.Service
	verifications *verification.Service
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(accounts *account.Service, sessions *session.Service, verifications *verification.Service) *AuthHandlers {
	return &AuthHandlers{
		accounts:      accounts,
		sessions:      sessions,
		verifications: verifications,
	}
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

func tokenResponse(issued *token.Issued, acc *models.Account) TokenResponse {
	return TokenResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt, Username: acc.Username}
}

// VerificationResponse reports the status reached by a verification.
type VerificationResponse struct {
	Status models.Status `json:"status"`
}

// Register creates an account and emails the verification link.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	reg, err := h.accounts.Register(c.Request().Context(), account.RegisterParams{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "registered", tokenResponse(reg.Token, reg.Account))
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	issued, acc, err := h.sessions.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "logged_in", tokenResponse(issued, acc))
}

// Logout revokes the bearer token of the request.
func (h *AuthHandlers) Logout(c echo.Context) error {
	sess := auth.GetSession(c.Request().Context())
	if sess == nil {
		return session.ErrInvalidSession
	}
	if err := h.sessions.Logout(c.Request().Context(), sess.Token); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "logged_out", nil)
}

// VerifyLink consumes a link verification. The link carries the session
// token (u), the secret (t) and the verification type (s), so it works
// without an Authorization header.
func (h *AuthHandlers) VerifyLink(c echo.Context) error {
	typ, err := models.ParseVerificationType(c.QueryParam("s"))
	if err != nil {
		return verification.ErrInvalidType
	}

	ctx := c.Request().Context()
	sess, err := h.sessions.Resolve(ctx, c.QueryParam("u"))
	if err != nil {
		return err
	}

	res, err := h.verifications.Consume(ctx, sess.Account.ID, c.QueryParam("t"), typ)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{Message: res.Message, Data: VerificationResponse{Status: res.To}})
}

// VerifyCode consumes a code verification for the authenticated account.
func (h *AuthHandlers) VerifyCode(c echo.Context) error {
	var req VerifyCodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	typ := models.VerificationType(req.Type)
	if !typ.Valid() {
		return verification.ErrInvalidType
	}

	acc := auth.GetAccount(c.Request().Context())
	res, err := h.verifications.Consume(c.Request().Context(), acc.ID, req.Code, typ)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{Message: res.Message, Data: VerificationResponse{Status: res.To}})
}

// RequestVerification issues a new verification for the authenticated
// account. The code channel is the default.
func (h *AuthHandlers) RequestVerification(c echo.Context) error {
	var req VerificationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	typ := models.VerificationType(req.Type)
	if !typ.Valid() {
		return verification.ErrInvalidType
	}
	channel := models.Channel(req.Channel)
	if channel == "" {
		channel = models.ChannelCode
	}

	sess := auth.GetSession(c.Request().Context())
	if err := h.accounts.RequestVerification(c.Request().Context(), sess, typ, channel); err != nil {
		return err
	}

	return respondData(c, http.StatusAccepted, "verification_sent",
		map[string]any{"Email": sess.Account.Email}, nil)
}
