// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"codeberg.org/oliverandrich/langeng/internal/database"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/services/email"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password of accounts made by NewTestAccount.
const TestPassword = "correct-horse-battery"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestAccount creates an account with the given status and TestPassword.
func NewTestAccount(t *testing.T, repo *repository.Repository, username string, status models.Status) *models.Account {
	t.Helper()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	account := &models.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Fullname:     "Test " + username,
	}
	require.NoError(t, repo.CreateAccount(ctx, account))
	require.NoError(t, repo.CreateAccountStatus(ctx, account.ID, status))
	return account
}

// AccountStatus returns the current status of an account.
func AccountStatus(t *testing.T, repo *repository.Repository, accountID int64) models.Status {
	t.Helper()
	status, err := repo.GetAccountStatus(context.Background(), accountID)
	require.NoError(t, err)
	return status.Status
}

// MockMailer records sent messages instead of delivering them.
type MockMailer struct {
	mu       sync.Mutex
	Messages []email.Message
	Err      error
}

// Send records msg, or returns Err when set.
func (m *MockMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

// Last returns the most recent message.
func (m *MockMailer) Last(t *testing.T) email.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.Messages, "no message was sent")
	return m.Messages[len(m.Messages)-1]
}

// Count returns the number of recorded messages.
func (m *MockMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
