// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	account := &models.Account{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	err := repo.CreateAccount(ctx, account)

	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.NotZero(t, account.CreatedAt)
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, &models.Account{Username: "a", Email: "same@example.com", PasswordHash: "x"}))
	err := repo.CreateAccount(ctx, &models.Account{Username: "b", Email: "same@example.com", PasswordHash: "x"})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestGetAccountByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	created := testutil.NewTestAccount(t, repo, "bob", models.StatusVerified)

	got, err := repo.GetAccountByEmail(ctx, "bob@example.com")

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "bob", got.Username)
}

func TestGetAccountByID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetAccountByID(context.Background(), 999)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSoftDeleteAccount_HidesAndFreesIdentity(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "carol", models.StatusVerified)

	require.NoError(t, repo.SoftDeleteAccount(ctx, account.ID))

	_, err := repo.GetAccountByID(ctx, account.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	deleted, err := repo.GetAccountByIDIncludeDeleted(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())

	exists, err := repo.EmailExists(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	// The email can be registered again.
	err = repo.CreateAccount(ctx, &models.Account{Username: "carol", Email: "carol@example.com", PasswordHash: "x"})
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.SoftDeleteAccount(ctx, account.ID), repository.ErrNotFound)
}

func TestUsernameExists(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.NewTestAccount(t, repo, "dave", models.StatusUnverified)

	exists, err := repo.UsernameExists(ctx, "dave")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UsernameExists(ctx, "erin")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransitionAccountStatus(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "frank", models.StatusUnverified)

	n, err := repo.TransitionAccountStatus(ctx, account.ID, models.StatusUnverified, models.StatusVerified)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Second attempt from the stale state changes nothing.
	n, err = repo.TransitionAccountStatus(ctx, account.ID, models.StatusUnverified, models.StatusVerified)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, models.StatusVerified, testutil.AccountStatus(t, repo, account.ID))
}

func TestCreateAccountStatus_OnePerAccount(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	account := testutil.NewTestAccount(t, repo, "gina", models.StatusUnverified)

	err := repo.CreateAccountStatus(context.Background(), account.ID, models.StatusVerified)

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateAccount(ctx, &models.Account{Username: "h", Email: "h@example.com", PasswordHash: "x"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	exists, err := repo.EmailExists(ctx, "h@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithTx_Nested(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.WithTx(ctx, func(inner *repository.Repository) error {
			return inner.CreateAccount(ctx, &models.Account{Username: "i", Email: "i@example.com", PasswordHash: "x"})
		})
	})
	require.NoError(t, err)

	exists, err := repo.EmailExists(ctx, "i@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpsertProfile(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "jane", models.StatusVerified)

	require.NoError(t, repo.UpsertProfile(ctx, &models.Profile{AccountID: account.ID, Bio: "first"}))
	require.NoError(t, repo.UpsertProfile(ctx, &models.Profile{AccountID: account.ID, Bio: "second", CityHome: "Bandung"}))

	profile, err := repo.GetProfile(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", profile.Bio)
	assert.Equal(t, "Bandung", profile.CityHome)

	require.NoError(t, repo.DeleteProfile(ctx, account.ID))
	_, err = repo.GetProfile(ctx, account.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
