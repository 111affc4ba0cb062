// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(accountID int64, hash string, expiresAt time.Time) *models.VerificationEntry {
	return &models.VerificationEntry{
		AccountID:  accountID,
		Type:       models.VerificationRegister,
		Channel:    models.ChannelLink,
		SecretHash: hash,
		Email:      "user@example.com",
		ExpiresAt:  expiresAt,
	}
}

func TestCreateVerificationEntry(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "alice", models.StatusUnverified)

	entry := newEntry(account.ID, "abc", time.Now().Add(8*time.Minute))
	require.NoError(t, repo.CreateVerificationEntry(ctx, entry))
	assert.NotZero(t, entry.ID)

	got, err := repo.GetVerificationEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationRegister, got.Type)
	assert.Equal(t, models.ChannelLink, got.Channel)
	assert.False(t, got.IsConsumed())
	assert.WithinDuration(t, entry.ExpiresAt, got.ExpiresAt, time.Millisecond)
}

func TestFindPendingVerification_NewestWins(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "bob", models.StatusUnverified)

	first := newEntry(account.ID, "same", time.Now().Add(time.Minute))
	second := newEntry(account.ID, "same", time.Now().Add(time.Minute))
	require.NoError(t, repo.CreateVerificationEntry(ctx, first))
	require.NoError(t, repo.CreateVerificationEntry(ctx, second))

	got, err := repo.FindPendingVerification(ctx, account.ID, "same", models.VerificationRegister)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestFindPendingVerification_TypeMismatch(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "carol", models.StatusUnverified)
	require.NoError(t, repo.CreateVerificationEntry(ctx, newEntry(account.ID, "h", time.Now().Add(time.Minute))))

	_, err := repo.FindPendingVerification(ctx, account.ID, "h", models.VerificationAccountDeletion)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsumeVerificationEntry_Once(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "dave", models.StatusUnverified)
	entry := newEntry(account.ID, "h", time.Now().Add(time.Minute))
	require.NoError(t, repo.CreateVerificationEntry(ctx, entry))

	n, err := repo.ConsumeVerificationEntry(ctx, entry.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.ConsumeVerificationEntry(ctx, entry.ID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.FindPendingVerification(ctx, account.ID, "h", models.VerificationRegister)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsumeVerificationEntry_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "erin", models.StatusUnverified)
	entry := newEntry(account.ID, "h", time.Now().Add(-time.Second))
	require.NoError(t, repo.CreateVerificationEntry(ctx, entry))

	n, err := repo.ConsumeVerificationEntry(ctx, entry.ID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteExpiredVerificationEntries(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "fay", models.StatusUnverified)
	require.NoError(t, repo.CreateVerificationEntry(ctx, newEntry(account.ID, "old", time.Now().Add(-time.Hour))))
	require.NoError(t, repo.CreateVerificationEntry(ctx, newEntry(account.ID, "new", time.Now().Add(time.Hour))))

	n, err := repo.DeleteExpiredVerificationEntries(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := repo.ListVerificationEntries(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].SecretHash)
}
