// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package verification

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *repository.Repository) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	return NewService(repo, DefaultTTL), repo
}

func TestRequest_Code(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "alice", models.StatusUnverified)

	secret, entry, err := svc.Request(ctx, account, models.VerificationRegister, models.ChannelCode)

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), secret)
	assert.Equal(t, models.ChannelCode, entry.Channel)
	assert.NotEqual(t, secret, entry.SecretHash)
	assert.WithinDuration(t, time.Now().Add(8*time.Minute), entry.ExpiresAt, 5*time.Second)
}

func TestRequest_Link(t *testing.T) {
	svc, repo := setup(t)
	account := testutil.NewTestAccount(t, repo, "bob", models.StatusUnverified)

	secret, entry, err := svc.Request(context.Background(), account, models.VerificationAccountDeletion, models.ChannelLink)

	require.NoError(t, err)
	assert.Regexp(t, `^bob-[a-z0-9-]+$`, secret)
	assert.Equal(t, "bob@example.com", entry.Email)
}

func TestRequest_Invalid(t *testing.T) {
	svc, repo := setup(t)
	account := testutil.NewTestAccount(t, repo, "carol", models.StatusUnverified)

	_, _, err := svc.Request(context.Background(), account, models.VerificationPasswordReset, models.ChannelCode)
	assert.ErrorIs(t, err, ErrInvalidType)

	_, _, err = svc.Request(context.Background(), account, models.VerificationRegister, models.Channel("sms"))
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func TestConsume_RegisterScenario(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "a", models.StatusUnverified)
	assert.Equal(t, models.StatusUnverified, testutil.AccountStatus(t, repo, account.ID))

	secret, _, err := svc.Request(ctx, account, models.VerificationRegister, models.ChannelLink)
	require.NoError(t, err)

	// One character off.
	altered := secret[:len(secret)-1] + "x"
	if altered == secret {
		altered = secret[:len(secret)-1] + "y"
	}
	_, err = svc.Consume(ctx, account.ID, altered, models.VerificationRegister)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	res, err := svc.Consume(ctx, account.ID, secret, models.VerificationRegister)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, res.To)
	assert.Equal(t, "Account Verified Successfully", res.Message)
	assert.Equal(t, models.StatusVerified, testutil.AccountStatus(t, repo, account.ID))
}

func TestConsume_Idempotence(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "dave", models.StatusUnverified)
	secret, _, err := svc.Request(ctx, account, models.VerificationAccountDeactivation, models.ChannelCode)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, account.ID, secret, models.VerificationAccountDeactivation)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, account.ID, secret, models.VerificationAccountDeactivation)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, models.StatusInactive, testutil.AccountStatus(t, repo, account.ID))
}

func TestConsume_ConcurrentAttemptsApplyOnce(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "erin", models.StatusUnverified)
	secret, _, err := svc.Request(ctx, account, models.VerificationRegister, models.ChannelCode)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Consume(ctx, account.ID, secret, models.VerificationRegister)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestConsume_Expired(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "fay", models.StatusUnverified)
	secret, entry, err := svc.Request(ctx, account, models.VerificationRegister, models.ChannelCode)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(DefaultTTL + time.Minute) }
	_, err = svc.Consume(ctx, account.ID, secret, models.VerificationRegister)

	assert.True(t, apperr.Is(err, apperr.KindExpired))
	assert.Equal(t, models.StatusUnverified, testutil.AccountStatus(t, repo, account.ID))

	// The entry stays unconsumed.
	got, err := repo.GetVerificationEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, got.IsConsumed())
}

func TestConsume_WrongType(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "gus", models.StatusVerified)
	secret, _, err := svc.Request(ctx, account, models.VerificationAccountDeactivation, models.ChannelCode)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, account.ID, secret, models.VerificationAccountDeletion)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Consume(ctx, account.ID, secret, models.VerificationPasswordChanges)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestConsume_OtherAccount(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	owner := testutil.NewTestAccount(t, repo, "hal", models.StatusUnverified)
	other := testutil.NewTestAccount(t, repo, "ida", models.StatusUnverified)
	secret, _, err := svc.Request(ctx, owner, models.VerificationRegister, models.ChannelCode)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, other.ID, secret, models.VerificationRegister)

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestConsume_MissingStatus(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	account := &models.Account{Username: "jo", Email: "jo@example.com", PasswordHash: "x"}
	require.NoError(t, repo.CreateAccount(ctx, account))
	secret, entry, err := svc.Request(ctx, account, models.VerificationRegister, models.ChannelCode)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, account.ID, secret, models.VerificationRegister)

	assert.True(t, apperr.Is(err, apperr.KindIntegrity))
	got, err := repo.GetVerificationEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, got.IsConsumed())
}

func TestConsume_TransitionTable(t *testing.T) {
	statuses := []models.Status{models.StatusUnverified, models.StatusVerified, models.StatusInactive, models.StatusDeleted}
	types := []models.VerificationType{
		models.VerificationRegister,
		models.VerificationAccountDeactivation,
		models.VerificationAccountDeletion,
	}
	expected := map[models.VerificationType]map[models.Status]models.Status{
		models.VerificationRegister: {
			models.StatusUnverified: models.StatusVerified,
		},
		models.VerificationAccountDeactivation: {
			models.StatusUnverified: models.StatusInactive,
			models.StatusVerified:   models.StatusInactive,
		},
		models.VerificationAccountDeletion: {
			models.StatusUnverified: models.StatusDeleted,
			models.StatusVerified:   models.StatusDeleted,
			models.StatusInactive:   models.StatusDeleted,
		},
	}

	for _, typ := range types {
		for _, from := range statuses {
			t.Run(fmt.Sprintf("%s_from_%s", typ, from), func(t *testing.T) {
				svc, repo := setup(t)
				ctx := context.Background()
				account := testutil.NewTestAccount(t, repo, "user", from)
				secret, _, err := svc.Request(ctx, account, typ, models.ChannelCode)
				require.NoError(t, err)

				res, err := svc.Consume(ctx, account.ID, secret, typ)

				want, ok := expected[typ][from]
				if !ok {
					assert.True(t, apperr.Is(err, apperr.KindIntegrity))
					assert.Equal(t, from, testutil.AccountStatus(t, repo, account.ID))
					return
				}
				require.NoError(t, err)
				assert.Equal(t, want, res.To)
				assert.Equal(t, want, testutil.AccountStatus(t, repo, account.ID))
			})
		}
	}
}

func TestConsume_DeletionSideEffects(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "kim", models.StatusVerified)
	require.NoError(t, repo.UpsertProfile(ctx, &models.Profile{AccountID: account.ID, Bio: "hi"}))
	require.NoError(t, repo.ReplaceSessionCredential(ctx, &models.SessionCredential{
		AccountID: account.ID, TokenHash: "h", IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour),
	}))
	secret, _, err := svc.Request(ctx, account, models.VerificationAccountDeletion, models.ChannelLink)
	require.NoError(t, err)

	res, err := svc.Consume(ctx, account.ID, secret, models.VerificationAccountDeletion)

	require.NoError(t, err)
	assert.Equal(t, "Account Deleted Successfully", res.Message)

	_, err = repo.GetAccountByID(ctx, account.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetProfile(ctx, account.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	count, err := repo.CountSessionCredentials(ctx, account.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPurgeExpired(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	account := testutil.NewTestAccount(t, repo, "lee", models.StatusUnverified)
	_, _, err := svc.Request(ctx, account, models.VerificationRegister, models.ChannelCode)
	require.NoError(t, err)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err = svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
