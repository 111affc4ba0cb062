// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	issuer, err := NewIssuer([]byte("test-secret"), "langeng", "langeng-api")
	require.NoError(t, err)
	return issuer
}

func TestIssueAndVerify(t *testing.T) {
	issuer := newTestIssuer(t)

	issued, err := issuer.Issue("alice", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.NotEmpty(t, issued.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := issuer.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestIssue_UniqueIDs(t *testing.T) {
	issuer := newTestIssuer(t)

	a, err := issuer.Issue("alice", time.Hour)
	require.NoError(t, err)
	b, err := issuer.Issue("alice", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestVerify_Expired(t *testing.T) {
	issuer := newTestIssuer(t)
	issued, err := issuer.Issue("alice", time.Minute)
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = issuer.Verify(issued.Token)

	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	issued, err := newTestIssuer(t).Issue("alice", time.Hour)
	require.NoError(t, err)

	other, err := NewIssuer([]byte("other-secret"), "langeng", "langeng-api")
	require.NoError(t, err)
	_, err = other.Verify(issued.Token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongAudience(t *testing.T) {
	issued, err := newTestIssuer(t).Issue("alice", time.Hour)
	require.NoError(t, err)

	other, err := NewIssuer([]byte("test-secret"), "langeng", "someone-else")
	require.NoError(t, err)
	_, err = other.Verify(issued.Token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := newTestIssuer(t).Verify("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	_, err := NewIssuer(nil, "", "")

	assert.ErrorIs(t, err, ErrEmptySecret)
}
