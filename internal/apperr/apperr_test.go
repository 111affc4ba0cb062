// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
)

func TestNew_Classification(t *testing.T) {
	tests := []struct {
		kind     apperr.Kind
		category goerrors.Category
		code     int
	}{
		{apperr.KindNotFound, goerrors.CategoryNotFound, http.StatusNotFound},
		{apperr.KindUnauthorized, goerrors.CategoryAuth, http.StatusUnauthorized},
		{apperr.KindConflict, goerrors.CategoryConflict, http.StatusConflict},
		{apperr.KindExpired, goerrors.CategoryBadInput, http.StatusBadRequest},
		{apperr.KindExhausted, goerrors.CategoryOperation, http.StatusBadRequest},
		{apperr.KindIntegrity, goerrors.CategoryInternal, http.StatusBadRequest},
		{apperr.KindInvalid, goerrors.CategoryValidation, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := apperr.New(tt.kind, "boom")

			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, string(tt.kind), err.TextCode)
			assert.Equal(t, "boom", err.Message)
		})
	}
}

func TestIs_MatchesKind(t *testing.T) {
	err := apperr.NotFound("verification entry not found")

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.False(t, apperr.Is(err, apperr.KindExpired))
	assert.False(t, apperr.Is(nil, apperr.KindNotFound))
}

func TestIs_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("consume: %w", apperr.Expired("verification entry expired"))

	assert.True(t, apperr.Is(err, apperr.KindExpired))
	assert.Equal(t, apperr.KindExpired, apperr.KindOf(err))
}

func TestWrap_KeepsMessage(t *testing.T) {
	err := apperr.Wrap(apperr.KindIntegrity, "status update failed", errors.New("disk full"))

	assert.Equal(t, "status update failed", err.Message)
	assert.Equal(t, apperr.KindIntegrity, apperr.KindOf(err))
}

type policyError struct{}

func (policyError) Error() string      { return "password too short" }
func (policyError) Kind() apperr.Kind { return apperr.KindInvalid }

func TestFrom_Kinder(t *testing.T) {
	rich := apperr.From(fmt.Errorf("register: %w", policyError{}))

	require.NotNil(t, rich)
	assert.Equal(t, "invalid", rich.TextCode)
	assert.Equal(t, http.StatusBadRequest, rich.Code)
	assert.Equal(t, "password too short", rich.Message)
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, apperr.Kind(""), apperr.KindOf(errors.New("boom")))
	assert.Nil(t, apperr.From(errors.New("boom")))
}
