// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(logins.WithLabelValues("failure"))
	Login("failure")
	assert.Equal(t, before+1, testutil.ToFloat64(logins.WithLabelValues("failure")))

	before = testutil.ToFloat64(slugExhausted.WithLabelValues("post"))
	SlugExhausted("post")
	assert.Equal(t, before+1, testutil.ToFloat64(slugExhausted.WithLabelValues("post")))

	before = testutil.ToFloat64(reactions.WithLabelValues("comment", "love"))
	Reaction("comment", "love")
	assert.Equal(t, before+1, testutil.ToFloat64(reactions.WithLabelValues("comment", "love")))
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(Middleware("/metrics"))
	e.GET("/things/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/things/:id", "204"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/42", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/things/:id", "204")))
}

func TestHandler(t *testing.T) {
	Registered()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "langeng_accounts_registrations_total"))
}
