// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "langeng"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "registrations_total",
			Help:      "Total number of completed registrations.",
		},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		},
		[]string{"result"},
	)

	verificationsRequested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "requested_total",
			Help:      "Verification entries created by type and channel.",
		},
		[]string{"type", "channel"},
	)

	verificationsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "consumed_total",
			Help:      "Verification consumption attempts by type and result.",
		},
		[]string{"type", "result"},
	)

	slugAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slug",
			Name:      "attempts_total",
			Help:      "Slug candidates tried, by kind of row.",
		},
		[]string{"kind"},
	)

	slugExhausted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slug",
			Name:      "exhausted_total",
			Help:      "Creations rejected because no free slug was found.",
		},
		[]string{"kind"},
	)

	reactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "reactions_total",
			Help:      "Reactions saved, by target and type.",
		},
		[]string{"target", "type"},
	)

	comments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "comments_total",
			Help:      "Total number of comments created.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		registrations,
		logins,
		verificationsRequested,
		verificationsConsumed,
		slugAttempts,
		slugExhausted,
		reactions,
		comments,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route.
func Middleware(skipPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == skipPath {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			httpRequests.WithLabelValues(method, route, status).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Registered counts a completed registration.
func Registered() {
	registrations.Inc()
}

// Login counts a login attempt; result is "success" or "failure".
func Login(result string) {
	logins.WithLabelValues(result).Inc()
}

// VerificationRequested counts a new verification entry.
func VerificationRequested(typ, channel string) {
	verificationsRequested.WithLabelValues(typ, channel).Inc()
}

// VerificationConsumed counts a consumption attempt.
func VerificationConsumed(typ, result string) {
	verificationsConsumed.WithLabelValues(typ, result).Inc()
}

// SlugAttempt counts a slug candidate for kind ("group" or "post").
func SlugAttempt(kind string) {
	slugAttempts.WithLabelValues(kind).Inc()
}

// SlugExhausted counts a creation that ran out of slug attempts.
func SlugExhausted(kind string) {
	slugExhausted.WithLabelValues(kind).Inc()
}

// Reaction counts a saved reaction; target is "post" or "comment".
func Reaction(target, typ string) {
	reactions.WithLabelValues(target, typ).Inc()
}

// Commented counts a created comment.
func Commented() {
	comments.Inc()
}
