// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"codeberg.org/oliverandrich/langeng/internal/config"
	"codeberg.org/oliverandrich/langeng/internal/metrics"
	"codeberg.org/oliverandrich/langeng/internal/middleware"
)

func setupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger())
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxBodySize)))
	if cfg.Metrics.Enabled {
		e.Use(metrics.Middleware(cfg.Metrics.Path))
	}
	e.Use(middleware.Locale())
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURIPath:   true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("path", v.URIPath),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if query := redactQuery(c.Request().URL.Query()); query != "" {
				attrs = append(attrs, slog.String("query", query))
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelWarn, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// Query parameters carrying bearer tokens or verification secrets.
var secretParams = map[string]bool{"u": true, "t": true, "token": true}

// redactQuery renders query with the values of secret parameters masked.
func redactQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		for _, value := range query[key] {
			if secretParams[strings.ToLower(key)] {
				value = "REDACTED"
			}
			parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
		}
	}
	return strings.Join(parts, "&")
}
