// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// StatusFor returns the HTTP status carried by a classified error. Errors
// without their own code are a 400.
func StatusFor(rich *goerrors.Error) int {
	if rich == nil || rich.Code == 0 {
		return http.StatusBadRequest
	}
	return rich.Code
}

// ErrorHandler renders errors returned by handlers and middlewares as JSON.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError || body.Code == "error" {
		slog.ErrorContext(c.Request().Context(), "request_failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

func errorResponse(err error) (int, ErrorResponse) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for name, fieldErr := range fieldErrs {
			fields[name] = fieldErr.Error()
		}
		return http.StatusBadRequest, ErrorResponse{
			Error:  "invalid request",
			Code:   string(apperr.KindInvalid),
			Fields: fields,
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorResponse{Error: fmt.Sprint(he.Message), Code: httpCode(he.Code)}
	}

	if rich := apperr.From(err); rich != nil {
		return StatusFor(rich), ErrorResponse{Error: rich.Message, Code: rich.TextCode}
	}

	return http.StatusBadRequest, ErrorResponse{Error: "request could not be processed", Code: "error"}
}

func httpCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return string(apperr.KindNotFound)
	case http.StatusUnauthorized:
		return string(apperr.KindUnauthorized)
	case http.StatusConflict:
		return string(apperr.KindConflict)
	default:
		return "http_error"
	}
}
