// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"codeberg.org/oliverandrich/langeng/internal/i18n"
)

// ErrInvalidBody is returned when a request body cannot be decoded.
var ErrInvalidBody = apperr.Invalid("invalid request body")

// Response is the body of every successful request.
type Response struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req validation.Validatable) error {
	if err := c.Bind(req); err != nil {
		return ErrInvalidBody
	}
	return req.Validate()
}

// respond writes a translated message and optional data.
func respond(c echo.Context, status int, messageID string, data any) error {
	return respondData(c, status, messageID, nil, data)
}

func respondData(c echo.Context, status int, messageID string, templateData map[string]any, data any) error {
	resp := Response{Data: data}
	if messageID != "" {
		resp.Message = i18n.TData(c.Request().Context(), messageID, templateData)
	}
	return c.JSON(status, resp)
}

// ok writes data without a message.
func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Response{Data: data})
}
