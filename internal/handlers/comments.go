// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"codeberg.org/oliverandrich/langeng/internal/auth"
	"codeberg.org/oliverandrich/langeng/internal/services/comments"
)

// ErrInvalidID is returned when a numeric path parameter cannot be parsed.
var ErrInvalidID = apperr.Invalid("invalid id")

// CommentHandlers contains handlers for post comments.
type CommentHandlers struct {
	comments *comments.Service
}

// NewComments creates a new CommentHandlers instance.
func NewComments(commentService *comments.Service) *CommentHandlers {
	return &CommentHandlers{comments: commentService}
}

// Create comments on a post, optionally replying to another comment.
func (h *CommentHandlers) Create(c echo.Context) error {
	var req CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	comment, err := h.comments.Create(ctx, auth.GetAccount(ctx), req.Slug, req.Content, req.ReplyID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "comment_created", comment)
}

// List returns the comments of a post.
func (h *CommentHandlers) List(c echo.Context) error {
	list, err := h.comments.List(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return ok(c, list)
}

// Delete removes a comment.
func (h *CommentHandlers) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.comments.Delete(ctx, id, auth.GetAccount(ctx)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "comment_deleted", nil)
}

// idParam reads the numeric :id path parameter.
func idParam(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).MustInt64("id", &id).BindError(); err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}
