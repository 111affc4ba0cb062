// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/auth"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/services/reactions"
)

// ReactionHandlers contains handlers for reactions on posts and comments.
type ReactionHandlers struct {
	reactions *reactions.Service
}

// NewReactions creates a new ReactionHandlers instance.
func NewReactions(reactionService *reactions.Service) *ReactionHandlers {
	return &ReactionHandlers{reactions: reactionService}
}

// ReactPost sets the caller's reaction on a post.
func (h *ReactionHandlers) ReactPost(c echo.Context) error {
	ctx := c.Request().Context()
	typ := models.ReactionType(c.Param("type"))
	if err := h.reactions.ReactPost(ctx, auth.GetAccount(ctx), c.Param("slug"), typ); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "reaction_saved", nil)
}

// UnreactPost removes the caller's reaction from a post.
func (h *ReactionHandlers) UnreactPost(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.reactions.UnreactPost(ctx, auth.GetAccount(ctx), c.Param("slug")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "reaction_removed", nil)
}

// PostSummary returns the reaction counts of a post.
func (h *ReactionHandlers) PostSummary(c echo.Context) error {
	counts, err := h.reactions.PostSummary(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return ok(c, counts)
}

// ReactComment sets the caller's reaction on a comment.
func (h *ReactionHandlers) ReactComment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	typ := models.ReactionType(c.Param("type"))
	if err := h.reactions.ReactComment(ctx, auth.GetAccount(ctx), id, typ); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "reaction_saved", nil)
}

// UnreactComment removes the caller's reaction from a comment.
func (h *ReactionHandlers) UnreactComment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.reactions.UnreactComment(ctx, auth.GetAccount(ctx), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "reaction_removed", nil)
}

// CommentSummary returns the reaction counts of a comment.
func (h *ReactionHandlers) CommentSummary(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	counts, err := h.reactions.CommentSummary(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, counts)
}
