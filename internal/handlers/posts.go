// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/auth"
	"codeberg.org/oliverandrich/langeng/internal/services/posts"
)

// PostHandlers contains handlers for posts.
type PostHandlers struct {
	posts *posts.Service
}

// NewPosts creates a new PostHandlers instance.
func NewPosts(postService *posts.Service) *PostHandlers {
	return &PostHandlers{posts: postService}
}

// Create publishes a post, optionally into a group.
func (h *PostHandlers) Create(c echo.Context) error {
	var req CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.posts.Create(ctx, auth.GetAccount(ctx), posts.CreateParams{
		Content:             req.Content,
		CommentAvailability: req.commentsEnabled(),
		GroupSlug:           req.Group,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "post_created", post)
}

// List returns a filtered page of posts visible to the caller.
func (h *PostHandlers) List(c echo.Context) error {
	var req ListPostsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	page, err := h.posts.List(ctx, posts.ListParams{
		Tags:    req.tags(),
		Author:  req.Author,
		Group:   req.Group,
		Keyword: req.Keyword,
		Page:    req.Page,
		Limit:   req.Limit,
	}, auth.GetAccount(ctx))
	if err != nil {
		return err
	}
	return ok(c, page)
}

// Get returns a post.
func (h *PostHandlers) Get(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return ok(c, post)
}

// Delete removes a post.
func (h *PostHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.posts.Delete(ctx, c.Param("slug"), auth.GetAccount(ctx)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "post_deleted", nil)
}
