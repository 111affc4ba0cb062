// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/auth"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/services/groups"
	"codeberg.org/oliverandrich/langeng/internal/services/posts"
)

// GroupHandlers contains handlers for groups and their members.
type GroupHandlers struct {
	groups *groups.Service
	posts  *posts.Service
}

// NewGroups creates a new GroupHandlers instance.
func NewGroups(groupService *groups.Service, postService *posts.Service) *GroupHandlers {
	return &GroupHandlers{groups: groupService, posts: postService}
}

// Create creates a group owned by the authenticated account.
func (h *GroupHandlers) Create(c echo.Context) error {
	var req CreateGroupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	group, err := h.groups.Create(c.Request().Context(), auth.GetAccount(c.Request().Context()), groups.CreateParams{
		Name:        req.Name,
		Privacy:     models.Privacy(req.Privacy),
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "group_created", group)
}

// Get returns a group visible to the caller.
func (h *GroupHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	group, err := h.groups.Get(ctx, c.Param("slug"), auth.GetAccount(ctx))
	if err != nil {
		return err
	}
	return ok(c, group)
}

// Delete removes a group and its posts.
func (h *GroupHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.groups.Delete(ctx, c.Param("slug"), auth.GetAccount(ctx)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "group_deleted", nil)
}

// Join asks the group creator to admit the authenticated account.
func (h *GroupHandlers) Join(c echo.Context) error {
	ctx := c.Request().Context()
	member, err := h.groups.Join(ctx, c.Param("slug"), auth.GetAccount(ctx))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "group_join_requested", member)
}

// UpdateMember settles a pending membership request.
func (h *GroupHandlers) UpdateMember(c echo.Context) error {
	var req UpdateMemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	member, err := h.groups.UpdateMemberStatus(ctx, c.Param("slug"), auth.GetAccount(ctx),
		req.MemberID, models.MemberStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "group_member_updated", member)
}

// Requests lists the pending membership requests for the group creator.
func (h *GroupHandlers) Requests(c echo.Context) error {
	ctx := c.Request().Context()
	members, err := h.groups.Requests(ctx, c.Param("slug"), auth.GetAccount(ctx))
	if err != nil {
		return err
	}
	return ok(c, members)
}

// Members lists the approved members of a group.
func (h *GroupHandlers) Members(c echo.Context) error {
	ctx := c.Request().Context()
	members, err := h.groups.Members(ctx, c.Param("slug"), auth.GetAccount(ctx))
	if err != nil {
		return err
	}
	return ok(c, members)
}

// Posts lists the posts of a group.
func (h *GroupHandlers) Posts(c echo.Context) error {
	ctx := c.Request().Context()
	list, err := h.posts.GroupPosts(ctx, c.Param("slug"), auth.GetAccount(ctx))
	if err != nil {
		return err
	}
	return ok(c, list)
}
