// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/auth"
	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/services/account"
)

// UserHandlers contains handlers for the account of the caller and profiles.
type UserHandlers struct {
	accounts *account.Service
}

// NewUsers creates a new UserHandlers instance.
func NewUsers(accounts *account.Service) *UserHandlers {
	return &UserHandlers{accounts: accounts}
}

// ProfileResponse combines public account fields with the profile.
type ProfileResponse struct {
	Username string          `json:"username"`
	Fullname string          `json:"fullname"`
	Profile  *models.Profile `json:"profile"`
}

// DeleteAccount emails a link confirming the deletion of the account.
func (h *UserHandlers) DeleteAccount(c echo.Context) error {
	sess := auth.GetSession(c.Request().Context())
	if err := h.accounts.RequestDeletion(c.Request().Context(), sess); err != nil {
		return err
	}
	return respond(c, http.StatusAccepted, "deletion_requested", nil)
}

// Deactivate emails a link confirming the deactivation of the account.
func (h *UserHandlers) Deactivate(c echo.Context) error {
	sess := auth.GetSession(c.Request().Context())
	if err := h.accounts.RequestDeactivation(c.Request().Context(), sess); err != nil {
		return err
	}
	return respond(c, http.StatusAccepted, "deactivation_requested", nil)
}

// Profile returns the profile of the authenticated account.
func (h *UserHandlers) Profile(c echo.Context) error {
	acc := auth.GetAccount(c.Request().Context())
	profile, err := h.accounts.Profile(c.Request().Context(), acc.ID)
	if err != nil {
		return err
	}
	return ok(c, ProfileResponse{Username: acc.Username, Fullname: acc.Fullname, Profile: profile})
}

// PublicProfile returns the profile behind a username.
func (h *UserHandlers) PublicProfile(c echo.Context) error {
	acc, profile, err := h.accounts.PublicProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return ok(c, ProfileResponse{Username: acc.Username, Fullname: acc.Fullname, Profile: profile})
}

// UpdateProfile creates or replaces the profile of the authenticated account.
func (h *UserHandlers) UpdateProfile(c echo.Context) error {
	var req ProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	acc := auth.GetAccount(c.Request().Context())
	profile, err := h.accounts.UpdateProfile(c.Request().Context(), acc.ID, account.ProfileParams{
		Bio:         req.Bio,
		PhoneNumber: req.PhoneNumber,
		CityBorn:    req.CityBorn,
		CityHome:    req.CityHome,
		BirthDate:   req.birthDate(),
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "profile_updated",
		ProfileResponse{Username: acc.Username, Fullname: acc.Fullname, Profile: profile})
}
