// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/langeng/internal/config"
	"codeberg.org/oliverandrich/langeng/internal/handlers"
	"codeberg.org/oliverandrich/langeng/internal/metrics"
	"codeberg.org/oliverandrich/langeng/internal/middleware"
)

func setupRoutes(e *echo.Echo, cfg *config.Config, app *App) {
	h := handlers.New(app.Repo)
	authH := handlers.NewAuth(app.Accounts, app.Sessions, app.Verifications)
	usersH := handlers.NewUsers(app.Accounts)
	groupsH := handlers.NewGroups(app.Groups, app.Posts)
	postsH := handlers.NewPosts(app.Posts)
	commentsH := handlers.NewComments(app.Comments)
	reactionsH := handlers.NewReactions(app.Reactions)

	e.GET("/health", h.Health)
	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(metrics.Handler()))
	}

	api := e.Group("/api/v1", middleware.LoadSession(app.Sessions))
	requireAuth := middleware.RequireAuth

	// Authentication and verification
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.DELETE("/auth/logout", authH.Logout, requireAuth)
	api.GET("/auth/verify", authH.VerifyLink)
	api.PATCH("/auth/verify", authH.VerifyCode, requireAuth)
	api.POST("/auth/verify", authH.RequestVerification, requireAuth)

	// Own account and profiles
	api.DELETE("/users", usersH.DeleteAccount, requireAuth)
	api.POST("/users/deactivate", usersH.Deactivate, requireAuth)
	api.GET("/users/profile", usersH.Profile, requireAuth)
	api.PUT("/users/profile", usersH.UpdateProfile, requireAuth)
	api.GET("/users/profile/:username", usersH.PublicProfile)

	// Groups
	api.POST("/groups", groupsH.Create, requireAuth)
	api.GET("/groups/:slug", groupsH.Get)
	api.DELETE("/groups/:slug", groupsH.Delete, requireAuth)
	api.POST("/groups/:slug/join", groupsH.Join, requireAuth)
	api.PATCH("/groups/:slug/join", groupsH.UpdateMember, requireAuth)
	api.GET("/groups/:slug/requests", groupsH.Requests, requireAuth)
	api.GET("/groups/:slug/members", groupsH.Members)
	api.GET("/groups/:slug/posts", groupsH.Posts)

	// Posts
	api.POST("/posts", postsH.Create, requireAuth)
	api.GET("/posts", postsH.List)
	api.GET("/posts/:slug", postsH.Get)
	api.DELETE("/posts/:slug", postsH.Delete, requireAuth)
	api.GET("/posts/:slug/comments", commentsH.List)

	// Comments
	api.POST("/comments", commentsH.Create, requireAuth)
	api.DELETE("/comments/:id", commentsH.Delete, requireAuth)

	// Reactions
	api.GET("/reactions/post/:slug", reactionsH.PostSummary)
	api.POST("/reactions/post/:slug/:type", reactionsH.ReactPost, requireAuth)
	api.DELETE("/reactions/post/:slug", reactionsH.UnreactPost, requireAuth)
	api.GET("/reactions/comment/:id", reactionsH.CommentSummary)
	api.POST("/reactions/comment/:id/:type", reactionsH.ReactComment, requireAuth)
	api.DELETE("/reactions/comment/:id", reactionsH.UnreactComment, requireAuth)
}
