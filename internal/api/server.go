// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

// Package api exposes the HTTP surface of the account service: signup,
// sessions, workspaces, invites, files, and alerts. Authentication is a
// bearer session token issued by Login and checked against the users
// table on every request.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/auth"
	"github.com/vaultshare/vaultshare/internal/observability"
	"github.com/vaultshare/vaultshare/internal/workspace"
)

// Server holds the services the HTTP handlers delegate to.
type Server struct {
	auth       *auth.Service
	workspaces *workspace.Service
	users      *account.UserRepository
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an API server. metrics may be nil, in which case no
// request or account metrics are recorded.
func NewServer(authSvc *auth.Service, wsSvc *workspace.Service, users *account.UserRepository, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		auth:       authSvc,
		workspaces: wsSvc,
		users:      users,
		metrics:    metrics,
		logger:     logger,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metricsMiddleware)
	}

	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)
	r.Get("/status", s.handleStatus)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Delete("/logout", s.handleLogout)
		r.Get("/me", s.handleMe)
		r.Get("/users", s.handleListUsers)

		r.Route("/workspaces", func(r chi.Router) {
			r.Post("/", s.handleCreateWorkspace)
			r.Route("/{workspaceID}", func(r chi.Router) {
				r.Get("/", s.handleGetWorkspace)
				r.Delete("/", s.handleDeleteWorkspace)
				r.Get("/members", s.handleListMembers)
				r.Post("/invites", s.handleInviteUser)
				r.Put("/members/{userID}/quota", s.handleAllocateQuota)
				r.Get("/folders", s.handleFolderTree)
				r.Post("/folders", s.handleCreateFolder)
				r.Put("/folders/{folderID}/parent", s.handleMoveFolder)
				r.Post("/files", s.handleRegisterFile)
			})
		})

		r.Get("/invites", s.handleListInvites)
		r.Post("/invites/{inviteID}/accept", s.handleAcceptInvite)
		r.Post("/invites/{inviteID}/decline", s.handleDeclineInvite)

		r.Delete("/files/{fileID}", s.handleRemoveFile)

		r.Get("/alerts", s.handleListAlerts)
		r.Post("/alerts/{alertID}/read", s.handleMarkAlertRead)
	})

	return r
}
