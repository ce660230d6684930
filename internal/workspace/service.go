// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

// Package workspace provides the bookkeeping service over shared
// storage areas: creation, membership invites, member quotas, file
// metadata registration, and the alerts those operations emit.
//
// Multi-step units of work run inside one transaction; single-row
// operations go straight to the pool. Quota limits on registration are
// soft: crossing a threshold emits an alert row rather than rejecting
// the write. Allocation changes are the hard-checked side.
package workspace

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/ident"
	"github.com/vaultshare/vaultshare/internal/store"
)

// Pool is the querier surface the service needs: plain statements plus
// the ability to open a transaction. Satisfied by *pgxpool.Pool and
// pgxmock pools.
type Pool interface {
	store.DB
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service sentinel errors. Callers branch on these with errors.Is; the
// wrapping oops codes carry the context.
var (
	ErrNotAdmin       = errors.New("user is not the workspace admin")
	ErrNotMember      = errors.New("user is not a workspace member")
	ErrWorkspaceFull  = errors.New("workspace member limit reached")
	ErrQuotaExceeded  = errors.New("allocation exceeds workspace memory")
	ErrInviteResolved = errors.New("invite already resolved")
	ErrInviteMismatch = errors.New("invite addressed to a different email")
)

// Service provides workspace bookkeeping operations.
type Service struct {
	pool   Pool
	repos  *account.Repositories
	ids    ident.Generator
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(pool Pool, ids ident.Generator) (*Service, error) {
	return NewServiceWithLogger(pool, ids, slog.Default())
}

// NewServiceWithLogger creates a new Service with a custom logger.
func NewServiceWithLogger(pool Pool, ids ident.Generator, logger *slog.Logger) (*Service, error) {
	if pool == nil {
		return nil, oops.Code("WORKSPACE_INVALID_DEPENDENCY").Errorf("pool is required")
	}
	if ids == nil {
		return nil, oops.Code("WORKSPACE_INVALID_DEPENDENCY").Errorf("identifier generator is required")
	}
	if logger == nil {
		return nil, oops.Code("WORKSPACE_INVALID_DEPENDENCY").Errorf("logger is required")
	}
	return &Service{
		pool:   pool,
		repos:  account.NewRepositories(pool),
		ids:    ids,
		logger: logger,
	}, nil
}

// withTx runs fn with the repository set bound to one transaction and
// commits on success. Any error rolls everything back.
func (s *Service) withTx(ctx context.Context, fn func(repos *account.Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return oops.Code("WORKSPACE_TX_FAILED").
			With("operation", "begin transaction").
			Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(s.repos.WithDB(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("WORKSPACE_TX_FAILED").
			With("operation", "commit transaction").
			Wrap(err)
	}
	return nil
}

// CreateWorkspace provisions a workspace for an admin user: the
// workspace row, the admin's membership, and the shared root folder,
// all in one transaction. Zero or negative memory/user limits fall
// back to the defaults.
func (s *Service) CreateWorkspace(ctx context.Context, adminID, name string, totalMemory float64, maxUsers int) (*account.Workspace, error) {
	if name == "" {
		return nil, oops.Code("WORKSPACE_INVALID_NAME").Errorf("workspace name is required")
	}
	if totalMemory <= 0 {
		totalMemory = account.DefaultWorkspaceMemory
	}
	if maxUsers <= 0 {
		maxUsers = account.DefaultMaxUsers
	}

	admin, err := s.repos.Users.Find(ctx, store.Filter{"id": adminID})
	if errors.Is(err, store.ErrNotFound) {
		return nil, oops.Code("WORKSPACE_UNKNOWN_ADMIN").
			With("admin_id", adminID).
			Wrap(err)
	}
	if err != nil {
		return nil, oops.Code("WORKSPACE_CREATE_FAILED").
			With("operation", "find admin").
			Wrap(err)
	}

	var ws *account.Workspace
	err = s.withTx(ctx, func(repos *account.Repositories) error {
		ws, err = repos.Workspaces.Add(ctx, store.Fields{
			"id":           s.ids.NewID(),
			"name":         name,
			"admin_id":     admin.ID,
			"total_memory": totalMemory,
			"max_users":    maxUsers,
		})
		if err != nil {
			return oops.Code("WORKSPACE_CREATE_FAILED").
				With("operation", "insert workspace").
				Wrap(err)
		}

		if _, err := repos.Members.Add(ctx, store.Fields{
			"id":           s.ids.NewID(),
			"workspace_id": ws.ID,
			"user_id":      admin.ID,
			"role":         account.RoleAdmin,
		}); err != nil {
			return oops.Code("WORKSPACE_CREATE_FAILED").
				With("operation", "insert admin membership").
				Wrap(err)
		}

		// The root folder is shared: no owning user.
		if _, err := repos.Folders.Add(ctx, store.Fields{
			"id":           s.ids.NewID(),
			"name":         name,
			"workspace_id": ws.ID,
			"user_id":      nil,
			"is_root":      true,
		}); err != nil {
			return oops.Code("WORKSPACE_CREATE_FAILED").
				With("operation", "insert root folder").
				Wrap(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "workspace created",
		slog.String("workspace_id", ws.ID),
		slog.String("admin_id", admin.ID))

	return ws, nil
}

// DeleteWorkspace tears a workspace down. Only the admin may do it;
// memberships, folders, files, invites, and alerts go with it through
// the schema's cascading foreign keys.
func (s *Service) DeleteWorkspace(ctx context.Context, workspaceID, requesterID string) error {
	ws, err := s.repos.Workspaces.Find(ctx, store.Filter{"id": workspaceID})
	if err != nil {
		return oops.Code("WORKSPACE_DELETE_FAILED").
			With("workspace_id", workspaceID).
			Wrap(err)
	}
	if ws.AdminID != requesterID {
		return oops.Code("WORKSPACE_NOT_ADMIN").
			With("workspace_id", workspaceID).
			With("user_id", requesterID).
			Wrap(ErrNotAdmin)
	}

	if _, err := s.repos.Workspaces.Remove(ctx, store.Filter{"id": workspaceID}); err != nil {
		return oops.Code("WORKSPACE_DELETE_FAILED").
			With("workspace_id", workspaceID).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "workspace deleted",
		slog.String("workspace_id", workspaceID))
	return nil
}

// Workspace returns a workspace by id.
func (s *Service) Workspace(ctx context.Context, workspaceID string) (*account.Workspace, error) {
	return s.repos.Workspaces.Find(ctx, store.Filter{"id": workspaceID})
}

// Members lists a workspace's membership rows.
func (s *Service) Members(ctx context.Context, workspaceID string) ([]account.WorkspaceUser, error) {
	return s.repos.Members.FindAll(ctx, store.Filter{"workspace_id": workspaceID}, 0)
}

// membership returns the membership row for a user in a workspace,
// classifying a miss as ErrNotMember.
func (s *Service) membership(ctx context.Context, repos *account.Repositories, workspaceID, userID string) (*account.WorkspaceUser, error) {
	member, err := repos.Members.Find(ctx, store.Filter{
		"workspace_id": workspaceID,
		"user_id":      userID,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, oops.Code("WORKSPACE_NOT_MEMBER").
			With("workspace_id", workspaceID).
			With("user_id", userID).
			Wrap(ErrNotMember)
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}
