// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package seed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/auth"
	"github.com/vaultshare/vaultshare/internal/store"
)

// Registrar creates accounts. Satisfied by auth.Service.
type Registrar interface {
	Register(ctx context.Context, username, email, password string) (*account.User, error)
}

// WorkspaceAdmin creates workspaces and memberships. Satisfied by
// workspace.Service.
type WorkspaceAdmin interface {
	CreateWorkspace(ctx context.Context, adminID, name string, totalMemory float64, maxUsers int) (*account.Workspace, error)
	InviteUser(ctx context.Context, workspaceID, inviterID, inviteeEmail string) (*account.Invite, error)
	AcceptInvite(ctx context.Context, inviteID, userID string) (*account.WorkspaceUser, error)
}

// Applier applies a seed file against the live services.
type Applier struct {
	auth       Registrar
	workspaces WorkspaceAdmin
	repos      *account.Repositories
	logger     *slog.Logger
}

// NewApplier wires an Applier. logger may be nil.
func NewApplier(registrar Registrar, workspaces WorkspaceAdmin, repos *account.Repositories, logger *slog.Logger) (*Applier, error) {
	if registrar == nil {
		return nil, oops.Code("SEED_INVALID_DEPENDENCY").Errorf("registrar is required")
	}
	if workspaces == nil {
		return nil, oops.Code("SEED_INVALID_DEPENDENCY").Errorf("workspace service is required")
	}
	if repos == nil {
		return nil, oops.Code("SEED_INVALID_DEPENDENCY").Errorf("repositories are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{auth: registrar, workspaces: workspaces, repos: repos, logger: logger}, nil
}

// Apply creates the users and workspaces the file describes. Existing
// users, workspaces, and memberships are left untouched, so rerunning
// the same file is safe.
func (a *Applier) Apply(ctx context.Context, f *File) error {
	for _, u := range f.Users {
		if err := a.applyUser(ctx, u); err != nil {
			return err
		}
	}
	for _, ws := range f.Workspaces {
		if err := a.applyWorkspace(ctx, ws); err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) applyUser(ctx context.Context, u User) error {
	_, err := a.auth.Register(ctx, u.Username, u.Email, u.Password)
	if errors.Is(err, auth.ErrDuplicateUser) {
		a.logger.InfoContext(ctx, "seed user already exists, skipping", "username", u.Username)
		return nil
	}
	if err != nil {
		return oops.Code("SEED_USER_FAILED").
			With("username", u.Username).
			Wrap(err)
	}
	a.logger.InfoContext(ctx, "seed user created", "username", u.Username)
	return nil
}

func (a *Applier) applyWorkspace(ctx context.Context, ws Workspace) error {
	admin, err := a.repos.Users.Find(ctx, store.Filter{"username": ws.Admin})
	if err != nil {
		return oops.Code("SEED_WORKSPACE_FAILED").
			With("workspace", ws.Name).
			With("admin", ws.Admin).
			Wrapf(err, "resolving admin")
	}

	created, err := a.repos.Workspaces.Find(ctx, store.Filter{"name": ws.Name, "admin_id": admin.ID})
	switch {
	case err == nil:
		a.logger.InfoContext(ctx, "seed workspace already exists, skipping", "workspace", ws.Name)
	case errors.Is(err, store.ErrNotFound):
		created, err = a.workspaces.CreateWorkspace(ctx, admin.ID, ws.Name, ws.TotalMemory, ws.MaxUsers)
		if err != nil {
			return oops.Code("SEED_WORKSPACE_FAILED").
				With("workspace", ws.Name).
				Wrap(err)
		}
		a.logger.InfoContext(ctx, "seed workspace created", "workspace", ws.Name)
	default:
		return oops.Code("SEED_WORKSPACE_FAILED").
			With("workspace", ws.Name).
			Wrapf(err, "probing for existing workspace")
	}

	for _, username := range ws.Members {
		if err := a.applyMember(ctx, created, admin, username); err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) applyMember(ctx context.Context, ws *account.Workspace, admin *account.User, username string) error {
	member, err := a.repos.Users.Find(ctx, store.Filter{"username": username})
	if err != nil {
		return oops.Code("SEED_MEMBER_FAILED").
			With("workspace", ws.Name).
			With("username", username).
			Wrapf(err, "resolving member")
	}

	_, err = a.repos.Members.Find(ctx, store.Filter{"workspace_id": ws.ID, "user_id": member.ID})
	if err == nil {
		a.logger.InfoContext(ctx, "seed member already joined, skipping",
			"workspace", ws.Name, "username", username)
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return oops.Code("SEED_MEMBER_FAILED").
			With("workspace", ws.Name).
			With("username", username).
			Wrapf(err, "probing membership")
	}

	invite, err := a.workspaces.InviteUser(ctx, ws.ID, admin.ID, member.Email)
	if err != nil {
		return oops.Code("SEED_MEMBER_FAILED").
			With("workspace", ws.Name).
			With("username", username).
			Wrapf(err, "inviting member")
	}
	if _, err := a.workspaces.AcceptInvite(ctx, invite.ID, member.ID); err != nil {
		// A concurrent join between the probe and the accept lands on
		// the unique membership constraint.
		if errors.Is(err, store.ErrConflict) {
			a.logger.InfoContext(ctx, "seed member already joined, skipping",
				"workspace", ws.Name, "username", username)
			return nil
		}
		return oops.Code("SEED_MEMBER_FAILED").
			With("workspace", ws.Name).
			With("username", username).
			Wrapf(err, "accepting invite")
	}

	a.logger.InfoContext(ctx, "seed member joined", "workspace", ws.Name, "username", username)
	return nil
}
