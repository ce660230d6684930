// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/oops"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/store"
)

// InviteUser records a pending invite from the workspace admin to an
// email address. The invitee does not need an account yet; when one
// exists, an invite alert is raised for it in the same transaction.
func (s *Service) InviteUser(ctx context.Context, workspaceID, inviterID, inviteeEmail string) (*account.Invite, error) {
	if err := account.ValidateEmail(inviteeEmail); err != nil {
		return nil, err
	}

	ws, err := s.repos.Workspaces.Find(ctx, store.Filter{"id": workspaceID})
	if err != nil {
		return nil, oops.Code("WORKSPACE_INVITE_FAILED").
			With("workspace_id", workspaceID).
			Wrap(err)
	}
	if ws.AdminID != inviterID {
		return nil, oops.Code("WORKSPACE_NOT_ADMIN").
			With("workspace_id", workspaceID).
			With("user_id", inviterID).
			Wrap(ErrNotAdmin)
	}

	members, err := s.repos.Members.FindAll(ctx, store.Filter{"workspace_id": workspaceID}, 0)
	if err != nil {
		return nil, oops.Code("WORKSPACE_INVITE_FAILED").
			With("operation", "count members").
			Wrap(err)
	}
	if len(members) >= ws.MaxUsers {
		return nil, oops.Code("WORKSPACE_FULL").
			With("workspace_id", workspaceID).
			With("max_users", ws.MaxUsers).
			Wrap(ErrWorkspaceFull)
	}

	// Resolve the invitee before the transaction; an unknown address
	// just means no alert to raise.
	invitee, err := s.repos.Users.Find(ctx, store.Filter{"email": inviteeEmail})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, oops.Code("WORKSPACE_INVITE_FAILED").
			With("operation", "find invitee").
			Wrap(err)
	}

	var invite *account.Invite
	err = s.withTx(ctx, func(repos *account.Repositories) error {
		invite, err = repos.Invites.Add(ctx, store.Fields{
			"id":            s.ids.NewID(),
			"invite_type":   account.InviteTypeWorkspace,
			"workspace_id":  workspaceID,
			"inviter_id":    inviterID,
			"invitee_email": inviteeEmail,
			"status":        account.InviteStatusPending,
		})
		if err != nil {
			return oops.Code("WORKSPACE_INVITE_FAILED").
				With("operation", "insert invite").
				Wrap(err)
		}

		if invitee != nil {
			if err := s.raiseAlert(ctx, repos, account.AlertTypeInvite, invitee.ID, &workspaceID,
				fmt.Sprintf("You have been invited to workspace %q", ws.Name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "workspace invite issued",
		slog.String("workspace_id", workspaceID),
		slog.String("invite_id", invite.ID))

	return invite, nil
}

// AcceptInvite turns a pending invite into a membership, flips its
// status, and alerts the inviter. The accepting user's email must be
// the invited one; joining twice surfaces the membership row's unique
// constraint as ErrConflict.
func (s *Service) AcceptInvite(ctx context.Context, inviteID, userID string) (*account.WorkspaceUser, error) {
	invite, user, err := s.resolveInvite(ctx, inviteID, userID)
	if err != nil {
		return nil, err
	}

	var member *account.WorkspaceUser
	err = s.withTx(ctx, func(repos *account.Repositories) error {
		member, err = repos.Members.Add(ctx, store.Fields{
			"id":           s.ids.NewID(),
			"workspace_id": invite.WorkspaceID,
			"user_id":      user.ID,
			"role":         account.RoleUser,
		})
		if err != nil {
			return oops.Code("WORKSPACE_JOIN_FAILED").
				With("workspace_id", invite.WorkspaceID).
				With("user_id", user.ID).
				Wrap(err)
		}

		if _, err := repos.Invites.Update(ctx,
			store.Filter{"id": invite.ID},
			store.Fields{"status": account.InviteStatusAccepted},
		); err != nil {
			return oops.Code("WORKSPACE_JOIN_FAILED").
				With("operation", "update invite status").
				Wrap(err)
		}

		return s.raiseAlert(ctx, repos, account.AlertTypeInvite, invite.InviterID, &invite.WorkspaceID,
			fmt.Sprintf("%s accepted your workspace invite", user.Username))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "workspace invite accepted",
		slog.String("invite_id", invite.ID),
		slog.String("user_id", user.ID))

	return member, nil
}

// DeclineInvite flips a pending invite to declined. No membership or
// alert rows are touched.
func (s *Service) DeclineInvite(ctx context.Context, inviteID, userID string) error {
	invite, _, err := s.resolveInvite(ctx, inviteID, userID)
	if err != nil {
		return err
	}

	if _, err := s.repos.Invites.Update(ctx,
		store.Filter{"id": invite.ID},
		store.Fields{"status": account.InviteStatusDeclined},
	); err != nil {
		return oops.Code("WORKSPACE_DECLINE_FAILED").
			With("invite_id", invite.ID).
			Wrap(err)
	}
	return nil
}

// resolveInvite loads a pending invite and checks the acting user is
// its addressee.
func (s *Service) resolveInvite(ctx context.Context, inviteID, userID string) (*account.Invite, *account.User, error) {
	invite, err := s.repos.Invites.Find(ctx, store.Filter{"id": inviteID})
	if err != nil {
		return nil, nil, oops.Code("WORKSPACE_INVITE_LOOKUP_FAILED").
			With("invite_id", inviteID).
			Wrap(err)
	}
	if invite.Status != account.InviteStatusPending {
		return nil, nil, oops.Code("WORKSPACE_INVITE_RESOLVED").
			With("invite_id", inviteID).
			With("status", invite.Status).
			Wrap(ErrInviteResolved)
	}

	user, err := s.repos.Users.Find(ctx, store.Filter{"id": userID})
	if err != nil {
		return nil, nil, oops.Code("WORKSPACE_INVITE_LOOKUP_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	if user.Email != invite.InviteeEmail {
		return nil, nil, oops.Code("WORKSPACE_INVITE_MISMATCH").
			With("invite_id", inviteID).
			Wrap(ErrInviteMismatch)
	}
	return invite, user, nil
}
