// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package workspace

import (
	"context"

	"github.com/samber/oops"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/store"
)

// Alerts lists a user's alerts, optionally unread only.
func (s *Service) Alerts(ctx context.Context, userID string, unreadOnly bool) ([]account.Alert, error) {
	filter := store.Filter{"user_id": userID}
	if unreadOnly {
		filter["is_read"] = false
	}
	alerts, err := s.repos.Alerts.FindAll(ctx, filter, 0)
	if err != nil {
		return nil, oops.Code("WORKSPACE_ALERT_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	return alerts, nil
}

// MarkAlertRead marks one of the user's alerts read and reports whether
// a row changed. Marking someone else's alert changes nothing.
func (s *Service) MarkAlertRead(ctx context.Context, alertID, userID string) (bool, error) {
	count, err := s.repos.Alerts.Update(ctx,
		store.Filter{"id": alertID, "user_id": userID},
		store.Fields{"is_read": true},
	)
	if err != nil {
		return false, oops.Code("WORKSPACE_ALERT_FAILED").
			With("alert_id", alertID).
			Wrap(err)
	}
	return count > 0, nil
}

// Invites lists a user's pending invites by the email on their account.
func (s *Service) Invites(ctx context.Context, userEmail string) ([]account.Invite, error) {
	invites, err := s.repos.Invites.FindAll(ctx, store.Filter{
		"invitee_email": userEmail,
		"status":        account.InviteStatusPending,
	}, 0)
	if err != nil {
		return nil, oops.Code("WORKSPACE_INVITE_LOOKUP_FAILED").
			With("invitee_email", userEmail).
			Wrap(err)
	}
	return invites, nil
}
