// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package account

import "time"

// Invite lifecycle states.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
)

// InviteTypeWorkspace invites an email address to join a workspace.
const InviteTypeWorkspace = "workspace_invite"

// Alert types emitted by the bookkeeping layer.
const (
	AlertTypeInvite         = "invite"
	AlertTypeMemoryUsage    = "memory_usage"
	AlertTypeMemoryExceeded = "memory_exceeded"
)

// Invite records a pending membership offer to an email address. The
// invitee does not need an account yet.
type Invite struct {
	ID           string    `db:"id" json:"id"`
	InviteType   string    `db:"invite_type" json:"invite_type"`
	WorkspaceID  string    `db:"workspace_id" json:"workspace_id"`
	InviterID    string    `db:"inviter_id" json:"inviter_id"`
	InviteeEmail string    `db:"invitee_email" json:"invitee_email"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Alert is a passive notification row for a user. Nothing is delivered;
// clients poll and mark rows read.
type Alert struct {
	ID          string    `db:"id" json:"id"`
	AlertType   string    `db:"alert_type" json:"alert_type"`
	UserID      string    `db:"user_id" json:"user_id"`
	WorkspaceID *string   `db:"workspace_id" json:"workspace_id,omitempty"`
	Message     string    `db:"message" json:"message"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
