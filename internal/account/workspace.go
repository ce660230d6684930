// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package account

import "time"

// Workspace defaults applied at creation when the caller leaves the
// knobs unset.
const (
	DefaultWorkspaceMemory = 10.0
	DefaultMaxUsers        = 5
)

// Workspace is a shared storage area owned by exactly one admin user.
type Workspace struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	AdminID     string    `db:"admin_id" json:"admin_id"`
	TotalMemory float64   `db:"total_memory" json:"total_memory"`
	MemoryUsed  float64   `db:"memory_used" json:"memory_used"`
	MaxUsers    int       `db:"max_users" json:"max_users"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// WorkspaceUser is one user's membership in a workspace, carrying the
// slice of the workspace quota allocated to that member. One row exists
// per (workspace, user) pair.
type WorkspaceUser struct {
	ID              string    `db:"id" json:"id"`
	WorkspaceID     string    `db:"workspace_id" json:"workspace_id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Role            string    `db:"role" json:"role"`
	MemoryAllocated float64   `db:"memory_allocated" json:"memory_allocated"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
