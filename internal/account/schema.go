// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package account

import "github.com/vaultshare/vaultshare/internal/store"

// Entity schemas. Column lists are the only names dynamic SQL may use;
// anything else is rejected as an invalid attribute.
var (
	UserSchema = store.Schema{
		Table: "users",
		Columns: []string{
			"id", "username", "email", "hashed_password", "role",
			"memory_allocated", "memory_used", "session_id", "created_at",
		},
	}

	WorkspaceSchema = store.Schema{
		Table: "workspaces",
		Columns: []string{
			"id", "name", "admin_id", "total_memory", "memory_used",
			"max_users", "created_at",
		},
	}

	WorkspaceUserSchema = store.Schema{
		Table: "workspace_users",
		Columns: []string{
			"id", "workspace_id", "user_id", "role", "memory_allocated",
			"created_at",
		},
	}

	FolderSchema = store.Schema{
		Table: "folders",
		Columns: []string{
			"id", "name", "workspace_id", "user_id", "parent_folder_id",
			"is_root", "created_at",
		},
	}

	FileSchema = store.Schema{
		Table: "files",
		Columns: []string{
			"id", "name", "path", "workspace_id", "user_id", "folder_id",
			"size", "is_directory", "created_at", "updated_at",
		},
	}

	InviteSchema = store.Schema{
		Table: "invites",
		Columns: []string{
			"id", "invite_type", "workspace_id", "inviter_id",
			"invitee_email", "status", "created_at",
		},
	}

	AlertSchema = store.Schema{
		Table: "alerts",
		Columns: []string{
			"id", "alert_type", "user_id", "workspace_id", "message",
			"is_read", "created_at",
		},
	}
)

// Update-exclusion lists: fields that may never be targets of a
// caller-driven update, even though they are schema-valid.
var (
	userUpdateExclusions          = []string{"id", "created_at"}
	workspaceUpdateExclusions     = []string{"id", "admin_id", "created_at"}
	workspaceUserUpdateExclusions = []string{"id", "workspace_id", "user_id", "created_at"}
	folderUpdateExclusions        = []string{"id", "workspace_id", "is_root", "created_at"}
	fileUpdateExclusions          = []string{"id", "workspace_id", "created_at"}
	inviteUpdateExclusions        = []string{"id", "invite_type", "workspace_id", "inviter_id", "invitee_email", "created_at"}
	alertUpdateExclusions         = []string{"id", "alert_type", "user_id", "workspace_id", "created_at"}
)
