// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package account

import "time"

// Folder is a node in a workspace's folder tree. Parent and children
// are id references only; the tree shape is derived with a FolderIndex,
// never stored as ownership edges. A nil UserID marks the workspace's
// shared/admin folder.
type Folder struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	WorkspaceID    string    `db:"workspace_id" json:"workspace_id"`
	UserID         *string   `db:"user_id" json:"user_id,omitempty"`
	ParentFolderID *string   `db:"parent_folder_id" json:"parent_folder_id,omitempty"`
	IsRoot         bool      `db:"is_root" json:"is_root"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// File is file metadata only; no byte storage backs it. Size is in MB.
type File struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Path        string    `db:"path" json:"path"`
	WorkspaceID string    `db:"workspace_id" json:"workspace_id"`
	UserID      *string   `db:"user_id" json:"user_id,omitempty"`
	FolderID    *string   `db:"folder_id" json:"folder_id,omitempty"`
	Size        float64   `db:"size" json:"size"`
	IsDirectory bool      `db:"is_directory" json:"is_directory"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
