// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

// Package account defines the persisted entity types (User, Workspace,
// WorkspaceUser, Folder, File, Invite, Alert) and their repositories.
//
// # Domain Types
//
// Entity structs mirror their database rows one to one; `db` tags bind
// columns for scanning. Validation helpers (ValidateUsername,
// ValidateEmail, ValidateRole) guard caller input before it reaches the
// store.
//
// # Repositories
//
// One generic Repository wraps a store collection and is specialized
// per entity through its schema and update-exclusion list - data, not
// subclassing. Every mutating method validates the caller-supplied
// field names before delegating, so unknown or forbidden columns never
// reach SQL.
package account
