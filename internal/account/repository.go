// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package account

import (
	"context"

	"github.com/vaultshare/vaultshare/internal/store"
)

// Repository wraps a store collection with an entity-specific
// update-exclusion list. All entity repositories are instances of this
// one type, specialized by schema and exclusions.
type Repository[T any] struct {
	coll             *store.Collection[T]
	updateExclusions []string
}

func newRepository[T any](db store.DB, schema store.Schema, updateExclusions []string) *Repository[T] {
	return &Repository[T]{
		coll:             store.NewCollection[T](db, schema),
		updateExclusions: updateExclusions,
	}
}

// WithDB returns a copy bound to a different querier, typically a
// transaction.
func (r *Repository[T]) WithDB(db store.DB) *Repository[T] {
	return &Repository[T]{
		coll:             r.coll.WithDB(db),
		updateExclusions: r.updateExclusions,
	}
}

// Add persists a new entity from the given fields.
func (r *Repository[T]) Add(ctx context.Context, fields store.Fields) (*T, error) {
	return r.coll.Create(ctx, fields)
}

// Find returns the first entity matching the filter, or ErrNotFound.
func (r *Repository[T]) Find(ctx context.Context, filter store.Filter) (*T, error) {
	return r.coll.Get(ctx, filter)
}

// FindAll returns all entities matching the filter. A limit of zero or
// less means no limit.
func (r *Repository[T]) FindAll(ctx context.Context, filter store.Filter, limit int) ([]T, error) {
	return r.coll.List(ctx, filter, limit)
}

// Update sets the given fields on every matching entity and returns the
// number of rows changed. Fields on the entity's exclusion list are
// rejected before anything is touched.
func (r *Repository[T]) Update(ctx context.Context, filter store.Filter, fields store.Fields) (int64, error) {
	if err := r.coll.Schema().ValidateAttributes(fields, r.updateExclusions...); err != nil {
		return 0, err
	}
	return r.coll.Update(ctx, filter, fields)
}

// Remove deletes every matching entity and returns the count.
func (r *Repository[T]) Remove(ctx context.Context, filter store.Filter) (int64, error) {
	return r.coll.Delete(ctx, filter)
}

// Per-entity repository types.
type (
	UserRepository          = Repository[User]
	WorkspaceRepository     = Repository[Workspace]
	WorkspaceUserRepository = Repository[WorkspaceUser]
	FolderRepository        = Repository[Folder]
	FileRepository          = Repository[File]
	InviteRepository        = Repository[Invite]
	AlertRepository         = Repository[Alert]
)

// NewUserRepository creates the users repository.
func NewUserRepository(db store.DB) *UserRepository {
	return newRepository[User](db, UserSchema, userUpdateExclusions)
}

// NewWorkspaceRepository creates the workspaces repository.
func NewWorkspaceRepository(db store.DB) *WorkspaceRepository {
	return newRepository[Workspace](db, WorkspaceSchema, workspaceUpdateExclusions)
}

// NewWorkspaceUserRepository creates the membership repository.
func NewWorkspaceUserRepository(db store.DB) *WorkspaceUserRepository {
	return newRepository[WorkspaceUser](db, WorkspaceUserSchema, workspaceUserUpdateExclusions)
}

// NewFolderRepository creates the folders repository.
func NewFolderRepository(db store.DB) *FolderRepository {
	return newRepository[Folder](db, FolderSchema, folderUpdateExclusions)
}

// NewFileRepository creates the files repository.
func NewFileRepository(db store.DB) *FileRepository {
	return newRepository[File](db, FileSchema, fileUpdateExclusions)
}

// NewInviteRepository creates the invites repository.
func NewInviteRepository(db store.DB) *InviteRepository {
	return newRepository[Invite](db, InviteSchema, inviteUpdateExclusions)
}

// NewAlertRepository creates the alerts repository.
func NewAlertRepository(db store.DB) *AlertRepository {
	return newRepository[Alert](db, AlertSchema, alertUpdateExclusions)
}

// Repositories bundles every entity repository over one querier.
type Repositories struct {
	Users      *UserRepository
	Workspaces *WorkspaceRepository
	Members    *WorkspaceUserRepository
	Folders    *FolderRepository
	Files      *FileRepository
	Invites    *InviteRepository
	Alerts     *AlertRepository
}

// NewRepositories creates the full repository set.
func NewRepositories(db store.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Workspaces: NewWorkspaceRepository(db),
		Members:    NewWorkspaceUserRepository(db),
		Folders:    NewFolderRepository(db),
		Files:      NewFileRepository(db),
		Invites:    NewInviteRepository(db),
		Alerts:     NewAlertRepository(db),
	}
}

// WithDB returns a copy of the set bound to a different querier so a
// multi-step unit of work can run inside one transaction.
func (r *Repositories) WithDB(db store.DB) *Repositories {
	return &Repositories{
		Users:      r.Users.WithDB(db),
		Workspaces: r.Workspaces.WithDB(db),
		Members:    r.Members.WithDB(db),
		Folders:    r.Folders.WithDB(db),
		Files:      r.Files.WithDB(db),
		Invites:    r.Invites.WithDB(db),
		Alerts:     r.Alerts.WithDB(db),
	}
}
