// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package workspace

import (
	"context"

	"github.com/samber/oops"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/store"
)

// FolderTree loads a workspace's folders into a derived index.
func (s *Service) FolderTree(ctx context.Context, workspaceID string) (*account.FolderIndex, error) {
	folders, err := s.repos.Folders.FindAll(ctx, store.Filter{"workspace_id": workspaceID}, 0)
	if err != nil {
		return nil, oops.Code("WORKSPACE_FOLDER_FAILED").
			With("workspace_id", workspaceID).
			Wrap(err)
	}
	return account.NewFolderIndex(folders), nil
}

// CreateFolder adds a folder under a parent in the same workspace. The
// owning user must be a member; a nil userID creates a shared folder.
func (s *Service) CreateFolder(ctx context.Context, workspaceID, parentFolderID, name string, userID *string) (*account.Folder, error) {
	if name == "" {
		return nil, oops.Code("WORKSPACE_INVALID_FOLDER").Errorf("folder name is required")
	}

	parent, err := s.repos.Folders.Find(ctx, store.Filter{
		"id":           parentFolderID,
		"workspace_id": workspaceID,
	})
	if err != nil {
		return nil, oops.Code("WORKSPACE_FOLDER_FAILED").
			With("parent_folder_id", parentFolderID).
			Wrap(err)
	}

	if userID != nil {
		if _, err := s.membership(ctx, s.repos, workspaceID, *userID); err != nil {
			return nil, err
		}
	}

	folder, err := s.repos.Folders.Add(ctx, store.Fields{
		"id":               s.ids.NewID(),
		"name":             name,
		"workspace_id":     workspaceID,
		"user_id":          userID,
		"parent_folder_id": parent.ID,
		"is_root":          false,
	})
	if err != nil {
		return nil, oops.Code("WORKSPACE_FOLDER_FAILED").
			With("operation", "insert folder").
			Wrap(err)
	}
	return folder, nil
}

// MoveFolder reparents a folder within its workspace. Roots stay put,
// and a folder can never move under itself or one of its descendants.
func (s *Service) MoveFolder(ctx context.Context, workspaceID, folderID, newParentID string) error {
	tree, err := s.FolderTree(ctx, workspaceID)
	if err != nil {
		return err
	}

	folder, ok := tree.Folder(folderID)
	if !ok {
		return oops.Code("WORKSPACE_FOLDER_FAILED").
			With("folder_id", folderID).
			Wrap(store.ErrNotFound)
	}
	if folder.IsRoot {
		return oops.Code("WORKSPACE_INVALID_FOLDER").
			With("folder_id", folderID).
			Errorf("root folder cannot be moved")
	}
	if _, ok := tree.Folder(newParentID); !ok {
		return oops.Code("WORKSPACE_FOLDER_FAILED").
			With("parent_folder_id", newParentID).
			Wrap(store.ErrNotFound)
	}
	if tree.IsDescendant(newParentID, folderID) {
		return oops.Code("WORKSPACE_INVALID_FOLDER").
			With("folder_id", folderID).
			With("parent_folder_id", newParentID).
			Errorf("cannot move a folder under itself")
	}

	if _, err := s.repos.Folders.Update(ctx,
		store.Filter{"id": folderID},
		store.Fields{"parent_folder_id": newParentID},
	); err != nil {
		return oops.Code("WORKSPACE_FOLDER_FAILED").
			With("operation", "update parent").
			Wrap(err)
	}
	return nil
}
