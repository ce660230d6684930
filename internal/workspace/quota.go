// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/oops"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/store"
)

// usageAlertThreshold is the fraction of an allocation at which a
// memory_usage alert is raised.
const usageAlertThreshold = 0.8

// AllocateMemberQuota sets a member's memory allocation. The sum of all
// member allocations may never exceed the workspace's total memory;
// that check is hard, unlike the soft thresholds on registration. The
// member's global per-user allocation moves by the same delta.
func (s *Service) AllocateMemberQuota(ctx context.Context, workspaceID, requesterID, userID string, amount float64) error {
	if amount < 0 {
		return oops.Code("WORKSPACE_INVALID_ALLOCATION").
			With("amount", amount).
			Errorf("allocation cannot be negative")
	}

	ws, err := s.repos.Workspaces.Find(ctx, store.Filter{"id": workspaceID})
	if err != nil {
		return oops.Code("WORKSPACE_ALLOCATE_FAILED").
			With("workspace_id", workspaceID).
			Wrap(err)
	}
	if ws.AdminID != requesterID {
		return oops.Code("WORKSPACE_NOT_ADMIN").
			With("workspace_id", workspaceID).
			With("user_id", requesterID).
			Wrap(ErrNotAdmin)
	}

	member, err := s.membership(ctx, s.repos, workspaceID, userID)
	if err != nil {
		return err
	}

	members, err := s.repos.Members.FindAll(ctx, store.Filter{"workspace_id": workspaceID}, 0)
	if err != nil {
		return oops.Code("WORKSPACE_ALLOCATE_FAILED").
			With("operation", "list members").
			Wrap(err)
	}
	var allocated float64
	for _, m := range members {
		if m.UserID != userID {
			allocated += m.MemoryAllocated
		}
	}
	if allocated+amount > ws.TotalMemory {
		return oops.Code("WORKSPACE_QUOTA_EXCEEDED").
			With("workspace_id", workspaceID).
			With("requested", amount).
			With("available", ws.TotalMemory-allocated).
			Wrap(ErrQuotaExceeded)
	}

	delta := amount - member.MemoryAllocated
	return s.withTx(ctx, func(repos *account.Repositories) error {
		if _, err := repos.Members.Update(ctx,
			store.Filter{"id": member.ID},
			store.Fields{"memory_allocated": amount},
		); err != nil {
			return oops.Code("WORKSPACE_ALLOCATE_FAILED").
				With("operation", "update membership").
				Wrap(err)
		}

		user, err := repos.Users.Find(ctx, store.Filter{"id": userID})
		if err != nil {
			return oops.Code("WORKSPACE_ALLOCATE_FAILED").
				With("operation", "find user").
				Wrap(err)
		}
		if _, err := repos.Users.Update(ctx,
			store.Filter{"id": userID},
			store.Fields{"memory_allocated": user.MemoryAllocated + delta},
		); err != nil {
			return oops.Code("WORKSPACE_ALLOCATE_FAILED").
				With("operation", "update user allocation").
				Wrap(err)
		}
		return nil
	})
}

// FileParams describes a file metadata registration. Size is in MB; a
// directory entry carries size zero.
type FileParams struct {
	WorkspaceID string
	UserID      string
	FolderID    *string
	Name        string
	Path        string
	Size        float64
	IsDirectory bool
}

// RegisterFile inserts file metadata and bumps memory usage on the
// workspace and the owning user in one transaction. Quota thresholds
// are soft here: crossing 80% of the member's allocation raises a
// memory_usage alert, exceeding it raises memory_exceeded, and an
// over-capacity workspace alerts its admin — the write itself always
// lands.
func (s *Service) RegisterFile(ctx context.Context, params FileParams) (*account.File, error) {
	if params.Name == "" || params.Path == "" {
		return nil, oops.Code("WORKSPACE_INVALID_FILE").Errorf("file name and path are required")
	}
	if params.Size < 0 {
		return nil, oops.Code("WORKSPACE_INVALID_FILE").
			With("size", params.Size).
			Errorf("file size cannot be negative")
	}

	ws, err := s.repos.Workspaces.Find(ctx, store.Filter{"id": params.WorkspaceID})
	if err != nil {
		return nil, oops.Code("WORKSPACE_FILE_FAILED").
			With("workspace_id", params.WorkspaceID).
			Wrap(err)
	}
	member, err := s.membership(ctx, s.repos, params.WorkspaceID, params.UserID)
	if err != nil {
		return nil, err
	}
	user, err := s.repos.Users.Find(ctx, store.Filter{"id": params.UserID})
	if err != nil {
		return nil, oops.Code("WORKSPACE_FILE_FAILED").
			With("operation", "find user").
			Wrap(err)
	}

	var file *account.File
	err = s.withTx(ctx, func(repos *account.Repositories) error {
		file, err = repos.Files.Add(ctx, store.Fields{
			"id":           s.ids.NewID(),
			"name":         params.Name,
			"path":         params.Path,
			"workspace_id": params.WorkspaceID,
			"user_id":      params.UserID,
			"folder_id":    params.FolderID,
			"size":         params.Size,
			"is_directory": params.IsDirectory,
		})
		if err != nil {
			return oops.Code("WORKSPACE_FILE_FAILED").
				With("operation", "insert file").
				Wrap(err)
		}

		if _, err := repos.Workspaces.Update(ctx,
			store.Filter{"id": ws.ID},
			store.Fields{"memory_used": ws.MemoryUsed + params.Size},
		); err != nil {
			return oops.Code("WORKSPACE_FILE_FAILED").
				With("operation", "update workspace usage").
				Wrap(err)
		}
		if _, err := repos.Users.Update(ctx,
			store.Filter{"id": user.ID},
			store.Fields{"memory_used": user.MemoryUsed + params.Size},
		); err != nil {
			return oops.Code("WORKSPACE_FILE_FAILED").
				With("operation", "update user usage").
				Wrap(err)
		}

		return s.raiseQuotaAlerts(ctx, repos, ws, member, user, params.Size)
	})
	if err != nil {
		return nil, err
	}

	return file, nil
}

// RemoveFile deletes file metadata and returns its size to the
// workspace and user usage counters.
func (s *Service) RemoveFile(ctx context.Context, fileID, requesterID string) error {
	file, err := s.repos.Files.Find(ctx, store.Filter{"id": fileID})
	if err != nil {
		return oops.Code("WORKSPACE_FILE_FAILED").
			With("file_id", fileID).
			Wrap(err)
	}
	if file.UserID != nil && *file.UserID != requesterID {
		ws, err := s.repos.Workspaces.Find(ctx, store.Filter{"id": file.WorkspaceID})
		if err != nil {
			return oops.Code("WORKSPACE_FILE_FAILED").
				With("workspace_id", file.WorkspaceID).
				Wrap(err)
		}
		// Admins may remove any member's files.
		if ws.AdminID != requesterID {
			return oops.Code("WORKSPACE_NOT_ADMIN").
				With("file_id", fileID).
				With("user_id", requesterID).
				Wrap(ErrNotAdmin)
		}
	}

	return s.withTx(ctx, func(repos *account.Repositories) error {
		if _, err := repos.Files.Remove(ctx, store.Filter{"id": file.ID}); err != nil {
			return oops.Code("WORKSPACE_FILE_FAILED").
				With("operation", "delete file").
				Wrap(err)
		}

		ws, err := repos.Workspaces.Find(ctx, store.Filter{"id": file.WorkspaceID})
		if err != nil {
			return oops.Code("WORKSPACE_FILE_FAILED").
				With("operation", "find workspace").
				Wrap(err)
		}
		if _, err := repos.Workspaces.Update(ctx,
			store.Filter{"id": ws.ID},
			store.Fields{"memory_used": max(ws.MemoryUsed-file.Size, 0)},
		); err != nil {
			return oops.Code("WORKSPACE_FILE_FAILED").
				With("operation", "update workspace usage").
				Wrap(err)
		}

		if file.UserID == nil {
			return nil
		}
		owner, err := repos.Users.Find(ctx, store.Filter{"id": *file.UserID})
		if err != nil {
			return oops.Code("WORKSPACE_FILE_FAILED").
				With("operation", "find owner").
				Wrap(err)
		}
		if _, err := repos.Users.Update(ctx,
			store.Filter{"id": owner.ID},
			store.Fields{"memory_used": max(owner.MemoryUsed-file.Size, 0)},
		); err != nil {
			return oops.Code("WORKSPACE_FILE_FAILED").
				With("operation", "update owner usage").
				Wrap(err)
		}
		return nil
	})
}

// raiseQuotaAlerts emits threshold alerts after a registration of size
// added MB. Member-level thresholds alert the owner; an over-capacity
// workspace alerts its admin.
func (s *Service) raiseQuotaAlerts(ctx context.Context, repos *account.Repositories, ws *account.Workspace, member *account.WorkspaceUser, user *account.User, added float64) error {
	newUserUsage := user.MemoryUsed + added
	if alloc := member.MemoryAllocated; alloc > 0 {
		switch {
		case newUserUsage > alloc:
			if err := s.raiseAlert(ctx, repos, account.AlertTypeMemoryExceeded, user.ID, &ws.ID,
				fmt.Sprintf("Memory allocation of %.2f MB exceeded: %.2f MB in use", alloc, newUserUsage)); err != nil {
				return err
			}
		case newUserUsage >= usageAlertThreshold*alloc:
			if err := s.raiseAlert(ctx, repos, account.AlertTypeMemoryUsage, user.ID, &ws.ID,
				fmt.Sprintf("Memory usage at %.0f%% of your %.2f MB allocation", 100*newUserUsage/alloc, alloc)); err != nil {
				return err
			}
		}
	}

	if ws.MemoryUsed+added > ws.TotalMemory {
		if err := s.raiseAlert(ctx, repos, account.AlertTypeMemoryExceeded, ws.AdminID, &ws.ID,
			fmt.Sprintf("Workspace %q is over capacity: %.2f of %.2f MB used", ws.Name, ws.MemoryUsed+added, ws.TotalMemory)); err != nil {
			return err
		}
	}
	return nil
}

// raiseAlert inserts one alert row.
func (s *Service) raiseAlert(ctx context.Context, repos *account.Repositories, alertType, userID string, workspaceID *string, message string) error {
	if _, err := repos.Alerts.Add(ctx, store.Fields{
		"id":           s.ids.NewID(),
		"alert_type":   alertType,
		"user_id":      userID,
		"workspace_id": workspaceID,
		"message":      message,
	}); err != nil {
		return oops.Code("WORKSPACE_ALERT_FAILED").
			With("alert_type", alertType).
			With("user_id", userID).
			Wrap(err)
	}
	s.logger.DebugContext(ctx, "alert raised",
		slog.String("alert_type", alertType),
		slog.String("user_id", userID))
	return nil
}
