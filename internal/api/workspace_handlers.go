// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/workspace"
)

type createWorkspaceRequest struct {
	Name        string  `json:"name"`
	TotalMemory float64 `json:"total_memory"`
	MaxUsers    int     `json:"max_users"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

type allocateQuotaRequest struct {
	Amount float64 `json:"amount"`
}

type createFolderRequest struct {
	Name           string `json:"name"`
	ParentFolderID string `json:"parent_folder_id"`
	// Personal marks the folder as owned by the caller rather than
	// shared workspace space.
	Personal bool `json:"personal"`
}

type moveFolderRequest struct {
	NewParentID string `json:"new_parent_id"`
}

type registerFileRequest struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	FolderID    *string `json:"folder_id"`
	Size        float64 `json:"size"`
	IsDirectory bool    `json:"is_directory"`
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req createWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := currentUser(r.Context())
	ws, err := s.workspaces.CreateWorkspace(r.Context(), user.ID, req.Name, req.TotalMemory, req.MaxUsers)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ws)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaces.Workspace(r.Context(), chi.URLParam(r, "workspaceID"))
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, ws)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := s.workspaces.DeleteWorkspace(r.Context(), chi.URLParam(r, "workspaceID"), user.ID); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.workspaces.Members(r.Context(), chi.URLParam(r, "workspaceID"))
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

func (s *Server) handleInviteUser(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := currentUser(r.Context())
	invite, err := s.workspaces.InviteUser(r.Context(), chi.URLParam(r, "workspaceID"), user.ID, req.Email)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusCreated, invite)
}

func (s *Server) handleListInvites(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	invites, err := s.workspaces.Invites(r.Context(), user.Email)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, invites)
}

func (s *Server) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	member, err := s.workspaces.AcceptInvite(r.Context(), chi.URLParam(r, "inviteID"), user.ID)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, member)
}

func (s *Server) handleDeclineInvite(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := s.workspaces.DeclineInvite(r.Context(), chi.URLParam(r, "inviteID"), user.ID); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAllocateQuota(w http.ResponseWriter, r *http.Request) {
	var req allocateQuotaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := currentUser(r.Context())
	err := s.workspaces.AllocateMemberQuota(
		r.Context(),
		chi.URLParam(r, "workspaceID"),
		user.ID,
		chi.URLParam(r, "userID"),
		req.Amount,
	)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// folderNode is the nested shape of the folder tree response.
type folderNode struct {
	*account.Folder
	Children []folderNode `json:"children"`
}

func (s *Server) handleFolderTree(w http.ResponseWriter, r *http.Request) {
	index, err := s.workspaces.FolderTree(r.Context(), chi.URLParam(r, "workspaceID"))
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildFolderNodes(index, index.Roots()))
}

func buildFolderNodes(index *account.FolderIndex, folders []*account.Folder) []folderNode {
	nodes := make([]folderNode, 0, len(folders))
	for _, f := range folders {
		nodes = append(nodes, folderNode{
			Folder:   f,
			Children: buildFolderNodes(index, index.Children(f.ID)),
		})
	}
	return nodes
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := currentUser(r.Context())
	var owner *string
	if req.Personal {
		owner = &user.ID
	}

	folder, err := s.workspaces.CreateFolder(r.Context(), chi.URLParam(r, "workspaceID"), req.ParentFolderID, req.Name, owner)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusCreated, folder)
}

func (s *Server) handleMoveFolder(w http.ResponseWriter, r *http.Request) {
	var req moveFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.workspaces.MoveFolder(
		r.Context(),
		chi.URLParam(r, "workspaceID"),
		chi.URLParam(r, "folderID"),
		req.NewParentID,
	)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegisterFile(w http.ResponseWriter, r *http.Request) {
	var req registerFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := currentUser(r.Context())
	file, err := s.workspaces.RegisterFile(r.Context(), workspace.FileParams{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
		UserID:      user.ID,
		FolderID:    req.FolderID,
		Name:        req.Name,
		Path:        req.Path,
		Size:        req.Size,
		IsDirectory: req.IsDirectory,
	})
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusCreated, file)
}

func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := s.workspaces.RemoveFile(r.Context(), chi.URLParam(r, "fileID"), user.ID); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	alerts, err := s.workspaces.Alerts(r.Context(), user.ID, unreadOnly)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	marked, err := s.workspaces.MarkAlertRead(r.Context(), chi.URLParam(r, "alertID"), user.ID)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	if !marked {
		respondMessage(w, http.StatusNotFound, "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
