// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vaultshare/vaultshare/internal/auth"
	"github.com/vaultshare/vaultshare/internal/store"
	"github.com/vaultshare/vaultshare/internal/workspace"
	"github.com/vaultshare/vaultshare/pkg/errutil"
)

// messageResponse is the body of plain-status responses and errors.
type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		//nolint:errcheck // response write errors mean the client went away
		json.NewEncoder(w).Encode(body)
	}
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, messageResponse{Message: msg})
}

// respondError maps a service error onto an HTTP status. Internal
// failures are logged and hidden behind a generic message.
func (s *Server) respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logError(ctx, "request failed", err)
		respondMessage(w, status, "internal error")
		return
	}
	respondMessage(w, status, publicMessage(err))
}

func (s *Server) logError(ctx context.Context, msg string, err error) {
	errutil.LogErrorContext(ctx, s.logger, msg, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, workspace.ErrNotAdmin),
		errors.Is(err, workspace.ErrNotMember),
		errors.Is(err, workspace.ErrInviteMismatch):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrDuplicateUser),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, workspace.ErrWorkspaceFull),
		errors.Is(err, workspace.ErrQuotaExceeded),
		errors.Is(err, workspace.ErrInviteResolved):
		return http.StatusConflict
	case errors.Is(err, auth.ErrEmptyPassword),
		errors.Is(err, store.ErrInvalidAttribute):
		return http.StatusBadRequest
	}

	switch code := errutil.Code(err); {
	case strings.HasPrefix(code, "ACCOUNT_INVALID"),
		strings.HasPrefix(code, "WORKSPACE_INVALID"):
		return http.StatusBadRequest
	case code == "WORKSPACE_UNKNOWN_ADMIN", code == "FOLDER_UNKNOWN":
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// publicMessage strips oops wrapping prefixes so clients see the
// innermost, human-readable cause.
func publicMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
