// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package api

import (
	"encoding/json"
	"net/http"

	"github.com/vaultshare/vaultshare/internal/account"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	// Identity is a username or an email address.
	Identity string `json:"identity"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *account.User `json:"user"`
}

type statusResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *account.User `json:"user,omitempty"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RegistrationsTotal.Inc()
	}
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.auth.Login(r.Context(), req.Identity, req.Password)
	if err != nil {
		if s.metrics != nil {
			s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		s.respondError(r.Context(), w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues("success").Inc()
		s.metrics.ActiveSessions.Inc()
	}

	token := ""
	if user.SessionID != nil {
		token = *user.SessionID
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	destroyed, err := s.auth.DestroySession(r.Context(), sessionToken(r.Context()))
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	if destroyed && s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStatus reports whether the caller holds a live session. It sits
// outside the session middleware so an anonymous caller gets a plain
// "not authenticated" answer instead of a 401.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondJSON(w, http.StatusOK, statusResponse{Authenticated: false})
		return
	}

	user, err := s.auth.FindBySession(r.Context(), token)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, statusResponse{
		Authenticated: user != nil,
		User:          user,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, currentUser(r.Context()))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.FindAll(r.Context(), nil, 0)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}
