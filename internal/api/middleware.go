// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vaultshare/vaultshare/internal/account"
)

type contextKey string

const (
	userContextKey  = contextKey("user")
	tokenContextKey = contextKey("token")
)

// sessionMiddleware resolves the bearer session token to a user and
// stores both on the request context. Requests without a valid session
// are rejected with 401.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondMessage(w, http.StatusUnauthorized, "authorization required")
			return
		}

		user, err := s.auth.FindBySession(r.Context(), token)
		if err != nil {
			s.logError(r.Context(), "session lookup failed", err)
			respondMessage(w, http.StatusInternalServerError, "internal error")
			return
		}
		if user == nil {
			respondMessage(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated user placed on the context by
// sessionMiddleware, or nil outside of it.
func currentUser(ctx context.Context) *account.User {
	if user, ok := ctx.Value(userContextKey).(*account.User); ok {
		return user
	}
	return nil
}

// sessionToken returns the bearer token placed on the context by
// sessionMiddleware.
func sessionToken(ctx context.Context) string {
	if token, ok := ctx.Value(tokenContextKey).(string); ok {
		return token
	}
	return ""
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// metricsMiddleware counts requests by method, matched route pattern,
// and response status.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.HTTPRequestsTotal.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
