// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package account

import (
	"regexp"
	"time"

	"github.com/samber/oops"
)

// Recognized account roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that start with a letter and contain
// only letters, numbers, and underscores. Usernames double as workspace
// folder names, so no separators or dots are allowed.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// emailRegex is a light sanity check, not full RFC 5322 validation. The
// backend's unique constraint is the real guard against junk addresses
// colliding.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is a registered account. SessionID is set on login and cleared
// on logout; its presence marks the account as authenticated.
type User struct {
	ID              string    `db:"id" json:"id"`
	Username        string    `db:"username" json:"username"`
	Email           string    `db:"email" json:"email"`
	HashedPassword  string    `db:"hashed_password" json:"-"`
	Role            string    `db:"role" json:"role"`
	MemoryAllocated float64   `db:"memory_allocated" json:"memory_allocated"`
	MemoryUsed      float64   `db:"memory_used" json:"memory_used"`
	SessionID       *string   `db:"session_id" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Authenticated reports whether the user has an active session.
func (u *User) Authenticated() bool {
	return u.SessionID != nil && *u.SessionID != ""
}

// ValidateUsername checks length and character constraints.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return oops.Code("ACCOUNT_INVALID_USERNAME").
			With("username", username).
			Errorf("username must be %d-%d characters", MinUsernameLength, MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("ACCOUNT_INVALID_USERNAME").
			With("username", username).
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks the address has a plausible shape.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return oops.Code("ACCOUNT_INVALID_EMAIL").
			With("email", email).
			Errorf("invalid email address")
	}
	return nil
}

// ValidateRole checks the role is a recognized value.
func ValidateRole(role string) error {
	if role != RoleUser && role != RoleAdmin {
		return oops.Code("ACCOUNT_INVALID_ROLE").
			With("role", role).
			Errorf("role must be %q or %q", RoleUser, RoleAdmin)
	}
	return nil
}
