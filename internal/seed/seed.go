// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

// Package seed loads and applies YAML seed files: initial users and
// workspaces for a fresh deployment. Applying a seed file is
// idempotent; rows that already exist are skipped.
package seed

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vaultshare/vaultshare/internal/account"
)

// User is one account to create.
type User struct {
	Username string `yaml:"username" json:"username"`
	Email    string `yaml:"email" json:"email"`
	Password string `yaml:"password" json:"password"`
}

// Workspace is one workspace to create. Admin and Members name users
// from the same seed file (or pre-existing accounts) by username.
type Workspace struct {
	Name        string   `yaml:"name" json:"name"`
	Admin       string   `yaml:"admin" json:"admin"`
	TotalMemory float64  `yaml:"total-memory,omitempty" json:"total-memory,omitempty"`
	MaxUsers    int      `yaml:"max-users,omitempty" json:"max-users,omitempty"`
	Members     []string `yaml:"members,omitempty" json:"members,omitempty"`
}

// File is the root of a seed YAML document.
type File struct {
	Users      []User      `yaml:"users,omitempty" json:"users,omitempty"`
	Workspaces []Workspace `yaml:"workspaces,omitempty" json:"workspaces,omitempty"`
}

// Parse parses and validates a seed file.
func Parse(data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("seed data is empty")
	}

	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks cross-field constraints the JSON schema cannot
// express: referenced usernames must be declared or at least plausible,
// and usernames and emails must be well-formed.
func (f *File) Validate() error {
	declared := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if err := account.ValidateUsername(u.Username); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if err := account.ValidateEmail(u.Email); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if u.Password == "" {
			return fmt.Errorf("users[%d] %q: password is required", i, u.Username)
		}
		if declared[u.Username] {
			return fmt.Errorf("users[%d]: duplicate username %q", i, u.Username)
		}
		declared[u.Username] = true
	}

	for i, ws := range f.Workspaces {
		if ws.Name == "" {
			return fmt.Errorf("workspaces[%d]: name is required", i)
		}
		if ws.Admin == "" {
			return fmt.Errorf("workspaces[%d] %q: admin is required", i, ws.Name)
		}
		if ws.TotalMemory < 0 {
			return fmt.Errorf("workspaces[%d] %q: total-memory cannot be negative", i, ws.Name)
		}
		if ws.MaxUsers < 0 {
			return fmt.Errorf("workspaces[%d] %q: max-users cannot be negative", i, ws.Name)
		}
		for _, member := range ws.Members {
			if member == ws.Admin {
				return fmt.Errorf("workspaces[%d] %q: admin %q is a member implicitly", i, ws.Name, member)
			}
		}
	}

	return nil
}
