// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

// Package ident generates opaque identifiers for entities and sessions.
package ident

import "github.com/google/uuid"

// Generator produces unique opaque identifiers.
//
// The same generator is used for entity primary keys and for session
// tokens. No uniqueness check against storage is performed; collision
// probability for 128-bit random identifiers is treated as negligible.
type Generator interface {
	// NewID returns a new identifier in canonical string form.
	NewID() string
}

// UUIDGenerator implements Generator using random (version 4) UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a random UUID rendered in its canonical 36-character form.
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
