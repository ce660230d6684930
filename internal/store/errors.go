// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a retrieve matched zero rows.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a mutation violates a uniqueness
// constraint. Callers translate it into domain errors (e.g. duplicate
// user on registration).
var ErrConflict = errors.New("conflict")

// ErrInvalidAttribute is returned when a caller supplies a field name
// that is not a declared column of the target entity, or one that the
// entity forbids for the operation.
var ErrInvalidAttribute = errors.New("invalid attribute")

// IsUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key
// constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
