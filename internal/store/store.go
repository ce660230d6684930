// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

// Package store provides schema-validated, filter-based CRUD over a
// PostgreSQL backend. It is the single point of access to persistence:
// entities are never mutated outside of it.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// DB is the querier surface a collection needs. It is satisfied by
// *pgxpool.Pool, pgx.Tx and pgxmock pools, so the same collection code
// runs against a pool, inside a transaction, or under test.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Collection provides CRUD for one entity type. The type parameter is
// the row struct; its fields carry `db` tags matching the schema's
// column names.
type Collection[T any] struct {
	db     DB
	schema Schema
}

// NewCollection creates a collection for the given schema.
func NewCollection[T any](db DB, schema Schema) *Collection[T] {
	return &Collection[T]{db: db, schema: schema}
}

// WithDB returns a copy of the collection bound to a different querier,
// typically a transaction.
func (c *Collection[T]) WithDB(db DB) *Collection[T] {
	return &Collection[T]{db: db, schema: c.schema}
}

// Schema returns the collection's schema descriptor.
func (c *Collection[T]) Schema() Schema {
	return c.schema
}

// Create validates the field names, inserts one row and returns the
// persisted entity. The insert is a single atomic statement: on failure
// no partial row exists. A uniqueness violation surfaces as ErrConflict.
func (c *Collection[T]) Create(ctx context.Context, fields Fields) (*T, error) {
	if err := c.schema.ValidateAttributes(fields); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, oops.Code("STORE_EMPTY_FIELDS").
			With("table", c.schema.Table).
			Errorf("create requires at least one field")
	}

	names := sortedKeys(fields)
	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[name]
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		c.schema.Table,
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(c.schema.Columns, ", "),
	)

	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, c.wrapStoreErr("create", err)
	}
	entity, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		return nil, c.wrapStoreErr("create", err)
	}
	return entity, nil
}

// Get returns the first row matching the filter. When zero rows match
// it fails with ErrNotFound. When several rows match, an arbitrary one
// is returned; callers must not rely on ordering.
func (c *Collection[T]) Get(ctx context.Context, filter Filter) (*T, error) {
	where, args, err := c.whereClause(filter, 1)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s LIMIT 1",
		strings.Join(c.schema.Columns, ", "), c.schema.Table, where,
	)

	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, c.wrapStoreErr("get", err)
	}
	entity, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("STORE_NOT_FOUND").
			With("table", c.schema.Table).
			Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, c.wrapStoreErr("get", err)
	}
	return entity, nil
}

// List returns all rows matching the filter. A limit of zero or less
// means no limit. An empty result is a nil-free empty slice, not an
// error.
func (c *Collection[T]) List(ctx context.Context, filter Filter, limit int) ([]T, error) {
	where, args, err := c.whereClause(filter, 1)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s",
		strings.Join(c.schema.Columns, ", "), c.schema.Table, where,
	)
	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, c.wrapStoreErr("list", err)
	}
	entities, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, c.wrapStoreErr("list", err)
	}
	if entities == nil {
		entities = []T{}
	}
	return entities, nil
}

// Update sets every given field on every row matching the filter and
// returns the number of rows mutated. Zero is not an error; it signals
// no match.
func (c *Collection[T]) Update(ctx context.Context, filter Filter, fields Fields) (int64, error) {
	if err := c.schema.ValidateAttributes(fields); err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, oops.Code("STORE_EMPTY_FIELDS").
			With("table", c.schema.Table).
			Errorf("update requires at least one field")
	}

	names := sortedKeys(fields)
	assignments := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		assignments[i] = fmt.Sprintf("%s = $%d", name, i+1)
		args[i] = fields[name]
	}

	where, whereArgs, err := c.whereClause(filter, len(args)+1)
	if err != nil {
		return 0, err
	}
	args = append(args, whereArgs...)

	sql := fmt.Sprintf(
		"UPDATE %s SET %s%s",
		c.schema.Table, strings.Join(assignments, ", "), where,
	)

	tag, err := c.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, c.wrapStoreErr("update", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes every row matching the filter and returns the count.
func (c *Collection[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	where, args, err := c.whereClause(filter, 1)
	if err != nil {
		return 0, err
	}

	sql := fmt.Sprintf("DELETE FROM %s%s", c.schema.Table, where)

	tag, err := c.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, c.wrapStoreErr("delete", err)
	}
	return tag.RowsAffected(), nil
}

// whereClause builds an exact-match conjunction from the filter with
// deterministic column order. Nil values compile to IS NULL. Filter
// keys are validated like any other caller-supplied attribute names.
func (c *Collection[T]) whereClause(filter Filter, startArg int) (string, []any, error) {
	if err := c.schema.ValidateAttributes(filter); err != nil {
		return "", nil, err
	}
	if len(filter) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(filter))
	var args []any
	n := startArg
	for _, name := range sortedKeys(filter) {
		value := filter[name]
		if value == nil {
			conds = append(conds, name+" IS NULL")
			continue
		}
		conds = append(conds, fmt.Sprintf("%s = $%d", name, n))
		args = append(args, value)
		n++
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// wrapStoreErr classifies a backend failure. Uniqueness violations map
// to ErrConflict so callers can translate them into domain errors;
// everything else stays a generic store failure.
func (c *Collection[T]) wrapStoreErr(op string, err error) error {
	if IsUniqueViolation(err) {
		return oops.Code("STORE_CONFLICT").
			With("table", c.schema.Table).
			With("operation", op).
			With("cause", err.Error()).
			Wrap(ErrConflict)
	}
	return oops.Code("STORE_ERROR").
		With("table", c.schema.Table).
		With("operation", op).
		Wrap(err)
}
