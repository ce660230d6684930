// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package store

import (
	"slices"
	"sort"

	"github.com/samber/oops"
)

// Fields is a set of column name to value assignments used by create
// and update operations.
type Fields map[string]any

// Filter is an exact-match conjunction of column name to value
// predicates. A nil value matches SQL NULL.
type Filter map[string]any

// Schema describes a persisted entity type: its table and the columns
// the store is allowed to touch. All dynamic SQL is assembled from the
// declared column names, never from caller input.
type Schema struct {
	Table   string
	Columns []string
}

// Has reports whether column is declared on the schema.
func (s Schema) Has(column string) bool {
	return slices.Contains(s.Columns, column)
}

// ValidateAttributes fails with ErrInvalidAttribute when any field name
// is not a declared column, or is present in excluded. It must run
// before any operation that accepts caller-supplied field names.
func (s Schema) ValidateAttributes(fields map[string]any, excluded ...string) error {
	for name := range fields {
		if !s.Has(name) {
			return oops.Code("STORE_INVALID_ATTRIBUTE").
				With("table", s.Table).
				With("attribute", name).
				Wrapf(ErrInvalidAttribute, "unknown attribute %q on %s", name, s.Table)
		}
		if slices.Contains(excluded, name) {
			return oops.Code("STORE_INVALID_ATTRIBUTE").
				With("table", s.Table).
				With("attribute", name).
				Wrapf(ErrInvalidAttribute, "attribute %q may not be set on %s", name, s.Table)
		}
	}
	return nil
}

// sortedKeys returns the field names in deterministic order so the
// generated SQL is stable across calls (map iteration order is not).
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
