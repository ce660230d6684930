// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrStreamEmpty is returned when a journal stream has no entries.
var ErrStreamEmpty = errors.New("stream is empty")

// Event is one append-only journal entry. Entry IDs are ULIDs so a
// stream replays in creation order by comparing IDs alone.
type Event struct {
	ID        ulid.ULID
	Stream    string
	Type      string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// NewEvent builds a journal event for a stream, marshalling the payload
// to JSON.
func NewEvent(stream, eventType string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, oops.Code("JOURNAL_MARSHAL_FAILED").
			With("stream", stream).
			With("type", eventType).
			Wrap(err)
	}
	return Event{
		ID:        ulid.Make(),
		Stream:    stream,
		Type:      eventType,
		Payload:   body,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Journal records account activity (registrations, logins, invites,
// quota alerts) as passive rows for audit and debugging.
type Journal interface {
	// Append persists an event.
	Append(ctx context.Context, event Event) error

	// Replay returns events from a stream after the given ID, oldest
	// first, up to limit entries.
	Replay(ctx context.Context, stream string, afterID ulid.ULID, limit int) ([]Event, error)

	// LastEventID returns the most recent event ID for a stream.
	LastEventID(ctx context.Context, stream string) (ulid.ULID, error)
}

// PostgresJournal implements Journal on the account_events table.
type PostgresJournal struct {
	db DB
}

// NewPostgresJournal creates a journal backed by PostgreSQL.
func NewPostgresJournal(db DB) *PostgresJournal {
	return &PostgresJournal{db: db}
}

// Append persists an event.
func (j *PostgresJournal) Append(ctx context.Context, event Event) error {
	_, err := j.db.Exec(ctx,
		`INSERT INTO account_events (id, stream, type, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		event.ID.String(),
		event.Stream,
		event.Type,
		event.Payload,
		event.CreatedAt,
	)
	if err != nil {
		return oops.Code("JOURNAL_APPEND_FAILED").
			With("stream", event.Stream).
			With("event_id", event.ID.String()).
			Wrap(err)
	}
	return nil
}

// Replay returns events from a stream after the given ID.
func (j *PostgresJournal) Replay(ctx context.Context, stream string, afterID ulid.ULID, limit int) ([]Event, error) {
	var rows pgx.Rows
	var err error

	if afterID.Compare(ulid.ULID{}) == 0 {
		rows, err = j.db.Query(ctx,
			`SELECT id, stream, type, payload, created_at
			 FROM account_events WHERE stream = $1 ORDER BY id LIMIT $2`,
			stream, limit)
	} else {
		rows, err = j.db.Query(ctx,
			`SELECT id, stream, type, payload, created_at
			 FROM account_events WHERE stream = $1 AND id > $2 ORDER BY id LIMIT $3`,
			stream, afterID.String(), limit)
	}
	if err != nil {
		return nil, oops.Code("JOURNAL_REPLAY_FAILED").With("stream", stream).Wrap(err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var idStr string
		if err := rows.Scan(&idStr, &e.Stream, &e.Type, &e.Payload, &e.CreatedAt); err != nil {
			return nil, oops.Code("JOURNAL_REPLAY_FAILED").
				With("stream", stream).
				With("operation", "scan event row").
				Wrap(err)
		}
		e.ID, err = ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("JOURNAL_CORRUPT_ID").
				With("stream", stream).
				With("id", idStr).
				Wrap(err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("JOURNAL_REPLAY_FAILED").With("stream", stream).Wrap(err)
	}
	return events, nil
}

// LastEventID returns the most recent event ID for a stream.
func (j *PostgresJournal) LastEventID(ctx context.Context, stream string) (ulid.ULID, error) {
	var idStr string
	err := j.db.QueryRow(ctx,
		`SELECT id FROM account_events WHERE stream = $1 ORDER BY id DESC LIMIT 1`,
		stream).Scan(&idStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return ulid.ULID{}, ErrStreamEmpty
	}
	if err != nil {
		return ulid.ULID{}, oops.Code("JOURNAL_LAST_ID_FAILED").With("stream", stream).Wrap(err)
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return ulid.ULID{}, oops.Code("JOURNAL_CORRUPT_ID").
			With("stream", stream).
			With("id", idStr).
			Wrap(err)
	}
	return id, nil
}
