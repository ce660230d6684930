// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/ident"
	"github.com/vaultshare/vaultshare/internal/store"
)

// UserStore is the slice of the users repository the service needs.
type UserStore interface {
	// Add persists a new user from the given fields.
	Add(ctx context.Context, fields store.Fields) (*account.User, error)

	// Find returns the first user matching the filter, or store.ErrNotFound.
	Find(ctx context.Context, filter store.Filter) (*account.User, error)

	// Update sets fields on matching users and returns the count.
	Update(ctx context.Context, filter store.Filter, fields store.Fields) (int64, error)
}

// Service provides registration, login, and session operations.
type Service struct {
	users   UserStore
	hasher  PasswordHasher
	ids     ident.Generator
	journal store.Journal
	logger  *slog.Logger
}

// NewService creates a new Service.
func NewService(users UserStore, hasher PasswordHasher, ids ident.Generator) (*Service, error) {
	return NewServiceWithLogger(users, hasher, ids, slog.Default())
}

// NewServiceWithLogger creates a new Service with a custom logger.
func NewServiceWithLogger(users UserStore, hasher PasswordHasher, ids ident.Generator, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("password hasher is required")
	}
	if ids == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("identifier generator is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("logger is required")
	}
	return &Service{
		users:  users,
		hasher: hasher,
		ids:    ids,
		logger: logger,
	}, nil
}

// WithJournal enables audit journaling of registrations, logins, and
// logouts. Journal failures never fail the operation they record.
func (s *Service) WithJournal(journal store.Journal) *Service {
	s.journal = journal
	return s
}

// dummyEncodedHash is verified against when a user doesn't exist so a
// login attempt costs the same whether or not the identity is known.
// It is structurally valid but matches no password.
//
//nolint:gosec // G101: not a credential, a timing-uniformity dummy.
const dummyEncodedHash = "00000000000000000000000000000000" +
	"0000000000000000000000000000000000000000000000000000000000000000"

// Register creates a new account with the user role and zeroed memory
// counters. Username and email must each be unused; a collision fails
// with ErrDuplicateUser. The uniqueness probes are advisory — the
// storage constraint is the real guard, and a conflict surfacing from
// the insert itself is classified the same way.
func (s *Service) Register(ctx context.Context, username, email, password string) (*account.User, error) {
	if err := account.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := account.ValidateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	for _, probe := range []store.Filter{{"username": username}, {"email": email}} {
		_, err := s.users.Find(ctx, probe)
		if err == nil {
			return nil, oops.Code("AUTH_DUPLICATE_USER").Wrap(ErrDuplicateUser)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "uniqueness probe").
				Wrap(err)
		}
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := s.users.Add(ctx, store.Fields{
		"id":               s.ids.NewID(),
		"username":         username,
		"email":            email,
		"hashed_password":  hashed,
		"role":             account.RoleUser,
		"memory_allocated": 0.0,
		"memory_used":      0.0,
	})
	if err != nil {
		// Concurrent registration of the same identity slips past the
		// probes; the unique constraint catches it here.
		if errors.Is(err, store.ErrConflict) {
			return nil, oops.Code("AUTH_DUPLICATE_USER").Wrap(ErrDuplicateUser)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	s.record(ctx, "user:"+user.ID, "user.registered", map[string]string{"username": username})

	return user, nil
}

// Login authenticates by username or email and issues a fresh session
// token, overwriting any previous one: a user holds at most one live
// session. Unknown identity and wrong password both fail with
// ErrInvalidCredentials, after a full-cost hash verification either way.
func (s *Service) Login(ctx context.Context, usernameOrEmail, password string) (*account.User, error) {
	user, err := s.users.Find(ctx, store.Filter{"username": usernameOrEmail})
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.users.Find(ctx, store.Filter{"email": usernameOrEmail})
	}

	targetHash := dummyEncodedHash
	userExists := false

	switch {
	case err == nil:
		targetHash = user.HashedPassword
		userExists = true
	case errors.Is(err, store.ErrNotFound):
		// Verify against the dummy hash below so the miss is not
		// observable through response time.
	default:
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "find user").
			Wrap(err)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}
	if !userExists || !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	token := s.ids.NewID()
	if _, err := s.users.Update(ctx, store.Filter{"id": user.ID}, store.Fields{"session_id": token}); err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}
	user.SessionID = &token

	s.record(ctx, "user:"+user.ID, "user.login", map[string]string{"username": user.Username})

	return user, nil
}

// FindBySession returns the user holding the session token, or nil
// when no user does. An unknown token is an expected outcome, not an
// error; callers distinguish "no session" from a backend failure.
func (s *Service) FindBySession(ctx context.Context, sessionID string) (*account.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	user, err := s.users.Find(ctx, store.Filter{"session_id": sessionID})
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_LOOKUP_FAILED").
			With("operation", "find user by session").
			Wrap(err)
	}
	return user, nil
}

// DestroySession clears the session token from whichever user holds it
// and reports whether a row actually changed. Destroying an unknown or
// empty token is a no-op, not an error.
func (s *Service) DestroySession(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	count, err := s.users.Update(ctx,
		store.Filter{"session_id": sessionID},
		store.Fields{"session_id": nil},
	)
	if err != nil {
		return false, oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "clear session").
			Wrap(err)
	}

	if count > 0 {
		s.record(ctx, "session:"+sessionID, "user.logout", nil)
	}
	return count > 0, nil
}

// record appends an audit event, best effort.
func (s *Service) record(ctx context.Context, stream, eventType string, payload any) {
	if s.journal == nil {
		return
	}
	event, err := store.NewEvent(stream, eventType, payload)
	if err == nil {
		err = s.journal.Append(ctx, event)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "audit journal append failed",
			slog.String("type", eventType),
			slog.Any("error", err))
	}
}
