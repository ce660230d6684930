// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/auth"
	"github.com/vaultshare/vaultshare/internal/auth/mocks"
	"github.com/vaultshare/vaultshare/internal/store"
)

// seqIDs is a deterministic ident.Generator for tests.
type seqIDs struct {
	ids []string
	i   int
}

func (g *seqIDs) NewID() string {
	id := g.ids[g.i%len(g.ids)]
	g.i++
	return id
}

func TestNewService_NilDependencies(t *testing.T) {
	ids := &seqIDs{ids: []string{"id-1"}}

	tests := []struct {
		name        string
		users       auth.UserStore
		hasher      auth.PasswordHasher
		expectError string
	}{
		{
			name:        "nil users repository",
			users:       nil,
			hasher:      mocks.NewMockPasswordHasher(t),
			expectError: "users repository is required",
		},
		{
			name:        "nil password hasher",
			users:       mocks.NewMockUserStore(t),
			hasher:      nil,
			expectError: "password hasher is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewService(tt.users, tt.hasher, ids)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}

	t.Run("nil identifier generator", func(t *testing.T) {
		svc, err := auth.NewService(mocks.NewMockUserStore(t), mocks.NewMockPasswordHasher(t), nil)
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.Contains(t, err.Error(), "identifier generator is required")
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("successful registration", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		users.On("Find", ctx, store.Filter{"username": "ada"}).Return(nil, store.ErrNotFound)
		users.On("Find", ctx, store.Filter{"email": "ada@example.com"}).Return(nil, store.ErrNotFound)
		hasher.On("Hash", "Secret1").Return("encoded-hash", nil)
		users.On("Add", ctx, store.Fields{
			"id":               "id-1",
			"username":         "ada",
			"email":            "ada@example.com",
			"hashed_password":  "encoded-hash",
			"role":             account.RoleUser,
			"memory_allocated": 0.0,
			"memory_used":      0.0,
		}).Return(&account.User{
			ID:       "id-1",
			Username: "ada",
			Email:    "ada@example.com",
			Role:     account.RoleUser,
		}, nil)

		user, err := svc.Register(ctx, "ada", "ada@example.com", "Secret1")
		require.NoError(t, err)
		assert.Equal(t, "id-1", user.ID)
		assert.Equal(t, account.RoleUser, user.Role)
		assert.Zero(t, user.MemoryUsed)
		assert.Nil(t, user.SessionID, "registration must not authenticate")
	})

	t.Run("existing username fails", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		users.On("Find", ctx, store.Filter{"username": "ada"}).Return(&account.User{ID: "u-1"}, nil)

		_, err = svc.Register(ctx, "ada", "ada@example.com", "Secret1")
		assert.ErrorIs(t, err, auth.ErrDuplicateUser)
	})

	t.Run("existing email fails", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		users.On("Find", ctx, store.Filter{"username": "ada"}).Return(nil, store.ErrNotFound)
		users.On("Find", ctx, store.Filter{"email": "ada@example.com"}).Return(&account.User{ID: "u-2"}, nil)

		_, err = svc.Register(ctx, "ada", "ada@example.com", "Secret1")
		assert.ErrorIs(t, err, auth.ErrDuplicateUser)
	})

	t.Run("constraint violation at insert is a duplicate, not a store error", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		// Both probes miss; a concurrent registration wins the race and
		// the insert trips the unique constraint.
		users.On("Find", ctx, mock.AnythingOfType("store.Filter")).Return(nil, store.ErrNotFound)
		hasher.On("Hash", "Secret1").Return("encoded-hash", nil)
		users.On("Add", ctx, mock.AnythingOfType("store.Fields")).Return(nil, store.ErrConflict)

		_, err = svc.Register(ctx, "ada", "ada@example.com", "Secret1")
		assert.ErrorIs(t, err, auth.ErrDuplicateUser)
	})

	t.Run("invalid inputs never reach the repository", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		_, err = svc.Register(ctx, "ab", "ada@example.com", "Secret1")
		assert.Error(t, err, "username too short")

		_, err = svc.Register(ctx, "ada", "not-an-email", "Secret1")
		assert.Error(t, err, "bad email")

		_, err = svc.Register(ctx, "ada", "ada@example.com", "")
		assert.Error(t, err, "empty password")
	})

	t.Run("probe failure propagates", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		users.On("Find", ctx, store.Filter{"username": "ada"}).Return(nil, errors.New("connection refused"))

		_, err = svc.Register(ctx, "ada", "ada@example.com", "Secret1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrDuplicateUser)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	stored := &account.User{
		ID:             "u-1",
		Username:       "ada",
		Email:          "ada@example.com",
		HashedPassword: "encoded-hash",
		Role:           account.RoleUser,
	}

	t.Run("successful login by username issues a session", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"token-1"}})
		require.NoError(t, err)

		u := *stored
		users.On("Find", ctx, store.Filter{"username": "ada"}).Return(&u, nil)
		hasher.On("Verify", "Secret1", "encoded-hash").Return(true, nil)
		users.On("Update", ctx, store.Filter{"id": "u-1"}, store.Fields{"session_id": "token-1"}).
			Return(int64(1), nil)

		user, err := svc.Login(ctx, "ada", "Secret1")
		require.NoError(t, err)
		require.NotNil(t, user.SessionID)
		assert.Equal(t, "token-1", *user.SessionID)
		assert.True(t, user.Authenticated())
	})

	t.Run("successful login by email", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"token-2"}})
		require.NoError(t, err)

		u := *stored
		users.On("Find", ctx, store.Filter{"username": "ada@example.com"}).Return(nil, store.ErrNotFound)
		users.On("Find", ctx, store.Filter{"email": "ada@example.com"}).Return(&u, nil)
		hasher.On("Verify", "Secret1", "encoded-hash").Return(true, nil)
		users.On("Update", ctx, store.Filter{"id": "u-1"}, store.Fields{"session_id": "token-2"}).
			Return(int64(1), nil)

		user, err := svc.Login(ctx, "ada@example.com", "Secret1")
		require.NoError(t, err)
		require.NotNil(t, user.SessionID)
		assert.Equal(t, "token-2", *user.SessionID)
	})

	t.Run("fresh login overwrites the previous session", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"token-new"}})
		require.NoError(t, err)

		old := "token-old"
		u := *stored
		u.SessionID = &old
		users.On("Find", ctx, store.Filter{"username": "ada"}).Return(&u, nil)
		hasher.On("Verify", "Secret1", "encoded-hash").Return(true, nil)
		users.On("Update", ctx, store.Filter{"id": "u-1"}, store.Fields{"session_id": "token-new"}).
			Return(int64(1), nil)

		user, err := svc.Login(ctx, "ada", "Secret1")
		require.NoError(t, err)
		assert.Equal(t, "token-new", *user.SessionID)
	})

	t.Run("unknown identity still verifies a hash", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"token-1"}})
		require.NoError(t, err)

		users.On("Find", ctx, mock.AnythingOfType("store.Filter")).Return(nil, store.ErrNotFound)
		// The dummy verification keeps response time uniform.
		hasher.On("Verify", "Secret1", mock.AnythingOfType("string")).Return(false, nil)

		_, err = svc.Login(ctx, "ghost", "Secret1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		hasher.AssertCalled(t, "Verify", "Secret1", mock.AnythingOfType("string"))
	})

	t.Run("wrong password", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"token-1"}})
		require.NoError(t, err)

		u := *stored
		users.On("Find", ctx, store.Filter{"username": "ada"}).Return(&u, nil)
		hasher.On("Verify", "wrong", "encoded-hash").Return(false, nil)

		_, err = svc.Login(ctx, "ada", "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wrong password and unknown identity are indistinguishable", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"token-1"}})
		require.NoError(t, err)

		u := *stored
		users.On("Find", ctx, store.Filter{"username": "ada"}).Return(&u, nil)
		users.On("Find", ctx, store.Filter{"username": "ghost"}).Return(nil, store.ErrNotFound)
		users.On("Find", ctx, store.Filter{"email": "ghost"}).Return(nil, store.ErrNotFound)
		hasher.On("Verify", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(false, nil)

		_, wrongPassword := svc.Login(ctx, "ada", "wrong")
		_, unknownUser := svc.Login(ctx, "ghost", "wrong")

		assert.ErrorIs(t, wrongPassword, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownUser, auth.ErrInvalidCredentials)
	})

	t.Run("session persist failure fails the login", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"token-1"}})
		require.NoError(t, err)

		u := *stored
		users.On("Find", ctx, store.Filter{"username": "ada"}).Return(&u, nil)
		hasher.On("Verify", "Secret1", "encoded-hash").Return(true, nil)
		users.On("Update", ctx, mock.AnythingOfType("store.Filter"), mock.AnythingOfType("store.Fields")).
			Return(int64(0), errors.New("connection lost"))

		_, err = svc.Login(ctx, "ada", "Secret1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_FindBySession(t *testing.T) {
	ctx := context.Background()

	t.Run("valid session returns the user", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		token := "token-1"
		users.On("Find", ctx, store.Filter{"session_id": "token-1"}).
			Return(&account.User{ID: "u-1", Username: "ada", SessionID: &token}, nil)

		user, err := svc.FindBySession(ctx, "token-1")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "u-1", user.ID)
	})

	t.Run("unknown session is nil, not an error", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		users.On("Find", ctx, store.Filter{"session_id": "stale"}).Return(nil, store.ErrNotFound)

		user, err := svc.FindBySession(ctx, "stale")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("empty token skips the lookup", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		user, err := svc.FindBySession(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("backend failure is an error, not a miss", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		users.On("Find", ctx, store.Filter{"session_id": "token-1"}).
			Return(nil, errors.New("connection refused"))

		_, err = svc.FindBySession(ctx, "token-1")
		require.Error(t, err)
	})
}

func TestService_DestroySession(t *testing.T) {
	ctx := context.Background()

	t.Run("clears the session and reports change", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		users.On("Update", ctx,
			store.Filter{"session_id": "token-1"},
			store.Fields{"session_id": nil},
		).Return(int64(1), nil)

		changed, err := svc.DestroySession(ctx, "token-1")
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("unknown token changes nothing", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		users.On("Update", ctx,
			store.Filter{"session_id": "stale"},
			store.Fields{"session_id": nil},
		).Return(int64(0), nil)

		changed, err := svc.DestroySession(ctx, "stale")
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("empty token skips the update", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, hasher, &seqIDs{ids: []string{"id-1"}})
		require.NoError(t, err)

		changed, err := svc.DestroySession(ctx, "")
		require.NoError(t, err)
		assert.False(t, changed)
	})
}
