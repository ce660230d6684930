// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

//go:build integration

package account_test

import (
	"regexp"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/auth"
	"github.com/vaultshare/vaultshare/internal/store"
)

var hexHashPattern = regexp.MustCompile(`^[0-9a-f]{96}$`)

var _ = Describe("Authentication", func() {
	BeforeEach(func() {
		truncateAll(env.ctx, env.pool)
	})

	Describe("Register", func() {
		It("creates a user with a salted hash, never the password", func() {
			user := mustRegister(env.ctx, "alice", "alice@example.com", "s3cret-pass")

			Expect(user.ID).NotTo(BeEmpty())
			Expect(user.Username).To(Equal("alice"))
			Expect(user.Email).To(Equal("alice@example.com"))
			Expect(user.Role).To(Equal(account.RoleUser))
			Expect(user.SessionID).To(BeNil())

			stored, err := env.Repos.Users.Find(env.ctx, store.Filter{"username": "alice"})
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.HashedPassword).To(MatchRegexp(hexHashPattern.String()))
			Expect(stored.HashedPassword).NotTo(ContainSubstring("s3cret-pass"))
		})

		It("rejects a duplicate username", func() {
			mustRegister(env.ctx, "alice", "alice@example.com", "s3cret-pass")

			_, err := env.Auth.Register(env.ctx, "alice", "other@example.com", "another-pass")
			Expect(err).To(MatchError(auth.ErrDuplicateUser))
		})

		It("rejects a duplicate email", func() {
			mustRegister(env.ctx, "alice", "alice@example.com", "s3cret-pass")

			_, err := env.Auth.Register(env.ctx, "bob", "alice@example.com", "another-pass")
			Expect(err).To(MatchError(auth.ErrDuplicateUser))
		})

		It("rejects an empty password", func() {
			_, err := env.Auth.Register(env.ctx, "alice", "alice@example.com", "")
			Expect(err).To(MatchError(auth.ErrEmptyPassword))
		})

		It("produces different hashes for the same password", func() {
			mustRegister(env.ctx, "alice", "alice@example.com", "shared-pass")
			mustRegister(env.ctx, "bob", "bob@example.com", "shared-pass")

			a, err := env.Repos.Users.Find(env.ctx, store.Filter{"username": "alice"})
			Expect(err).NotTo(HaveOccurred())
			b, err := env.Repos.Users.Find(env.ctx, store.Filter{"username": "bob"})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.HashedPassword).NotTo(Equal(b.HashedPassword))
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			mustRegister(env.ctx, "alice", "alice@example.com", "s3cret-pass")
		})

		It("issues a session token on correct credentials", func() {
			user, err := env.Auth.Login(env.ctx, "alice", "s3cret-pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.SessionID).NotTo(BeNil())
			Expect(*user.SessionID).NotTo(BeEmpty())
		})

		It("accepts the email as the identity", func() {
			user, err := env.Auth.Login(env.ctx, "alice@example.com", "s3cret-pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Username).To(Equal("alice"))
			Expect(user.SessionID).NotTo(BeNil())
		})

		It("rejects a wrong password", func() {
			_, err := env.Auth.Login(env.ctx, "alice", "wrong-pass")
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown identity", func() {
			_, err := env.Auth.Login(env.ctx, "nobody", "s3cret-pass")
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("replaces the previous session on a second login", func() {
			first, err := env.Auth.Login(env.ctx, "alice", "s3cret-pass")
			Expect(err).NotTo(HaveOccurred())

			second, err := env.Auth.Login(env.ctx, "alice", "s3cret-pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(*second.SessionID).NotTo(Equal(*first.SessionID))

			stale, err := env.Auth.FindBySession(env.ctx, *first.SessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stale).To(BeNil())

			live, err := env.Auth.FindBySession(env.ctx, *second.SessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(live).NotTo(BeNil())
			Expect(live.Username).To(Equal("alice"))
		})
	})

	Describe("Session lifecycle", func() {
		var token string

		BeforeEach(func() {
			mustRegister(env.ctx, "alice", "alice@example.com", "s3cret-pass")
			user, err := env.Auth.Login(env.ctx, "alice", "s3cret-pass")
			Expect(err).NotTo(HaveOccurred())
			token = *user.SessionID
		})

		It("resolves the token back to the user", func() {
			user, err := env.Auth.FindBySession(env.ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(user).NotTo(BeNil())
			Expect(user.Username).To(Equal("alice"))
		})

		It("destroys the session exactly once", func() {
			destroyed, err := env.Auth.DestroySession(env.ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(destroyed).To(BeTrue())

			user, err := env.Auth.FindBySession(env.ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(user).To(BeNil())

			destroyed, err = env.Auth.DestroySession(env.ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(destroyed).To(BeFalse())
		})

		It("treats an empty token as no session", func() {
			user, err := env.Auth.FindBySession(env.ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(user).To(BeNil())

			destroyed, err := env.Auth.DestroySession(env.ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(destroyed).To(BeFalse())
		})
	})

	Describe("Audit journal", func() {
		It("records registration and login events", func() {
			user := mustRegister(env.ctx, "alice", "alice@example.com", "s3cret-pass")
			_, err := env.Auth.Login(env.ctx, "alice", "s3cret-pass")
			Expect(err).NotTo(HaveOccurred())

			events, err := env.Journal.Replay(env.ctx, "user:"+user.ID, ulid.ULID{}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).NotTo(BeEmpty())

			types := make([]string, 0, len(events))
			for _, ev := range events {
				types = append(types, ev.Type)
			}
			Expect(types).To(ContainElement("user.registered"))
			Expect(types).To(ContainElement("user.login"))
		})
	})
})
