// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-HMAC-SHA256 parameters. The encoded format depends on the
// salt and key lengths; changing either breaks every stored hash, so
// only the iteration count may be raised over time (new hashes pick it
// up, old ones keep verifying because re-derivation uses the count the
// hash was created with — which here is fixed, so bump with care).
const (
	pbkdf2Iterations = 100_000
	pbkdf2SaltLen    = 16 // bytes; 32 hex characters
	pbkdf2KeyLen     = 32 // bytes; 64 hex characters
)

// encodedHashLen is the fixed length of an encoded hash:
// hex(salt) followed by hex(digest), salt first.
const encodedHashLen = 2 * (pbkdf2SaltLen + pbkdf2KeyLen)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted, encoded hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the encoded hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, encoded string) (bool, error)
}

// PBKDF2Hasher implements PasswordHasher using PBKDF2-HMAC-SHA256.
type PBKDF2Hasher struct{}

// NewPBKDF2Hasher creates a new PBKDF2Hasher.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{}
}

// Hash produces a salted PBKDF2 hash of the password, encoded as
// hex(salt) + hex(digest). The salt is fresh cryptographic randomness
// on every call, so hashing the same password twice yields different
// encodings.
func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	digest := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)

	return hex.EncodeToString(salt) + hex.EncodeToString(digest), nil
}

// Verify re-derives the digest from the salt embedded in the encoded
// hash and compares in constant time. A wrong password is (false, nil),
// not an error; only a structurally invalid hash fails.
func (h *PBKDF2Hasher) Verify(password, encoded string) (bool, error) {
	if len(encoded) != encodedHashLen {
		return false, oops.Code("AUTH_INVALID_HASH").
			Errorf("encoded hash must be %d characters, got %d", encodedHashLen, len(encoded))
	}

	salt, err := hex.DecodeString(encoded[:2*pbkdf2SaltLen])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	expected, err := hex.DecodeString(encoded[2*pbkdf2SaltLen:])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	computed := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
