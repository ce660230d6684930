// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

// Package auth provides the authentication core for VaultShare.
//
// # Components
//
//   - PasswordHasher - salts, hashes, and verifies passwords; the
//     encoded format is stable and persisted as-is
//   - Service - registration, login, session lookup and teardown over
//     the users repository
//
// Session handling is deliberately minimal: a user holds at most one
// session token, stored on the user row. A fresh login overwrites the
// previous token, which implicitly invalidates it.
package auth
