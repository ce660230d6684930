// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package auth

import "errors"

// ErrDuplicateUser is returned when a registration collides with an
// existing username or email.
var ErrDuplicateUser = errors.New("username or email already registered")

// ErrInvalidCredentials is returned for both unknown identities and
// wrong passwords. The two cases are deliberately indistinguishable to
// prevent user enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")
