// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package main

import (
	"context"

	"github.com/vaultshare/vaultshare/internal/observability"
	"github.com/vaultshare/vaultshare/internal/workspace"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// PoolFactory creates a database pool from a connection URL.
	// Default: connectPool (pgxpool with fibonacci retry on ping)
	PoolFactory func(ctx context.Context, url string) (Pool, error)

	// MigratorFactory creates a schema migrator.
	// Default: wraps store.NewMigrator
	MigratorFactory func(url string) (AutoMigrator, error)

	// AutoMigrateGetter reports whether to run migrations on startup.
	// Default: reads from VAULTSHARE_AUTO_MIGRATE environment variable
	AutoMigrateGetter func() bool

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// DatabaseURLGetter supplies the database URL when neither the
	// config file nor the flag carries one.
	// Default: reads from DATABASE_URL environment variable
	DatabaseURLGetter func() string
}

// Pool is the database pool surface the serve command needs.
type Pool interface {
	workspace.Pool
	Ping(ctx context.Context) error
	Close()
}

// AutoMigrator interface wraps the methods used from store.Migrator.
type AutoMigrator interface {
	Up() error
	Close() error
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}
