// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/api"
	"github.com/vaultshare/vaultshare/internal/auth"
	"github.com/vaultshare/vaultshare/internal/config"
	"github.com/vaultshare/vaultshare/internal/ident"
	"github.com/vaultshare/vaultshare/internal/logging"
	"github.com/vaultshare/vaultshare/internal/observability"
	"github.com/vaultshare/vaultshare/internal/store"
	"github.com/vaultshare/vaultshare/internal/workspace"
)

const (
	// dbConnectTimeout bounds the initial connect-and-ping loop.
	dbConnectTimeout = 30 * time.Second

	// autoMigrateEnvVar disables startup migrations when set to a
	// false boolean value.
	autoMigrateEnvVar = "VAULTSHARE_AUTO_MIGRATE"

	shutdownTimeout = 5 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server: account signup and sessions, workspaces,
invites, file metadata with quota tracking, and alerts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = connectPool
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(url string) (AutoMigrator, error) {
			return store.NewMigrator(url)
		}
	}
	if deps.AutoMigrateGetter == nil {
		deps.AutoMigrateGetter = parseAutoMigrate
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if deps.DatabaseURLGetter == nil {
		deps.DatabaseURLGetter = func() string {
			return os.Getenv("DATABASE_URL")
		}
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = deps.DatabaseURLGetter()
	}
	if err := cfg.Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logging.SetDefault("vaultshare", version, logging.Options{
		Format: cfg.LogFormat,
		Level:  logging.ParseLevel(cfg.LogLevel),
	})
	logger := slog.Default()

	logger.Info("starting server",
		"listen_addr", cfg.ListenAddr,
		"log_format", cfg.LogFormat,
	)

	pool, err := deps.PoolFactory(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	logger.Info("connected to database")

	if deps.AutoMigrateGetter() {
		if err := runAutoMigration(deps.MigratorFactory, cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info("migrations up to date")
	} else {
		logger.Info("auto-migration disabled")
	}

	repos := account.NewRepositories(pool)
	ids := ident.NewUUIDGenerator()

	authSvc, err := auth.NewServiceWithLogger(repos.Users, auth.NewPBKDF2Hasher(), ids, logger)
	if err != nil {
		return oops.Code("SERVICE_INIT_FAILED").With("service", "auth").Wrap(err)
	}
	authSvc = authSvc.WithJournal(store.NewPostgresJournal(pool))

	wsSvc, err := workspace.NewServiceWithLogger(pool, ids, logger)
	if err != nil {
		return oops.Code("SERVICE_INIT_FAILED").With("service", "workspace").Wrap(err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		// Ready once we reach this point: the database is connected
		// and migrations have run.
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, func() bool { return true })
		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(obsErr)
		}
		metrics = obsServer.Metrics()
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	apiServer := api.NewServer(authSvc, wsSvc, repos.Users, metrics, logger)

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return oops.Code("LISTEN_FAILED").With("addr", cfg.ListenAddr).Wrap(err)
	}

	httpServer := &http.Server{
		Handler:           apiServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Server started on " + listener.Addr().String())
	logger.Info("server ready", "addr", listener.Addr().String())

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case serveErr := <-errChan:
		return oops.Code("SERVER_FAILED").Wrap(serveErr)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	// Graceful shutdown
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping API server", "error", err)
	}

	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// connectPool creates a pgx pool and waits for the database to answer
// pings, backing off on a fibonacci schedule. Databases often come up
// after the service in containerized deployments.
func connectPool(ctx context.Context, url string) (Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithMaxDuration(dbConnectTimeout, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			slog.Warn("database not reachable yet, retrying", "error", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping database").Wrap(err)
	}

	return pool, nil
}

// parseAutoMigrate reads the auto-migrate setting from the environment.
// Unset or unparseable values default to true.
func parseAutoMigrate() bool {
	raw := os.Getenv(autoMigrateEnvVar)
	if raw == "" {
		return true
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid boolean value, defaulting to true",
			"var", autoMigrateEnvVar,
			"value", raw,
		)
		return true
	}
	return enabled
}

// runAutoMigration applies pending migrations on startup.
func runAutoMigration(factory func(string) (AutoMigrator, error), databaseURL string) error {
	migrator, err := factory(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	return nil
}

// monitorServerErrors watches a server's error channel and cancels the
// context on error so the whole process shuts down cleanly.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
