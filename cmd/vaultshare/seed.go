// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package main

import (
	"context"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vaultshare/vaultshare/internal/account"
	"github.com/vaultshare/vaultshare/internal/auth"
	"github.com/vaultshare/vaultshare/internal/ident"
	"github.com/vaultshare/vaultshare/internal/seed"
	"github.com/vaultshare/vaultshare/internal/store"
	"github.com/vaultshare/vaultshare/internal/workspace"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Apply a YAML seed file",
		Long: `Creates the users and workspaces a seed file describes.
This command is idempotent - it will not create duplicates if run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "seed.yaml", "path to the seed YAML file")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}

	data, err := os.ReadFile(cfg.file)
	if err != nil {
		return oops.Code("SEED_FAILED").With("file", cfg.file).Wrapf(err, "reading seed file")
	}

	file, err := seed.Parse(data)
	if err != nil {
		return oops.Code("SEED_FAILED").With("file", cfg.file).Wrap(err)
	}

	// Use cmd.Context() so SIGINT/SIGTERM interrupt the run.
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := connectPool(ctx, databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	if err := runAutoMigration(func(url string) (AutoMigrator, error) {
		return store.NewMigrator(url)
	}, databaseURL); err != nil {
		return err
	}

	repos := account.NewRepositories(pool)
	ids := ident.NewUUIDGenerator()

	authSvc, err := auth.NewService(repos.Users, auth.NewPBKDF2Hasher(), ids)
	if err != nil {
		return oops.Code("SEED_FAILED").With("service", "auth").Wrap(err)
	}
	wsSvc, err := workspace.NewService(pool, ids)
	if err != nil {
		return oops.Code("SEED_FAILED").With("service", "workspace").Wrap(err)
	}

	applier, err := seed.NewApplier(authSvc, wsSvc, repos, nil)
	if err != nil {
		return oops.Code("SEED_FAILED").Wrap(err)
	}

	if err := applier.Apply(ctx, file); err != nil {
		return err
	}

	cmd.Println("Seeding complete!")
	return nil
}
