// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vaultshare/vaultshare/internal/seed"
)

// NewValidateSeedCmd creates the validate-seed subcommand.
func NewValidateSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-seed <file>",
		Short: "Validate a seed file without touching the database",
		Long: `Validates a seed YAML file against the embedded schema.
Does NOT start the server or require a database connection.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch seed file errors early:
  vaultshare validate-seed seed.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateSeed(cmd, args[0])
		},
	}
}

func runValidateSeed(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return oops.Code("SEED_FAILED").With("file", path).Wrapf(err, "reading seed file")
	}

	file, err := seed.Parse(data)
	if err != nil {
		return oops.Code("SEED_INVALID").With("file", path).Wrap(err)
	}

	cmd.Printf("%s is valid: %d users, %d workspaces\n", path, len(file.Users), len(file.Workspaces))
	return nil
}
