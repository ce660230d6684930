// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VaultShare Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the VaultShare CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vaultshare",
		Short: "VaultShare - workspace file sharing backend",
		Long: `VaultShare is an account and workspace management backend with
session authentication, shared storage quotas, and passive alerts.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewValidateSeedCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
