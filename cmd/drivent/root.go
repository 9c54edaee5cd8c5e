// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/drivent/drivent/internal/config"
)

// Global flags available to all subcommands.
var (
	configFile string
	envFile    string
)

// NewRootCmd creates the root command for the drivent CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drivent",
		Short: "Drivent authentication service",
		Long: `Drivent signs users in with email and password or with GitHub,
provisions first-time GitHub users, and records a session per sign-in.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/drivent/config.yaml)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadOptions collects the global flags and the command's own flags.
func loadOptions(cmd *cobra.Command) config.Options {
	return config.Options{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      cmd.Flags(),
	}
}
