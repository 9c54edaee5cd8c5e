// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package main

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/drivent/drivent/internal/auth"
)

// NewMigrateCmd creates the migrate command and its subcommands.
func NewMigrateCmd() *cobra.Command {
	return newMigrateCmdWithDeps(nil)
}

func newMigrateCmdWithDeps(deps *MigrateDeps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  `Apply, roll back, inspect, or repair the users and sessions schema.`,
	}
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL")

	var confirmDown bool

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmDown {
				return oops.Code("CONFIRMATION_REQUIRED").Errorf("migrate down drops every table; pass --yes to confirm")
			}
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("All migrations rolled back")
				return nil
			})
		},
	}
	down.Flags().BoolVar(&confirmDown, "yes", false, "confirm dropping all data")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				return printVersion(cmd, m)
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				st, err := m.Status()
				if err != nil {
					return err
				}
				for _, mig := range st.Applied {
					cmd.Printf("applied  %06d %s\n", mig.Version, mig.Name)
				}
				for _, mig := range st.Pending {
					cmd.Printf("pending  %06d %s\n", mig.Version, mig.Name)
				}
				if st.Dirty {
					cmd.Printf("schema is dirty at version %d; repair it and run 'migrate force'\n", st.Current)
				}
				return nil
			})
		},
	}

	force := &cobra.Command{
		Use:   "force <version>",
		Short: "Record a version as applied without running migrations",
		Long: `Force sets the schema version and clears the dirty flag. Use it only
after repairing a failed migration by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Force(v); err != nil {
					return err
				}
				cmd.Printf("Forced schema version to %d\n", v)
				return nil
			})
		},
	}

	cmd.AddCommand(up, down, versionCmd, status, force)
	return cmd
}

// withMigrator loads the database URL, opens a migrator, runs fn, and
// closes the migrator.
func withMigrator(cmd *cobra.Command, deps *MigrateDeps, fn func(Migrator) error) (err error) {
	cfg, err := deps.ConfigLoader(loadOptions(cmd))
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code(auth.CodeConfigInvalid).
			With("missing", []string{"database.url"}).
			Errorf("database url is required")
	}

	m, err := deps.MigratorFactory(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(m)
}

func printVersion(cmd *cobra.Command, m Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	cmd.Printf("Schema version %d (%s)\n", v, state)
	return nil
}

// migrateUp applies pending migrations before serving.
func migrateUp(factory func(string) (Migrator, error), url string, logger *slog.Logger) error {
	m, err := factory(url)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := m.Up(); err != nil {
		return err
	}
	v, _, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("schema is up to date", "version", v)
	return nil
}

// parseForceVersion parses the force argument. Range checks are left to
// the migrator.
func parseForceVersion(arg string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", arg).Wrapf(err, "version must be an integer")
	}
	return v, nil
}
