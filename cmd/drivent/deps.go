// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package main

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/drivent/drivent/internal/config"
	"github.com/drivent/drivent/internal/observability"
	"github.com/drivent/drivent/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// ConfigLoader builds the configuration.
	// Default: config.Load
	ConfigLoader func(opts config.Options) (*config.Config, error)

	// DatabaseFactory opens the connection pool.
	// Default: store.Connect
	DatabaseFactory func(ctx context.Context, url string, timeout time.Duration, logger *slog.Logger) (Database, error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (Migrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// Listen opens the public API listener.
	// Default: net.Listen
	Listen func(network, address string) (net.Listener, error)
}

// MigrateDeps contains injectable dependencies for the migrate commands.
type MigrateDeps struct {
	// ConfigLoader builds the configuration.
	// Default: config.Load
	ConfigLoader func(opts config.Options) (*config.Config, error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (Migrator, error)
}

// Database wraps the methods used from *pgxpool.Pool.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Status() (*store.Status, error)
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.ConfigLoader == nil {
		out.ConfigLoader = config.Load
	}
	if out.DatabaseFactory == nil {
		out.DatabaseFactory = func(ctx context.Context, url string, timeout time.Duration, logger *slog.Logger) (Database, error) {
			pool, err := store.Connect(ctx, url, timeout, logger)
			if err != nil {
				return nil, err
			}
			return pool, nil
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = newStoreMigrator
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker, logger)
		}
	}
	if out.Listen == nil {
		out.Listen = net.Listen
	}
	return &out
}

func (d *MigrateDeps) withDefaults() *MigrateDeps {
	out := MigrateDeps{}
	if d != nil {
		out = *d
	}
	if out.ConfigLoader == nil {
		out.ConfigLoader = config.Load
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = newStoreMigrator
	}
	return &out
}

func newStoreMigrator(url string) (Migrator, error) {
	m, err := store.NewMigrator(url)
	if err != nil {
		return nil, err
	}
	return m, nil
}
