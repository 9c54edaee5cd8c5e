// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

// Package store owns the PostgreSQL connection pool and the embedded schema.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Backoff bounds for the startup ping.
const (
	connectBaseDelay = 100 * time.Millisecond
	connectMaxDelay  = 2 * time.Second
)

// pinger is the part of *pgxpool.Pool that Connect waits on.
type pinger interface {
	Ping(ctx context.Context) error
}

// Connect opens a pool for databaseURL and waits until the database answers
// a ping, retrying with capped exponential backoff for at most timeout.
// Retrying happens only here, at startup.
func Connect(ctx context.Context, databaseURL string, timeout time.Duration, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	if err := waitForPing(ctx, pool, timeout, logger); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to database",
		"host", cfg.ConnConfig.Host,
		"database", cfg.ConnConfig.Database,
	)
	return pool, nil
}

func waitForPing(ctx context.Context, db pinger, timeout time.Duration, logger *slog.Logger) error {
	backoff := retry.WithMaxDuration(timeout,
		retry.WithCappedDuration(connectMaxDelay, retry.NewExponential(connectBaseDelay)))

	attempts := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := db.Ping(ctx); err != nil {
			logger.Debug("database not ready", "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			With("attempts", attempts).
			With("timeout", timeout.String()).
			Wrap(err)
	}
	return nil
}
