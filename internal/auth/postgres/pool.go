// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// poolIface is the subset of *pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it in unit tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// violates reports whether err is a PostgreSQL error with the given SQLSTATE.
func violates(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool { return violates(err, pgerrcode.UniqueViolation) }

func isForeignKeyViolation(err error) bool { return violates(err, pgerrcode.ForeignKeyViolation) }
