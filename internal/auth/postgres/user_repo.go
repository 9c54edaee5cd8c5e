// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/drivent/drivent/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
// Errors carry context but no code; the service decides the code.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByEmail retrieves the credentials of a user.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	var u auth.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("email", email).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get user by email").With("email", email).Wrap(err)
	}
	return &u, nil
}

// GetProfileByEmail retrieves the full user record.
func (r *UserRepository) GetProfileByEmail(ctx context.Context, email string) (*auth.User, error) {
	var u auth.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password, created_at, updated_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("email", email).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get user profile by email").With("email", email).Wrap(err)
	}
	return &u, nil
}

// ExistsByEmail reports whether a user holds the email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, oops.With("operation", "check user exists").With("email", email).Wrap(err)
	}
	return exists, nil
}

// Create inserts the user and returns a copy with id and timestamps set by
// the database. A duplicate email yields auth.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	created := *user
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		user.Email, user.PasswordHash,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, oops.With("email", user.Email).Wrap(auth.ErrEmailTaken)
	}
	if err != nil {
		return nil, oops.With("operation", "insert user").With("email", user.Email).Wrap(err)
	}
	return &created, nil
}

// compile-time interface check
var _ auth.UserRepository = (*UserRepository)(nil)
