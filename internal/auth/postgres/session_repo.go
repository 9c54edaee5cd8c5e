// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/drivent/drivent/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool poolIface
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool poolIface) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session. A session for a missing user yields
// auth.ErrNotFound.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, token, user_id, created_at) VALUES ($1, $2, $3, $4)`,
		session.ID.String(), session.Token, session.UserID, session.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return oops.With("user_id", session.UserID).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return oops.With("operation", "insert session").
			With("session_id", session.ID.String()).
			With("user_id", session.UserID).
			Wrap(err)
	}
	return nil
}

// compile-time interface check
var _ auth.SessionRepository = (*SessionRepository)(nil)
