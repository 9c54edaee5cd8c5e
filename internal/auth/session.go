// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session is the persisted proof of a successful sign-in.
// Sessions are append-only; this package never reads or revokes them.
type Session struct {
	ID        ulid.ULID
	Token     string
	UserID    int64
	CreatedAt time.Time
}

// NewSession creates a validated Session instance.
// Returns an error if any required fields are invalid.
func NewSession(userID int64, token string) (*Session, error) {
	if userID <= 0 {
		return nil, oops.Code("SESSION_INVALID_USER").
			With("user_id", userID).
			Errorf("user ID must be positive")
	}
	if token == "" {
		return nil, oops.Code("SESSION_INVALID_TOKEN").Errorf("token cannot be empty")
	}

	return &Session{
		ID:        ulid.Make(),
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now(),
	}, nil
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session. A user may hold any number of sessions.
	Create(ctx context.Context, session *Session) error
}
