// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package auth

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// MaxEmailLength bounds the stored email column.
const MaxEmailLength = 254

// User is an account with its credential. It never leaves this package's
// callers unsanitized; use Sanitize or Minimal to build outward values.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the outward view of a User. It has no password field.
type PublicUser struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Sanitize returns every field of the user except the password hash.
func (u *User) Sanitize() PublicUser {
	p := u.Minimal()
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		p.CreatedAt = &created
	}
	if !u.UpdatedAt.IsZero() {
		updated := u.UpdatedAt
		p.UpdatedAt = &updated
	}
	return p
}

// Minimal returns only the id and email of the user.
func (u *User) Minimal() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}

// NewUser creates a validated User ready to be persisted.
// The ID and timestamps are assigned by the store.
func NewUser(email, passwordHash string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	return &User{Email: email, PasswordHash: passwordHash}, nil
}

// ValidateEmail checks that email is a bare RFC 5322 address.
// Case is preserved; lookups are case-sensitive.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code(CodeInvalidEmail).Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code(CodeInvalidEmail).
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return oops.Code(CodeInvalidEmail).Errorf("email is not a valid address")
	}
	return nil
}

// NewPlaceholderPassword returns a random, unguessable password for accounts
// provisioned through OAuth. It is hashed before storage and never returned,
// so such accounts cannot be entered through local sign-in.
func NewPlaceholderPassword() string {
	return uuid.NewString()
}

// UserRepository manages user persistence.
type UserRepository interface {
	// GetByEmail retrieves the id, email, and password hash of a user.
	// Matching is case-sensitive. Returns ErrNotFound if no user has the email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail reports whether a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// GetProfileByEmail retrieves the full user record.
	// Returns ErrNotFound if no user has the email.
	GetProfileByEmail(ctx context.Context, email string) (*User, error)

	// Create stores a new user and returns it with store-assigned fields.
	// Returns ErrEmailTaken if the email is already registered.
	Create(ctx context.Context, user *User) (*User, error)
}
