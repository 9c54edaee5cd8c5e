// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	// Issue returns a signed token embedding the user ID.
	Issue(userID int64) (string, error)
}

// Claims is the payload of a session token.
//
// UserID is the only identity claim. IssuedAt and ID are set on every token
// so that two sign-ins in the same second still produce distinct tokens.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 tokens with a process-wide secret.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// JWTOption configures a JWTIssuer.
type JWTOption func(*JWTIssuer)

// WithTokenTTL sets an expiry on issued tokens. Zero, the default, issues
// tokens without an exp claim.
func WithTokenTTL(ttl time.Duration) JWTOption {
	return func(i *JWTIssuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for iat and exp.
func WithClock(now func() time.Time) JWTOption {
	return func(i *JWTIssuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewJWTIssuer creates a JWTIssuer. An empty secret is a configuration error.
func NewJWTIssuer(secret string, opts ...JWTOption) (*JWTIssuer, error) {
	if secret == "" {
		return nil, oops.Code(CodeConfigInvalid).
			With("key", "auth.jwt_secret").
			Errorf("token signing secret is required")
	}
	i := &JWTIssuer{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue signs a token for the user.
func (i *JWTIssuer) Issue(userID int64) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       ulid.Make().String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", oops.With("operation", "sign token").With("user_id", userID).Wrap(err)
	}
	return signed, nil
}

// Parse verifies the token signature (and expiry, when present) and returns
// the embedded user ID.
func (i *JWTIssuer) Parse(token string) (int64, error) {
	if token == "" {
		return 0, oops.Code(CodeTokenInvalid).Errorf("token cannot be empty")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return 0, oops.Code(CodeTokenInvalid).Wrap(err)
	}
	if !parsed.Valid || claims.UserID == 0 {
		return 0, oops.Code(CodeTokenInvalid).Errorf("token carries no user")
	}
	return claims.UserID, nil
}
