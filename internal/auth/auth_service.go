// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/drivent/drivent/pkg/errutil"
)

const tracerName = "github.com/drivent/drivent/internal/auth"

// Result is the value returned to a caller after a successful sign-in.
type Result struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
	Name  string     `json:"name,omitempty"`
	// Provisioned is set when the login created the user.
	Provisioned bool `json:"-"`
}

// Service provides authentication operations.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	oauth    OAuthExchanger
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewAuthService creates a new Service that logs through slog.Default.
func NewAuthService(
	users UserRepository,
	sessions SessionRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	exchanger OAuthExchanger,
) (*Service, error) {
	return NewAuthServiceWithLogger(users, sessions, hasher, tokens, exchanger, slog.Default())
}

// NewAuthServiceWithLogger creates a new Service with an explicit logger.
// Every dependency is required.
func NewAuthServiceWithLogger(
	users UserRepository,
	sessions SessionRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	exchanger OAuthExchanger,
	logger *slog.Logger,
) (*Service, error) {
	switch {
	case users == nil:
		return nil, oops.Code(CodeInvalidDependency).Errorf("users repository is required")
	case sessions == nil:
		return nil, oops.Code(CodeInvalidDependency).Errorf("sessions repository is required")
	case hasher == nil:
		return nil, oops.Code(CodeInvalidDependency).Errorf("password hasher is required")
	case tokens == nil:
		return nil, oops.Code(CodeInvalidDependency).Errorf("token issuer is required")
	case exchanger == nil:
		return nil, oops.Code(CodeInvalidDependency).Errorf("oauth exchanger is required")
	case logger == nil:
		return nil, oops.Code(CodeInvalidDependency).Errorf("logger is required")
	}

	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		oauth:    exchanger,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// dummyPasswordHash is verified when the email is unknown so that the
// response time does not reveal whether an account exists.
// It is a well-formed bcrypt hash that belongs to no account.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1OWKH1gX5pRIgDYsmjr7u6."

// SignIn authenticates a user by email and password and creates a session.
// Unknown email and wrong password fail with the same CodeInvalidCredentials error.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "auth.SignIn")
	defer span.End()

	user, err := s.getUserOrFail(ctx, email, s.users.GetByEmail)
	if err != nil {
		if errutil.HasCode(err, CodeInvalidCredentials) {
			_, _ = s.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing only
		}
		return nil, failSpan(span, err)
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID))

	if err := s.validatePasswordOrFail(ctx, user, password); err != nil {
		return nil, failSpan(span, err)
	}

	token, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, failSpan(span, err)
	}

	return &Result{User: user.Minimal(), Token: token}, nil
}

// LoginWithGitHub exchanges an authorization code for a GitHub identity,
// provisions the user on first login, and creates a session.
//
// A returning user receives the full sanitized record. A newly provisioned
// user receives only id and email.
func (s *Service) LoginWithGitHub(ctx context.Context, code string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "auth.LoginWithGitHub")
	defer span.End()

	profile, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, failSpan(span, oops.Code(CodeOAuthExchangeFailed).
			With("operation", "exchange code").
			Wrap(err))
	}

	exists, err := s.users.ExistsByEmail(ctx, profile.Email)
	if err != nil {
		return nil, failSpan(span, oops.Code(CodeLookupFailed).
			With("operation", "check user exists").
			Wrap(err))
	}

	if exists {
		user, err := s.getUserOrFail(ctx, profile.Email, s.users.GetProfileByEmail)
		if err != nil {
			return nil, failSpan(span, err)
		}
		span.SetAttributes(attribute.Int64("user.id", user.ID), attribute.Bool("user.provisioned", false))

		token, err := s.createSession(ctx, user.ID)
		if err != nil {
			return nil, failSpan(span, err)
		}
		return &Result{User: user.Sanitize(), Token: token, Name: profile.Name}, nil
	}

	if err := s.provision(ctx, profile.Email); err != nil {
		return nil, failSpan(span, err)
	}

	user, err := s.getUserOrFail(ctx, profile.Email, s.users.GetByEmail)
	if err != nil {
		return nil, failSpan(span, err)
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID), attribute.Bool("user.provisioned", true))

	token, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, failSpan(span, err)
	}
	return &Result{User: user.Minimal(), Token: token, Name: profile.Name, Provisioned: true}, nil
}

// SignUp creates a local account.
func (s *Service) SignUp(ctx context.Context, email, password string) (*PublicUser, error) {
	ctx, span := s.tracer.Start(ctx, "auth.SignUp")
	defer span.End()

	if err := ValidateEmail(email); err != nil {
		return nil, failSpan(span, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errutil.HasCode(err, CodeEmptyPassword) || errutil.HasCode(err, CodePasswordTooLong) {
			return nil, failSpan(span, err)
		}
		return nil, failSpan(span, recode(CodeSignUpFailed, "hash password", err))
	}

	user, err := NewUser(email, hash)
	if err != nil {
		return nil, failSpan(span, err)
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, failSpan(span, oops.Code(CodeEmailTaken).Wrap(err))
		}
		return nil, failSpan(span, oops.Code(CodeSignUpFailed).
			With("operation", "create user").
			Wrap(err))
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", created.ID)
	public := created.Sanitize()
	return &public, nil
}

// provision creates a user for a first-time OAuth login. The account gets a
// random placeholder password that is never returned.
func (s *Service) provision(ctx context.Context, email string) error {
	if err := ValidateEmail(email); err != nil {
		return oops.Code(CodeProvisioningFailed).
			With("operation", "validate email").
			Errorf("identity provider returned an unusable email")
	}

	hash, err := s.hasher.Hash(NewPlaceholderPassword())
	if err != nil {
		return recode(CodeProvisioningFailed, "hash placeholder password", err)
	}

	user, err := NewUser(email, hash)
	if err != nil {
		return recode(CodeProvisioningFailed, "new user", err)
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return recode(CodeProvisioningFailed, "create user", err)
	}

	s.logger.InfoContext(ctx, "provisioned user from oauth login",
		"user_id", created.ID,
		"email", created.Email,
	)
	return nil
}

// getUserOrFail resolves an email to a user or rejects with CodeInvalidCredentials.
func (s *Service) getUserOrFail(
	ctx context.Context,
	email string,
	lookup func(context.Context, string) (*User, error),
) (*User, error) {
	user, err := lookup(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, oops.Code(CodeLookupFailed).
			With("operation", "get user by email").
			Wrap(err)
	}
	return user, nil
}

// validatePasswordOrFail rejects with CodeInvalidCredentials unless password
// matches the stored hash. An unreadable stored hash is logged and rejected
// the same way.
func (s *Service) validatePasswordOrFail(ctx context.Context, user *User, password string) error {
	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.WarnContext(ctx, "stored password hash could not be verified",
			"operation", "verify_password",
			"user_id", user.ID,
			"error", err,
		)
		return invalidCredentials()
	}
	if !valid {
		return invalidCredentials()
	}
	return nil
}

// createSession issues a token for the user and persists it as a session.
// The token is returned only after the session row is stored.
func (s *Service) createSession(ctx context.Context, userID int64) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", oops.Code(CodeTokenIssueFailed).
			With("operation", "issue token").
			With("user_id", userID).
			Wrap(err)
	}

	session, err := NewSession(userID, token)
	if err != nil {
		return "", recode(CodeSessionCreateFailed, "new session", err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", oops.With("user_id", userID).Wrap(
			recode(CodeSessionCreateFailed, "persist session", err))
	}
	return token, nil
}

// recode attaches code and operation to cause. oops reports the innermost
// code, so a cause that already carries one is flattened: its message and
// code move into context and the chain stops there.
func recode(code, operation string, cause error) error {
	b := oops.Code(code).With("operation", operation)
	causeCode := errutil.Code(cause)
	if causeCode == "" {
		return b.Wrap(cause)
	}
	return b.With("cause_code", causeCode).Errorf("%s: %s", operation, cause.Error())
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "authentication failed")
	return err
}
