// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

// Package auth authenticates Drivent users and mints session tokens.
//
// # Domain Types
//
// Domain types should be created using their constructors:
//   - NewUser - validates the email and password hash of a new account
//   - NewSession - validates the token and owning user of a session row
//
// Direct struct initialization bypasses validation and may create invalid state.
// Values that cross the package boundary toward callers are PublicUser and
// Result, neither of which can carry a password hash.
//
// # Services
//
// Service composes the collaborators into the authentication flows:
//   - SignIn - local email and password sign-in
//   - LoginWithGitHub - OAuth authorization-code sign-in with provisioning
//   - SignUp - local account creation
//
// Collaborators are interfaces (UserRepository, SessionRepository,
// PasswordHasher, TokenIssuer, OAuthExchanger) so that storage and the
// identity provider can be replaced in tests.
//
// # Errors
//
// Every per-request failure is an oops error carrying one of the codes
// declared in errors.go. Callers that face the network collapse them into a
// single unauthorized response and keep the code for logging.
package auth
