// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned by UserRepository.Create when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// Error codes attached to failures returned by Service.
const (
	// CodeInvalidCredentials covers both an unknown email and a wrong password.
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	// CodeOAuthExchangeFailed covers any failure of the code, token, profile exchange.
	CodeOAuthExchangeFailed = "AUTH_OAUTH_EXCHANGE_FAILED"
	// CodeProvisioningFailed is returned when a first-time OAuth user cannot be created.
	CodeProvisioningFailed = "AUTH_PROVISIONING_FAILED"
	// CodeConfigInvalid marks a startup-time configuration failure.
	CodeConfigInvalid = "CONFIG_INVALID"

	CodeLookupFailed        = "AUTH_LOOKUP_FAILED"
	CodeSessionCreateFailed = "AUTH_SESSION_CREATE_FAILED"
	CodeTokenIssueFailed    = "AUTH_TOKEN_ISSUE_FAILED"
	CodeTokenInvalid        = "AUTH_TOKEN_INVALID"
	CodeEmailTaken          = "AUTH_EMAIL_TAKEN"
	CodeInvalidEmail        = "AUTH_INVALID_EMAIL"
	CodeEmptyPassword       = "AUTH_EMPTY_PASSWORD"
	CodePasswordTooLong     = "AUTH_PASSWORD_TOO_LONG"
	CodeHashFailed          = "AUTH_HASH_FAILED"
	CodeSignUpFailed        = "AUTH_SIGNUP_FAILED"
	CodeInvalidDependency   = "AUTH_INVALID_DEPENDENCY"
)
