// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

// Package github exchanges GitHub OAuth authorization codes for user profiles.
//
// The exchange is strictly ordered: the code is posted to the token endpoint,
// the query-string response yields an access token, and the emails and user
// endpoints are then read concurrently with that token as a bearer credential.
// Any failure aborts the exchange with auth.CodeOAuthExchangeFailed.
package github
