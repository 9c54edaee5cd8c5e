// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package auth

import "context"

// OAuthProfile is the identity an OAuth provider vouches for.
type OAuthProfile struct {
	Email string
	Name  string
}

// OAuthExchanger turns an authorization code into a verified profile.
type OAuthExchanger interface {
	// Exchange performs the code, access token, profile exchange.
	// Any failure aborts the whole exchange; no partial profile is returned.
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}
