// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
	"golang.org/x/sync/errgroup"

	"github.com/drivent/drivent/internal/auth"
)

// Defaults for Config fields left empty.
const (
	DefaultAPIURL  = "https://api.github.com"
	DefaultTimeout = 10 * time.Second
)

// maxResponseBytes bounds every body read from GitHub.
const maxResponseBytes = 1 << 20

// Config holds the OAuth application credentials and endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// TokenURL defaults to GitHub's OAuth token endpoint.
	TokenURL string
	// APIURL defaults to DefaultAPIURL.
	APIURL string
	// Timeout bounds each outbound request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Validate reports missing client credentials as a configuration error.
func (c Config) Validate() error {
	missing := make([]string, 0, 3)
	if c.ClientID == "" {
		missing = append(missing, "github.client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "github.client_secret")
	}
	if c.RedirectURL == "" {
		missing = append(missing, "github.redirect_url")
	}
	if len(missing) > 0 {
		return oops.Code(auth.CodeConfigInvalid).
			With("missing", missing).
			Errorf("github oauth client is not configured")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.TokenURL == "" {
		c.TokenURL = githuboauth.Endpoint.TokenURL
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Exchanger implements auth.OAuthExchanger against GitHub.
type Exchanger struct {
	cfg    Config
	client *http.Client
}

// Option configures an Exchanger.
type Option func(*Exchanger)

// WithHTTPClient replaces the base HTTP client. Its Timeout is overridden by
// Config.Timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Exchanger) {
		if client != nil {
			e.client = client
		}
	}
}

// NewExchanger creates an Exchanger. Missing credentials are a configuration error.
func NewExchanger(cfg Config, opts ...Option) (*Exchanger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Exchanger{
		cfg:    cfg.withDefaults(),
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(e)
	}
	bounded := *e.client
	bounded.Timeout = e.cfg.Timeout
	e.client = &bounded
	return e, nil
}

// Exchange turns an authorization code into the user's primary email and display name.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*auth.OAuthProfile, error) {
	if code == "" {
		return nil, failure("validate code").Errorf("authorization code is required")
	}

	accessToken, err := e.accessToken(ctx, code)
	if err != nil {
		return nil, err
	}

	return e.profile(ctx, accessToken)
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	GrantType    string `json:"grant_type"`
}

// accessToken posts the code to the token endpoint. The response body is a
// query string; repeated access_token values are concatenated.
func (e *Exchanger) accessToken(ctx context.Context, code string) (string, error) {
	body, err := json.Marshal(tokenRequest{
		ClientID:     e.cfg.ClientID,
		ClientSecret: e.cfg.ClientSecret,
		Code:         code,
		RedirectURI:  e.cfg.RedirectURL,
		GrantType:    "authorization_code",
	})
	if err != nil {
		return "", failure("encode token request").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.TokenURL, bytes.NewReader(body))
	if err != nil {
		return "", failure("build token request").Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", failure("request access token").Wrap(err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", failure("read token response").Wrap(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", failure("request access token").
			With("status", resp.StatusCode).
			Errorf("token endpoint returned %s", resp.Status)
	}

	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return "", failure("parse token response").Wrap(err)
	}

	token := strings.Join(values["access_token"], "")
	if token == "" {
		return "", failure("parse token response").
			With("provider_error", values.Get("error")).
			With("provider_error_description", values.Get("error_description")).
			Errorf("token response has no access_token")
	}
	return token, nil
}

type emailEntry struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// userEntry keeps name raw so an absent key can be told apart from null.
type userEntry struct {
	Name json.RawMessage `json:"name"`
}

// displayName returns the profile name. GitHub reports accounts without a
// display name as null, which yields "". An absent key or a non-string
// value is an error.
func (u userEntry) displayName() (string, error) {
	if len(u.Name) == 0 {
		return "", failure("read user").Errorf("user response has no name")
	}
	if string(u.Name) == "null" {
		return "", nil
	}
	var name string
	if err := json.Unmarshal(u.Name, &name); err != nil {
		return "", failure("read user").Wrapf(err, "user name is not a string")
	}
	return name, nil
}

// profile reads the emails and user endpoints concurrently. The first
// failure cancels the other request.
func (e *Exchanger) profile(ctx context.Context, accessToken string) (*auth.OAuthProfile, error) {
	clientCtx := context.WithValue(ctx, oauth2.HTTPClient, e.client)
	client := oauth2.NewClient(clientCtx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	var (
		emails []emailEntry
		user   userEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.getJSON(gctx, client, "/user/emails", &emails)
	})
	g.Go(func() error {
		return e.getJSON(gctx, client, "/user", &user)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(emails) == 0 || emails[0].Email == "" {
		return nil, failure("read emails").Errorf("emails response has no email")
	}
	name, err := user.displayName()
	if err != nil {
		return nil, err
	}

	return &auth.OAuthProfile{Email: emails[0].Email, Name: name}, nil
}

func (e *Exchanger) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	operation := "get " + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.APIURL+path, http.NoBody)
	if err != nil {
		return failure(operation).Wrap(err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return failure(operation).Wrap(err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(operation).
			With("status", resp.StatusCode).
			Errorf("github api returned %s", resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return failure(operation).Wrap(err)
	}
	return nil
}

func failure(operation string) oops.OopsErrorBuilder {
	return oops.Code(auth.CodeOAuthExchangeFailed).With("operation", operation)
}
