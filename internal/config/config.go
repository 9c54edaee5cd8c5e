// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

// Package config loads drivent configuration from defaults, a YAML file,
// the environment, and command-line flags, in increasing precedence.
package config

import (
	"time"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/drivent/drivent/internal/auth"
	"github.com/drivent/drivent/internal/auth/github"
	"github.com/drivent/drivent/internal/logging"
)

// Config is the complete service configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	GitHub   GitHubConfig   `koanf:"github"`
}

// HTTPConfig configures the public API listener.
type HTTPConfig struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// MetricsConfig configures the observability listener. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// DatabaseConfig configures PostgreSQL access.
type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// AuthConfig configures token issuance and password hashing.
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	// TokenTTL of zero issues tokens without an expiry.
	TokenTTL   time.Duration `koanf:"token_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`
}

// GitHubConfig configures the GitHub OAuth application.
type GitHubConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	RedirectURL  string        `koanf:"redirect_url"`
	TokenURL     string        `koanf:"token_url"`
	APIURL       string        `koanf:"api_url"`
	Timeout      time.Duration `koanf:"timeout"`
}

// Exchanger converts the section to the exchanger's own config.
func (c GitHubConfig) Exchanger() github.Config {
	return github.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		TokenURL:     c.TokenURL,
		APIURL:       c.APIURL,
		Timeout:      c.Timeout,
	}
}

// defaults are the lowest-precedence values, keyed by koanf path.
var defaults = map[string]any{
	"http.addr":                ":4000",
	"http.read_header_timeout": 10 * time.Second,
	"http.shutdown_timeout":    15 * time.Second,
	"metrics.addr":             "127.0.0.1:9100",
	"log.format":               "json",
	"log.level":                "info",
	"database.connect_timeout": 30 * time.Second,
	"auth.token_ttl":           time.Duration(0),
	"auth.bcrypt_cost":         bcrypt.DefaultCost,
	"github.timeout":           github.DefaultTimeout,
}

// Validate checks that the configuration is complete enough to serve.
// Every failure carries CONFIG_INVALID.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "database.url")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "auth.jwt_secret")
	}
	if err := c.GitHub.Exchanger().Validate(); err != nil {
		if oopsErr, ok := oops.AsOops(err); ok {
			if keys, ok := oopsErr.Context()["missing"].([]string); ok {
				missing = append(missing, keys...)
			}
		}
	}
	if len(missing) > 0 {
		return oops.Code(auth.CodeConfigInvalid).
			With("missing", missing).
			Errorf("required configuration is missing")
	}

	if !logging.ValidFormat(c.Log.Format) {
		return invalid("log.format", "must be json or text, got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return oops.With("key", "log.level").Wrap(err)
	}
	if c.HTTP.Addr == "" {
		return invalid("http.addr", "must not be empty")
	}
	if c.Auth.TokenTTL < 0 {
		return invalid("auth.token_ttl", "must not be negative, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return invalid("auth.bcrypt_cost", "must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	}
	if c.Database.ConnectTimeout <= 0 {
		return invalid("database.connect_timeout", "must be positive, got %s", c.Database.ConnectTimeout)
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return oops.Code(auth.CodeConfigInvalid).With("key", key).Errorf(key+" "+format, args...)
}
