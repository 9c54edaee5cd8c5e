// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivent/drivent/pkg/errutil"
)

// isolate clears every variable Load reads and points XDG at an empty dir.
func isolate(t *testing.T) string {
	t.Helper()
	for name := range legacyEnv {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("http-addr", ":4000", "")
	fs.String("metrics-addr", "127.0.0.1:9100", "")
	fs.String("log-format", "json", "")
	fs.Bool("migrate", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadHeaderTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Database.ConnectTimeout)
	assert.Zero(t, cfg.Auth.TokenTTL, "tokens do not expire by default")
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 10*time.Second, cfg.GitHub.Timeout)
	assert.Empty(t, cfg.Auth.JWTSecret)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "custom.yaml"), `
http:
  addr: ":8080"
  shutdown_timeout: 5s
database:
  url: postgres://file/drivent
auth:
  jwt_secret: from-file
  token_ttl: 24h
  bcrypt_cost: 12
github:
  client_id: file-id
  api_url: http://ghe.local/api
`)

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadHeaderTimeout, "unset keys keep defaults")
	assert.Equal(t, "postgres://file/drivent", cfg.Database.URL)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "file-id", cfg.GitHub.ClientID)
	assert.Equal(t, "http://ghe.local/api", cfg.GitHub.APIURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(Options{ConfigFile: filepath.Join(dir, "nope.yaml")})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	errutil.AssertErrorContext(t, err, "operation", "load config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "bad.yaml"), "http: [unclosed")

	_, err := Load(Options{ConfigFile: path})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestLoad_DefaultXDGFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "drivent", "config.yaml"), "log:\n  format: text\n")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_LegacyEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://legacy/drivent")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("CLIENT_ID", "legacy-id")
	t.Setenv("CLIENT_SECRET", "legacy-shh")
	t.Setenv("REDIRECT_URL", "http://localhost:3000/callback")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "postgres://legacy/drivent", cfg.Database.URL)
	assert.Equal(t, "legacy-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "legacy-id", cfg.GitHub.ClientID)
	assert.Equal(t, "legacy-shh", cfg.GitHub.ClientSecret)
	assert.Equal(t, "http://localhost:3000/callback", cfg.GitHub.RedirectURL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "c.yaml"), `
http:
  addr: ":1111"
metrics:
  addr: ":2222"
auth:
  jwt_secret: from-file
`)
	t.Setenv("JWT_SECRET", "legacy")
	t.Setenv("DRIVENT_AUTH_JWT_SECRET", "namespaced")
	t.Setenv("DRIVENT_HTTP_ADDR", ":3333")
	t.Setenv("DRIVENT_HTTP_READ_HEADER_TIMEOUT", "2s")
	t.Setenv("DRIVENT_AUTH_BCRYPT_COST", "11")

	cfg, err := Load(Options{ConfigFile: path, Flags: newFlags(t, "--http-addr", ":4444")})
	require.NoError(t, err)

	assert.Equal(t, "namespaced", cfg.Auth.JWTSecret, "namespaced env beats legacy env and file")
	assert.Equal(t, ":4444", cfg.HTTP.Addr, "explicit flag beats env")
	assert.Equal(t, ":2222", cfg.Metrics.Addr, "unchanged flag default does not beat file")
	assert.Equal(t, 2*time.Second, cfg.HTTP.ReadHeaderTimeout)
	assert.Equal(t, 11, cfg.Auth.BcryptCost)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := isolate(t)
	envFile := writeFile(t, filepath.Join(dir, ".env"), "JWT_SECRET=dotenv-secret\nCLIENT_ID=dotenv-id\n")
	t.Setenv("CLIENT_ID", "process-id")

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "dotenv-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "process-id", cfg.GitHub.ClientID, "process environment wins over .env")
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	dir := isolate(t)

	_, err := Load(Options{EnvFile: filepath.Join(dir, ".env")})
	require.NoError(t, err)
}

func TestNamespacedKey(t *testing.T) {
	tests := map[string]string{
		"DRIVENT_AUTH_JWT_SECRET":          "auth.jwt_secret",
		"DRIVENT_HTTP_ADDR":                "http.addr",
		"DRIVENT_HTTP_READ_HEADER_TIMEOUT": "http.read_header_timeout",
		"DRIVENT_GITHUB_CLIENT_ID":         "github.client_id",
		"DRIVENT_AUTH":                     "",
		"DRIVENT_AUTH_":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, namespacedKey(in), in)
	}
}
