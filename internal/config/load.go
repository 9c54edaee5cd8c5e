// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/drivent/drivent/internal/auth"
	"github.com/drivent/drivent/internal/xdg"
)

// EnvPrefix namespaces environment variables: DRIVENT_<SECTION>_<KEY>.
const EnvPrefix = "DRIVENT_"

// legacyEnv maps the variable names of the original deployment to keys.
// Namespaced variables win over these.
var legacyEnv = map[string]string{
	"DATABASE_URL":  "database.url",
	"JWT_SECRET":    "auth.jwt_secret",
	"CLIENT_ID":     "github.client_id",
	"CLIENT_SECRET": "github.client_secret",
	"REDIRECT_URL":  "github.redirect_url",
}

// flagKeys maps command-line flag names to keys. Other flags are ignored.
var flagKeys = map[string]string{
	"http-addr":    "http.addr",
	"metrics-addr": "metrics.addr",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"database-url": "database.url",
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit YAML path; it must exist. When empty the
	// XDG default is used if present.
	ConfigFile string
	// EnvFile is a dotenv file loaded into the process environment
	// without overriding variables already set. Missing is not an error.
	EnvFile string
	// Flags are the parsed command-line flags, if any.
	Flags *pflag.FlagSet
}

// Load builds a Config from defaults, file, environment, and flags.
// It does not validate; call Config.Validate.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, configError("load env file").With("path", opts.EnvFile).Wrap(err)
		}
	}

	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, configError("set default").With("key", key).Wrap(err)
		}
	}

	path, explicit := configPath(opts.ConfigFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, configError("load config file").With("path", path).With("explicit", explicit).Wrap(err)
		}
	}

	if err := k.Load(env.Provider("", ".", legacyKey), nil); err != nil {
		return nil, configError("load legacy environment").Wrap(err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", namespacedKey), nil); err != nil {
		return nil, configError("load environment").Wrap(err)
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, configError("load flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, configError("decode config").Wrap(err)
	}
	return &cfg, nil
}

// configPath resolves the YAML file to read. A missing default file yields
// no path; an explicit path is returned as is.
func configPath(explicitPath string) (path string, explicit bool) {
	if explicitPath != "" {
		return explicitPath, true
	}
	path, err := xdg.ConfigFile()
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, false
}

func legacyKey(name string) string {
	return legacyEnv[name]
}

// namespacedKey turns DRIVENT_AUTH_JWT_SECRET into auth.jwt_secret.
func namespacedKey(name string) string {
	section, key, found := strings.Cut(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_")
	if !found || key == "" {
		return ""
	}
	return section + "." + key
}

func configError(operation string) oops.OopsErrorBuilder {
	return oops.Code(auth.CodeConfigInvalid).With("operation", operation)
}
