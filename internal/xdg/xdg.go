// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

// Package xdg resolves XDG Base Directory paths for drivent.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const (
	appName        = "drivent"
	configFileName = "config.yaml"
)

// ConfigDir returns the XDG config directory for drivent.
// Checks XDG_CONFIG_HOME first, falls back to $HOME/.config.
func ConfigDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", oops.Code("XDG_NO_HOME").Errorf("neither XDG_CONFIG_HOME nor HOME is set")
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}
