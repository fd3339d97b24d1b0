// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package config defines the MotionForge server configuration schema and
// helpers for loading and validating it from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist at the given path.
var ErrConfigNotFound = errors.New("motionforge config not found")

// defaultMaxJSONBytes bounds the size of an incoming project JSON payload.
const defaultMaxJSONBytes = 32 * 1024 * 1024

// defaultMaxIOBytes bounds the size of a single mf.io.readFileBase64/writeFile payload.
const defaultMaxIOBytes = 64 * 1024 * 1024

// Config is the top-level MotionForge server configuration.
type Config struct {
	// MaxJSONBytes bounds project JSON accepted by parse(); 0 means use the default.
	MaxJSONBytes int64 `yaml:"maxJsonBytes,omitempty"`

	// MaxIOBytes bounds mf.io.* payload sizes; 0 means use the default.
	MaxIOBytes int64 `yaml:"maxIoBytes,omitempty"`

	// DefaultOutDir is used by mf.pipeline.makeBundle when the caller omits outDir.
	DefaultOutDir string `yaml:"defaultOutDir,omitempty"`

	Tooling ToolingConfig `yaml:"tooling,omitempty"`
}

// ToolingConfig records the server build identity stamped into proof documents.
type ToolingConfig struct {
	// MCPVersion identifies the tool catalog revision (spec §4.7's fixed tool set).
	MCPVersion string `yaml:"mcpVersion,omitempty"`

	// Commit overrides the GITHUB_SHA-derived commit; mainly for local testing.
	Commit string `yaml:"commit,omitempty"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		MaxJSONBytes:  defaultMaxJSONBytes,
		MaxIOBytes:    defaultMaxIOBytes,
		DefaultOutDir: ".",
		Tooling: ToolingConfig{
			MCPVersion: "1.0.0",
		},
	}
}

// Exists reports whether a config file exists at the given path.
// It returns (false, nil) if the file does not exist.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Load reads and validates the config from the given path, filling in any
// zero-valued fields with the built-in defaults.
//
// It returns ErrConfigNotFound if the file does not exist.
func Load(path string) (*Config, error) {
	exists, err := Exists(path)
	if err != nil {
		return nil, fmt.Errorf("checking config existence: %w", err)
	}
	if !exists {
		return nil, ErrConfigNotFound
	}

	// nolint:gosec // G304: reading config file from user-specified path is expected behavior
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load, but returns the built-in defaults instead
// of ErrConfigNotFound when path is empty or the file is missing.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, ErrConfigNotFound) {
		return Default(), nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	if cfg.MaxJSONBytes == 0 {
		cfg.MaxJSONBytes = defaultMaxJSONBytes
	}
	if cfg.MaxIOBytes == 0 {
		cfg.MaxIOBytes = defaultMaxIOBytes
	}
	if cfg.DefaultOutDir == "" {
		cfg.DefaultOutDir = "."
	}
	if cfg.Tooling.MCPVersion == "" {
		cfg.Tooling.MCPVersion = "1.0.0"
	}
}

func validate(cfg *Config) error {
	if cfg.MaxJSONBytes <= 0 {
		return errors.New("config: maxJsonBytes must be positive")
	}
	if cfg.MaxIOBytes <= 0 {
		return errors.New("config: maxIoBytes must be positive")
	}
	return nil
}
