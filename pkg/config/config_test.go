// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, int64(defaultMaxJSONBytes), cfg.MaxJSONBytes)
	require.Equal(t, int64(defaultMaxIOBytes), cfg.MaxIOBytes)
	require.Equal(t, "1.0.0", cfg.Tooling.MCPVersion)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_FillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "motionforge.yml")
	writeFile(t, path, "defaultOutDir: /tmp/out\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/out", cfg.DefaultOutDir)
	require.Equal(t, int64(defaultMaxJSONBytes), cfg.MaxJSONBytes)
}

func TestLoad_RejectsNonPositiveBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "motionforge.yml")
	writeFile(t, path, "maxJsonBytes: -1\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
