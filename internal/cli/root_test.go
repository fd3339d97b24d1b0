// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCommand_HasExpectedBasics(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "motionforge" {
		t.Fatalf("expected Use to be 'motionforge', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Fatalf("expected Short description to be non-empty")
	}

	versionCmd, _, err := cmd.Find([]string{"version"})
	if err != nil {
		t.Fatalf("expected to find 'version' subcommand, got error: %v", err)
	}
	if versionCmd.Use != "version" {
		t.Fatalf("expected 'version' command Use to be 'version', got %q", versionCmd.Use)
	}

	serveCmd, _, err := cmd.Find([]string{"serve"})
	if err != nil {
		t.Fatalf("expected to find 'serve' subcommand, got error: %v", err)
	}
	if serveCmd.Use != "serve" {
		t.Fatalf("expected 'serve' command Use to be 'serve', got %q", serveCmd.Use)
	}
}

func TestVersionCommand_PrintsVersion(t *testing.T) {
	cmd := NewRootCommand()

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error executing 'version' command, got: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "motionforge version") {
		t.Fatalf("expected output to contain 'motionforge version', got: %q", out)
	}
}

func TestServeCommand_RejectsMissingStdio(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"serve"})

	err := cmd.Execute()
	if err == nil {
		t.Fatalf("expected an error when --stdio is omitted")
	}
	if !strings.Contains(err.Error(), "--stdio") {
		t.Fatalf("expected error to mention --stdio, got: %v", err)
	}
}

func TestServeCommand_RejectsHTTP(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"serve", "--stdio", "--http", "localhost:8080"})

	err := cmd.Execute()
	if err == nil {
		t.Fatalf("expected an error when --http is passed")
	}
	if !strings.Contains(err.Error(), "--http") {
		t.Fatalf("expected error to mention --http, got: %v", err)
	}
}
