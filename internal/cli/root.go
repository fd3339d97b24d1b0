// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package cli wires together the MotionForge root Cobra command and global
// CLI options: a single `serve --stdio` subcommand exposing the MCP tool
// surface (spec §4.7) and a `version` subcommand.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"motionforge/internal/mcpserver"
	"motionforge/pkg/config"
	"motionforge/pkg/logging"
)

// NewRootCommand constructs the MotionForge root Cobra command.
func NewRootCommand() *cobra.Command {
	version := os.Getenv("MOTIONFORGE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "motionforge",
		Short:         "MotionForge – headless deterministic animation-editor runtime",
		Long:          "MotionForge is a headless animation-editor runtime exposed as an MCP tool server: scene/animation state, a plan/script compiler, and a deterministic bundle exporter.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags - registered in lexicographic order for deterministic help output.
	cmd.PersistentFlags().StringP("config", "c", "", "path to motionforge config (YAML)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug-level logging")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the MotionForge version",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "motionforge version %s\n", version)
		},
	})

	return cmd
}

func newServeCommand() *cobra.Command {
	var stdio bool
	var http string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server",
		Long:  "Runs the MotionForge MCP tool server. Only the stdio transport is supported (spec §6); no HTTP transport exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if http != "" {
				return fmt.Errorf("motionforge: --http is not supported; this server only implements the MCP stdio transport")
			}
			if !stdio {
				return fmt.Errorf("motionforge: serve requires --stdio; no other transport is implemented")
			}

			configPath, _ := cmd.Flags().GetString("config")
			verbose, _ := cmd.Flags().GetBool("verbose")

			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return fmt.Errorf("motionforge: loading config: %w", err)
			}
			applyEnvTooling(cfg)

			logger := logging.NewStderrLogger(verbose)
			server, err := mcpserver.NewServer(cfg, logger)
			if err != nil {
				return fmt.Errorf("motionforge: starting server: %w", err)
			}

			logger.Info("mcp stdio server starting", logging.NewField("mcpVersion", cfg.Tooling.MCPVersion))
			return server.Serve(os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false, "run on stdin/stdout (required)")
	cmd.Flags().StringVar(&http, "http", "", "unsupported; always rejected")

	return cmd
}

// applyEnvTooling fills cfg.Tooling.Commit from GITHUB_SHA (first 7 chars)
// when the config file didn't already set one, per spec §6: "GITHUB_SHA
// (optional, first 7 chars recorded as tooling.commit); no other env is
// consulted by the core."
func applyEnvTooling(cfg *config.Config) {
	if cfg.Tooling.Commit != "" {
		return
	}
	sha := os.Getenv("GITHUB_SHA")
	if len(sha) > 7 {
		sha = sha[:7]
	}
	cfg.Tooling.Commit = sha
}
