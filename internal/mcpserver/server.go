// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package mcpserver

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"motionforge/internal/command"
	"motionforge/internal/mferr"
	"motionforge/internal/plan"
	"motionforge/internal/runtime"
	"motionforge/pkg/config"
	"motionforge/pkg/logging"
)

// handlerFunc implements one tool's behavior against arguments already
// validated against its schema.
type handlerFunc func(s *Server, args json.RawMessage) envelope

// tool bundles a tool's fixed metadata with its compiled schema and handler.
type tool struct {
	description string
	schema      map[string]any
	compiled    *jsonschema.Schema
	handle      handlerFunc
}

// Server holds the single process-wide Runtime, plan Store, and command
// Registry every tool call dispatches against, plus the fixed tool
// catalog compiled once at construction.
type Server struct {
	rt       *runtime.Runtime
	registry *command.Registry
	store    *plan.Store
	cfg      *config.Config
	logger   logging.Logger

	tools map[string]*tool
}

// NewServer builds the fixed tool catalog (spec §4.7's 23 names) and
// compiles every schema up front, so a malformed schema is a construction
// error rather than a per-call one.
func NewServer(cfg *config.Config, logger logging.Logger) (*Server, error) {
	s := &Server{
		rt:       runtime.New(command.DefaultRegistry, cfg.MaxJSONBytes),
		registry: command.DefaultRegistry,
		store:    plan.NewStore(),
		cfg:      cfg,
		logger:   logger,
	}

	defs := []struct {
		name        string
		description string
		schema      map[string]any
		handle      handlerFunc
	}{
		{"mf.ping", "Liveness check.", schemaEmpty, handlePing},
		{"mf.capabilities", "Lists registered actions, tool names, and error codes.", schemaEmpty, handleCapabilities},
		{"mf.project.loadJson", "Parses, migrates, and validates a project JSON payload.", schemaProjectLoadJSON, handleProjectLoadJSON},
		{"mf.project.commit", "Commits the staged project into current, clearing history.", schemaEmpty, handleProjectCommit},
		{"mf.project.discard", "Discards the staged project, if any.", schemaEmpty, handleProjectDiscard},
		{"mf.state.snapshot", "Returns a deterministic read-only view of current or staged state.", schemaScope, handleStateSnapshot},
		{"mf.command.execute", "Dispatches one command-bus action (or history.undo/history.redo) against current.", schemaCommandExecute, handleCommandExecute},
		{"mf.plan.generate", "Generates a recipe-based Plan from a goal and constraints.", schemaPlanGenerate, handlePlanGenerate},
		{"mf.plan.previewDiff", "Simulates a plan's mutate steps and returns the structural diff.", schemaPlanID, handlePlanPreviewDiff},
		{"mf.plan.apply", "Applies a plan's mutate steps atomically.", schemaPlanApply, handlePlanApply},
		{"mf.plan.discard", "Removes a plan from the registry without applying it.", schemaPlanID, handlePlanDiscard},
		{"mf.script.validate", "Parses and lowers a script, returning issues only.", schemaScriptSource, handleScriptValidate},
		{"mf.script.compile", "Compiles a script into a Plan.", schemaScriptSource, handleScriptCompile},
		{"mf.script.run", "Compiles a script, previews its diff, then previews or applies it.", schemaScriptRun, handleScriptRun},
		{"mf.script.examples", "Returns the closed set of canned example scripts.", schemaEmpty, handleScriptExamples},
		{"mf.skill.generateScript", "Renders a recipe's keyframe template as DSL source for one target.", schemaSkillGenerateScript, handleSkillGenerateScript},
		{"mf.export.bundle", "Builds and writes the deterministic motionforge-bundle.zip.", schemaExportBundle, handleExportBundle},
		{"mf.export.unityPackage", "Builds and writes the Unity interchange variant of the bundle.", schemaExportUnityPackage, handleExportUnityPackage},
		{"mf.export.video", "Always unsupported: headless rendering is out of scope.", schemaEmpty, handleExportVideo},
		{"mf.export.projectJson", "Exports current's canonical project JSON, optionally to a file.", schemaExportProjectJSON, handleExportProjectJSON},
		{"mf.io.readFileBase64", "Reads a file from disk, base64-encoded, bounded by maxIoBytes.", schemaIOReadFile, handleIOReadFileBase64},
		{"mf.io.writeFile", "Decodes base64 and writes a file to disk, bounded by maxIoBytes.", schemaIOWriteFile, handleIOWriteFile},
		{"mf.pipeline.makeBundle", "Runs the full load/script/commit/export pipeline (spec §4.8).", schemaPipelineMakeBundle, handlePipelineMakeBundle},
	}

	s.tools = make(map[string]*tool, len(defs))
	for _, d := range defs {
		compiled, err := compileSchema(d.name, d.schema)
		if err != nil {
			return nil, err
		}
		s.tools[d.name] = &tool{description: d.description, schema: d.schema, compiled: compiled, handle: d.handle}
	}

	return s, nil
}

func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	resourceName := name + ".schema.json"
	if err := c.AddResource(resourceName, schema); err != nil {
		return nil, fmt.Errorf("mcpserver: adding schema resource for %q: %w", name, err)
	}
	compiled, err := c.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("mcpserver: compiling schema for %q: %w", name, err)
	}
	return compiled, nil
}

func (s *Server) listTools() []toolDescriptor {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]toolDescriptor, 0, len(names))
	for _, name := range names {
		t := s.tools[name]
		out = append(out, toolDescriptor{Name: name, Description: t.description, InputSchema: t.schema})
	}
	return out
}

// callTool validates arguments against the named tool's schema, then
// dispatches to its handler. A schema violation or unknown tool name never
// reaches a handler — both are translated to MF_ERR_INVALID_INPUT here.
func (s *Server) callTool(name string, arguments json.RawMessage) envelope {
	t, known := s.tools[name]
	if !known {
		return failWith(mferr.InvalidInput, fmt.Sprintf("unknown tool %q", name))
	}

	if len(arguments) == 0 {
		arguments = json.RawMessage("{}")
	}

	var argDoc any
	if err := json.Unmarshal(arguments, &argDoc); err != nil {
		return failWith(mferr.InvalidInput, fmt.Sprintf("arguments: invalid JSON: %v", err))
	}
	if err := t.compiled.Validate(argDoc); err != nil {
		// jsonschema/v6's ValidationError.Error() already renders every
		// failing leaf as one multi-line message; collapse it to a single
		// concatenated line per spec §4.7.
		return failWith(mferr.InvalidInput, strings.Join(strings.Fields(err.Error()), " "))
	}

	return t.handle(s, arguments)
}
