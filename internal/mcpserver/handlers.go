// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package mcpserver

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"

	"motionforge/internal/bundle"
	"motionforge/internal/mferr"
	"motionforge/internal/pipeline"
	"motionforge/internal/plan"
	"motionforge/internal/script"
)

func handlePing(s *Server, _ json.RawMessage) envelope {
	return ok(map[string]any{"pong": true, "mcpVersion": s.cfg.Tooling.MCPVersion})
}

func handleCapabilities(s *Server, _ json.RawMessage) envelope {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	return ok(map[string]any{
		"tools":      names,
		"actions":    s.registry.IDs(),
		"errorCodes": mferr.KnownCodes(),
		"mcpVersion": s.cfg.Tooling.MCPVersion,
	})
}

type projectLoadJSONArgs struct {
	JSON   string `json:"json"`
	Staged *bool  `json:"staged"`
}

func handleProjectLoadJSON(s *Server, args json.RawMessage) envelope {
	var a projectLoadJSONArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	staged := true
	if a.Staged != nil {
		staged = *a.Staged
	}
	res, err := s.rt.LoadProjectJSON([]byte(a.JSON), staged)
	if err != nil {
		return failFromErr(err)
	}
	return ok(map[string]any{"projectId": res.ProjectID, "summary": res.Summary})
}

func handleProjectCommit(s *Server, _ json.RawMessage) envelope {
	if err := s.rt.CommitStagedLoad(); err != nil {
		return failFromErr(err)
	}
	return ok(nil)
}

func handleProjectDiscard(s *Server, _ json.RawMessage) envelope {
	s.rt.DiscardStagedLoad()
	return ok(nil)
}

type scopeArgs struct {
	Scope string `json:"scope"`
}

func handleStateSnapshot(s *Server, args json.RawMessage) envelope {
	var a scopeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	snap, err := s.rt.Snapshot(a.Scope)
	if err != nil {
		return failFromErr(err)
	}
	return ok(map[string]any{"snapshot": snap})
}

type commandExecuteArgs struct {
	Action string          `json:"action"`
	Input  json.RawMessage `json:"input"`
}

func handleCommandExecute(s *Server, args json.RawMessage) envelope {
	var a commandExecuteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	if a.Input == nil {
		a.Input = json.RawMessage("{}")
	}
	res, err := s.rt.Execute(a.Action, a.Input)
	if err != nil {
		return failFromErr(err)
	}
	return ok(map[string]any{"result": res.Result, "events": res.Events})
}

type planGenerateArgs struct {
	Goal        string          `json:"goal"`
	Constraints plan.Constraints `json:"constraints"`
	Scope       string          `json:"scope"`
}

func handlePlanGenerate(s *Server, args json.RawMessage) envelope {
	var a planGenerateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	p, err := plan.Generate(s.rt, s.store, a.Goal, a.Constraints, a.Scope)
	if err != nil {
		return failFromErr(err)
	}
	return ok(map[string]any{"plan": p})
}

type planIDArgs struct {
	PlanID string `json:"planId"`
}

func handlePlanPreviewDiff(s *Server, args json.RawMessage) envelope {
	var a planIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	p, found := s.store.Get(a.PlanID)
	if !found {
		return failWith(mferr.PlanNotFound, "no plan registered with id \""+a.PlanID+"\"")
	}
	diff, err := plan.PreviewDiff(s.registry, p)
	if err != nil {
		return failFromErr(err)
	}
	return ok(map[string]any{"diff": diff})
}

type planApplyArgs struct {
	PlanID  string `json:"planId"`
	Confirm bool   `json:"confirm"`
}

func handlePlanApply(s *Server, args json.RawMessage) envelope {
	var a planApplyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	res, err := plan.Apply(s.registry, s.rt, s.store, a.PlanID, a.Confirm)
	if err != nil {
		fields := map[string]any{}
		if stepID, found := plan.FailedStepID(err); found {
			fields["failedStepId"] = stepID
		}
		env := failFromErr(err)
		for k, v := range fields {
			env.extra[k] = v
		}
		return env
	}
	return ok(map[string]any{"events": res.Events, "commandsExecuted": res.CommandsExecuted})
}

func handlePlanDiscard(s *Server, args json.RawMessage) envelope {
	var a planIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	s.store.Delete(a.PlanID)
	return ok(nil)
}

type scriptSourceArgs struct {
	Source string `json:"source"`
	Scope  string `json:"scope"`
}

func handleScriptValidate(s *Server, args json.RawMessage) envelope {
	var a scriptSourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	issues, err := script.Validate(s.rt, a.Source, a.Scope)
	if err != nil {
		return failFromErr(err)
	}
	return ok(map[string]any{"issues": issues})
}

func handleScriptCompile(s *Server, args json.RawMessage) envelope {
	var a scriptSourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	res, err := script.Compile(s.rt, s.store, a.Source, a.Scope)
	if err != nil {
		return failFromErr(err)
	}
	if len(res.Issues) > 0 {
		return ok(map[string]any{"issues": res.Issues})
	}
	return ok(map[string]any{"plan": res.Plan})
}

type scriptRunArgs struct {
	Source    string `json:"source"`
	Scope     string `json:"scope"`
	ApplyMode string `json:"applyMode"`
	Confirm   bool   `json:"confirm"`
}

func handleScriptRun(s *Server, args json.RawMessage) envelope {
	var a scriptRunArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	res, err := script.Run(s.registry, s.rt, s.store, a.Source, a.Scope, script.ApplyMode(a.ApplyMode), a.Confirm)
	if err != nil {
		return failFromErr(err)
	}
	if len(res.Issues) > 0 {
		return ok(map[string]any{"issues": res.Issues})
	}
	return ok(map[string]any{
		"plan":    res.Plan,
		"diff":    res.Diff,
		"applied": res.Applied,
		"apply":   res.Apply,
	})
}

func handleScriptExamples(_ *Server, _ json.RawMessage) envelope {
	return ok(map[string]any{"examples": script.Examples()})
}

type skillGenerateScriptArgs struct {
	Goal        string  `json:"goal"`
	Target      string  `json:"target"`
	DurationSec float64 `json:"durationSec"`
	Amplitude   float64 `json:"amplitude"`
}

func handleSkillGenerateScript(_ *Server, args json.RawMessage) envelope {
	var a skillGenerateScriptArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	src, err := script.GenerateScript(a.Goal, a.Target, a.DurationSec, a.Amplitude)
	if err != nil {
		return failWith(mferr.UnsupportedGoal, err.Error())
	}
	return ok(map[string]any{"source": src})
}

type exportBundleArgs struct {
	OutDir      string `json:"outDir"`
	ProjectName string `json:"projectName"`
	Unity       bool   `json:"unity"`
}

func writeBundle(s *Server, outDir, projectName string, unity bool) envelope {
	if projectName == "" {
		projectName = "MotionForge"
	}
	res, err := bundle.Build(s.rt.CurrentData(), bundle.Options{ProjectName: projectName, Unity: unity})
	if err != nil {
		return failFromErr(err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return failWith(mferr.PipelineMakeBundle, err.Error())
	}
	bundlePath := filepath.Join(outDir, "motionforge-bundle.zip")
	if err := os.WriteFile(bundlePath, res.ZipBytes, 0o644); err != nil {
		return failWith(mferr.PipelineMakeBundle, err.Error())
	}
	return ok(map[string]any{"path": bundlePath, "manifest": res.Manifest, "warnings": res.Warnings})
}

func handleExportBundle(s *Server, args json.RawMessage) envelope {
	var a exportBundleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	return writeBundle(s, a.OutDir, a.ProjectName, a.Unity)
}

func handleExportUnityPackage(s *Server, args json.RawMessage) envelope {
	var a exportBundleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	return writeBundle(s, a.OutDir, a.ProjectName, true)
}

func handleExportVideo(_ *Server, _ json.RawMessage) envelope {
	return failWith(mferr.HeadlessVideoUnsupported, "video export requires a rendering surface the headless runtime does not provide")
}

type exportProjectJSONArgs struct {
	OutDir string `json:"outDir"`
}

func handleExportProjectJSON(s *Server, args json.RawMessage) envelope {
	var a exportProjectJSONArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	out, err := s.rt.ExportProjectJSON()
	if err != nil {
		return failFromErr(err)
	}
	fields := map[string]any{"json": out}
	if a.OutDir != "" {
		if err := os.MkdirAll(a.OutDir, 0o755); err != nil {
			return failWith(mferr.PipelineMakeBundle, err.Error())
		}
		path := filepath.Join(a.OutDir, "project.json")
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return failWith(mferr.PipelineMakeBundle, err.Error())
		}
		fields["path"] = path
	}
	return ok(fields)
}

type ioReadFileArgs struct {
	Path string `json:"path"`
}

func handleIOReadFileBase64(s *Server, args json.RawMessage) envelope {
	var a ioReadFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	info, err := os.Stat(a.Path)
	if err != nil {
		return failWith(mferr.NotFound, err.Error())
	}
	if s.cfg.MaxIOBytes > 0 && info.Size() > s.cfg.MaxIOBytes {
		return failWith(mferr.IOMaxBytes, "file exceeds maxIoBytes")
	}
	raw, err := os.ReadFile(a.Path)
	if err != nil {
		return failWith(mferr.NotFound, err.Error())
	}
	return ok(map[string]any{"base64": base64.StdEncoding.EncodeToString(raw), "bytes": len(raw)})
}

type ioWriteFileArgs struct {
	Path   string `json:"path"`
	Base64 string `json:"base64"`
}

func handleIOWriteFile(s *Server, args json.RawMessage) envelope {
	var a ioWriteFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	raw, err := base64.StdEncoding.DecodeString(a.Base64)
	if err != nil {
		return failWith(mferr.InvalidInput, "decoding base64: "+err.Error())
	}
	if s.cfg.MaxIOBytes > 0 && int64(len(raw)) > s.cfg.MaxIOBytes {
		return failWith(mferr.IOMaxBytes, "payload exceeds maxIoBytes")
	}
	if dir := filepath.Dir(a.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return failWith(mferr.PipelineMakeBundle, err.Error())
		}
	}
	if err := os.WriteFile(a.Path, raw, 0o644); err != nil {
		return failWith(mferr.PipelineMakeBundle, err.Error())
	}
	return ok(map[string]any{"bytesWritten": len(raw)})
}

func handlePipelineMakeBundle(s *Server, args json.RawMessage) envelope {
	var in pipeline.Input
	if err := json.Unmarshal(args, &in); err != nil {
		return failWith(mferr.InvalidInput, err.Error())
	}
	if in.OutDir == "" {
		in.OutDir = s.cfg.DefaultOutDir
	}

	res, err := pipeline.MakeBundle(pipeline.Deps{
		Registry:   s.registry,
		Runtime:    s.rt,
		Store:      s.store,
		MCPVersion: s.cfg.Tooling.MCPVersion,
		Commit:     s.cfg.Tooling.Commit,
	}, in)
	if err != nil {
		return failFromErr(err)
	}
	return envelope{ok: res.OK, extra: map[string]any{"proof": res.Proof}}
}
