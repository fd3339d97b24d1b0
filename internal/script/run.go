// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package script

import (
	"fmt"

	"motionforge/internal/command"
	"motionforge/internal/plan"
	"motionforge/internal/runtime"
)

// ApplyMode selects what Run does after compiling and previewing a script,
// per spec §4.7: "mf.script.run is compile -> previewDiff, then either
// return (applyMode=previewOnly) or apply with the same confirm semantics
// as plan apply."
type ApplyMode string

const (
	ApplyModePreviewOnly ApplyMode = "previewOnly"
	ApplyModeApply       ApplyMode = "apply"
)

// RunResult is mf.script.run's (and the pipeline's per-take step's) output.
type RunResult struct {
	Plan    plan.Plan         `json:"plan"`
	Diff    plan.Diff         `json:"diff"`
	Applied bool              `json:"applied"`
	Apply   *plan.ApplyResult `json:"apply,omitempty"`
	Issues  []Issue           `json:"issues,omitempty"`
}

// Run compiles src, previews its effect, and — unless mode is previewOnly —
// applies it through registry against rt with the given confirm flag. A
// compile failure (non-empty Issues) short-circuits before any preview or
// apply attempt.
func Run(registry *command.Registry, rt *runtime.Runtime, store *plan.Store, src, scope string, mode ApplyMode, confirm bool) (RunResult, error) {
	res, err := Compile(rt, store, src, scope)
	if err != nil {
		return RunResult{}, err
	}
	if len(res.Issues) > 0 {
		return RunResult{Issues: res.Issues}, nil
	}

	diff, err := plan.PreviewDiff(registry, res.Plan)
	if err != nil {
		return RunResult{}, err
	}

	if mode == ApplyModePreviewOnly {
		return RunResult{Plan: res.Plan, Diff: diff}, nil
	}
	if mode != ApplyModeApply {
		return RunResult{}, fmt.Errorf("script: unknown applyMode %q", mode)
	}

	applyRes, err := plan.Apply(registry, rt, store, res.Plan.PlanID, confirm)
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Plan: res.Plan, Diff: diff, Applied: true, Apply: &applyRes}, nil
}
