// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package plan

import (
	"motionforge/internal/command"
	"motionforge/internal/runtime"
)

// PreviewDiff clones a fresh runtime, loads p's frozen base project JSON
// into it directly (never staged), runs every mutate step, and diffs the
// result against the base. Inspect steps are skipped — they never mutate.
func PreviewDiff(registry *command.Registry, p Plan) (Diff, error) {
	sim := runtime.New(registry, 0)
	if _, err := sim.LoadProjectJSON([]byte(p.BaseProjectJSON), false); err != nil {
		return Diff{}, err
	}

	before := sim.CurrentData()

	for _, step := range p.Steps {
		if step.Type != StepMutate {
			continue
		}
		if _, err := sim.Execute(step.Command.Action, step.Command.Input); err != nil {
			return Diff{}, err
		}
	}

	after := sim.CurrentData()
	return ComputeDiff(before, after), nil
}
