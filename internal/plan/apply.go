// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package plan

import (
	"motionforge/internal/canon"
	"motionforge/internal/command"
	"motionforge/internal/mferr"
	"motionforge/internal/runtime"
)

// ApplyResult is the outcome of a successful Apply.
type ApplyResult struct {
	Events           []command.Event `json:"events"`
	CommandsExecuted int             `json:"commandsExecuted"`
}

// Apply validates confirm and freshness, then runs p's mutate steps
// atomically against rt. For scope=current, steps run directly on rt with
// a restore point captured up front so any mid-plan failure rolls rt back
// to its exact pre-apply state. For scope=staged, steps run on a throwaway
// runtime seeded from p's base project JSON, and only the resulting JSON
// is written into rt's staged slot — rt's current is never touched.
//
// On success the plan is removed from store (spec §4.5: "applied plans are
// removed on success").
func Apply(registry *command.Registry, rt *runtime.Runtime, store *Store, planID string, confirm bool) (ApplyResult, error) {
	p, ok := store.Get(planID)
	if !ok {
		return ApplyResult{}, mferr.New(mferr.PlanNotFound, "no plan registered with id %q", planID)
	}

	if p.Safety.RequiresConfirm && !confirm {
		return ApplyResult{}, mferr.New(mferr.ConfirmRequired, "plan %q requires confirm=true: %v", planID, p.Safety.Reasons)
	}

	currentHash, err := freshnessHash(rt, p.Scope)
	if err != nil {
		return ApplyResult{}, err
	}
	if currentHash != p.BaseProjectHash {
		return ApplyResult{}, mferr.New(mferr.PlanStale, "plan %q's base project has changed since generation", planID)
	}

	var result ApplyResult
	if p.Scope == "staged" {
		result, err = applyStaged(registry, rt, p)
	} else {
		result, err = applyCurrent(rt, p)
	}
	if err != nil {
		return ApplyResult{}, mferr.Wrap(mferr.PlanApplyFailed, err, "applying plan %q", planID)
	}

	store.Delete(planID)
	return result, nil
}

func freshnessHash(rt *runtime.Runtime, scope string) (string, error) {
	canonicalJSON, err := rt.ExportProjectJSONForScope(scope)
	if err != nil {
		return "", err
	}
	return canon.Sha256Hex([]byte(canonicalJSON)), nil
}

func applyCurrent(rt *runtime.Runtime, p Plan) (ApplyResult, error) {
	rp := rt.CaptureRestorePoint()

	var events []command.Event
	executed := 0
	for _, step := range p.Steps {
		if step.Type != StepMutate {
			continue
		}
		res, err := rt.Execute(step.Command.Action, step.Command.Input)
		if err != nil {
			rt.RestoreRestorePoint(rp)
			return ApplyResult{}, &applyStepError{stepID: step.ID, cause: err}
		}
		events = append(events, res.Events...)
		executed++
	}

	return ApplyResult{Events: events, CommandsExecuted: executed}, nil
}

func applyStaged(registry *command.Registry, rt *runtime.Runtime, p Plan) (ApplyResult, error) {
	sim := runtime.New(registry, 0)
	if _, err := sim.LoadProjectJSON([]byte(p.BaseProjectJSON), false); err != nil {
		return ApplyResult{}, err
	}

	var events []command.Event
	executed := 0
	for _, step := range p.Steps {
		if step.Type != StepMutate {
			continue
		}
		res, err := sim.Execute(step.Command.Action, step.Command.Input)
		if err != nil {
			return ApplyResult{}, &applyStepError{stepID: step.ID, cause: err}
		}
		events = append(events, res.Events...)
		executed++
	}

	resultJSON, err := sim.ExportProjectJSON()
	if err != nil {
		return ApplyResult{}, err
	}
	if _, err := rt.SetStaged([]byte(resultJSON)); err != nil {
		return ApplyResult{}, err
	}

	return ApplyResult{Events: events, CommandsExecuted: executed}, nil
}

// applyStepError carries which step failed through to the caller, per
// spec §4.5's {ok:false, failedStepId, error} apply-failure shape.
type applyStepError struct {
	stepID string
	cause  error
}

func (e *applyStepError) Error() string { return e.cause.Error() }
func (e *applyStepError) Unwrap() error { return e.cause }

// FailedStepID extracts the step id that aborted an Apply call, if err
// (or one of its wrapped causes) is an applyStepError.
func FailedStepID(err error) (string, bool) {
	var stepErr *applyStepError
	for err != nil {
		if se, ok := err.(*applyStepError); ok {
			stepErr = se
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if stepErr == nil {
		return "", false
	}
	return stepErr.stepID, true
}
