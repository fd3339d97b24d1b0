// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package plan

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"motionforge/internal/animation"
	"motionforge/internal/canon"
	"motionforge/internal/mferr"
	"motionforge/internal/model"
	"motionforge/internal/runtime"
)

// Constraints narrows and tunes a recipe-generated plan.
type Constraints struct {
	TargetObjects []string `json:"targetObjects,omitempty"`
	Style         string   `json:"style,omitempty"`
	DurationSec   *float64 `json:"durationSec,omitempty"`
	Amplitude     *float64 `json:"amplitude,omitempty"`
	Loop          bool     `json:"loop,omitempty"`
}

func clampDuration(sec float64) float64 {
	if sec < 0.1 {
		sec = 0.1
	}
	if sec > 30 {
		sec = 30
	}
	return math.Round(sec*1000) / 1000
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// PropertyValue reads obj's current value for the animatable property p,
// exported so the script compiler can seed its own keyframe offsets the
// same way recipe expansion does.
func PropertyValue(obj model.PrimitiveObject, p animation.Property) float64 {
	switch string(p) {
	case "position.x":
		return obj.Position.X
	case "position.y":
		return obj.Position.Y
	case "position.z":
		return obj.Position.Z
	case "rotation.x":
		return obj.Rotation.X
	case "rotation.y":
		return obj.Rotation.Y
	case "rotation.z":
		return obj.Rotation.Z
	case "scale.x":
		return obj.Scale.X
	case "scale.y":
		return obj.Scale.Y
	case "scale.z":
		return obj.Scale.Z
	default:
		return 0
	}
}

func findObject(objects []model.PrimitiveObject, id string) (model.PrimitiveObject, bool) {
	return FindObject(objects, id)
}

// FindObject looks up id among objects, exported for the script compiler's
// own target resolution.
func FindObject(objects []model.PrimitiveObject, id string) (model.PrimitiveObject, bool) {
	for _, o := range objects {
		if o.ID == id {
			return o, true
		}
	}
	return model.PrimitiveObject{}, false
}

// resolveTargets implements §4.5's target resolution precedence.
func resolveTargets(data model.ProjectData, selection string, goal string, constraints Constraints) ([]string, error) {
	if len(constraints.TargetObjects) > 0 {
		known := make(map[string]bool, len(data.Objects))
		for _, o := range data.Objects {
			known[o.ID] = true
		}
		var valid []string
		for _, id := range constraints.TargetObjects {
			if known[id] {
				valid = append(valid, id)
			}
		}
		if len(valid) == 0 {
			return nil, mferr.New(mferr.NoTargetObject, "none of the requested targetObjects exist in the project")
		}
		sort.Strings(valid)
		return valid, nil
	}

	if goal == "camera-dolly" {
		for _, o := range data.Objects {
			if strings.Contains(strings.ToLower(o.Name), "camera") {
				return []string{o.ID}, nil
			}
		}
	}

	if selection != "" {
		if _, ok := findObject(data.Objects, selection); ok {
			return []string{selection}, nil
		}
	}

	if len(data.Objects) == 0 {
		return nil, mferr.New(mferr.EmptyScene, "project has no objects to target")
	}
	return []string{data.Objects[0].ID}, nil
}

// buildRecords expands r's keyframe templates for each target into
// animation.insertRecords-shaped rows, offset from the target's current
// pose on each touched property.
func buildRecords(r recipe, data model.ProjectData, targets []string, durationSec, amplitude float64) []map[string]any {
	var records []map[string]any
	for _, id := range targets {
		obj, _ := findObject(data.Objects, id)
		for _, kf := range r.Keyframes {
			base := PropertyValue(obj, kf.Property)
			records = append(records, map[string]any{
				"objectId":      id,
				"propertyPath":  string(kf.Property),
				"time":          round3(kf.TimeFraction * durationSec),
				"value":         round3(base + amplitude*kf.ValueFraction),
				"interpolation": string(kf.Interpolation),
			})
		}
	}
	return records
}

// Generate builds a Plan for goal against rt's state at scope, honoring
// constraints, and registers it in store.
func Generate(rt *runtime.Runtime, store *Store, goal string, constraints Constraints, scope string) (Plan, error) {
	r, ok := recipes[goal]
	if !ok {
		return Plan{}, mferr.New(mferr.UnsupportedGoal, "unrecognized goal %q, expected one of %v", goal, recipeNames)
	}

	state, err := rt.StateForScope(scope)
	if err != nil {
		return Plan{}, err
	}

	targets, err := resolveTargets(state.Data, state.Selection, goal, constraints)
	if err != nil {
		return Plan{}, err
	}

	durationSec := r.DefaultDurationSec
	if constraints.DurationSec != nil {
		durationSec = *constraints.DurationSec
	}
	durationSec = clampDuration(durationSec)

	amplitude := r.DefaultAmplitude * styleMultiplier(constraints.Style)
	if constraints.Amplitude != nil {
		amplitude = *constraints.Amplitude * styleMultiplier(constraints.Style)
	}

	records := buildRecords(r, state.Data, targets, durationSec, amplitude)

	recordsJSON, err := json.Marshal(map[string]any{"records": records})
	if err != nil {
		return Plan{}, err
	}
	durationJSON, err := json.Marshal(map[string]any{"durationSeconds": durationSec})
	if err != nil {
		return Plan{}, err
	}

	steps := []Step{
		{
			ID:        "step-1",
			Label:     "Inspect current state",
			Type:      StepInspect,
			Command:   Command{Action: "state.snapshot", Input: json.RawMessage(`{}`)},
			Rationale: "Capture the baseline object set and hierarchy used by previewDiff.",
		},
		{
			ID:        "step-2",
			Label:     fmt.Sprintf("Set clip duration to %gs", durationSec),
			Type:      StepMutate,
			Command:   Command{Action: "animation.setDuration", Input: durationJSON},
			Rationale: fmt.Sprintf("The %q recipe's template is expressed as fractions of duration.", goal),
		},
		{
			ID:        "step-3",
			Label:     "Insert recipe keyframes",
			Type:      StepMutate,
			Command:   Command{Action: "animation.insertRecords", Input: recordsJSON},
			Rationale: fmt.Sprintf("Expands the %q template for %d target object(s).", goal, len(targets)),
		},
	}

	baseProjectJSON, err := model.SerializeStable(state.Data)
	if err != nil {
		return Plan{}, err
	}
	baseHash := canon.Sha256Hex([]byte(baseProjectJSON))

	planID, err := newPlanID(scope, steps, baseProjectJSON)
	if err != nil {
		return Plan{}, err
	}

	var reasons []string
	if len(records) >= 24 {
		reasons = append(reasons, "records >= 24")
	}
	if len(targets) > 1 {
		reasons = append(reasons, "objects touched > 1")
	}
	if constraints.Loop && !r.LoopFriendly {
		reasons = append(reasons, fmt.Sprintf("loop requested on non-loop recipe %q", goal))
	}

	p := Plan{
		PlanID: planID,
		Scope:  resolvedScope(scope),
		Steps:  steps,
		Summary: Summary{
			DurationSec:    durationSec,
			ObjectsTouched: targets,
			KeyframesToAdd: len(records),
			Commands:       len(steps),
		},
		Safety:          Safety{RequiresConfirm: len(reasons) > 0, Reasons: reasons},
		BaseProjectJSON: baseProjectJSON,
		BaseProjectHash: baseHash,
	}

	store.Put(p)
	return p, nil
}

func resolvedScope(scope string) string {
	if scope == "" {
		return "current"
	}
	return scope
}
