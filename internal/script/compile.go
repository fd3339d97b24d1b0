// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package script

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
	"motionforge/internal/plan"
	"motionforge/internal/runtime"
)

const degToRad = math.Pi / 180

// CompileResult is Compile's output: a ready-to-apply Plan, plus any
// non-fatal issues collected along the way (currently always empty when a
// Plan is returned — a non-empty issues list means compilation failed and
// the zero Plan is meaningless).
type CompileResult struct {
	Plan   plan.Plan
	Issues []Issue
}

type targetResolver struct {
	data    model.ProjectData
	current string
}

func newTargetResolver(data model.ProjectData, selection string) *targetResolver {
	tr := &targetResolver{data: data}
	if selection != "" {
		if _, ok := plan.FindObject(data.Objects, selection); ok {
			tr.current = selection
		}
	}
	if tr.current == "" && len(data.Objects) > 0 {
		tr.current = data.Objects[0].ID
	}
	return tr
}

// resolve matches spec §4.6's "id preferred, else case-insensitive unique
// name" rule against both primitive objects and model instances.
func (tr *targetResolver) resolve(idOrName string) (string, error) {
	for _, o := range tr.data.Objects {
		if o.ID == idOrName {
			return o.ID, nil
		}
	}
	for _, m := range tr.data.ModelInstances {
		if m.ID == idOrName {
			return m.ID, nil
		}
	}

	var matches []string
	lower := strings.ToLower(idOrName)
	for _, o := range tr.data.Objects {
		if strings.ToLower(o.Name) == lower {
			matches = append(matches, o.ID)
		}
	}
	for _, m := range tr.data.ModelInstances {
		if strings.ToLower(m.Name) == lower {
			matches = append(matches, m.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", mferr.New(mferr.NotFound, "no object or model instance matches %q", idOrName)
	case 1:
		return matches[0], nil
	default:
		return "", mferr.New(mferr.AmbiguousName, "%q matches %d objects", idOrName, len(matches))
	}
}

// Validate runs the same parse-and-lower pass Compile does, discarding any
// resulting Plan and returning only the issues found (or none, if src is
// valid against rt's current state at scope). It never registers a plan.
func Validate(rt *runtime.Runtime, src string, scope string) ([]Issue, error) {
	res, err := Compile(rt, plan.NewStore(), src, scope)
	if err != nil {
		return nil, err
	}
	return res.Issues, nil
}

// Compile lowers a parsed Program into the same plan.Plan shape §4.5's
// recipes produce. Any parse issue or compile-time error yields a nil Plan
// and a non-empty issues list; the caller's contract is {ok:false, errors}
// whenever issues is non-empty.
func Compile(rt *runtime.Runtime, store *plan.Store, src string, scope string) (CompileResult, error) {
	prog, issues := Parse(src)
	if len(issues) > 0 {
		return CompileResult{Issues: issues}, nil
	}

	state, err := rt.StateForScope(scope)
	if err != nil {
		return CompileResult{}, err
	}

	tr := newTargetResolver(state.Data, state.Selection)
	c := &compiler{data: state.Data, tr: tr}

	for _, stmt := range prog.Statements {
		if err := c.apply(stmt); err != nil {
			issues = append(issues, issueAt(stmt.Line, "%s", err.Error()))
		}
	}
	if len(issues) > 0 {
		return CompileResult{Issues: issues}, nil
	}

	steps, objectsTouched, err := c.steps()
	if err != nil {
		return CompileResult{}, err
	}

	baseProjectJSON, err := model.SerializeStable(state.Data)
	if err != nil {
		return CompileResult{}, err
	}
	baseHash := canon.Sha256Hex([]byte(baseProjectJSON))

	resolvedScope := scope
	if resolvedScope == "" {
		resolvedScope = "current"
	}

	planID, err := plan.NewPlanID(resolvedScope, steps, baseProjectJSON)
	if err != nil {
		return CompileResult{}, err
	}

	totalRecords := len(c.insertRecords) + len(c.deleteKeys)
	var reasons []string
	if totalRecords >= 24 {
		reasons = append(reasons, "records >= 24")
	}
	if len(objectsTouched) > 1 {
		reasons = append(reasons, "objects touched > 1")
	}
	if len(c.deleteKeys) > 0 {
		reasons = append(reasons, "script deletes keyframes")
	}

	p := plan.Plan{
		PlanID: planID,
		Scope:  resolvedScope,
		Steps:  steps,
		Summary: plan.Summary{
			DurationSec:    c.durationSec(state.Data),
			ObjectsTouched: objectsTouched,
			KeyframesToAdd: len(c.insertRecords),
			Commands:       len(steps),
		},
		Safety:          plan.Safety{RequiresConfirm: len(reasons) > 0, Reasons: reasons},
		BaseProjectJSON: baseProjectJSON,
		BaseProjectHash: baseHash,
	}

	store.Put(p)
	return CompileResult{Plan: p}, nil
}

// compiler accumulates the effect of a Program's statements before they are
// lowered into Plan steps. Statement order matters only for which object is
// "current" at the time a key/bounce/recoil/delete statement runs.
type compiler struct {
	data model.ProjectData
	tr   *targetResolver

	explicitDuration *float64
	insertRecords    []map[string]any
	deleteKeys       []animation.KeyframeRef
	takes            []animation.Take
	touched          map[string]bool
}

func (c *compiler) apply(stmt Statement) error {
	if c.touched == nil {
		c.touched = make(map[string]bool)
	}
	switch stmt.Kind {
	case StmtSelect:
		id, err := c.tr.resolve(stmt.Target)
		if err != nil {
			return err
		}
		c.tr.current = id

	case StmtDuration:
		d := stmt.Seconds
		c.explicitDuration = &d

	case StmtFPS, StmtLabel, StmtLoop:
		// Informational only; no command-bus effect (spec §4.6).

	case StmtTake:
		c.takes = append(c.takes, animation.Take{
			ID:        fmt.Sprintf("take_%d", len(c.takes)+1),
			Name:      stmt.TakeName,
			StartTime: stmt.TakeStart,
			EndTime:   stmt.TakeEnd,
		})

	case StmtKey:
		return c.applyKey(stmt)

	case StmtDeleteKey:
		if c.tr.current == "" {
			return fmt.Errorf("no object selected")
		}
		prop := animation.Property(stmt.Group + "." + stmt.Axis)
		c.deleteKeys = append(c.deleteKeys, animation.KeyframeRef{ObjectID: c.tr.current, Property: prop, Time: stmt.Time})
		c.touched[c.tr.current] = true

	case StmtBounce:
		return c.applyRecipeWindow("bounce", stmt.Amplitude, stmt.T0, stmt.T1)

	case StmtRecoil:
		return c.applyRecipeWindow("recoil", stmt.Distance, stmt.T0, stmt.T1)

	default:
		return fmt.Errorf("unhandled statement kind %d", stmt.Kind)
	}
	return nil
}

func (c *compiler) applyKey(stmt Statement) error {
	if c.tr.current == "" {
		return fmt.Errorf("no object selected")
	}
	value := stmt.Value
	if stmt.Deg {
		value *= degToRad
	}
	prop := animation.Property(stmt.Group + "." + stmt.Axis)
	c.insertRecords = append(c.insertRecords, map[string]any{
		"objectId":      c.tr.current,
		"propertyPath":  string(prop),
		"time":          stmt.Time,
		"value":         value,
		"interpolation": stmt.Ease,
	})
	c.touched[c.tr.current] = true
	return nil
}

// applyRecipeWindow expands recipe's keyframe template scoped to [t0,t1]
// instead of a whole-clip duration, per spec §4.6: "expand into the same
// record templates as §4.5 but scoped to [t0,t1]".
func (c *compiler) applyRecipeWindow(recipeName string, amplitude, t0, t1 float64) error {
	if c.tr.current == "" {
		return fmt.Errorf("no object selected")
	}
	tmpl, ok := plan.RecipeKeyframes(recipeName)
	if !ok {
		return fmt.Errorf("unknown recipe %q", recipeName)
	}
	obj, _ := plan.FindObject(c.data.Objects, c.tr.current)
	window := t1 - t0
	for _, kf := range tmpl {
		base := plan.PropertyValue(obj, kf.Property)
		c.insertRecords = append(c.insertRecords, map[string]any{
			"objectId":      c.tr.current,
			"propertyPath":  string(kf.Property),
			"time":          t0 + kf.TimeFraction*window,
			"value":         base + amplitude*kf.ValueFraction,
			"interpolation": string(kf.Interpolation),
		})
	}
	c.touched[c.tr.current] = true
	return nil
}

func (c *compiler) durationSec(data model.ProjectData) float64 {
	if c.explicitDuration != nil {
		return *c.explicitDuration
	}
	if data.Animation != nil {
		return data.Animation.DurationSeconds
	}
	return 1
}

// steps lowers the accumulated effect into an ordered Plan step list:
// inspect, then setDuration/insertRecords/removeKeys/setTakes, each only
// present when the script actually touched it.
func (c *compiler) steps() ([]plan.Step, []string, error) {
	steps := []plan.Step{{
		ID:        "step-1",
		Label:     "Inspect current state",
		Type:      plan.StepInspect,
		Command:   plan.Command{Action: "state.snapshot", Input: json.RawMessage(`{}`)},
		Rationale: "Capture the baseline object set and hierarchy used by previewDiff.",
	}}

	n := 1
	nextID := func() string {
		n++
		return fmt.Sprintf("step-%d", n)
	}

	if c.explicitDuration != nil {
		durationJSON, err := json.Marshal(map[string]any{"durationSeconds": *c.explicitDuration})
		if err != nil {
			return nil, nil, err
		}
		steps = append(steps, plan.Step{
			ID:        nextID(),
			Label:     fmt.Sprintf("Set clip duration to %gs", *c.explicitDuration),
			Type:      plan.StepMutate,
			Command:   plan.Command{Action: "animation.setDuration", Input: durationJSON},
			Rationale: "Script declared an explicit duration statement.",
		})
	}

	if len(c.insertRecords) > 0 {
		recordsJSON, err := json.Marshal(map[string]any{"records": c.insertRecords})
		if err != nil {
			return nil, nil, err
		}
		steps = append(steps, plan.Step{
			ID:        nextID(),
			Label:     "Insert scripted keyframes",
			Type:      plan.StepMutate,
			Command:   plan.Command{Action: "animation.insertRecords", Input: recordsJSON},
			Rationale: "Expands the script's key/bounce/recoil statements.",
		})
	}

	if len(c.deleteKeys) > 0 {
		keysJSON, err := json.Marshal(map[string]any{"keys": c.deleteKeys})
		if err != nil {
			return nil, nil, err
		}
		steps = append(steps, plan.Step{
			ID:        nextID(),
			Label:     "Delete scripted keyframes",
			Type:      plan.StepMutate,
			Command:   plan.Command{Action: "animation.removeKeys", Input: keysJSON},
			Rationale: "Script contained delete key statements.",
		})
	}

	if len(c.takes) > 0 {
		takesJSON, err := json.Marshal(map[string]any{"takes": c.takes})
		if err != nil {
			return nil, nil, err
		}
		steps = append(steps, plan.Step{
			ID:        nextID(),
			Label:     "Persist take metadata",
			Type:      plan.StepMutate,
			Command:   plan.Command{Action: "animation.setTakes", Input: takesJSON},
			Rationale: "Script declared take statements.",
		})
	}

	var ids []string
	for id := range c.touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return steps, ids, nil
}
