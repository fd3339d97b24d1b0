// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package runtime

import (
	"encoding/json"
	"sync"

	"motionforge/internal/canon"
	"motionforge/internal/command"
	"motionforge/internal/mferr"
	"motionforge/internal/model"
)

// Runtime is the process-wide scene singleton: current project state, an
// optional staged replacement, and the undo/redo history. Every exported
// method takes the same mutex, matching the single-threaded cooperative
// model described for the embedding tool server — there is never a
// concurrent mutator to race against.
type Runtime struct {
	mu sync.Mutex

	current State
	staged  *State
	dirty   bool

	undoStack []UndoEntry
	redoStack []UndoEntry
	seq       int

	registry     *command.Registry
	maxJSONBytes int64
}

// New creates a Runtime with an empty current project, dispatching
// commands through registry. maxJSONBytes bounds LoadProjectJSON payloads;
// zero means unbounded.
func New(registry *command.Registry, maxJSONBytes int64) *Runtime {
	return &Runtime{current: emptyState(), registry: registry, maxJSONBytes: maxJSONBytes}
}

// LoadResult is the outcome of a successful LoadProjectJSON call.
type LoadResult struct {
	ProjectID string  `json:"projectId"`
	Summary   Summary `json:"summary"`
}

// Summary is a coarse, deterministic description of a loaded project.
type Summary struct {
	Version            int `json:"version"`
	ObjectCount        int `json:"objectCount"`
	ModelInstanceCount int `json:"modelInstanceCount"`
	AssetCount         int `json:"assetCount"`
	TrackCount         int `json:"trackCount"`
	TakeCount          int `json:"takeCount"`
}

func summarize(data model.ProjectData) Summary {
	s := Summary{Version: data.Version, ObjectCount: len(data.Objects), ModelInstanceCount: len(data.ModelInstances), AssetCount: len(data.Assets)}
	if data.Animation != nil {
		s.TrackCount = len(data.Animation.Tracks)
		s.TakeCount = len(data.Animation.Takes)
	}
	return s
}

// LoadProjectJSON parses, migrates, and validates raw as a project. When
// staged is true the result replaces the staged slot only; current is
// untouched until CommitStagedLoad. When staged is false it replaces
// current directly and clears undo/redo/staged.
func (r *Runtime) LoadProjectJSON(raw []byte, staged bool) (LoadResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parsed, err := model.Parse(raw, r.maxJSONBytes)
	if err != nil {
		return LoadResult{}, err
	}

	migrated, err := model.MigrateToLatest(parsed)
	if err != nil {
		return LoadResult{}, mferr.Wrap(mferr.InvalidProject, err, "migrating project to latest version")
	}
	if err := model.Validate(migrated.Data); err != nil {
		return LoadResult{}, mferr.Wrap(mferr.InvalidProject, err, "%s", err.Error())
	}

	canonicalJSON, err := model.SerializeStable(migrated.Data)
	if err != nil {
		return LoadResult{}, err
	}
	projectID := canon.ProjectID(canonicalJSON)

	newState := State{Data: migrated.Data, Hierarchy: model.Hierarchy{}}

	if staged {
		clone := newState.Clone()
		r.staged = &clone
	} else {
		r.current = newState
		r.undoStack = nil
		r.redoStack = nil
		r.staged = nil
		r.dirty = false
	}

	return LoadResult{ProjectID: projectID, Summary: summarize(migrated.Data)}, nil
}

// CommitStagedLoad swaps the staged project into current and clears staged
// and all history. Fails with MF_ERR_NO_STAGED_PROJECT if nothing is staged.
func (r *Runtime) CommitStagedLoad() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.staged == nil {
		return mferr.New(mferr.NoStagedProject, "no staged project to commit")
	}

	r.current = r.staged.Clone()
	r.staged = nil
	r.undoStack = nil
	r.redoStack = nil
	r.dirty = false
	return nil
}

// DiscardStagedLoad clears the staged project, if any. Always succeeds.
func (r *Runtime) DiscardStagedLoad() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged = nil
}

// ExecuteResult is the uniform return shape of a command-bus dispatch.
type ExecuteResult struct {
	Result any             `json:"result"`
	Events []command.Event `json:"events"`
}

// Execute runs a real action through the command bus, or one of the two
// pseudo-actions (history.undo, history.redo) the runtime handles itself.
// Real actions run against a clone of current; the clone replaces current
// only on success, so a failed call is guaranteed to leave current
// untouched. A structural change (before/after fingerprint mismatch) pushes
// an undo entry and clears redo.
func (r *Runtime) Execute(actionID string, input json.RawMessage) (ExecuteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch actionID {
	case "history.undo":
		return r.undoLocked()
	case "history.redo":
		return r.redoLocked()
	}

	working := r.current.Clone()
	var events []command.Event
	ctx := &execContext{state: &working, events: &events, nextSeq: r.nextSeq}

	result, err := command.Execute(r.registry, ctx, actionID, input)
	if err != nil {
		return ExecuteResult{}, err
	}

	beforeFP, fpErr := fingerprint(r.current)
	if fpErr != nil {
		return ExecuteResult{}, fpErr
	}
	afterFP, fpErr := fingerprint(working)
	if fpErr != nil {
		return ExecuteResult{}, fpErr
	}

	if beforeFP != afterFP {
		r.undoStack = append(r.undoStack, UndoEntry{Label: actionID, Before: r.current.Clone(), After: working.Clone()})
		r.redoStack = nil
		r.markDirty(&events)
	}
	r.current = working

	return ExecuteResult{Result: result, Events: events}, nil
}

func (r *Runtime) undoLocked() (ExecuteResult, error) {
	if len(r.undoStack) == 0 {
		return ExecuteResult{}, mferr.New(mferr.NothingToUndo, "nothing to undo")
	}
	entry := r.undoStack[len(r.undoStack)-1]
	r.undoStack = r.undoStack[:len(r.undoStack)-1]
	r.redoStack = append(r.redoStack, entry)
	r.current = entry.Before.Clone()

	events := []command.Event{{Seq: r.nextSeq(), Type: command.EventHistoryUndo, Payload: map[string]any{"action": entry.Label}}}
	return ExecuteResult{Result: map[string]any{"action": entry.Label}, Events: events}, nil
}

func (r *Runtime) redoLocked() (ExecuteResult, error) {
	if len(r.redoStack) == 0 {
		return ExecuteResult{}, mferr.New(mferr.NothingToRedo, "nothing to redo")
	}
	entry := r.redoStack[len(r.redoStack)-1]
	r.redoStack = r.redoStack[:len(r.redoStack)-1]
	r.undoStack = append(r.undoStack, entry)
	r.current = entry.After.Clone()

	events := []command.Event{{Seq: r.nextSeq(), Type: command.EventHistoryRedo, Payload: map[string]any{"action": entry.Label}}}
	return ExecuteResult{Result: map[string]any{"action": entry.Label}, Events: events}, nil
}

// markDirty transitions dirty false->true exactly once, appending the
// project.dirtyChanged event only on that transition.
func (r *Runtime) markDirty(events *[]command.Event) {
	if r.dirty {
		return
	}
	r.dirty = true
	*events = append(*events, command.Event{Seq: r.nextSeq(), Type: command.EventProjectDirtyChanged, Payload: map[string]any{"dirty": true}})
}

func (r *Runtime) nextSeq() int {
	r.seq++
	return r.seq
}

// Clone produces an independent runtime whose current state is a deep copy
// of this one's, sharing the same action registry and size limit but with
// no staged project and no history.
func (r *Runtime) Clone() *Runtime {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Runtime{
		current:      r.current.Clone(),
		registry:     r.registry,
		maxJSONBytes: r.maxJSONBytes,
	}
}

// CaptureRestorePoint dumps current, staged, and both history stacks as
// independently-owned deep copies.
func (r *Runtime) CaptureRestorePoint() RestorePoint {
	r.mu.Lock()
	defer r.mu.Unlock()

	var staged *State
	if r.staged != nil {
		s := r.staged.Clone()
		staged = &s
	}

	return RestorePoint{
		Current:   r.current.Clone(),
		Staged:    staged,
		UndoStack: append([]UndoEntry(nil), r.undoStack...),
		RedoStack: append([]UndoEntry(nil), r.redoStack...),
	}
}

// RestoreRestorePoint replaces current, staged, and the history stacks
// wholesale from rp.
func (r *Runtime) RestoreRestorePoint(rp RestorePoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = rp.Current.Clone()
	if rp.Staged != nil {
		s := rp.Staged.Clone()
		r.staged = &s
	} else {
		r.staged = nil
	}
	r.undoStack = append([]UndoEntry(nil), rp.UndoStack...)
	r.redoStack = append([]UndoEntry(nil), rp.RedoStack...)
}

// ExportProjectJSON returns the canonical stable serialization of current.
func (r *Runtime) ExportProjectJSON() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.SerializeStable(r.current.Data)
}

// CurrentData returns a deep copy of current's project data, for callers
// (the plan and pipeline layers) that need a structured view rather than
// a JSON string.
func (r *Runtime) CurrentData() model.ProjectData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.CloneProjectData(r.current.Data)
}

// StateForScope returns a deep copy of the state named by scope ("current"
// or "" for current, "staged" for the staged slot). Fails with
// MF_ERR_NO_STAGED_PROJECT if scope is staged and nothing is staged, or
// MF_ERR_INVALID_INPUT for any other scope string.
func (r *Runtime) StateForScope(scope string) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch scope {
	case "", "current":
		return r.current.Clone(), nil
	case "staged":
		if r.staged == nil {
			return State{}, mferr.New(mferr.NoStagedProject, "no staged project for scope %q", scope)
		}
		return r.staged.Clone(), nil
	default:
		return State{}, mferr.New(mferr.InvalidInput, "unknown scope %q", scope)
	}
}

// ExportProjectJSONForScope is StateForScope followed by canonical
// serialization, used by the plan layer's freshness check.
func (r *Runtime) ExportProjectJSONForScope(scope string) (string, error) {
	st, err := r.StateForScope(scope)
	if err != nil {
		return "", err
	}
	return model.SerializeStable(st.Data)
}

// Snapshot returns the deterministic, read-only view of scope's state that
// the state.snapshot action and the mf.state.snapshot tool hand back.
// Dirty is only meaningful for scope=current; a staged project is never
// considered dirty on its own.
func (r *Runtime) Snapshot(scope string) (Snapshot, error) {
	st, err := r.StateForScope(scope)
	if err != nil {
		return Snapshot{}, err
	}
	dirty := false
	if scope == "" || scope == "current" {
		r.mu.Lock()
		dirty = r.dirty
		r.mu.Unlock()
	}
	return buildSnapshot(st, dirty), nil
}

// SetStaged replaces the staged slot with a deep copy of data, parsed and
// validated the same way LoadProjectJSON would. Used by the plan layer
// after an atomic apply against scope=staged has produced new project JSON.
func (r *Runtime) SetStaged(raw []byte) (LoadResult, error) {
	return r.LoadProjectJSON(raw, true)
}

// fingerprint hashes the parts of a State that matter for undo/dirty
// decisions: the project data (via its canonical serialization) and the
// parent hierarchy. Selection is deliberately excluded — it is ephemeral
// UI state, not project content, so selecting an object alone never pushes
// an undo entry or marks the project dirty.
func fingerprint(s State) (string, error) {
	dataJSON, err := model.SerializeStable(s.Data)
	if err != nil {
		return "", err
	}
	payload := struct {
		Data      string          `json:"data"`
		Hierarchy model.Hierarchy `json:"hierarchy"`
	}{Data: dataJSON, Hierarchy: s.Hierarchy}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return canon.Sha256Hex(b), nil
}
