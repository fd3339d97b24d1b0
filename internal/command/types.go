// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package command implements the typed action registry every scene/animation
// mutation goes through: a closed set of action ids, each gated by an
// isEnabled check and executed by a run function against the live runtime
// state. A single Execute call is all-or-nothing from the caller's view —
// the runtime decides, from a before/after fingerprint, whether the call
// actually changed anything and is worth an undo entry.
package command

import (
	"encoding/json"

	"motionforge/internal/mferr"
	"motionforge/internal/model"
)

// EventType is one of the closed set of event kinds a command can emit.
type EventType string

const (
	EventSelectionChanged       EventType = "selection.changed"
	EventObjectRenamed          EventType = "object.renamed"
	EventObjectMaterialChanged  EventType = "object.materialChanged"
	EventSceneObjectAdded       EventType = "scene.objectAdded"
	EventSceneObjectDeleted     EventType = "scene.objectDeleted"
	EventSceneObjectsCleared    EventType = "scene.objectsCleared"
	EventSceneParentChanged     EventType = "scene.parentChanged"
	EventKeyframeAdded          EventType = "keyframe.added"
	EventKeyframeDeleted        EventType = "keyframe.deleted"
	EventKeyframeMoved          EventType = "keyframe.moved"
	EventAnimationDurationChg   EventType = "animation.durationChanged"
	EventAnimationTakesChanged  EventType = "animation.takesChanged"
	EventProjectDirtyChanged    EventType = "project.dirtyChanged"
	EventHistoryUndo            EventType = "history.undo"
	EventHistoryRedo            EventType = "history.redo"
)

// Event is one entry in the per-call event log, numbered by the runtime's
// monotonic sequence counter.
type Event struct {
	Seq     int    `json:"seq"`
	Type    EventType `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Context is the live, mutable view of runtime state an action handler is
// allowed to touch. The runtime (package runtime) supplies the concrete
// implementation; this package only depends on model so it stays free of
// any cycle back to the runtime package that dispatches through it.
type Context interface {
	// Project returns the live project data. Handlers mutate it in place.
	Project() *model.ProjectData
	// Hierarchy returns the live objectId -> parentId map.
	Hierarchy() model.Hierarchy
	// Selection returns the currently selected object id, or "" for none.
	Selection() string
	// SetSelection updates the current selection.
	SetSelection(id string)
	// Emit records an event produced by the running handler.
	Emit(eventType EventType, payload any)
}

// IsEnabledFunc reports whether an action may run against the current
// context and input. A false result with an empty code defaults to
// MF_ERR_ACTION_DISABLED at the bus level.
type IsEnabledFunc func(ctx Context, input json.RawMessage) (bool, mferr.Code)

// RunFunc executes an action's effect and returns its result payload.
type RunFunc func(ctx Context, input json.RawMessage) (any, error)

// Action is one entry in the command registry: an id, an optional gate,
// and the handler that performs the mutation.
type Action struct {
	ID        string
	IsEnabled IsEnabledFunc // nil means always enabled
	Run       RunFunc
}
