// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package runtime holds the in-memory project, its hierarchy, selection,
// dirty flag, and undo/redo stacks, and dispatches command-bus actions
// against them. It is the process-wide, single-threaded owner of scene
// state: every entry point either reads a deep copy or mutates under the
// same mutex, so callers never observe a half-applied command.
package runtime

import (
	"motionforge/internal/model"
)

// State is one immutable-in-spirit snapshot of everything the runtime owns:
// the project data, the parent hierarchy, and the current selection.
// Handlers mutate a State in place; the Runtime is responsible for
// deep-copying one before pushing it onto the undo stack.
type State struct {
	Data      model.ProjectData
	Hierarchy model.Hierarchy
	Selection string
}

// Clone returns a deep, independently mutable copy of s.
func (s State) Clone() State {
	hierarchy := make(model.Hierarchy, len(s.Hierarchy))
	for k, v := range s.Hierarchy {
		hierarchy[k] = v
	}
	return State{
		Data:      model.CloneProjectData(s.Data),
		Hierarchy: hierarchy,
		Selection: s.Selection,
	}
}

// emptyState returns a fresh, valid, empty v4 project state.
func emptyState() State {
	return State{
		Data:      model.ProjectData{Version: model.CurrentVersion, Objects: []model.PrimitiveObject{}},
		Hierarchy: model.Hierarchy{},
	}
}

// UndoEntry pairs the label of the action that produced it with a full
// state snapshot taken before and after the call, so undo/redo restore
// by swapping whole states rather than replaying inverse operations.
type UndoEntry struct {
	Label  string
	Before State
	After  State
}

// RestorePoint is a deep-copy dump of everything the plan layer needs to
// roll back an interrupted atomic apply.
type RestorePoint struct {
	Current   State
	Staged    *State
	UndoStack []UndoEntry
	RedoStack []UndoEntry
}
