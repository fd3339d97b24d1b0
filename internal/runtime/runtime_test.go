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
	"testing"

	"github.com/stretchr/testify/require"

	"motionforge/internal/command"
	"motionforge/internal/mferr"
)

func newTestRuntime() *Runtime {
	return New(command.DefaultRegistry, 0)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func snapshotOf(t *testing.T, r *Runtime) Snapshot {
	t.Helper()
	snap, err := r.Snapshot("current")
	require.NoError(t, err)
	return snap
}

func TestExecute_AddPrimitiveMarksDirtyOnce(t *testing.T) {
	r := newTestRuntime()

	res, err := r.Execute("scene.addPrimitive", mustJSON(t, map[string]any{"type": "box"}))
	require.NoError(t, err)
	require.Len(t, res.Events, 2) // scene.objectAdded + project.dirtyChanged

	snap := snapshotOf(t, r)
	require.True(t, snap.Dirty)
	require.Len(t, snap.Objects, 1)
	require.Equal(t, "obj_1", snap.Objects[0].ID)

	// A second mutation does not re-emit dirtyChanged.
	res2, err := r.Execute("scene.addPrimitive", mustJSON(t, map[string]any{"type": "sphere"}))
	require.NoError(t, err)
	for _, ev := range res2.Events {
		require.NotEqual(t, command.EventProjectDirtyChanged, ev.Type)
	}
}

func TestExecute_FailedActionLeavesStateUntouched(t *testing.T) {
	r := newTestRuntime()

	_, err := r.Execute("bogus.action", mustJSON(t, map[string]any{}))
	require.Error(t, err)
	require.Equal(t, mferr.UnknownAction, mferr.CodeOf(err, ""))

	snap := snapshotOf(t, r)
	require.False(t, snap.Dirty)
	require.Empty(t, snap.Objects)
}

func TestUndoRedo_RoundTrips(t *testing.T) {
	r := newTestRuntime()

	_, err := r.Execute("scene.addPrimitive", mustJSON(t, map[string]any{"type": "box"}))
	require.NoError(t, err)
	require.Len(t, snapshotOf(t, r).Objects, 1)

	_, err = r.Execute("history.undo", nil)
	require.NoError(t, err)
	require.Empty(t, snapshotOf(t, r).Objects)

	_, err = r.Execute("history.redo", nil)
	require.NoError(t, err)
	require.Len(t, snapshotOf(t, r).Objects, 1)

	_, err = r.Execute("history.undo", nil)
	require.NoError(t, err)
	_, err = r.Execute("history.undo", nil)
	require.Error(t, err)
	require.Equal(t, mferr.NothingToUndo, mferr.CodeOf(err, ""))
}

func TestSelectionSet_DoesNotPushUndoEntry(t *testing.T) {
	r := newTestRuntime()
	_, err := r.Execute("selection.set", mustJSON(t, map[string]any{"objectId": "obj_1"}))
	require.NoError(t, err)

	_, err = r.Execute("history.undo", nil)
	require.Error(t, err, "selection changes alone must not be undoable")
}

func TestLoadProjectJSON_StagedRequiresCommit(t *testing.T) {
	r := newTestRuntime()
	raw := []byte(`{"version":4,"objects":[{"id":"obj_1","name":"A","bindPath":"A","geometryType":"box","color":0,"position":{"x":0,"y":0,"z":0},"rotation":{"x":0,"y":0,"z":0},"scale":{"x":1,"y":1,"z":1}}]}`)

	result, err := r.LoadProjectJSON(raw, true)
	require.NoError(t, err)
	require.NotEmpty(t, result.ProjectID)
	require.Equal(t, 1, result.Summary.ObjectCount)

	require.Empty(t, snapshotOf(t, r).Objects, "staged load must not affect current")

	require.NoError(t, r.CommitStagedLoad())
	require.Len(t, snapshotOf(t, r).Objects, 1)

	require.Error(t, r.CommitStagedLoad(), "commit is not idempotent once staged is cleared")
}

func TestDiscardStagedLoad_IsIdempotent(t *testing.T) {
	r := newTestRuntime()
	r.DiscardStagedLoad()
	r.DiscardStagedLoad()
}

func TestCloneAndRestorePoint(t *testing.T) {
	r := newTestRuntime()
	_, err := r.Execute("scene.addPrimitive", mustJSON(t, map[string]any{"type": "box"}))
	require.NoError(t, err)

	clone := r.Clone()
	require.Len(t, snapshotOf(t, clone).Objects, 1)

	_, err = clone.Execute("scene.addPrimitive", mustJSON(t, map[string]any{"type": "sphere"}))
	require.NoError(t, err)
	require.Len(t, snapshotOf(t, clone).Objects, 2)
	require.Len(t, snapshotOf(t, r).Objects, 1, "clone mutations must not leak back")

	rp := r.CaptureRestorePoint()
	_, err = r.Execute("scene.addPrimitive", mustJSON(t, map[string]any{"type": "cone"}))
	require.NoError(t, err)
	require.Len(t, snapshotOf(t, r).Objects, 2)

	r.RestoreRestorePoint(rp)
	require.Len(t, snapshotOf(t, r).Objects, 1)
}

func TestExportProjectJSON_IsCanonicalAndStable(t *testing.T) {
	r := newTestRuntime()
	_, err := r.Execute("scene.addPrimitive", mustJSON(t, map[string]any{"type": "box"}))
	require.NoError(t, err)

	a, err := r.ExportProjectJSON()
	require.NoError(t, err)
	b, err := r.ExportProjectJSON()
	require.NoError(t, err)
	require.Equal(t, a, b)
}
