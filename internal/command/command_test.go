// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"motionforge/internal/animation"
	"motionforge/internal/mferr"
	"motionforge/internal/model"
)

type fakeContext struct {
	data      *model.ProjectData
	hierarchy model.Hierarchy
	selection string
	events    []Event
}

func newFakeContext(data *model.ProjectData) *fakeContext {
	return &fakeContext{data: data, hierarchy: model.Hierarchy{}}
}

func (f *fakeContext) Project() *model.ProjectData   { return f.data }
func (f *fakeContext) Hierarchy() model.Hierarchy    { return f.hierarchy }
func (f *fakeContext) Selection() string             { return f.selection }
func (f *fakeContext) SetSelection(id string)        { f.selection = id }
func (f *fakeContext) Emit(t EventType, payload any) { f.events = append(f.events, Event{Type: t, Payload: payload}) }

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestExecute_UnknownAction(t *testing.T) {
	ctx := newFakeContext(&model.ProjectData{})
	_, err := Execute(DefaultRegistry, ctx, "bogus.action", json.RawMessage(`{}`))
	require.Error(t, err)
	require.Equal(t, mferr.UnknownAction, mferr.CodeOf(err, ""))
}

func TestSelectionSet_EmitsOnChange(t *testing.T) {
	ctx := newFakeContext(&model.ProjectData{})
	_, err := Execute(DefaultRegistry, ctx, "selection.set", mustJSON(t, map[string]any{"objectId": "obj_1"}))
	require.NoError(t, err)
	require.Equal(t, "obj_1", ctx.selection)
	require.Len(t, ctx.events, 1)
	require.Equal(t, EventSelectionChanged, ctx.events[0].Type)

	// Re-setting the same selection emits nothing further.
	_, err = Execute(DefaultRegistry, ctx, "selection.set", mustJSON(t, map[string]any{"objectId": "obj_1"}))
	require.NoError(t, err)
	require.Len(t, ctx.events, 1)
}

func TestSceneAddPrimitive_MintsSequentialIDsAndUniqueNames(t *testing.T) {
	ctx := newFakeContext(&model.ProjectData{})

	_, err := Execute(DefaultRegistry, ctx, "scene.addPrimitive", mustJSON(t, map[string]any{"type": "box"}))
	require.NoError(t, err)
	_, err = Execute(DefaultRegistry, ctx, "scene.addPrimitive", mustJSON(t, map[string]any{"type": "box"}))
	require.NoError(t, err)

	require.Len(t, ctx.data.Objects, 2)
	require.Equal(t, "obj_1", ctx.data.Objects[0].ID)
	require.Equal(t, "obj_2", ctx.data.Objects[1].ID)
	require.Equal(t, "Box", ctx.data.Objects[0].Name)
	require.Equal(t, "Box 2", ctx.data.Objects[1].Name)
}

func TestSceneAddPrimitive_SpawnPositionGridAndColorClamp(t *testing.T) {
	ctx := newFakeContext(&model.ProjectData{})

	_, err := Execute(DefaultRegistry, ctx, "scene.addPrimitive", mustJSON(t, map[string]any{
		"type":     "sphere",
		"material": map[string]any{"baseColor": 99999999, "metallic": 5.0, "roughness": -1.0},
	}))
	require.NoError(t, err)

	obj := ctx.data.Objects[0]
	require.Equal(t, model.Vec3{X: -1.5, Y: 0.5, Z: 0}, obj.Position)
	require.Equal(t, 0xFFFFFF, obj.Color)
	require.Equal(t, 1.0, *obj.Metallic)
	require.Equal(t, 0.0, *obj.Roughness)
}

func TestSceneDeleteSelected_RequiresConfirm(t *testing.T) {
	ctx := newFakeContext(&model.ProjectData{Objects: []model.PrimitiveObject{{ID: "obj_1", Name: "A"}}})
	ctx.selection = "obj_1"

	_, err := Execute(DefaultRegistry, ctx, "scene.deleteSelected", mustJSON(t, map[string]any{"confirm": false}))
	require.Error(t, err)
	require.Equal(t, mferr.ConfirmRequired, mferr.CodeOf(err, ""))
}

func TestSceneDeleteSelected_RemovesDescendantsAndTracks(t *testing.T) {
	data := &model.ProjectData{
		Objects: []model.PrimitiveObject{{ID: "obj_1", Name: "Parent"}, {ID: "obj_2", Name: "Child"}},
		Animation: &model.Clip{
			DurationSeconds: 2,
			Tracks: []animation.Track{
				{ObjectID: "obj_2", Property: animation.PropPositionX, Keyframes: []animation.Keyframe{{Time: 0, Value: 1}}},
			},
		},
	}
	ctx := newFakeContext(data)
	ctx.hierarchy["obj_2"] = "obj_1"
	ctx.selection = "obj_1"

	_, err := Execute(DefaultRegistry, ctx, "scene.deleteSelected", mustJSON(t, map[string]any{"confirm": true}))
	require.NoError(t, err)

	require.Empty(t, ctx.data.Objects)
	require.Empty(t, ctx.data.Animation.Tracks)
	require.Empty(t, ctx.hierarchy)
	require.Equal(t, "", ctx.selection)
}

func TestSceneParent_RejectsCycle(t *testing.T) {
	ctx := newFakeContext(&model.ProjectData{})
	ctx.hierarchy["b"] = "a"

	_, err := Execute(DefaultRegistry, ctx, "scene.parent", mustJSON(t, map[string]any{"childId": "a", "parentId": "b"}))
	require.Error(t, err)
	require.Equal(t, mferr.InvalidInput, mferr.CodeOf(err, ""))
}

func TestAnimationInsertRecordsAndRemoveKeys(t *testing.T) {
	data := &model.ProjectData{
		Objects:   []model.PrimitiveObject{{ID: "obj_1", Name: "A", BindPath: "A"}},
		Animation: &model.Clip{DurationSeconds: 2},
	}
	ctx := newFakeContext(data)

	_, err := Execute(DefaultRegistry, ctx, "animation.insertRecords", mustJSON(t, map[string]any{
		"records": []map[string]any{
			{"objectId": "obj_1", "propertyPath": "position.x", "time": 0, "value": 0},
			{"objectId": "obj_1", "propertyPath": "position.x", "time": 1, "value": 2},
		},
	}))
	require.NoError(t, err)
	require.Len(t, ctx.data.Animation.Tracks, 1)
	require.Equal(t, "A", ctx.data.Animation.Tracks[0].BindPath)
	require.Len(t, ctx.data.Animation.Tracks[0].Keyframes, 2)

	removed, err := Execute(DefaultRegistry, ctx, "animation.removeKeys", mustJSON(t, map[string]any{
		"keys": []map[string]any{
			{"objectId": "obj_1", "property": "position.x", "time": 0},
			{"objectId": "obj_1", "property": "position.x", "time": 99}, // doesn't exist
		},
	}))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"removed": 1}, removed)
	require.Len(t, ctx.data.Animation.Tracks[0].Keyframes, 1)
}

func TestAnimationSetDuration_RejectsNonPositive(t *testing.T) {
	ctx := newFakeContext(&model.ProjectData{})
	_, err := Execute(DefaultRegistry, ctx, "animation.setDuration", mustJSON(t, map[string]any{"durationSeconds": 0}))
	require.Error(t, err)
	require.Equal(t, mferr.InvalidInput, mferr.CodeOf(err, ""))
}

func TestAnimationSetTakes_FiltersInvalidRangesAndDedupes(t *testing.T) {
	data := &model.ProjectData{Animation: &model.Clip{DurationSeconds: 2}}
	ctx := newFakeContext(data)

	result, err := Execute(DefaultRegistry, ctx, "animation.setTakes", mustJSON(t, map[string]any{
		"takes": []map[string]any{
			{"id": "t1", "name": "Main", "startTime": 0, "endTime": 2},
			{"id": "t1", "name": "Dup", "startTime": 0, "endTime": 1},    // duplicate id dropped
			{"id": "t2", "name": "Bad", "startTime": 1.5, "endTime": 1}, // inverted range dropped
			{"id": "t3", "name": "TooLong", "startTime": 0, "endTime": 5}, // exceeds duration
		},
	}))
	require.NoError(t, err)
	takesResult := result.(map[string]any)["takes"].([]animation.Take)
	require.Len(t, takesResult, 1)
	require.Equal(t, "t1", takesResult[0].ID)
}
