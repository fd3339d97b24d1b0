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
	"strings"

	"motionforge/internal/animation"
	"motionforge/internal/mferr"
	"motionforge/internal/model"
)

type materialInput struct {
	BaseColor *int     `json:"baseColor"`
	Metallic  *float64 `json:"metallic"`
	Roughness *float64 `json:"roughness"`
}

type addPrimitiveInput struct {
	Type     model.GeometryType `json:"type"`
	Name     *string            `json:"name"`
	At       *model.Vec3        `json:"at"`
	Material *materialInput     `json:"material"`
}

func runSceneAddPrimitive(ctx Context, raw json.RawMessage) (any, error) {
	var in addPrimitiveInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "scene.addPrimitive: invalid input")
	}
	switch in.Type {
	case model.GeometryBox, model.GeometrySphere, model.GeometryCone:
	default:
		return nil, mferr.New(mferr.InvalidInput, "scene.addPrimitive: unknown geometry type %q", in.Type)
	}

	data := ctx.Project()
	id := nextObjectID(data.Objects)

	base := in.Name
	name := capitalize(string(in.Type))
	if base != nil && *base != "" {
		name = *base
	}
	name = uniqueName(data.Objects, name)

	pos := spawnPosition(len(data.Objects))
	if in.At != nil {
		pos = *in.At
	}

	obj := model.PrimitiveObject{
		ID:           id,
		Name:         name,
		BindPath:     name,
		GeometryType: in.Type,
		Color:        0xffffff,
		Position:     pos,
		Rotation:     model.Vec3{},
		Scale:        model.Vec3{X: 1, Y: 1, Z: 1},
	}
	if in.Material != nil {
		applyMaterial(&obj, in.Material)
	}

	data.Objects = append(data.Objects, obj)
	ctx.Emit(EventSceneObjectAdded, map[string]any{"objectId": id})

	return map[string]any{"objectId": id, "name": name}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func applyMaterial(obj *model.PrimitiveObject, m *materialInput) {
	if m.BaseColor != nil {
		obj.Color = clampColor(*m.BaseColor)
	}
	if m.Metallic != nil {
		v := clampUnit(*m.Metallic)
		obj.Metallic = &v
	}
	if m.Roughness != nil {
		v := clampUnit(*m.Roughness)
		obj.Roughness = &v
	}
}

type duplicateSelectedInput struct {
	Offset *model.Vec3 `json:"offset"`
}

func isEnabledHasSelection(ctx Context, _ json.RawMessage) (bool, mferr.Code) {
	if ctx.Selection() == "" {
		return false, mferr.NoSelection
	}
	return true, ""
}

func runSceneDuplicateSelected(ctx Context, raw json.RawMessage) (any, error) {
	var in duplicateSelectedInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "scene.duplicateSelected: invalid input")
	}

	data := ctx.Project()
	srcIdx := findObjectIndex(data.Objects, ctx.Selection())
	if srcIdx < 0 {
		return nil, mferr.New(mferr.NotFound, "selected object %q no longer exists", ctx.Selection())
	}

	offset := model.Vec3{X: 0.6, Y: 0, Z: 0.6}
	if in.Offset != nil {
		offset = *in.Offset
	}

	clone := data.Objects[srcIdx]
	newID := nextObjectID(data.Objects)
	clone.ID = newID
	clone.Name = uniqueName(data.Objects, clone.Name)
	clone.BindPath = clone.Name
	clone.Position = model.Vec3{X: clone.Position.X + offset.X, Y: clone.Position.Y + offset.Y, Z: clone.Position.Z + offset.Z}
	data.Objects = append(data.Objects, clone)

	if data.Animation != nil {
		srcID := data.Objects[srcIdx].ID
		var duplicatedTracks []animation.Track
		for _, t := range data.Animation.Tracks {
			if t.ObjectID != srcID {
				continue
			}
			nt := t
			nt.ObjectID = newID
			nt.BindPath = clone.BindPath
			nt.Keyframes = append([]animation.Keyframe(nil), t.Keyframes...)
			duplicatedTracks = append(duplicatedTracks, nt)
		}
		data.Animation.Tracks = append(data.Animation.Tracks, duplicatedTracks...)
	}

	ctx.Emit(EventSceneObjectAdded, map[string]any{"objectId": newID, "duplicatedFrom": ctx.Selection()})
	return map[string]any{"objectId": newID}, nil
}

type deleteSelectedInput struct {
	ObjectID *string `json:"objectId"`
	Confirm  bool    `json:"confirm"`
}

func isEnabledDeleteSelected(ctx Context, raw json.RawMessage) (bool, mferr.Code) {
	var in deleteSelectedInput
	if err := json.Unmarshal(raw, &in); err == nil && in.ObjectID != nil && *in.ObjectID != "" {
		return true, ""
	}
	if ctx.Selection() == "" {
		return false, mferr.NoSelection
	}
	return true, ""
}

func runSceneDeleteSelected(ctx Context, raw json.RawMessage) (any, error) {
	var in deleteSelectedInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "scene.deleteSelected: invalid input")
	}
	if !in.Confirm {
		return nil, mferr.New(mferr.ConfirmRequired, "scene.deleteSelected requires confirm=true")
	}

	target := ctx.Selection()
	if in.ObjectID != nil && *in.ObjectID != "" {
		target = *in.ObjectID
	}
	if target == "" {
		return nil, mferr.New(mferr.NoSelection, "no object selected or specified")
	}

	data := ctx.Project()
	victims := descendantsBFS(ctx.Hierarchy(), target)
	removeObjectsAndInstances(data, ctx.Hierarchy(), victims)

	if ctx.Selection() == target {
		ctx.SetSelection("")
	}
	ctx.Emit(EventSceneObjectDeleted, map[string]any{"objectIds": victims})

	return map[string]any{"deletedIds": victims}, nil
}

type clearUserObjectsInput struct {
	Confirm bool `json:"confirm"`
}

func runSceneClearUserObjects(ctx Context, raw json.RawMessage) (any, error) {
	var in clearUserObjectsInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "scene.clearUserObjects: invalid input")
	}
	if !in.Confirm {
		return nil, mferr.New(mferr.ConfirmRequired, "scene.clearUserObjects requires confirm=true")
	}

	data := ctx.Project()
	data.Objects = nil
	data.ModelInstances = nil
	if data.Animation != nil {
		data.Animation.Tracks = nil
	}
	hierarchy := ctx.Hierarchy()
	for k := range hierarchy {
		delete(hierarchy, k)
	}
	ctx.SetSelection("")

	ctx.Emit(EventSceneObjectsCleared, nil)
	return map[string]any{}, nil
}

type parentInput struct {
	ChildID  string `json:"childId"`
	ParentID string `json:"parentId"`
}

func runSceneParent(ctx Context, raw json.RawMessage) (any, error) {
	var in parentInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "scene.parent: invalid input")
	}

	hierarchy := ctx.Hierarchy()
	if wouldCycle(hierarchy, in.ChildID, in.ParentID) {
		return nil, mferr.New(mferr.InvalidInput, "scene.parent: %q -> %q would create a cycle", in.ChildID, in.ParentID)
	}

	hierarchy[in.ChildID] = in.ParentID
	ctx.Emit(EventSceneParentChanged, map[string]any{"childId": in.ChildID, "parentId": in.ParentID})
	return map[string]any{"childId": in.ChildID, "parentId": in.ParentID}, nil
}

type unparentInput struct {
	ChildID string `json:"childId"`
}

func runSceneUnparent(ctx Context, raw json.RawMessage) (any, error) {
	var in unparentInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "scene.unparent: invalid input")
	}

	hierarchy := ctx.Hierarchy()
	delete(hierarchy, in.ChildID)
	ctx.Emit(EventSceneParentChanged, map[string]any{"childId": in.ChildID, "parentId": nil})
	return map[string]any{"childId": in.ChildID}, nil
}

// removeObjectsAndInstances deletes every id in victims from objects,
// model instances, the hierarchy, and any animation tracks that reference
// them.
func removeObjectsAndInstances(data *model.ProjectData, hierarchy model.Hierarchy, victims []string) {
	victimSet := make(map[string]bool, len(victims))
	for _, v := range victims {
		victimSet[v] = true
		delete(hierarchy, v)
	}

	keptObjects := data.Objects[:0]
	for _, o := range data.Objects {
		if !victimSet[o.ID] {
			keptObjects = append(keptObjects, o)
		}
	}
	data.Objects = keptObjects

	keptInstances := data.ModelInstances[:0]
	for _, m := range data.ModelInstances {
		if !victimSet[m.ID] {
			keptInstances = append(keptInstances, m)
		}
	}
	data.ModelInstances = keptInstances

	if data.Animation != nil {
		keptTracks := data.Animation.Tracks[:0]
		for _, t := range data.Animation.Tracks {
			if !victimSet[t.ObjectID] {
				keptTracks = append(keptTracks, t)
			}
		}
		data.Animation.Tracks = keptTracks
	}
}

func init() {
	Register(Action{ID: "scene.addPrimitive", Run: runSceneAddPrimitive})
	Register(Action{ID: "scene.duplicateSelected", IsEnabled: isEnabledHasSelection, Run: runSceneDuplicateSelected})
	Register(Action{ID: "scene.deleteSelected", IsEnabled: isEnabledDeleteSelected, Run: runSceneDeleteSelected})
	Register(Action{ID: "scene.clearUserObjects", Run: runSceneClearUserObjects})
	Register(Action{ID: "scene.parent", Run: runSceneParent})
	Register(Action{ID: "scene.unparent", Run: runSceneUnparent})
}
