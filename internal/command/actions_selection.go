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

	"motionforge/internal/mferr"
)

type selectionSetInput struct {
	ObjectID *string `json:"objectId"`
}

func runSelectionSet(ctx Context, raw json.RawMessage) (any, error) {
	var in selectionSetInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "selection.set: invalid input")
	}

	var next string
	if in.ObjectID != nil {
		next = *in.ObjectID
	}

	if next != ctx.Selection() {
		ctx.SetSelection(next)
		ctx.Emit(EventSelectionChanged, map[string]any{"objectId": nilableString(next)})
	}

	return map[string]any{"objectId": nilableString(next)}, nil
}

type selectByIDInput struct {
	ID string `json:"id"`
}

func runSceneSelectByID(ctx Context, raw json.RawMessage) (any, error) {
	var in selectByIDInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "scene.selectById: invalid input")
	}

	data := ctx.Project()
	found := findObjectIndex(data.Objects, in.ID) >= 0 || findInstanceIndex(data.ModelInstances, in.ID) >= 0
	if !found {
		return nil, mferr.New(mferr.NotFound, "no object with id %q", in.ID)
	}

	if in.ID != ctx.Selection() {
		ctx.SetSelection(in.ID)
		ctx.Emit(EventSelectionChanged, map[string]any{"objectId": in.ID})
	}

	return map[string]any{"objectId": in.ID}, nil
}

type selectByNameInput struct {
	Name string `json:"name"`
}

func runSceneSelectByName(ctx Context, raw json.RawMessage) (any, error) {
	var in selectByNameInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "scene.selectByName: invalid input")
	}

	data := ctx.Project()
	id, ok, ambiguous := findByNameCI(data, in.Name)
	if ambiguous {
		return nil, mferr.New(mferr.AmbiguousName, "multiple objects named %q", in.Name)
	}
	if !ok {
		return nil, mferr.New(mferr.NotFound, "no object named %q", in.Name)
	}

	if id != ctx.Selection() {
		ctx.SetSelection(id)
		ctx.Emit(EventSelectionChanged, map[string]any{"objectId": id})
	}

	return map[string]any{"objectId": id}, nil
}

func nilableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func init() {
	Register(Action{ID: "selection.set", Run: runSelectionSet})
	Register(Action{ID: "scene.selectById", Run: runSceneSelectByID})
	Register(Action{ID: "scene.selectByName", Run: runSceneSelectByName})
}
