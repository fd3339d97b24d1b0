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

type materialSetInput struct {
	ObjectID  string   `json:"objectId"`
	BaseColor *int     `json:"baseColor"`
	Metallic  *float64 `json:"metallic"`
	Roughness *float64 `json:"roughness"`
}

func runMaterialSet(ctx Context, raw json.RawMessage) (any, error) {
	var in materialSetInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "material.set: invalid input")
	}

	if in.BaseColor == nil && in.Metallic == nil && in.Roughness == nil {
		return map[string]any{"changed": false}, nil
	}

	data := ctx.Project()
	idx := findObjectIndex(data.Objects, in.ObjectID)
	if idx < 0 {
		return nil, mferr.New(mferr.NotFound, "no object with id %q", in.ObjectID)
	}

	applyMaterial(&data.Objects[idx], &materialInput{
		BaseColor: in.BaseColor,
		Metallic:  in.Metallic,
		Roughness: in.Roughness,
	})

	ctx.Emit(EventObjectMaterialChanged, map[string]any{"objectId": in.ObjectID})
	return map[string]any{"changed": true}, nil
}

func init() {
	Register(Action{ID: "material.set", Run: runMaterialSet})
}
