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

type renameChange struct {
	ObjectID string `json:"objectId"`
	Name     string `json:"name"`
}

type renameManyInput struct {
	Changes []renameChange `json:"changes"`
}

func runHierarchyRenameMany(ctx Context, raw json.RawMessage) (any, error) {
	var in renameManyInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "hierarchy.renameMany: invalid input")
	}

	data := ctx.Project()
	var renamed []string

	for _, change := range in.Changes {
		if idx := findObjectIndex(data.Objects, change.ObjectID); idx >= 0 {
			if data.Objects[idx].Name == change.Name {
				continue
			}
			data.Objects[idx].Name = change.Name
			renamed = append(renamed, change.ObjectID)
			ctx.Emit(EventObjectRenamed, map[string]any{"objectId": change.ObjectID, "name": change.Name})
			continue
		}
		if idx := findInstanceIndex(data.ModelInstances, change.ObjectID); idx >= 0 {
			if data.ModelInstances[idx].Name == change.Name {
				continue
			}
			data.ModelInstances[idx].Name = change.Name
			renamed = append(renamed, change.ObjectID)
			ctx.Emit(EventObjectRenamed, map[string]any{"objectId": change.ObjectID, "name": change.Name})
		}
	}

	return map[string]any{"renamed": renamed}, nil
}

func init() {
	Register(Action{ID: "hierarchy.renameMany", Run: runHierarchyRenameMany})
}
