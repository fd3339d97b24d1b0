// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package model

import (
	"sort"

	"motionforge/internal/canon"
)

// SerializeStable returns the canonical JSON form of data: ordered sequences
// sorted by their documented key (see Normalize), object keys sorted
// lexicographically at every depth, and stable number formatting. Every
// hash in the system (plan ids, project ids, proof hashes) is computed
// over this form, so any two implementations that agree on the struct
// values must also agree byte-for-byte on this string.
func SerializeStable(data ProjectData) (string, error) {
	return canon.Canonicalize(Normalize(data))
}

// Normalize returns a copy of data with every ordered sequence sorted by its
// documented stable key (spec invariant: objects/assets/instances by id,
// tracks by (objectId, property), keyframes by time, takes by
// (startTime, id)) and every Clip normalized (§4.2 normalizeClip).
func Normalize(data ProjectData) ProjectData {
	out := data

	out.Objects = append([]PrimitiveObject(nil), data.Objects...)
	sort.Slice(out.Objects, func(i, j int) bool { return out.Objects[i].ID < out.Objects[j].ID })

	if data.ModelInstances != nil {
		out.ModelInstances = append([]ModelInstance(nil), data.ModelInstances...)
		sort.Slice(out.ModelInstances, func(i, j int) bool { return out.ModelInstances[i].ID < out.ModelInstances[j].ID })
	}

	if data.Assets != nil {
		out.Assets = append([]Asset(nil), data.Assets...)
		sort.Slice(out.Assets, func(i, j int) bool { return out.Assets[i].ID < out.Assets[j].ID })
	}

	if data.Animation != nil {
		clip := NormalizeClip(*data.Animation)
		out.Animation = &clip
	}

	return out
}
