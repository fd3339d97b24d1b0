// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package model

import (
	"fmt"
	"regexp"
	"strings"

	"motionforge/internal/animation"
)

// MigrationResult is the outcome of migrating a ProjectData to CurrentVersion.
type MigrationResult struct {
	Data    ProjectData
	Version int
	Applied []string
}

// MigrateToLatest runs the forward-only v1->v2->v3->v4 chain on data,
// never mutating the input. Each step is a pure function; data already at
// CurrentVersion passes through with Applied == nil.
func MigrateToLatest(data ProjectData) (MigrationResult, error) {
	cur := CloneProjectData(data)
	var applied []string

	if cur.Version < 1 || cur.Version > CurrentVersion {
		return MigrationResult{}, fmt.Errorf("version: unsupported schema version %d", cur.Version)
	}

	if cur.Version == 1 {
		cur = migrateV1ToV2(cur)
		applied = append(applied, "v1_to_v2")
	}
	if cur.Version == 2 {
		cur = migrateV2ToV3(cur)
		applied = append(applied, "v2_to_v3")
	}
	if cur.Version == 3 {
		cur = migrateV3ToV4(cur)
		applied = append(applied, "v3_to_v4")
	}

	return MigrationResult{Data: cur, Version: cur.Version, Applied: applied}, nil
}

// migrateV1ToV2 attaches an empty animation clip.
func migrateV1ToV2(data ProjectData) ProjectData {
	out := CloneProjectData(data)
	out.Version = 2
	if out.Animation == nil {
		out.Animation = &Clip{DurationSeconds: 1}
	}
	return out
}

// migrateV2ToV3 adds empty assets/modelInstances, and synthesizes a single
// take_main spanning the clip when the clip has positive duration.
func migrateV2ToV3(data ProjectData) ProjectData {
	out := CloneProjectData(data)
	out.Version = 3
	if out.Assets == nil {
		out.Assets = []Asset{}
	}
	if out.ModelInstances == nil {
		out.ModelInstances = []ModelInstance{}
	}
	if out.Animation != nil && out.Animation.DurationSeconds > 0 && len(out.Animation.Takes) == 0 {
		out.Animation.Takes = []Take{{
			ID:        "take_main",
			Name:      "Main",
			StartTime: 0,
			EndTime:   out.Animation.DurationSeconds,
		}}
	}
	return out
}

var nonBindPathChar = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeBindPathSegment converts name into a bindPath-safe segment.
func sanitizeBindPathSegment(name string) string {
	s := nonBindPathChar.ReplaceAllString(strings.TrimSpace(name), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "object"
	}
	return s
}

// migrateV3ToV4 derives a unique, sanitized bindPath from each object and
// instance's name and propagates it onto the animation tracks it owns.
func migrateV3ToV4(data ProjectData) ProjectData {
	out := CloneProjectData(data)
	out.Version = 4

	used := make(map[string]bool)
	byID := make(map[string]string)

	assign := func(id, name string) string {
		base := sanitizeBindPathSegment(name)
		candidate := base
		n := 2
		for used[candidate] {
			candidate = fmt.Sprintf("%s_%d", base, n)
			n++
		}
		used[candidate] = true
		byID[id] = candidate
		return candidate
	}

	for i := range out.Objects {
		if out.Objects[i].BindPath != "" {
			used[out.Objects[i].BindPath] = true
			byID[out.Objects[i].ID] = out.Objects[i].BindPath
			continue
		}
		out.Objects[i].BindPath = assign(out.Objects[i].ID, out.Objects[i].Name)
	}
	for i := range out.ModelInstances {
		if out.ModelInstances[i].BindPath != "" {
			used[out.ModelInstances[i].BindPath] = true
			byID[out.ModelInstances[i].ID] = out.ModelInstances[i].BindPath
			continue
		}
		out.ModelInstances[i].BindPath = assign(out.ModelInstances[i].ID, out.ModelInstances[i].Name)
	}

	if out.Animation != nil {
		for i := range out.Animation.Tracks {
			if bp, ok := byID[out.Animation.Tracks[i].ObjectID]; ok {
				out.Animation.Tracks[i].BindPath = bp
			}
		}
	}

	return out
}

// EnsureBindPaths fills any missing object/instance bindPath deterministically
// from its name (falling back to "object" for a name that sanitizes to
// nothing), guaranteeing uniqueness by suffixing "_2", "_3", ... on
// collision, and propagates the result onto animation tracks. It is the
// same derivation migrateV3ToV4 performs, exposed for callers (the Unity
// export normalization pass) that need to backfill bindPaths on already-v4
// data rather than during a version migration.
func EnsureBindPaths(data ProjectData) ProjectData {
	return migrateV3ToV4(CloneProjectData(data))
}

// CloneProjectData returns a deep copy of data, safe to mutate independently.
func CloneProjectData(data ProjectData) ProjectData {
	out := data

	out.Objects = append([]PrimitiveObject(nil), data.Objects...)
	for i := range out.Objects {
		out.Objects[i] = cloneObject(out.Objects[i])
	}

	if data.ModelInstances != nil {
		out.ModelInstances = append([]ModelInstance(nil), data.ModelInstances...)
		for i := range out.ModelInstances {
			out.ModelInstances[i] = cloneInstance(out.ModelInstances[i])
		}
	}
	if data.Assets != nil {
		out.Assets = append([]Asset(nil), data.Assets...)
	}
	if data.Camera != nil {
		cam := *data.Camera
		out.Camera = &cam
	}
	if data.Animation != nil {
		clip := cloneClip(*data.Animation)
		out.Animation = &clip
	}

	return out
}

func cloneObject(o PrimitiveObject) PrimitiveObject {
	out := o
	if o.Metallic != nil {
		v := *o.Metallic
		out.Metallic = &v
	}
	if o.Roughness != nil {
		v := *o.Roughness
		out.Roughness = &v
	}
	return out
}

func cloneInstance(m ModelInstance) ModelInstance {
	out := m
	out.MaterialOverrides = append([]MaterialOverride(nil), m.MaterialOverrides...)
	return out
}

func cloneClip(c Clip) Clip {
	out := c
	out.Tracks = append([]animation.Track(nil), c.Tracks...)
	for i := range out.Tracks {
		out.Tracks[i].Keyframes = append([]animation.Keyframe(nil), c.Tracks[i].Keyframes...)
	}
	if c.Takes != nil {
		out.Takes = append([]animation.Take(nil), c.Takes...)
	}
	return out
}
