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
	"math"
	"regexp"

	"motionforge/internal/animation"
)

// bindPathPattern is the sanitized, forward-slash-delimited path format
// used by external importers (notably Unity) — spec invariant 3.
var bindPathPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+(/[A-Za-z0-9._-]+)*$`)

// Validate performs a strict schema check against data.Version. It returns
// a single human-readable error naming the first offending field, or nil.
func Validate(data ProjectData) error {
	switch data.Version {
	case 1, 2, 3, 4:
	default:
		return fmt.Errorf("version: unsupported schema version %d", data.Version)
	}

	ids := make(map[string]bool)
	for i, obj := range data.Objects {
		if err := validateObject(i, obj, data.Version, ids); err != nil {
			return err
		}
	}

	if data.Version < 3 && len(data.ModelInstances) > 0 {
		return fmt.Errorf("modelInstances: requires version >= 3, got %d", data.Version)
	}
	assetIDs := make(map[string]bool)
	for i, asset := range data.Assets {
		if err := validateAsset(i, asset, ids, assetIDs); err != nil {
			return err
		}
	}
	for i, inst := range data.ModelInstances {
		if err := validateInstance(i, inst, data.Version, ids, assetIDs); err != nil {
			return err
		}
	}

	if data.Version < 2 && data.Animation != nil {
		return fmt.Errorf("animation: requires version >= 2, got %d", data.Version)
	}
	if data.Animation != nil {
		if err := validateClip(*data.Animation, data.Version, ids); err != nil {
			return err
		}
	}

	return nil
}

func validateObject(i int, obj PrimitiveObject, version int, ids map[string]bool) error {
	if obj.ID == "" {
		return fmt.Errorf("objects[%d].id: must not be empty", i)
	}
	if ids[obj.ID] {
		return fmt.Errorf("objects[%d].id: duplicate id %q", i, obj.ID)
	}
	ids[obj.ID] = true

	switch obj.GeometryType {
	case GeometryBox, GeometrySphere, GeometryCone:
	default:
		return fmt.Errorf("objects[%d].geometryType: invalid value %q", i, obj.GeometryType)
	}

	if obj.Color < 0 || obj.Color > 0xFFFFFF {
		return fmt.Errorf("objects[%d].color: %d out of range [0, 0xFFFFFF]", i, obj.Color)
	}
	if err := validateUnit(obj.Metallic, fmt.Sprintf("objects[%d].metallic", i)); err != nil {
		return err
	}
	if err := validateUnit(obj.Roughness, fmt.Sprintf("objects[%d].roughness", i)); err != nil {
		return err
	}
	if err := validateVec3(obj.Position, fmt.Sprintf("objects[%d].position", i)); err != nil {
		return err
	}
	if err := validateVec3(obj.Rotation, fmt.Sprintf("objects[%d].rotation", i)); err != nil {
		return err
	}
	if err := validateVec3(obj.Scale, fmt.Sprintf("objects[%d].scale", i)); err != nil {
		return err
	}

	if version >= 4 {
		if obj.BindPath == "" {
			return fmt.Errorf("objects[%d].bindPath: required in v4", i)
		}
	}
	if obj.BindPath != "" && !bindPathPattern.MatchString(obj.BindPath) {
		return fmt.Errorf("objects[%d].bindPath: %q does not match the bind path format", i, obj.BindPath)
	}

	return nil
}

func validateAsset(i int, asset Asset, ids, assetIDs map[string]bool) error {
	if asset.ID == "" {
		return fmt.Errorf("assets[%d].id: must not be empty", i)
	}
	if ids[asset.ID] || assetIDs[asset.ID] {
		return fmt.Errorf("assets[%d].id: duplicate id %q", i, asset.ID)
	}
	assetIDs[asset.ID] = true

	if asset.Type != "gltf" {
		return fmt.Errorf("assets[%d].type: must be %q, got %q", i, "gltf", asset.Type)
	}
	if asset.Size < 0 {
		return fmt.Errorf("assets[%d].size: must be >= 0, got %d", i, asset.Size)
	}
	switch asset.Source.Mode {
	case AssetSourceEmbedded:
		if asset.Source.FileName == "" {
			return fmt.Errorf("assets[%d].source.fileName: required for embedded assets", i)
		}
	case AssetSourceExternal:
		if asset.Source.Path == "" {
			return fmt.Errorf("assets[%d].source.path: required for external assets", i)
		}
	default:
		return fmt.Errorf("assets[%d].source.mode: invalid value %q", i, asset.Source.Mode)
	}

	return nil
}

func validateInstance(i int, inst ModelInstance, version int, ids, assetIDs map[string]bool) error {
	if inst.ID == "" {
		return fmt.Errorf("modelInstances[%d].id: must not be empty", i)
	}
	if ids[inst.ID] {
		return fmt.Errorf("modelInstances[%d].id: duplicate id %q", i, inst.ID)
	}
	ids[inst.ID] = true

	if !assetIDs[inst.AssetID] {
		return fmt.Errorf("modelInstances[%d].assetId: %q does not reference a known asset", i, inst.AssetID)
	}
	if err := validateVec3(inst.Position, fmt.Sprintf("modelInstances[%d].position", i)); err != nil {
		return err
	}
	if err := validateVec3(inst.Rotation, fmt.Sprintf("modelInstances[%d].rotation", i)); err != nil {
		return err
	}
	if err := validateVec3(inst.Scale, fmt.Sprintf("modelInstances[%d].scale", i)); err != nil {
		return err
	}
	for j, mo := range inst.MaterialOverrides {
		prefix := fmt.Sprintf("modelInstances[%d].materialOverrides[%d]", i, j)
		if mo.Color < 0 || mo.Color > 0xFFFFFF {
			return fmt.Errorf("%s.color: %d out of range [0, 0xFFFFFF]", prefix, mo.Color)
		}
		if mo.Metallic < 0 || mo.Metallic > 1 {
			return fmt.Errorf("%s.metallic: %v out of range [0,1]", prefix, mo.Metallic)
		}
		if mo.Roughness < 0 || mo.Roughness > 1 {
			return fmt.Errorf("%s.roughness: %v out of range [0,1]", prefix, mo.Roughness)
		}
	}

	if version >= 4 {
		if inst.BindPath == "" {
			return fmt.Errorf("modelInstances[%d].bindPath: required in v4", i)
		}
	}
	if inst.BindPath != "" && !bindPathPattern.MatchString(inst.BindPath) {
		return fmt.Errorf("modelInstances[%d].bindPath: %q does not match the bind path format", i, inst.BindPath)
	}

	return nil
}

func validateClip(clip Clip, version int, ids map[string]bool) error {
	if !(clip.DurationSeconds > 0) || math.IsInf(clip.DurationSeconds, 0) {
		return fmt.Errorf("animation.durationSeconds: must be finite and > 0, got %v", clip.DurationSeconds)
	}

	seenTrack := make(map[string]bool)
	for i, track := range clip.Tracks {
		prefix := fmt.Sprintf("animation.tracks[%d]", i)
		if !ids[track.ObjectID] {
			return fmt.Errorf("%s.objectId: %q does not reference a known object", prefix, track.ObjectID)
		}
		if !animation.ValidProperty(track.Property) {
			return fmt.Errorf("%s.property: invalid value %q", prefix, track.Property)
		}
		key := track.ObjectID + "|" + string(track.Property)
		if seenTrack[key] {
			return fmt.Errorf("%s: duplicate track for (%s, %s)", prefix, track.ObjectID, track.Property)
		}
		seenTrack[key] = true

		if version >= 4 && track.BindPath != "" && !bindPathPattern.MatchString(track.BindPath) {
			return fmt.Errorf("%s.bindPath: %q does not match the bind path format", prefix, track.BindPath)
		}

		for k, kf := range track.Keyframes {
			kprefix := fmt.Sprintf("%s.keyframes[%d]", prefix, k)
			if math.IsNaN(kf.Time) || math.IsInf(kf.Time, 0) || kf.Time < 0 || kf.Time > clip.DurationSeconds {
				return fmt.Errorf("%s.time: %v out of range [0, %v]", kprefix, kf.Time, clip.DurationSeconds)
			}
			if math.IsNaN(kf.Value) || math.IsInf(kf.Value, 0) {
				return fmt.Errorf("%s.value: must be finite, got %v", kprefix, kf.Value)
			}
			if !animation.ValidInterpolation(kf.Interpolation) {
				return fmt.Errorf("%s.interpolation: invalid value %q", kprefix, kf.Interpolation)
			}
		}
	}

	seenTake := make(map[string]bool)
	for i, take := range clip.Takes {
		prefix := fmt.Sprintf("animation.takes[%d]", i)
		if take.ID == "" {
			return fmt.Errorf("%s.id: must not be empty", prefix)
		}
		if seenTake[take.ID] {
			return fmt.Errorf("%s.id: duplicate id %q", prefix, take.ID)
		}
		seenTake[take.ID] = true
		if !(take.StartTime >= 0 && take.StartTime < take.EndTime && take.EndTime <= clip.DurationSeconds) {
			return fmt.Errorf("%s: invalid range [%v, %v] for duration %v", prefix, take.StartTime, take.EndTime, clip.DurationSeconds)
		}
	}

	return nil
}

func validateVec3(v Vec3, field string) error {
	axes := [3]struct {
		name string
		val  float64
	}{{"x", v.X}, {"y", v.Y}, {"z", v.Z}}
	for _, a := range axes {
		if math.IsNaN(a.val) || math.IsInf(a.val, 0) {
			return fmt.Errorf("%s.%s: must be finite, got %v", field, a.name, a.val)
		}
	}
	return nil
}

func validateUnit(v *float64, field string) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || *v < 0 || *v > 1 {
		return fmt.Errorf("%s: %v out of range [0,1]", field, *v)
	}
	return nil
}
