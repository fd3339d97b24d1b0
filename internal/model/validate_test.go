// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"motionforge/internal/animation"
)

func validV4Project() ProjectData {
	return ProjectData{
		Version: 4,
		Objects: []PrimitiveObject{{
			ID: "obj_cube", Name: "Cube", BindPath: "Cube",
			GeometryType: GeometryBox, Color: 0xffffff,
			Position: Vec3{0, 0, 0}, Rotation: Vec3{0, 0, 0}, Scale: Vec3{1, 1, 1},
		}},
		Animation: &Clip{
			DurationSeconds: 2,
			Tracks: []animation.Track{{
				ObjectID: "obj_cube", Property: animation.PropPositionX, BindPath: "Cube",
				Keyframes: []animation.Keyframe{
					{Time: 0, Value: 0, Interpolation: animation.InterpLinear},
					{Time: 1, Value: 2, Interpolation: animation.InterpLinear},
				},
			}},
		},
	}
}

func TestValidate_AcceptsWellFormedV4(t *testing.T) {
	require.NoError(t, Validate(validV4Project()))
}

func TestValidate_RejectsUnknownVersion(t *testing.T) {
	require.Error(t, Validate(ProjectData{Version: 9}))
}

func TestValidate_RejectsMissingBindPathOnV4(t *testing.T) {
	p := validV4Project()
	p.Objects[0].BindPath = ""
	require.Error(t, Validate(p))
}

func TestValidate_RejectsBadBindPathFormat(t *testing.T) {
	p := validV4Project()
	p.Objects[0].BindPath = "bad path!"
	require.Error(t, Validate(p))
}

func TestValidate_RejectsColorOutOfRange(t *testing.T) {
	p := validV4Project()
	p.Objects[0].Color = 0x1000000
	require.Error(t, Validate(p))
}

func TestValidate_RejectsDuplicateObjectID(t *testing.T) {
	p := validV4Project()
	p.Objects = append(p.Objects, p.Objects[0])
	require.Error(t, Validate(p))
}

func TestValidate_RejectsKeyframeOutOfRange(t *testing.T) {
	p := validV4Project()
	p.Animation.Tracks[0].Keyframes[0].Time = 99
	require.Error(t, Validate(p))
}

func TestValidate_RejectsUnknownInterpolation(t *testing.T) {
	p := validV4Project()
	p.Animation.Tracks[0].Keyframes[0].Interpolation = "bogus"
	require.Error(t, Validate(p))
}

func TestValidate_RejectsDanglingAssetReference(t *testing.T) {
	p := validV4Project()
	p.Version = 4
	p.ModelInstances = []ModelInstance{{ID: "inst_1", BindPath: "Inst", AssetID: "missing"}}
	require.Error(t, Validate(p))
}

func TestValidate_AcceptsValidTakeRanges(t *testing.T) {
	p := validV4Project()
	p.Animation.Takes = []animation.Take{{ID: "t1", Name: "Main", StartTime: 0, EndTime: 2}}
	require.NoError(t, Validate(p))
}

func TestValidate_RejectsInvertedTakeRange(t *testing.T) {
	p := validV4Project()
	p.Animation.Takes = []animation.Take{{ID: "t1", Name: "Main", StartTime: 1.5, EndTime: 1}}
	require.Error(t, Validate(p))
}
