// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package animation

import (
	"math"
	"testing"
)

func TestInsertKeyframe_OrdersByTime(t *testing.T) {
	track := &Track{ObjectID: "obj_1", Property: PropPositionX}
	InsertKeyframe(track, Keyframe{Time: 1, Value: 1})
	InsertKeyframe(track, Keyframe{Time: 0, Value: 0})
	InsertKeyframe(track, Keyframe{Time: 0.5, Value: 0.5})

	want := []float64{0, 0.5, 1}
	for i, kf := range track.Keyframes {
		if kf.Time != want[i] {
			t.Fatalf("keyframe %d: got time %v, want %v", i, kf.Time, want[i])
		}
	}
}

func TestInsertKeyframe_CoalescesWithinEpsilon(t *testing.T) {
	track := &Track{ObjectID: "obj_1", Property: PropPositionX}
	InsertKeyframe(track, Keyframe{Time: 1.0, Value: 1})
	InsertKeyframe(track, Keyframe{Time: 1.0 + CoalesceEpsilon/2, Value: 2})

	if len(track.Keyframes) != 1 {
		t.Fatalf("want 1 keyframe after coalescing, got %d", len(track.Keyframes))
	}
	if track.Keyframes[0].Value != 2 {
		t.Fatalf("want inserted keyframe to win, got value %v", track.Keyframes[0].Value)
	}
}

func TestMoveKeyframes_ClampsAndCollides(t *testing.T) {
	clip := &Clip{
		DurationSeconds: 2,
		Tracks: []Track{{
			ObjectID: "obj_1",
			Property: PropPositionX,
			Keyframes: []Keyframe{
				{Time: 0, Value: 0},
				{Time: 1.9, Value: 9},
				{Time: 2, Value: 7},
			},
		}},
	}

	refs := []KeyframeRef{{ObjectID: "obj_1", Property: PropPositionX, Time: 1.9}}
	moved := MoveKeyframes(clip, refs, 1.0) // would land at 2.9, clamp to 2, collide with the key at 2

	if len(moved) != 1 || moved[0].Time != 2 {
		t.Fatalf("want clamped move to 2, got %+v", moved)
	}

	track := findTrack(clip, "obj_1", PropPositionX)
	if len(track.Keyframes) != 2 {
		t.Fatalf("want 2 keyframes, got %d", len(track.Keyframes))
	}
	if track.Keyframes[1].Value != 9 {
		t.Fatalf("want moved keyframe to replace the collided one, got value %v", track.Keyframes[1].Value)
	}
}

func TestNormalizeClip_DropsEmptyTracksAndSorts(t *testing.T) {
	clip := Clip{
		DurationSeconds: 1,
		Tracks: []Track{
			{ObjectID: "obj_2", Property: PropPositionX, Keyframes: []Keyframe{{Time: 0.5, Value: 1}}},
			{ObjectID: "obj_1", Property: PropPositionY},
			{ObjectID: "obj_1", Property: PropPositionX, Keyframes: []Keyframe{{Time: -1, Value: 0}}},
		},
	}

	out := NormalizeClip(clip)

	if len(out.Tracks) != 2 {
		t.Fatalf("want 2 tracks after dropping the empty one, got %d", len(out.Tracks))
	}
	if out.Tracks[0].ObjectID != "obj_1" || out.Tracks[1].ObjectID != "obj_2" {
		t.Fatalf("want tracks sorted by objectId, got %+v", out.Tracks)
	}
	if out.Tracks[0].Keyframes[0].Time != 0 {
		t.Fatalf("want clamped time 0, got %v", out.Tracks[0].Keyframes[0].Time)
	}
}

func TestEvaluateClip_InterpolationModes(t *testing.T) {
	clip := Clip{
		DurationSeconds: 1,
		Tracks: []Track{{
			ObjectID: "obj_1",
			Property: PropPositionY,
			Keyframes: []Keyframe{
				{Time: 0, Value: 0, Interpolation: InterpLinear},
				{Time: 1, Value: 10, Interpolation: InterpLinear},
			},
		}},
	}

	got := EvaluateClip(clip, 0.5)["obj_1"][PropPositionY]
	if math.Abs(got-5) > 1e-9 {
		t.Fatalf("linear midpoint: got %v, want 5", got)
	}

	clip.Tracks[0].Keyframes[0].Interpolation = InterpStep
	got = EvaluateClip(clip, 0.5)["obj_1"][PropPositionY]
	if got != 0 {
		t.Fatalf("step holds left value: got %v, want 0", got)
	}

	clip.Tracks[0].Keyframes[0].Interpolation = InterpEaseInOut
	got = EvaluateClip(clip, 0.5)["obj_1"][PropPositionY]
	if math.Abs(got-5) > 1e-9 {
		t.Fatalf("easeInOut midpoint (u=0.5) collapses to linear midpoint: got %v, want 5", got)
	}
}

func TestEvaluateClip_HoldsBoundaryValues(t *testing.T) {
	clip := Clip{
		DurationSeconds: 10,
		Tracks: []Track{{
			ObjectID: "obj_1",
			Property: PropPositionX,
			Keyframes: []Keyframe{
				{Time: 2, Value: 5},
				{Time: 8, Value: 9},
			},
		}},
	}

	if got := EvaluateClip(clip, 0)["obj_1"][PropPositionX]; got != 5 {
		t.Fatalf("before first keyframe: got %v, want 5", got)
	}
	if got := EvaluateClip(clip, 10)["obj_1"][PropPositionX]; got != 9 {
		t.Fatalf("after last keyframe: got %v, want 9", got)
	}
}
