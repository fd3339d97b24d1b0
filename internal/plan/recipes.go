// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package plan

import "motionforge/internal/animation"

// keyframeTemplate is one row of a recipe's fixed shape, expressed as a
// fraction of the plan's duration and a fraction of its amplitude so the
// same template scales with both.
type keyframeTemplate struct {
	Property      animation.Property
	TimeFraction  float64
	ValueFraction float64
	Interpolation animation.Interpolation
}

// recipe is one entry of the closed set of recognized goals.
type recipe struct {
	Name               string
	DefaultDurationSec float64
	DefaultAmplitude   float64
	LoopFriendly       bool
	Keyframes          []keyframeTemplate
}

// styleMultipliers maps a requested style to an amplitude scale. An
// unrecognized style (including the empty string) scales by 1.0.
var styleMultipliers = map[string]float64{
	"snappy":    1.2,
	"realistic": 0.8,
	"cartoony":  1.5,
	"cinematic": 0.65,
}

func styleMultiplier(style string) float64 {
	if m, ok := styleMultipliers[style]; ok {
		return m
	}
	return 1.0
}

// KeyframeTemplate is keyframeTemplate's exported alias, for callers (the
// script compiler's bounce/recoil helpers) that expand a recipe's shape
// scoped to an explicit time window instead of a whole-clip duration.
type KeyframeTemplate = keyframeTemplate

// RecipeKeyframes returns name's keyframe template rows and whether name is
// a recognized recipe.
func RecipeKeyframes(name string) ([]KeyframeTemplate, bool) {
	r, ok := recipes[name]
	if !ok {
		return nil, false
	}
	return r.Keyframes, true
}

// recipes is the closed set of recognized animation goals. Fractions,
// amplitudes, and axes below are this implementation's own reproduction of
// the reference recipes' shapes, chosen to be physically plausible for
// each named principle; the rest are this project's own fill-in (see
// DESIGN.md). Bounce's position.y arc (five beats: rest, peak, impact,
// smaller peak, rest) is the fixed shape called out by spec — a bounce
// without squash-and-stretch reads as a rigid ball, so the template pairs
// that arc with scale.y stretch/squash at the same five beats plus a
// scale.x/scale.z squash widen at the three ground-contact beats, 16
// keyframe rows total for one target (spec §8 scenario 2).
var recipes = map[string]recipe{
	"bounce": {
		Name:               "bounce",
		DefaultDurationSec: 1.2,
		DefaultAmplitude:   0.8,
		LoopFriendly:       true,
		Keyframes: []keyframeTemplate{
			{Property: animation.PropPositionY, TimeFraction: 0.00, ValueFraction: 0.00, Interpolation: animation.InterpLinear},
			{Property: animation.PropPositionY, TimeFraction: 0.22, ValueFraction: 1.00, Interpolation: animation.InterpEaseOut},
			{Property: animation.PropPositionY, TimeFraction: 0.46, ValueFraction: 0.00, Interpolation: animation.InterpEaseIn},
			{Property: animation.PropPositionY, TimeFraction: 0.70, ValueFraction: 0.45, Interpolation: animation.InterpEaseOut},
			{Property: animation.PropPositionY, TimeFraction: 1.00, ValueFraction: 0.00, Interpolation: animation.InterpEaseIn},

			{Property: animation.PropScaleY, TimeFraction: 0.00, ValueFraction: -0.30, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropScaleY, TimeFraction: 0.22, ValueFraction: 0.25, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropScaleY, TimeFraction: 0.46, ValueFraction: -0.30, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropScaleY, TimeFraction: 0.70, ValueFraction: 0.15, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropScaleY, TimeFraction: 1.00, ValueFraction: -0.20, Interpolation: animation.InterpEaseInOut},

			{Property: animation.PropScaleX, TimeFraction: 0.00, ValueFraction: 0.20, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropScaleX, TimeFraction: 0.46, ValueFraction: 0.30, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropScaleX, TimeFraction: 1.00, ValueFraction: 0.15, Interpolation: animation.InterpEaseInOut},

			{Property: animation.PropScaleZ, TimeFraction: 0.00, ValueFraction: 0.20, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropScaleZ, TimeFraction: 0.46, ValueFraction: 0.30, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropScaleZ, TimeFraction: 1.00, ValueFraction: 0.15, Interpolation: animation.InterpEaseInOut},
		},
	},
	"anticipation-and-hit": {
		Name:               "anticipation-and-hit",
		DefaultDurationSec: 0.6,
		DefaultAmplitude:   0.5,
		LoopFriendly:       false,
		Keyframes: []keyframeTemplate{
			{Property: animation.PropPositionZ, TimeFraction: 0.00, ValueFraction: 0.00, Interpolation: animation.InterpLinear},
			{Property: animation.PropPositionZ, TimeFraction: 0.35, ValueFraction: -0.40, Interpolation: animation.InterpEaseOut},
			{Property: animation.PropPositionZ, TimeFraction: 0.55, ValueFraction: 1.00, Interpolation: animation.InterpEaseIn},
			{Property: animation.PropPositionZ, TimeFraction: 0.75, ValueFraction: 0.85, Interpolation: animation.InterpEaseOut},
			{Property: animation.PropPositionZ, TimeFraction: 1.00, ValueFraction: 1.00, Interpolation: animation.InterpEaseInOut},
		},
	},
	"idle-loop": {
		Name:               "idle-loop",
		DefaultDurationSec: 2.0,
		DefaultAmplitude:   0.2,
		LoopFriendly:       true,
		Keyframes: []keyframeTemplate{
			{Property: animation.PropPositionY, TimeFraction: 0.0, ValueFraction: 0.00, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropPositionY, TimeFraction: 0.5, ValueFraction: 0.75, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropPositionY, TimeFraction: 1.0, ValueFraction: 0.00, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropRotationY, TimeFraction: 0.0, ValueFraction: 0.00, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropRotationY, TimeFraction: 0.5, ValueFraction: 0.25, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropRotationY, TimeFraction: 1.0, ValueFraction: 0.00, Interpolation: animation.InterpEaseInOut},
		},
	},
	"camera-dolly": {
		Name:               "camera-dolly",
		DefaultDurationSec: 3.0,
		DefaultAmplitude:   1.5,
		LoopFriendly:       false,
		Keyframes: []keyframeTemplate{
			{Property: animation.PropPositionZ, TimeFraction: 0.0, ValueFraction: 0.00, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropPositionZ, TimeFraction: 0.5, ValueFraction: 0.60, Interpolation: animation.InterpEaseInOut},
			{Property: animation.PropPositionZ, TimeFraction: 1.0, ValueFraction: 1.00, Interpolation: animation.InterpEaseInOut},
		},
	},
	"turn-in-place": {
		Name:               "turn-in-place",
		DefaultDurationSec: 1.5,
		DefaultAmplitude:   6.283185307179586, // 2*pi: one full turn at fraction 1.0
		LoopFriendly:       true,
		Keyframes: []keyframeTemplate{
			{Property: animation.PropRotationY, TimeFraction: 0.0, ValueFraction: 0.0, Interpolation: animation.InterpLinear},
			{Property: animation.PropRotationY, TimeFraction: 0.5, ValueFraction: 0.5, Interpolation: animation.InterpLinear},
			{Property: animation.PropRotationY, TimeFraction: 1.0, ValueFraction: 1.0, Interpolation: animation.InterpLinear},
		},
	},
	"recoil": {
		Name:               "recoil",
		DefaultDurationSec: 0.5,
		DefaultAmplitude:   0.6,
		LoopFriendly:       false,
		Keyframes: []keyframeTemplate{
			{Property: animation.PropPositionZ, TimeFraction: 0.00, ValueFraction: 0.00, Interpolation: animation.InterpLinear},
			{Property: animation.PropPositionZ, TimeFraction: 0.15, ValueFraction: -1.00, Interpolation: animation.InterpEaseOut},
			{Property: animation.PropPositionZ, TimeFraction: 0.40, ValueFraction: -0.20, Interpolation: animation.InterpEaseIn},
			{Property: animation.PropPositionZ, TimeFraction: 1.00, ValueFraction: 0.00, Interpolation: animation.InterpEaseInOut},
		},
	},
}

// recipeNames is the sorted, closed list of goal names plan.generate
// recognizes.
var recipeNames = []string{
	"anticipation-and-hit",
	"bounce",
	"camera-dolly",
	"idle-loop",
	"recoil",
	"turn-in-place",
}
