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
	"math"

	"motionforge/internal/animation"
	"motionforge/internal/mferr"
	"motionforge/internal/model"
)

func ensureAnimation(data *model.ProjectData) *model.Clip {
	if data.Animation == nil {
		data.Animation = &model.Clip{DurationSeconds: 1}
	}
	return data.Animation
}

type insertRecord struct {
	ObjectID      string                 `json:"objectId"`
	PropertyPath  animation.Property     `json:"propertyPath"`
	Time          float64                `json:"time"`
	Value         float64                `json:"value"`
	Interpolation *animation.Interpolation `json:"interpolation"`
}

type insertRecordsInput struct {
	Records []insertRecord `json:"records"`
}

func runAnimationInsertRecords(ctx Context, raw json.RawMessage) (any, error) {
	var in insertRecordsInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "animation.insertRecords: invalid input")
	}

	data := ctx.Project()
	clip := ensureAnimation(data)

	inserted := 0
	for _, rec := range in.Records {
		if !animation.ValidProperty(rec.PropertyPath) {
			return nil, mferr.New(mferr.InvalidInput, "animation.insertRecords: unknown property %q", rec.PropertyPath)
		}
		interp := animation.InterpLinear
		if rec.Interpolation != nil {
			interp = *rec.Interpolation
		}
		if !animation.ValidInterpolation(interp) {
			return nil, mferr.New(mferr.InvalidInput, "animation.insertRecords: unknown interpolation %q", interp)
		}

		track := animation.GetOrCreateTrack(clip, rec.ObjectID, rec.PropertyPath)
		if track.BindPath == "" {
			if idx := findObjectIndex(data.Objects, rec.ObjectID); idx >= 0 {
				track.BindPath = data.Objects[idx].BindPath
			}
		}
		animation.InsertKeyframe(track, animation.Keyframe{Time: rec.Time, Value: rec.Value, Interpolation: interp})
		inserted++

		ctx.Emit(EventKeyframeAdded, map[string]any{
			"objectId": rec.ObjectID,
			"property": rec.PropertyPath,
			"time":     rec.Time,
		})
	}

	return map[string]any{"inserted": inserted}, nil
}

type removeKeysInput struct {
	Keys []animation.KeyframeRef `json:"keys"`
}

func runAnimationRemoveKeys(ctx Context, raw json.RawMessage) (any, error) {
	var in removeKeysInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "animation.removeKeys: invalid input")
	}

	data := ctx.Project()
	if data.Animation == nil {
		return map[string]any{"removed": 0}, nil
	}

	var present []animation.KeyframeRef
	for _, ref := range in.Keys {
		if keyframeExists(data.Animation, ref) {
			present = append(present, ref)
		}
	}

	animation.RemoveKeyframes(data.Animation, present)
	for _, ref := range present {
		ctx.Emit(EventKeyframeDeleted, map[string]any{
			"objectId": ref.ObjectID,
			"property": ref.Property,
			"time":     ref.Time,
		})
	}

	return map[string]any{"removed": len(present)}, nil
}

func keyframeExists(clip *model.Clip, ref animation.KeyframeRef) bool {
	for _, t := range clip.Tracks {
		if t.ObjectID != ref.ObjectID || t.Property != ref.Property {
			continue
		}
		for _, kf := range t.Keyframes {
			if math.Abs(kf.Time-ref.Time) < animation.CoalesceEpsilon {
				return true
			}
		}
	}
	return false
}

type moveKeysInput struct {
	Keys      []animation.KeyframeRef `json:"keys"`
	DeltaTime float64                 `json:"deltaTime"`
}

func runAnimationMoveKeys(ctx Context, raw json.RawMessage) (any, error) {
	var in moveKeysInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "animation.moveKeys: invalid input")
	}

	data := ctx.Project()
	if data.Animation == nil {
		return map[string]any{"moved": []any{}}, nil
	}

	moved := animation.MoveKeyframes(data.Animation, in.Keys, in.DeltaTime)
	for _, ref := range moved {
		ctx.Emit(EventKeyframeMoved, map[string]any{
			"objectId": ref.ObjectID,
			"property": ref.Property,
			"time":     ref.Time,
		})
	}

	return map[string]any{"moved": moved}, nil
}

type setDurationInput struct {
	DurationSeconds float64 `json:"durationSeconds"`
}

func runAnimationSetDuration(ctx Context, raw json.RawMessage) (any, error) {
	var in setDurationInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "animation.setDuration: invalid input")
	}
	if in.DurationSeconds <= 0 {
		return nil, mferr.New(mferr.InvalidInput, "animation.setDuration: durationSeconds must be > 0")
	}

	data := ctx.Project()
	clip := ensureAnimation(data)
	clip.DurationSeconds = in.DurationSeconds
	*clip = animation.NormalizeClip(*clip)

	ctx.Emit(EventAnimationDurationChg, map[string]any{"durationSeconds": in.DurationSeconds})
	return map[string]any{"durationSeconds": in.DurationSeconds}, nil
}

type setTakesInput struct {
	Takes []animation.Take `json:"takes"`
}

func runAnimationSetTakes(ctx Context, raw json.RawMessage) (any, error) {
	var in setTakesInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, mferr.Wrap(mferr.InvalidInput, err, "animation.setTakes: invalid input")
	}

	data := ctx.Project()
	clip := ensureAnimation(data)

	seen := make(map[string]bool, len(in.Takes))
	var valid []animation.Take
	for _, t := range in.Takes {
		if seen[t.ID] {
			continue
		}
		if !(t.StartTime >= 0 && t.StartTime < t.EndTime && t.EndTime <= clip.DurationSeconds) {
			continue
		}
		seen[t.ID] = true
		valid = append(valid, t)
	}

	clip.Takes = valid
	*clip = animation.NormalizeClip(*clip)

	ctx.Emit(EventAnimationTakesChanged, map[string]any{"count": len(clip.Takes)})
	return map[string]any{"takes": clip.Takes}, nil
}

func init() {
	Register(Action{ID: "animation.insertRecords", Run: runAnimationInsertRecords})
	Register(Action{ID: "animation.removeKeys", Run: runAnimationRemoveKeys})
	Register(Action{ID: "animation.moveKeys", Run: runAnimationMoveKeys})
	Register(Action{ID: "animation.setDuration", Run: runAnimationSetDuration})
	Register(Action{ID: "animation.setTakes", Run: runAnimationSetTakes})
}
