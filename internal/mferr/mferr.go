// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package mferr defines the canonical, stable error codes that cross every
// tool boundary as {code, message} pairs. No exception ever crosses a tool
// boundary uncaught; handlers translate into a *Error instead.
package mferr

import "fmt"

// Code is one of the closed set of canonical error codes.
type Code string

const (
	InvalidInput             Code = "MF_ERR_INVALID_INPUT"
	InvalidJSON              Code = "MF_ERR_INVALID_JSON"
	InvalidProject           Code = "MF_ERR_INVALID_PROJECT"
	MaxJSONBytes             Code = "MF_ERR_MAX_JSON_BYTES"
	UnknownAction            Code = "MF_ERR_UNKNOWN_ACTION"
	ActionDisabled           Code = "MF_ERR_ACTION_DISABLED"
	NoSelection              Code = "MF_ERR_NO_SELECTION"
	NotFound                 Code = "MF_ERR_NOT_FOUND"
	AmbiguousName            Code = "MF_ERR_AMBIGUOUS_NAME"
	ConfirmRequired          Code = "MF_ERR_CONFIRM_REQUIRED"
	NoStagedProject          Code = "MF_ERR_NO_STAGED_PROJECT"
	NothingToUndo            Code = "MF_ERR_NOTHING_TO_UNDO"
	NothingToRedo            Code = "MF_ERR_NOTHING_TO_REDO"
	PlanNotFound             Code = "MF_ERR_PLAN_NOT_FOUND"
	PlanStale                Code = "MF_ERR_PLAN_STALE"
	PlanApplyFailed          Code = "MF_ERR_PLAN_APPLY_FAILED"
	UnsupportedGoal          Code = "MF_ERR_UNSUPPORTED_GOAL"
	InvalidConstraints       Code = "MF_ERR_INVALID_CONSTRAINTS"
	EmptyScene               Code = "MF_ERR_EMPTY_SCENE"
	NoTargetObject           Code = "MF_ERR_NO_TARGET_OBJECT"
	IOMaxBytes               Code = "MF_ERR_IO_MAX_BYTES"
	NoObjects                Code = "MF_ERR_NO_OBJECTS"
	PipelineMakeBundle       Code = "MF_ERR_PIPELINE_MAKE_BUNDLE"
	HeadlessVideoUnsupported Code = "MF_ERR_HEADLESS_VIDEO_UNSUPPORTED"
	NotImplemented           Code = "MF_ERR_NOT_IMPLEMENTED"
)

// KnownCodes returns every canonical error code, in declaration order, for
// mf.capabilities (spec §4.7) to advertise the closed set up front.
func KnownCodes() []Code {
	return []Code{
		InvalidInput, InvalidJSON, InvalidProject, MaxJSONBytes, UnknownAction,
		ActionDisabled, NoSelection, NotFound, AmbiguousName, ConfirmRequired,
		NoStagedProject, NothingToUndo, NothingToRedo, PlanNotFound, PlanStale,
		PlanApplyFailed, UnsupportedGoal, InvalidConstraints, EmptyScene,
		NoTargetObject, IOMaxBytes, NoObjects, PipelineMakeBundle,
		HeadlessVideoUnsupported, NotImplemented,
	}
}

// Error is a structured error carrying a stable code and a human message.
// Handlers at the tool boundary translate every error into one of these
// before it reaches the JSON envelope.
type Error struct {
	Code    Code  `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with the given code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given code, message, and underlying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the Code from err if it (or something it wraps) is an
// *Error; otherwise it returns fallback.
func CodeOf(err error, fallback Code) Code {
	var e *Error
	if asError(err, &e) {
		return e.Code
	}
	return fallback
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
