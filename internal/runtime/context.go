// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package runtime

import (
	"motionforge/internal/command"
	"motionforge/internal/model"
)

// execContext is the command.Context a single Execute call sees: the live
// state it may mutate, and an Emit that appends to the runtime's shared
// event log under the runtime's monotonic sequence counter.
type execContext struct {
	state   *State
	events  *[]command.Event
	nextSeq func() int
}

var _ command.Context = (*execContext)(nil)

func (c *execContext) Project() *model.ProjectData { return &c.state.Data }
func (c *execContext) Hierarchy() model.Hierarchy  { return c.state.Hierarchy }
func (c *execContext) Selection() string           { return c.state.Selection }
func (c *execContext) SetSelection(id string)      { c.state.Selection = id }

func (c *execContext) Emit(eventType command.EventType, payload any) {
	*c.events = append(*c.events, command.Event{Seq: c.nextSeq(), Type: eventType, Payload: payload})
}
