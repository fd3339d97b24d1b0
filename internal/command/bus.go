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

// Execute looks up actionID in reg, gates it through IsEnabled, and runs it
// against ctx. An unknown action fails with MF_ERR_UNKNOWN_ACTION; a gated
// action fails with the code IsEnabled supplied, or MF_ERR_ACTION_DISABLED
// if it left the code blank.
//
// The caller (the runtime's execute) is responsible for fingerprinting
// Project() before and after this call to decide whether to push an undo
// entry, and for collecting whatever events ctx.Emit recorded during the
// call — Execute itself is oblivious to undo and event numbering.
func Execute(reg *Registry, ctx Context, actionID string, input json.RawMessage) (any, error) {
	action, ok := reg.Get(actionID)
	if !ok {
		return nil, mferr.New(mferr.UnknownAction, "unknown action %q", actionID)
	}

	if action.IsEnabled != nil {
		enabled, code := action.IsEnabled(ctx, input)
		if !enabled {
			if code == "" {
				code = mferr.ActionDisabled
			}
			return nil, mferr.New(code, "action %q is disabled", actionID)
		}
	}

	return action.Run(ctx, input)
}
