// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package model

import (
	"encoding/json"

	"motionforge/internal/mferr"
)

// Parse decodes and validates a project JSON payload. It fails with
// MaxJSONBytes if the payload exceeds maxBytes, InvalidJSON on a parse
// failure, and InvalidProject (carrying the validator's message) otherwise.
// Parse does not migrate; callers needing the latest schema call
// MigrateToLatest afterward.
func Parse(raw []byte, maxBytes int64) (ProjectData, error) {
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return ProjectData{}, mferr.New(mferr.MaxJSONBytes, "project JSON is %d bytes, exceeds limit %d", len(raw), maxBytes)
	}

	var data ProjectData
	if err := json.Unmarshal(raw, &data); err != nil {
		return ProjectData{}, mferr.Wrap(mferr.InvalidJSON, err, "failed to parse project JSON")
	}

	if err := Validate(data); err != nil {
		return ProjectData{}, mferr.Wrap(mferr.InvalidProject, err, "%s", err.Error())
	}

	return data, nil
}
