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

	"motionforge/internal/mferr"
)

func TestParse_AcceptsWellFormedProject(t *testing.T) {
	raw, err := SerializeStable(validV4Project())
	require.NoError(t, err)

	data, err := Parse([]byte(raw), 0)
	require.NoError(t, err)
	require.Equal(t, 4, data.Version)
}

func TestParse_RejectsOversizedPayload(t *testing.T) {
	raw, err := SerializeStable(validV4Project())
	require.NoError(t, err)

	_, err = Parse([]byte(raw), 4)
	require.Error(t, err)
	require.Equal(t, mferr.MaxJSONBytes, mferr.CodeOf(err, mferr.InvalidInput))
}

func TestParse_RejectsMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"version": 4, "objects": [`), 0)
	require.Error(t, err)
	require.Equal(t, mferr.InvalidJSON, mferr.CodeOf(err, mferr.InvalidInput))
}

func TestParse_RejectsSchemaInvalidProject(t *testing.T) {
	_, err := Parse([]byte(`{"version": 99, "objects": []}`), 0)
	require.Error(t, err)
	require.Equal(t, mferr.InvalidProject, mferr.CodeOf(err, mferr.InvalidInput))
}

func TestParse_ZeroMaxBytesMeansUnbounded(t *testing.T) {
	raw, err := SerializeStable(validV4Project())
	require.NoError(t, err)

	_, err = Parse([]byte(raw), 0)
	require.NoError(t, err)
}
