// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package canon provides the content-addressing primitives shared by every
// hash in the system: project ids, plan ids, and proof-document hashes.
// Every hash is computed over a canonicalized JSON seed rather than a Go
// struct directly, the same discipline the teacher's plan ID generator
// uses to avoid field-ordering ambiguity.
package canon

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash/fnv"
)

// Sha256Hex returns the lowercase hex SHA-256 digest of b.
func Sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Canonicalize marshals v, then round-trips it through a UseNumber decode
// and a second marshal: encoding/json sorts the keys of every
// map[string]any it encounters at every depth, so the second pass is what
// actually produces a canonical, sorted-key JSON string. Any ordered slice
// field must already be sorted by the caller (model.Normalize does this
// for ProjectData); Canonicalize itself only normalizes map key order and
// number formatting.
func Canonicalize(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return "", err
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(canonical), nil
}

// ProjectID derives a project id ("mf_" + 8 hex) from a project's canonical
// JSON serialization.
func ProjectID(canonicalJSON string) string {
	return "mf_" + Sha256Hex([]byte(canonicalJSON))[:8]
}

// PlanID derives a plan id ("h" + 8 hex) from a canonicalized seed value.
// seed must already be built from stable, sorted fields (spec §3: scope,
// steps, baseProjectJson) — PlanID itself only marshals and hashes it.
func PlanID(seed any) (string, error) {
	b, err := json.Marshal(seed)
	if err != nil {
		return "", err
	}
	h := fnv.New32a()
	_, _ = h.Write(b)
	return "h" + hex.EncodeToString(h.Sum(nil)), nil
}
