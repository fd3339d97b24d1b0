// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package bundle builds the deterministic motionforge-bundle.zip (spec
// §4.9): project.json, a manifest, and per-asset entries, all added in a
// fixed order so identical inputs always produce byte-identical zip bytes
// (exportedAt excluded).
package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"motionforge/internal/model"
)

// Manifest is motionforge-manifest.json's shape (spec §4.9).
type Manifest struct {
	Version             int            `json:"version"`
	ExportedAt          string         `json:"exportedAt"`
	ProjectVersion      int            `json:"projectVersion"`
	PrimaryModelAssetID *string        `json:"primaryModelAssetId"`
	Takes               []ManifestTake `json:"takes"`
	ClipNaming          ClipNaming     `json:"clipNaming"`
}

// ManifestTake is one entry of Manifest.Takes.
type ManifestTake struct {
	Name      string  `json:"name"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// ClipNaming records the naming convention downstream tooling uses to
// derive per-take clip names.
type ClipNaming struct {
	Pattern          string `json:"pattern"`
	FallbackTakeName string `json:"fallbackTakeName"`
}

// Options controls Build's variant (base engine vs Unity interchange).
type Options struct {
	ProjectName string
	Unity       bool
	ExportedAt  string // ISO-8601; the only field excluded from any bundle hash
}

// Result is Build's output: the zip bytes and the manifest that was written
// into them, so callers (the pipeline) can read it back without re-parsing
// the zip.
type Result struct {
	ZipBytes []byte
	Manifest Manifest
	Warnings []string
}

var sanitizeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func sanitize(s string) string {
	return sanitizeFilename.ReplaceAllString(s, "_")
}

// Build serializes data's project JSON and assets into a ZIP per spec §4.9.
// Entries are added in lexicographic id order so the byte layout is
// deterministic for a given (data, opts) pair modulo opts.ExportedAt.
func Build(data model.ProjectData, opts Options) (Result, error) {
	projectJSON, err := model.SerializeStable(data)
	if err != nil {
		return Result{}, err
	}

	manifest := buildManifest(data, opts)
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeDeflated(zw, "project.json", []byte(projectJSON)); err != nil {
		return Result{}, err
	}
	if err := writeDeflated(zw, "motionforge-manifest.json", manifestJSON); err != nil {
		return Result{}, err
	}

	var warnings []string
	assets := append([]model.Asset(nil), data.Assets...)
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })

	for _, asset := range assets {
		name := sanitize(asset.ID) + "-" + sanitize(asset.Name)
		switch asset.Source.Mode {
		case model.AssetSourceEmbedded:
			raw, decErr := base64.StdEncoding.DecodeString(asset.Source.Data)
			if decErr != nil {
				return Result{}, fmt.Errorf("asset %q: decoding embedded data: %w", asset.ID, decErr)
			}
			if err := writeDeflated(zw, "assets/"+name, raw); err != nil {
				return Result{}, err
			}
		case model.AssetSourceExternal:
			text := fmt.Sprintf("External asset reference: %s", asset.Source.Path)
			if err := writeDeflated(zw, "assets/"+name+".external.txt", []byte(text)); err != nil {
				return Result{}, err
			}
		default:
			return Result{}, fmt.Errorf("asset %q: unknown source mode %q", asset.ID, asset.Source.Mode)
		}
	}

	if opts.Unity {
		if err := writeDeflated(zw, "README_UNITY.txt", []byte(unityReadme)); err != nil {
			return Result{}, err
		}
		if data.Animation != nil {
			warnings = append(warnings, "unity export omits animation.glTF conversion; re-author clips in Unity's Animation window")
		}
	}

	if err := zw.Close(); err != nil {
		return Result{}, err
	}

	return Result{ZipBytes: buf.Bytes(), Manifest: manifest, Warnings: warnings}, nil
}

func writeDeflated(zw *zip.Writer, name string, content []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

func buildManifest(data model.ProjectData, opts Options) Manifest {
	m := Manifest{
		Version:        1,
		ExportedAt:     opts.ExportedAt,
		ProjectVersion: data.Version,
		ClipNaming: ClipNaming{
			Pattern:          fmt.Sprintf("%s_<TakeName>", strings.TrimSpace(opts.ProjectName)),
			FallbackTakeName: "Main",
		},
	}

	m.PrimaryModelAssetID = primaryModelAssetID(data)

	if data.Animation != nil && len(data.Animation.Takes) > 0 {
		for _, t := range data.Animation.Takes {
			m.Takes = append(m.Takes, ManifestTake{Name: t.Name, StartTime: t.StartTime, EndTime: t.EndTime})
		}
	} else if data.Animation != nil && data.Animation.DurationSeconds > 0 {
		m.Takes = []ManifestTake{{Name: "take_main", StartTime: 0, EndTime: data.Animation.DurationSeconds}}
	}

	return m
}

// primaryModelAssetID is the smallest-id model instance's assetId, or nil
// when the project has no model instances.
func primaryModelAssetID(data model.ProjectData) *string {
	if len(data.ModelInstances) == 0 {
		return nil
	}
	smallest := data.ModelInstances[0]
	for _, inst := range data.ModelInstances[1:] {
		if inst.ID < smallest.ID {
			smallest = inst
		}
	}
	id := smallest.AssetID
	return &id
}

const unityReadme = `MotionForge Unity Interchange Bundle
=====================================

This bundle was exported with the Unity interchange variant.

Contents:
  project.json                 canonical scene/animation data
  motionforge-manifest.json     asset and take manifest
  assets/                       embedded or referenced glTF assets

Known limitations:
  - Animation clips are NOT converted to a Unity .anim asset. Re-author
    clips in Unity's Animation window using the keyframe data in
    project.json as reference.
  - Material overrides use MotionForge's color/metallic/roughness model;
    remap manually to your render pipeline's shader if it differs.
`
