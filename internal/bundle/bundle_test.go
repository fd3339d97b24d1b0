// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"motionforge/internal/animation"
	"motionforge/internal/model"
)

func sampleProject() model.ProjectData {
	return model.ProjectData{
		Version: 4,
		Objects: []model.PrimitiveObject{
			{ID: "obj_1", Name: "Cube", GeometryType: model.GeometryBox, BindPath: "Cube"},
		},
		ModelInstances: []model.ModelInstance{
			{ID: "inst_2", Name: "Robot", AssetID: "asset_b", BindPath: "Robot"},
			{ID: "inst_1", Name: "Drone", AssetID: "asset_a", BindPath: "Drone"},
		},
		Assets: []model.Asset{
			{ID: "asset_a", Name: "drone.gltf", Type: "gltf", Source: model.AssetSource{
				Mode: model.AssetSourceEmbedded, Data: base64.StdEncoding.EncodeToString([]byte("glTF-bytes")), FileName: "drone.gltf",
			}},
			{ID: "asset_b", Name: "robot arm.gltf", Type: "gltf", Source: model.AssetSource{
				Mode: model.AssetSourceExternal, Path: "/srv/models/robot.gltf",
			}},
		},
		Animation: &animation.Clip{
			DurationSeconds: 2,
			Takes: []animation.Take{
				{ID: "take_1", Name: "Intro", StartTime: 0, EndTime: 1},
			},
		},
	}
}

func TestBuild_ProducesExpectedEntries(t *testing.T) {
	res, err := Build(sampleProject(), Options{ProjectName: "Demo", ExportedAt: "2026-01-01T00:00:00Z"})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(res.ZipBytes), int64(len(res.ZipBytes)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	require.Contains(t, names, "project.json")
	require.Contains(t, names, "motionforge-manifest.json")
	require.Contains(t, names, "assets/asset_a-drone.gltf")
	require.Contains(t, names, "assets/asset_b-robot_arm.gltf.external.txt")
	require.NotContains(t, names, "README_UNITY.txt")
}

func TestBuild_PrimaryModelAssetIsSmallestInstanceID(t *testing.T) {
	res, err := Build(sampleProject(), Options{ProjectName: "Demo"})
	require.NoError(t, err)
	require.NotNil(t, res.Manifest.PrimaryModelAssetID)
	require.Equal(t, "asset_a", *res.Manifest.PrimaryModelAssetID)
}

func TestBuild_TakesFromClip(t *testing.T) {
	res, err := Build(sampleProject(), Options{ProjectName: "Demo"})
	require.NoError(t, err)
	require.Len(t, res.Manifest.Takes, 1)
	require.Equal(t, "Intro", res.Manifest.Takes[0].Name)
}

func TestBuild_SynthesizesMainTakeWhenClipHasNoTakes(t *testing.T) {
	data := sampleProject()
	data.Animation.Takes = nil
	res, err := Build(data, Options{ProjectName: "Demo"})
	require.NoError(t, err)
	require.Len(t, res.Manifest.Takes, 1)
	require.Equal(t, "take_main", res.Manifest.Takes[0].Name)
	require.Equal(t, 2.0, res.Manifest.Takes[0].EndTime)
}

func TestBuild_UnityVariantAddsReadmeAndWarnsOnAnimation(t *testing.T) {
	res, err := Build(sampleProject(), Options{ProjectName: "Demo", Unity: true})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(res.ZipBytes), int64(len(res.ZipBytes)))
	require.NoError(t, err)
	var found bool
	for _, f := range zr.File {
		if f.Name == "README_UNITY.txt" {
			found = true
		}
	}
	require.True(t, found)
	require.Len(t, res.Warnings, 1)
}

func TestBuild_DeterministicAcrossRuns(t *testing.T) {
	opts := Options{ProjectName: "Demo", ExportedAt: "2026-01-01T00:00:00Z"}
	a, err := Build(sampleProject(), opts)
	require.NoError(t, err)
	b, err := Build(sampleProject(), opts)
	require.NoError(t, err)
	require.Equal(t, a.ZipBytes, b.ZipBytes)
}

func TestBuild_EntriesInLexicographicIDOrder(t *testing.T) {
	res, err := Build(sampleProject(), Options{ProjectName: "Demo"})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(res.ZipBytes), int64(len(res.ZipBytes)))
	require.NoError(t, err)
	var assetNames []string
	for _, f := range zr.File {
		if len(f.Name) > 7 && f.Name[:7] == "assets/" {
			assetNames = append(assetNames, f.Name)
		}
	}
	require.Equal(t, []string{"assets/asset_a-drone.gltf", "assets/asset_b-robot_arm.gltf.external.txt"}, assetNames)
}

func TestBuild_ManifestRoundTripsAsJSON(t *testing.T) {
	res, err := Build(sampleProject(), Options{ProjectName: "Demo"})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(res.ZipBytes), int64(len(res.ZipBytes)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "motionforge-manifest.json" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		var m Manifest
		require.NoError(t, json.NewDecoder(rc).Decode(&m))
		rc.Close()
		require.Equal(t, 1, m.Version)
	}
}
