// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package runtime

import "sort"

// ObjectSnapshot describes one primitive object in a Snapshot, carrying
// its resolved hierarchy parent alongside its own fields.
type ObjectSnapshot struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	GeometryType string  `json:"geometryType"`
	ParentID     *string `json:"parentId"`
}

// InstanceSnapshot describes one model instance in a Snapshot.
type InstanceSnapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	AssetID  string  `json:"assetId"`
	ParentID *string `json:"parentId"`
}

// Snapshot is the deterministic, read-only view the state.snapshot action
// and the mf.state.snapshot tool return: every list sorted by id so two
// snapshots of the same state serialize identically.
type Snapshot struct {
	Version        int                `json:"version"`
	Objects        []ObjectSnapshot   `json:"objects"`
	ModelInstances []InstanceSnapshot `json:"modelInstances"`
	AssetIDs       []string           `json:"assetIds"`
	Selection      string             `json:"selection"`
	TrackCount     int                `json:"trackCount"`
	TakeCount      int                `json:"takeCount"`
	Dirty          bool               `json:"dirty"`
}

func parentOf(hierarchy map[string]string, id string) *string {
	if p, ok := hierarchy[id]; ok {
		return &p
	}
	return nil
}

func buildSnapshot(s State, dirty bool) Snapshot {
	snap := Snapshot{Version: s.Data.Version, Selection: s.Selection, Dirty: dirty}

	for _, obj := range s.Data.Objects {
		snap.Objects = append(snap.Objects, ObjectSnapshot{
			ID:           obj.ID,
			Name:         obj.Name,
			GeometryType: string(obj.GeometryType),
			ParentID:     parentOf(s.Hierarchy, obj.ID),
		})
	}
	sort.Slice(snap.Objects, func(i, j int) bool { return snap.Objects[i].ID < snap.Objects[j].ID })

	for _, inst := range s.Data.ModelInstances {
		snap.ModelInstances = append(snap.ModelInstances, InstanceSnapshot{
			ID:       inst.ID,
			Name:     inst.Name,
			AssetID:  inst.AssetID,
			ParentID: parentOf(s.Hierarchy, inst.ID),
		})
	}
	sort.Slice(snap.ModelInstances, func(i, j int) bool { return snap.ModelInstances[i].ID < snap.ModelInstances[j].ID })

	for _, asset := range s.Data.Assets {
		snap.AssetIDs = append(snap.AssetIDs, asset.ID)
	}
	sort.Strings(snap.AssetIDs)

	if s.Data.Animation != nil {
		snap.TrackCount = len(s.Data.Animation.Tracks)
		snap.TakeCount = len(s.Data.Animation.Takes)
	}

	return snap
}
