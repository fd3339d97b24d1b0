// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package command

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"motionforge/internal/model"
)

var objectIDPattern = regexp.MustCompile(`^obj_(\d+)$`)

// nextObjectID mints the next obj_N id, one past the highest numeric suffix
// in use, so ids stay unique even after objects have been deleted.
func nextObjectID(objects []model.PrimitiveObject) string {
	max := 0
	for _, o := range objects {
		m := objectIDPattern.FindStringSubmatch(o.ID)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("obj_%d", max+1)
}

// uniqueName returns base if no existing object already uses it, otherwise
// base suffixed with the smallest " N" (N >= 2) not already taken.
func uniqueName(objects []model.PrimitiveObject, base string) string {
	taken := make(map[string]bool, len(objects))
	for _, o := range objects {
		taken[o.Name] = true
	}
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s %d", base, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// spawnPosition computes the grid position for the nth (0-indexed) object
// added to the scene: six per row, (col-2.5)*0.6 on x, fixed 0.5 on y,
// row*0.6 on z.
func spawnPosition(n int) model.Vec3 {
	col := n % 6
	row := n / 6
	return model.Vec3{X: (float64(col) - 2.5) * 0.6, Y: 0.5, Z: float64(row) * 0.6}
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func clampColor(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 0xFFFFFF:
		return 0xFFFFFF
	default:
		return c
	}
}

func findObjectIndex(objects []model.PrimitiveObject, id string) int {
	for i := range objects {
		if objects[i].ID == id {
			return i
		}
	}
	return -1
}

func findInstanceIndex(instances []model.ModelInstance, id string) int {
	for i := range instances {
		if instances[i].ID == id {
			return i
		}
	}
	return -1
}

// findByNameCI resolves name (case-insensitive) against both objects and
// model instances, returning the matched id. ok is false when there is no
// match; ambiguous is true when more than one entity shares the name.
func findByNameCI(data *model.ProjectData, name string) (id string, ok bool, ambiguous bool) {
	lower := strings.ToLower(name)
	var matches []string
	for _, o := range data.Objects {
		if strings.ToLower(o.Name) == lower {
			matches = append(matches, o.ID)
		}
	}
	for _, m := range data.ModelInstances {
		if strings.ToLower(m.Name) == lower {
			matches = append(matches, m.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", false, false
	case 1:
		return matches[0], true, false
	default:
		return "", false, true
	}
}

// descendantsBFS returns id and every descendant of id in the hierarchy,
// breadth-first, id first.
func descendantsBFS(hierarchy model.Hierarchy, id string) []string {
	out := []string{id}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		var children []string
		for childID, parentID := range hierarchy {
			if parentID == cur {
				children = append(children, childID)
			}
		}
		sort.Strings(children)
		out = append(out, children...)
		queue = append(queue, children...)
	}
	return out
}

// wouldCycle reports whether setting child's parent to newParent would
// create a cycle: true if newParent is child itself or a descendant of
// child in the current hierarchy.
func wouldCycle(hierarchy model.Hierarchy, child, newParent string) bool {
	if child == newParent {
		return true
	}
	cur := newParent
	seen := map[string]bool{}
	for cur != "" {
		if cur == child {
			return true
		}
		if seen[cur] {
			return false // already-malformed hierarchy; not this call's cycle to create
		}
		seen[cur] = true
		cur = hierarchy[cur]
	}
	return false
}

func removeObjectAt(objects []model.PrimitiveObject, idx int) []model.PrimitiveObject {
	return append(objects[:idx:idx], objects[idx+1:]...)
}

func removeInstanceAt(instances []model.ModelInstance, idx int) []model.ModelInstance {
	return append(instances[:idx:idx], instances[idx+1:]...)
}
