// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package pipeline implements mf.pipeline.makeBundle (spec §4.8): the
// composite operation that chains a staged load, per-take script
// generation/validation/run, and (on confirm) a commit + export + proof
// write, with a preview-only safety default.
package pipeline

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"motionforge/internal/bundle"
	"motionforge/internal/canon"
	"motionforge/internal/command"
	"motionforge/internal/mferr"
	"motionforge/internal/model"
	"motionforge/internal/plan"
	"motionforge/internal/runtime"
	"motionforge/internal/script"
)

// TakeSpec is one entry of Input.Takes, or one derived by deriveTakes.
type TakeSpec struct {
	Name  string  `json:"name"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Target is Input.Target: an explicit object selection by id or name.
type Target struct {
	Select string `json:"select,omitempty"`
}

// Input is mf.pipeline.makeBundle's argument shape (spec §4.8).
type Input struct {
	InJSON         *string    `json:"inJson,omitempty"`
	InBundleBase64 *string    `json:"inBundleBase64,omitempty"`
	Goal           string     `json:"goal"`
	Takes          []TakeSpec `json:"takes,omitempty"`
	Amplitude      float64    `json:"amplitude,omitempty"`
	Target         Target     `json:"target,omitempty"`
	Unity          bool       `json:"unity,omitempty"`
	OutDir         string     `json:"outDir"`
	Confirm        bool       `json:"confirm"`
}

// Tooling identifies the build that produced a Proof document.
type Tooling struct {
	MCPVersion string `json:"mcpVersion"`
	Commit     string `json:"commit"`
}

// ScriptDiffSummary is one take's contribution to Proof.DiffSummary.Scripts.
type ScriptDiffSummary struct {
	Take             string   `json:"take"`
	ObjectsTouched   []string `json:"objectsTouched"`
	KeyframesAdded   int      `json:"keyframesAdded"`
	KeyframesDeleted int      `json:"keyframesDeleted"`
}

// DiffSummary aggregates every take's script diff plus a running total.
type DiffSummary struct {
	Scripts []ScriptDiffSummary `json:"scripts"`
	Totals  ScriptDiffSummary   `json:"totals"`
}

// Outputs records the paths written on a successful (confirm=true) run.
type Outputs struct {
	ProjectJSON string `json:"projectJson,omitempty"`
	Bundle      string `json:"bundle,omitempty"`
	Manifest    string `json:"manifest,omitempty"`
	Proof       string `json:"proof,omitempty"`
}

// Proof is the canonicalized proof.json document (spec §4.8): identical
// inputs produce an identical proof, since every non-deterministic field
// (timestamps) is excluded from it entirely rather than merely excluded
// from a hash of it.
type Proof struct {
	SchemaVersion     int               `json:"schemaVersion"`
	PreviewOnly       bool              `json:"previewOnly"`
	Goal              string            `json:"goal"`
	Takes             []TakeSpec        `json:"takes"`
	InputHash         string            `json:"inputHash"`
	OutputProjectHash string            `json:"outputProjectHash,omitempty"`
	BundleHash        string            `json:"bundleHash,omitempty"`
	Tooling           Tooling           `json:"tooling"`
	DiffSummary       DiffSummary       `json:"diffSummary"`
	Outputs           Outputs           `json:"outputs"`
	Bytes             map[string]int    `json:"bytes,omitempty"`
	Warnings          []string          `json:"warnings,omitempty"`
	Errors            []string          `json:"errors,omitempty"`
}

// Result is MakeBundle's return value. OK mirrors the tool envelope's own
// ok field so callers can propagate it directly.
type Result struct {
	OK    bool  `json:"ok"`
	Proof Proof `json:"proof"`
}

// Deps bundles the collaborators MakeBundle needs, so the tool server and
// any future caller (tests, CLI) construct it the same way.
type Deps struct {
	Registry   *command.Registry
	Runtime    *runtime.Runtime
	Store      *plan.Store
	MCPVersion string
	Commit     string
}

var recipeForTakeName = map[string]string{
	"idle":   "idle-loop",
	"recoil": "recoil",
	"turn":   "turn-in-place",
}

// MakeBundle runs the full pipeline described in spec §4.8.
func MakeBundle(d Deps, in Input) (Result, error) {
	inputJSON, err := resolveInputJSON(d.Runtime, in)
	if err != nil {
		return Result{}, err
	}
	inputHash := canon.Sha256Hex([]byte(inputJSON))

	if _, err := d.Runtime.LoadProjectJSON([]byte(inputJSON), true); err != nil {
		return Result{}, err
	}

	stagedData, err := d.Runtime.StateForScope("staged")
	if err != nil {
		return Result{}, err
	}

	targetID, err := resolveTarget(stagedData.Data, in.Target)
	if err != nil {
		d.Runtime.DiscardStagedLoad()
		return Result{}, err
	}

	duration := 1.0
	if stagedData.Data.Animation != nil && stagedData.Data.Animation.DurationSeconds > 0 {
		duration = stagedData.Data.Animation.DurationSeconds
	}
	takes := deriveTakes(in.Takes, in.Goal, duration)

	amplitude := in.Amplitude
	if amplitude == 0 {
		amplitude = 0.5
	}

	var (
		scriptSummaries []ScriptDiffSummary
		runErrors       []string
		warnings        []string
	)

	for _, t := range takes {
		goalForTake := in.Goal
		if r, ok := recipeForTakeName[strings.ToLower(t.Name)]; ok {
			goalForTake = r
		}
		window := t.End - t.Start
		src, err := script.GenerateScript(goalForTake, targetID, window, amplitude)
		if err != nil {
			runErrors = append(runErrors, fmt.Sprintf("take %q: generateScript: %v", t.Name, err))
			continue
		}
		rebased, err := script.Rebase(src, targetID, window, t.Start)
		if err != nil {
			runErrors = append(runErrors, fmt.Sprintf("take %q: rebase: %v", t.Name, err))
			continue
		}
		if issues, err := script.Validate(d.Runtime, rebased, "staged"); err != nil {
			return Result{}, err
		} else if len(issues) > 0 {
			runErrors = append(runErrors, fmt.Sprintf("take %q: %d validation issue(s)", t.Name, len(issues)))
			continue
		}

		mode := script.ApplyModePreviewOnly
		if in.Confirm {
			mode = script.ApplyModeApply
		}
		res, err := script.Run(d.Registry, d.Runtime, d.Store, rebased, "staged", mode, in.Confirm)
		if err != nil {
			runErrors = append(runErrors, fmt.Sprintf("take %q: run: %v", t.Name, err))
			continue
		}
		if len(res.Issues) > 0 {
			runErrors = append(runErrors, fmt.Sprintf("take %q: %d compile issue(s)", t.Name, len(res.Issues)))
			continue
		}
		scriptSummaries = append(scriptSummaries, summarizeTakeDiff(t.Name, res))
	}

	// Step 6: persist takes metadata via a dedicated take-only script.
	if len(runErrors) == 0 {
		takesScript := renderTakesScript(takes)
		mode := script.ApplyModePreviewOnly
		if in.Confirm {
			mode = script.ApplyModeApply
		}
		if _, err := script.Run(d.Registry, d.Runtime, d.Store, takesScript, "staged", mode, in.Confirm); err != nil {
			runErrors = append(runErrors, fmt.Sprintf("persist takes: %v", err))
		}
	}

	diffSummary := buildDiffSummary(scriptSummaries)

	proof := Proof{
		SchemaVersion: 1,
		Goal:          in.Goal,
		Takes:         takes,
		InputHash:     inputHash,
		Tooling:       Tooling{MCPVersion: d.MCPVersion, Commit: d.Commit},
		DiffSummary:   diffSummary,
		Warnings:      warnings,
		Errors:        runErrors,
	}

	if !in.Confirm || len(runErrors) > 0 {
		d.Runtime.DiscardStagedLoad()
		proof.PreviewOnly = true
		return Result{OK: false, Proof: proof}, nil
	}

	if err := d.Runtime.CommitStagedLoad(); err != nil {
		return Result{}, err
	}

	finalData := d.Runtime.CurrentData()
	if in.Unity {
		finalData = model.EnsureBindPaths(finalData)
		finalJSON, err := model.SerializeStable(finalData)
		if err != nil {
			return Result{}, err
		}
		if _, err := d.Runtime.LoadProjectJSON([]byte(finalJSON), false); err != nil {
			return Result{}, err
		}
	}

	finalProjectJSON, err := d.Runtime.ExportProjectJSON()
	if err != nil {
		return Result{}, err
	}

	bundleRes, err := bundle.Build(d.Runtime.CurrentData(), bundle.Options{
		ProjectName: "MotionForge",
		Unity:       in.Unity,
		ExportedAt:  "", // left empty so the written manifest and bundleHash stay deterministic
	})
	if err != nil {
		return Result{}, err
	}
	proof.Warnings = append(proof.Warnings, bundleRes.Warnings...)

	if err := os.MkdirAll(in.OutDir, 0o755); err != nil {
		return Result{}, mferr.Wrap(mferr.PipelineMakeBundle, err, "creating outDir %q", in.OutDir)
	}

	projectJSONPath := filepath.Join(in.OutDir, "project.json")
	bundlePath := filepath.Join(in.OutDir, "motionforge-bundle.zip")
	manifestPath := filepath.Join(in.OutDir, "motionforge-manifest.json")
	proofPath := filepath.Join(in.OutDir, "proof.json")

	if err := os.WriteFile(projectJSONPath, []byte(finalProjectJSON), 0o644); err != nil {
		return Result{}, mferr.Wrap(mferr.PipelineMakeBundle, err, "writing project.json")
	}
	if err := os.WriteFile(bundlePath, bundleRes.ZipBytes, 0o644); err != nil {
		return Result{}, mferr.Wrap(mferr.PipelineMakeBundle, err, "writing bundle")
	}

	manifestJSON, err := manifestFromZip(bundleRes.ZipBytes)
	if err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(manifestPath, manifestJSON, 0o644); err != nil {
		return Result{}, mferr.Wrap(mferr.PipelineMakeBundle, err, "writing manifest")
	}

	proof.OutputProjectHash = canon.Sha256Hex([]byte(finalProjectJSON))
	proof.BundleHash = canon.Sha256Hex(bundleRes.ZipBytes)
	proof.Outputs = Outputs{
		ProjectJSON: projectJSONPath,
		Bundle:      bundlePath,
		Manifest:    manifestPath,
		Proof:       proofPath,
	}
	proof.Bytes = map[string]int{
		"projectJson": len(finalProjectJSON),
		"bundle":      len(bundleRes.ZipBytes),
	}

	proofJSON, err := canon.Canonicalize(proof)
	if err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(proofPath, []byte(proofJSON), 0o644); err != nil {
		return Result{}, mferr.Wrap(mferr.PipelineMakeBundle, err, "writing proof")
	}

	return Result{OK: true, Proof: proof}, nil
}

func resolveInputJSON(rt *runtime.Runtime, in Input) (string, error) {
	switch {
	case in.InJSON != nil:
		return *in.InJSON, nil
	case in.InBundleBase64 != nil:
		raw, err := base64.StdEncoding.DecodeString(*in.InBundleBase64)
		if err != nil {
			return "", mferr.Wrap(mferr.InvalidInput, err, "decoding inBundleBase64")
		}
		zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
		if err != nil {
			return "", mferr.Wrap(mferr.InvalidInput, err, "reading inBundleBase64 as zip")
		}
		for _, f := range zr.File {
			if f.Name != "project.json" {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return "", err
			}
			defer rc.Close()
			b, err := io.ReadAll(rc)
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
		return "", mferr.New(mferr.InvalidInput, "inBundleBase64: no project.json entry")
	default:
		return rt.ExportProjectJSON()
	}
}

func resolveTarget(data model.ProjectData, target Target) (string, error) {
	if target.Select != "" {
		for _, o := range data.Objects {
			if o.ID == target.Select || strings.EqualFold(o.Name, target.Select) {
				return o.ID, nil
			}
		}
		for _, m := range data.ModelInstances {
			if m.ID == target.Select || strings.EqualFold(m.Name, target.Select) {
				return m.ID, nil
			}
		}
	}
	if len(data.Objects) > 0 {
		return data.Objects[0].ID, nil
	}
	if len(data.ModelInstances) > 0 {
		return data.ModelInstances[0].ID, nil
	}
	return "", mferr.New(mferr.NoObjects, "project has no primitive objects or model instances")
}

// deriveTakes implements spec §4.8 step 4: explicit takes win; otherwise
// goal text is scanned for the known sub-goal keywords, each contributing
// its fixed window; with no match, a single Main take spans the clip.
func deriveTakes(explicit []TakeSpec, goal string, duration float64) []TakeSpec {
	if len(explicit) > 0 {
		return explicit
	}

	lower := strings.ToLower(goal)
	var takes []TakeSpec
	if strings.Contains(lower, "idle") {
		takes = append(takes, TakeSpec{Name: "Idle", Start: 0, End: 2})
	}
	if strings.Contains(lower, "recoil") {
		takes = append(takes, TakeSpec{Name: "Recoil", Start: 2, End: 2.4})
	}
	if strings.Contains(lower, "turn") {
		takes = append(takes, TakeSpec{Name: "Turn", Start: 0, End: 1})
	}
	if len(takes) == 0 {
		takes = append(takes, TakeSpec{Name: "Main", Start: 0, End: duration})
	}
	return takes
}

func renderTakesScript(takes []TakeSpec) string {
	var b strings.Builder
	for _, t := range takes {
		fmt.Fprintf(&b, "take %q from %g to %g\n", t.Name, t.Start, t.End)
	}
	return b.String()
}

func summarizeTakeDiff(name string, res script.RunResult) ScriptDiffSummary {
	s := ScriptDiffSummary{Take: name}
	seen := make(map[string]bool)
	for _, a := range res.Diff.Animation {
		seen[a.ObjectID] = true
		s.KeyframesAdded += a.KeyframesAdded
		s.KeyframesDeleted += a.KeyframesDeleted
	}
	for id := range seen {
		s.ObjectsTouched = append(s.ObjectsTouched, id)
	}
	sort.Strings(s.ObjectsTouched)
	return s
}

func buildDiffSummary(scripts []ScriptDiffSummary) DiffSummary {
	var totals ScriptDiffSummary
	touched := make(map[string]bool)
	for _, s := range scripts {
		totals.KeyframesAdded += s.KeyframesAdded
		totals.KeyframesDeleted += s.KeyframesDeleted
		for _, id := range s.ObjectsTouched {
			touched[id] = true
		}
	}
	for id := range touched {
		totals.ObjectsTouched = append(totals.ObjectsTouched, id)
	}
	sort.Strings(totals.ObjectsTouched)
	return DiffSummary{Scripts: scripts, Totals: totals}
}

func manifestFromZip(zipBytes []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name != "motionforge-manifest.json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, mferr.New(mferr.PipelineMakeBundle, "bundle missing motionforge-manifest.json")
}
