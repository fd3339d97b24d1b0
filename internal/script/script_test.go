// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package script

import (
	"testing"

	"github.com/stretchr/testify/require"

	"motionforge/internal/command"
	"motionforge/internal/plan"
	"motionforge/internal/runtime"
)

func newTestRuntimeWithCube(t *testing.T) *runtime.Runtime {
	t.Helper()
	rt := runtime.New(command.DefaultRegistry, 0)
	_, err := rt.Execute("scene.addPrimitive", []byte(`{"type":"box","name":"Cube"}`))
	require.NoError(t, err)
	return rt
}

func TestParse_BasicProgram(t *testing.T) {
	src := `
# a comment line
select "Cube"
duration 1.5
fps 30
label "test clip"
key position y at 0 = 0
key position y at 0.75 = 1.2 ease easeOut
delete key position y at 0.75
bounce amplitude 0.5 at 0..1
recoil distance 0.3 at 0..0.5
take "Main" from 0 to 1.5
loop on
`
	prog, issues := Parse(src)
	require.Empty(t, issues)
	require.Len(t, prog.Statements, 11)
	require.Equal(t, StmtSelect, prog.Statements[0].Kind)
	require.Equal(t, "Cube", prog.Statements[0].Target)
	require.Equal(t, StmtKey, prog.Statements[5].Kind)
	require.Equal(t, "easeOut", prog.Statements[5].Ease)
}

func TestParse_UnknownStatementReportsLine(t *testing.T) {
	src := "select \"Cube\"\nbogus statement here\n"
	_, issues := Parse(src)
	require.Len(t, issues, 1)
	require.Equal(t, "line:2", issues[0].Path)
}

func TestParse_UnterminatedQuote(t *testing.T) {
	_, issues := Parse(`select "Cube`)
	require.Len(t, issues, 1)
}

func TestParse_KeyRejectsUnknownGroup(t *testing.T) {
	_, issues := Parse("key velocity y at 0 = 1")
	require.Len(t, issues, 1)
}

func TestCompile_SimpleKeyframes(t *testing.T) {
	rt := newTestRuntimeWithCube(t)
	store := plan.NewStore()

	src := "select \"obj_1\"\nduration 2\nkey position y at 0 = 0\nkey position y at 1 = 1 ease easeOut\n"
	res, err := Compile(rt, store, src, "current")
	require.NoError(t, err)
	require.Empty(t, res.Issues)

	require.Equal(t, []string{"obj_1"}, res.Plan.Summary.ObjectsTouched)
	require.Equal(t, 2, res.Plan.Summary.KeyframesToAdd)
	require.False(t, res.Plan.Safety.RequiresConfirm)
	require.Len(t, res.Plan.Steps, 3) // inspect, setDuration, insertRecords

	stored, ok := store.Get(res.Plan.PlanID)
	require.True(t, ok)
	require.Equal(t, res.Plan, stored)
}

func TestCompile_DeleteKeyRequiresConfirm(t *testing.T) {
	rt := newTestRuntimeWithCube(t)
	store := plan.NewStore()

	src := "select \"obj_1\"\ndelete key position y at 0\n"
	res, err := Compile(rt, store, src, "current")
	require.NoError(t, err)
	require.Empty(t, res.Issues)
	require.True(t, res.Plan.Safety.RequiresConfirm)
	require.Contains(t, res.Plan.Safety.Reasons, "script deletes keyframes")
}

func TestCompile_UnresolvedSelectYieldsIssue(t *testing.T) {
	rt := newTestRuntimeWithCube(t)
	store := plan.NewStore()

	src := "select \"DoesNotExist\"\n"
	res, err := Compile(rt, store, src, "current")
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	require.Equal(t, "line:1", res.Issues[0].Path)
}

func TestCompile_KeyWithoutSelectUsesFirstObject(t *testing.T) {
	rt := newTestRuntimeWithCube(t)
	store := plan.NewStore()

	src := "key position y at 0 = 0.5\n"
	res, err := Compile(rt, store, src, "current")
	require.NoError(t, err)
	require.Empty(t, res.Issues)
	require.Equal(t, []string{"obj_1"}, res.Plan.Summary.ObjectsTouched)
}

func TestCompile_BounceWindowExpandsSixteenKeyframes(t *testing.T) {
	rt := newTestRuntimeWithCube(t)
	store := plan.NewStore()

	src := "select \"obj_1\"\nbounce amplitude 1 at 0..1\n"
	res, err := Compile(rt, store, src, "current")
	require.NoError(t, err)
	require.Empty(t, res.Issues)
	require.Equal(t, 16, res.Plan.Summary.KeyframesToAdd)
}

func TestValidate_ReturnsIssuesWithoutRegisteringPlan(t *testing.T) {
	rt := newTestRuntimeWithCube(t)
	issues, err := Validate(rt, "not a real statement\n", "current")
	require.NoError(t, err)
	require.Len(t, issues, 1)
}

func TestGenerateScript_ProducesParsableSource(t *testing.T) {
	src, err := GenerateScript("bounce", "Cube", 1.2, 0.8)
	require.NoError(t, err)

	prog, issues := Parse(src)
	require.Empty(t, issues)
	require.Equal(t, StmtSelect, prog.Statements[0].Kind)
	require.Equal(t, "Cube", prog.Statements[0].Target)
}

func TestRebase_OffsetsTimesAndOverridesSelectDuration(t *testing.T) {
	src := "select \"A\"\nduration 1\nkey position y at 0 = 0\nkey position y at 1 = 1 ease easeOut\n"
	out, err := Rebase(src, "B", 5, 2)
	require.NoError(t, err)

	prog, issues := Parse(out)
	require.Empty(t, issues)
	require.Equal(t, "B", prog.Statements[0].Target)
	require.Equal(t, 5.0, prog.Statements[1].Seconds)
	require.Equal(t, 2.0, prog.Statements[2].Time)
	require.Equal(t, 3.0, prog.Statements[3].Time)
}

func TestExamples_AllParseCleanly(t *testing.T) {
	for _, ex := range Examples() {
		_, issues := Parse(ex.Source)
		require.Emptyf(t, issues, "example %q has parse issues: %v", ex.Name, issues)
	}
}

func TestRun_PreviewOnlyNeverMutatesRuntime(t *testing.T) {
	rt := newTestRuntimeWithCube(t)
	store := plan.NewStore()
	before := rt.CurrentData()

	res, err := Run(command.DefaultRegistry, rt, store, "select \"obj_1\"\nkey position y at 0 = 1\n", "current", ApplyModePreviewOnly, false)
	require.NoError(t, err)
	require.False(t, res.Applied)
	require.Len(t, res.Diff.Objects, 0)
	require.Len(t, res.Diff.Animation, 1)

	require.Equal(t, before, rt.CurrentData())
}

func TestRun_ApplyModeMutatesRuntimeAndDeletesPlan(t *testing.T) {
	rt := newTestRuntimeWithCube(t)
	store := plan.NewStore()

	res, err := Run(command.DefaultRegistry, rt, store, "select \"obj_1\"\nkey position y at 0 = 1\n", "current", ApplyModeApply, false)
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.NotNil(t, res.Apply)

	_, ok := store.Get(res.Plan.PlanID)
	require.False(t, ok)
}

func TestRun_ApplyModeRequiresConfirmWhenPlanDemandsIt(t *testing.T) {
	rt := newTestRuntimeWithCube(t)
	store := plan.NewStore()

	res, err := Run(command.DefaultRegistry, rt, store, "select \"obj_1\"\ndelete key position y at 0\n", "current", ApplyModeApply, false)
	require.Error(t, err)
	require.False(t, res.Applied)
}
