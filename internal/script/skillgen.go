// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package script

import (
	"fmt"
	"math"
	"strings"

	"motionforge/internal/plan"
)

// Example is one canned script mf.script.examples returns, for callers that
// want a working starting point without inventing DSL syntax from scratch.
type Example struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// Examples returns the closed set of canned scripts mf.script.examples
// serves. Each is valid input to Parse/Compile as-is against a project
// containing an object named "Target".
func Examples() []Example {
	return []Example{
		{
			Name: "bounce",
			Source: strings.Join([]string{
				`select "Target"`,
				`duration 1.2`,
				`bounce amplitude 0.8 at 0..1.2`,
				``,
			}, "\n"),
		},
		{
			Name: "idle-loop",
			Source: strings.Join([]string{
				`select "Target"`,
				`duration 2`,
				`loop on`,
				`key position y at 0 = 0 ease easeInOut`,
				`key position y at 1 = 0.15 ease easeInOut`,
				`key position y at 2 = 0 ease easeInOut`,
				``,
			}, "\n"),
		},
		{
			Name: "turn-and-label",
			Source: strings.Join([]string{
				`select "Target"`,
				`label "One full turn"`,
				`duration 1.5`,
				`key rotation y at 0 = 0 deg`,
				`key rotation y at 1.5 = 360 deg ease linear`,
				``,
			}, "\n"),
		},
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func splitProperty(p string) (group, axis string) {
	i := strings.LastIndex(p, ".")
	if i < 0 {
		return p, ""
	}
	return p[:i], p[i+1:]
}

// GenerateScript renders goal's recipe as DSL source text for targetName,
// the way mf.skill.generateScript hands a script to the pipeline for one
// take's sub-goal (spec §4.8 step 5).
func GenerateScript(goal, targetName string, durationSec, amplitude float64) (string, error) {
	tmpl, ok := plan.RecipeKeyframes(goal)
	if !ok {
		return "", fmt.Errorf("unrecognized goal %q", goal)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "select %q\n", targetName)
	fmt.Fprintf(&b, "duration %g\n", round3(durationSec))
	for _, kf := range tmpl {
		group, axis := splitProperty(string(kf.Property))
		fmt.Fprintf(&b, "key %s %s at %g = %g ease %s\n",
			group, axis,
			round3(kf.TimeFraction*durationSec),
			round3(amplitude*kf.ValueFraction),
			kf.Interpolation)
	}
	return b.String(), nil
}

// Rebase reparses src and re-emits it with its select/duration statements
// overridden and every time-bearing statement offset by offsetSec, per
// spec §4.8 step 5: "rebase the script onto absolute times (offset every
// key time by take.startTime, override select/duration)".
func Rebase(src, selectTarget string, durationSec, offsetSec float64) (string, error) {
	prog, issues := Parse(src)
	if len(issues) > 0 {
		return "", fmt.Errorf("rebase: %d issue(s) in source script", len(issues))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "select %q\n", selectTarget)
	fmt.Fprintf(&b, "duration %g\n", round3(durationSec))

	for _, stmt := range prog.Statements {
		switch stmt.Kind {
		case StmtSelect, StmtDuration:
			continue // overridden above

		case StmtKey:
			b.WriteString(fmt.Sprintf("key %s %s at %g = %g", stmt.Group, stmt.Axis, round3(stmt.Time+offsetSec), stmt.Value))
			if stmt.Deg {
				b.WriteString(" deg")
			}
			fmt.Fprintf(&b, " ease %s\n", stmt.Ease)

		case StmtDeleteKey:
			fmt.Fprintf(&b, "delete key %s %s at %g\n", stmt.Group, stmt.Axis, round3(stmt.Time+offsetSec))

		case StmtBounce:
			fmt.Fprintf(&b, "bounce amplitude %g at %g..%g\n", stmt.Amplitude, round3(stmt.T0+offsetSec), round3(stmt.T1+offsetSec))

		case StmtRecoil:
			fmt.Fprintf(&b, "recoil distance %g at %g..%g\n", stmt.Distance, round3(stmt.T0+offsetSec), round3(stmt.T1+offsetSec))

		case StmtTake:
			fmt.Fprintf(&b, "take %q from %g to %g\n", stmt.TakeName, round3(stmt.TakeStart+offsetSec), round3(stmt.TakeEnd+offsetSec))

		case StmtFPS:
			fmt.Fprintf(&b, "fps %d\n", stmt.FPS)

		case StmtLabel:
			fmt.Fprintf(&b, "label %q\n", stmt.Text)

		case StmtLoop:
			if stmt.LoopOn {
				b.WriteString("loop on\n")
			} else {
				b.WriteString("loop off\n")
			}
		}
	}
	return b.String(), nil
}
