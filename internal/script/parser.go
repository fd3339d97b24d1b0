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
	"strconv"
	"strings"
)

func issueAt(line int, format string, args ...any) Issue {
	return Issue{Path: fmt.Sprintf("line:%d", line), Message: fmt.Sprintf(format, args...)}
}

// Parse lexes and parses src into a Program, collecting every problem
// instead of stopping at the first one — each bad line is reported and
// skipped so the rest of the script still parses.
func Parse(src string) (Program, []Issue) {
	var prog Program
	var issues []Issue

	lines := strings.Split(src, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		text := strings.TrimSpace(stripComment(raw))
		if text == "" {
			continue
		}

		words, err := splitWords(text)
		if err != nil {
			issues = append(issues, issueAt(lineNo, "%s", err.Error()))
			continue
		}
		if len(words) == 0 {
			continue
		}

		stmt, issue := parseStatement(lineNo, words)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		prog.Statements = append(prog.Statements, *stmt)
	}

	return prog, issues
}

func parseStatement(line int, words []string) (*Statement, *Issue) {
	kw := strings.ToLower(words[0])
	switch kw {
	case "select":
		if len(words) != 2 {
			return nil, ref(issueAt(line, `expected: select "<id-or-name>"`))
		}
		return &Statement{Line: line, Kind: StmtSelect, Target: words[1]}, nil

	case "duration":
		if len(words) != 2 {
			return nil, ref(issueAt(line, "expected: duration <seconds>"))
		}
		sec, err := strconv.ParseFloat(words[1], 64)
		if err != nil {
			return nil, ref(issueAt(line, "invalid duration %q", words[1]))
		}
		return &Statement{Line: line, Kind: StmtDuration, Seconds: sec}, nil

	case "fps":
		if len(words) != 2 {
			return nil, ref(issueAt(line, "expected: fps <int>"))
		}
		fps, err := strconv.Atoi(words[1])
		if err != nil {
			return nil, ref(issueAt(line, "invalid fps %q", words[1]))
		}
		return &Statement{Line: line, Kind: StmtFPS, FPS: fps}, nil

	case "label":
		if len(words) != 2 {
			return nil, ref(issueAt(line, `expected: label "<text>"`))
		}
		return &Statement{Line: line, Kind: StmtLabel, Text: words[1]}, nil

	case "take":
		return parseTake(line, words)

	case "key":
		return parseKey(line, words)

	case "delete":
		return parseDeleteKey(line, words)

	case "bounce":
		return parseBounce(line, words)

	case "recoil":
		return parseRecoil(line, words)

	case "loop":
		if len(words) != 2 {
			return nil, ref(issueAt(line, "expected: loop on|off"))
		}
		switch strings.ToLower(words[1]) {
		case "on":
			return &Statement{Line: line, Kind: StmtLoop, LoopOn: true}, nil
		case "off":
			return &Statement{Line: line, Kind: StmtLoop, LoopOn: false}, nil
		default:
			return nil, ref(issueAt(line, "loop expects on|off, got %q", words[1]))
		}

	default:
		return nil, ref(issueAt(line, "unrecognized statement %q", words[0]))
	}
}

// take "<name>" from <start> to <end>
func parseTake(line int, words []string) (*Statement, *Issue) {
	if len(words) != 6 {
		return nil, ref(issueAt(line, `expected: take "<name>" from <start> to <end>`))
	}
	if strings.ToLower(words[2]) != "from" || strings.ToLower(words[4]) != "to" {
		return nil, ref(issueAt(line, `expected: take "<name>" from <start> to <end>`))
	}
	start, err := strconv.ParseFloat(words[3], 64)
	if err != nil {
		return nil, ref(issueAt(line, "invalid start time %q", words[3]))
	}
	end, err := strconv.ParseFloat(words[5], 64)
	if err != nil {
		return nil, ref(issueAt(line, "invalid end time %q", words[5]))
	}
	if !(start < end) {
		return nil, ref(issueAt(line, "take start (%g) must be before end (%g)", start, end))
	}
	return &Statement{Line: line, Kind: StmtTake, TakeName: words[1], TakeStart: start, TakeEnd: end}, nil
}

var validGroups = map[string]bool{"position": true, "rotation": true, "scale": true}
var validAxes = map[string]bool{"x": true, "y": true, "z": true}
var validEases = map[string]bool{"linear": true, "step": true, "easeIn": true, "easeOut": true, "easeInOut": true}

// key <group> <axis> at <time> = <value> [deg] [ease <kind>]
func parseKey(line int, words []string) (*Statement, *Issue) {
	if len(words) < 6 {
		return nil, ref(issueAt(line, "expected: key <group> <axis> at <time> = <value> [deg] [ease <kind>]"))
	}
	group := strings.ToLower(words[1])
	axis := strings.ToLower(words[2])
	if !validGroups[group] {
		return nil, ref(issueAt(line, "unknown group %q, expected position|rotation|scale", words[1]))
	}
	if !validAxes[axis] {
		return nil, ref(issueAt(line, "unknown axis %q, expected x|y|z", words[2]))
	}
	if strings.ToLower(words[3]) != "at" {
		return nil, ref(issueAt(line, `expected "at" before time, got %q`, words[3]))
	}
	t, err := strconv.ParseFloat(words[4], 64)
	if err != nil {
		return nil, ref(issueAt(line, "invalid time %q", words[4]))
	}
	if words[5] != "=" {
		return nil, ref(issueAt(line, `expected "=" before value, got %q`, words[5]))
	}
	if len(words) < 7 {
		return nil, ref(issueAt(line, "missing value after \"=\""))
	}
	v, err := strconv.ParseFloat(words[6], 64)
	if err != nil {
		return nil, ref(issueAt(line, "invalid value %q", words[6]))
	}

	stmt := &Statement{Line: line, Kind: StmtKey, Group: group, Axis: axis, Time: t, Value: v, Ease: "linear"}

	rest := words[7:]
	for i := 0; i < len(rest); i++ {
		switch strings.ToLower(rest[i]) {
		case "deg":
			stmt.Deg = true
		case "ease":
			if i+1 >= len(rest) {
				return nil, ref(issueAt(line, "missing ease kind after \"ease\""))
			}
			i++
			if !validEases[rest[i]] {
				return nil, ref(issueAt(line, "unknown ease kind %q", rest[i]))
			}
			stmt.Ease = rest[i]
		default:
			return nil, ref(issueAt(line, "unexpected token %q", rest[i]))
		}
	}
	return stmt, nil
}

// delete key <group> <axis> at <time>
func parseDeleteKey(line int, words []string) (*Statement, *Issue) {
	if len(words) != 6 || strings.ToLower(words[1]) != "key" {
		return nil, ref(issueAt(line, "expected: delete key <group> <axis> at <time>"))
	}
	group := strings.ToLower(words[2])
	axis := strings.ToLower(words[3])
	if !validGroups[group] {
		return nil, ref(issueAt(line, "unknown group %q, expected position|rotation|scale", words[2]))
	}
	if !validAxes[axis] {
		return nil, ref(issueAt(line, "unknown axis %q, expected x|y|z", words[3]))
	}
	if strings.ToLower(words[4]) != "at" {
		return nil, ref(issueAt(line, `expected "at" before time, got %q`, words[4]))
	}
	t, err := strconv.ParseFloat(words[5], 64)
	if err != nil {
		return nil, ref(issueAt(line, "invalid time %q", words[5]))
	}
	return &Statement{Line: line, Kind: StmtDeleteKey, Group: group, Axis: axis, Time: t}, nil
}

func parseRange(tok string) (float64, float64, error) {
	parts := strings.SplitN(tok, "..", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected a <t0>..<t1> range, got %q", tok)
	}
	t0, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start %q", parts[0])
	}
	t1, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range end %q", parts[1])
	}
	if !(t0 < t1) {
		return 0, 0, fmt.Errorf("range start (%g) must be before end (%g)", t0, t1)
	}
	return t0, t1, nil
}

// bounce amplitude <a> at <t0>..<t1>
func parseBounce(line int, words []string) (*Statement, *Issue) {
	if len(words) != 5 || strings.ToLower(words[1]) != "amplitude" || strings.ToLower(words[3]) != "at" {
		return nil, ref(issueAt(line, "expected: bounce amplitude <a> at <t0>..<t1>"))
	}
	a, err := strconv.ParseFloat(words[2], 64)
	if err != nil {
		return nil, ref(issueAt(line, "invalid amplitude %q", words[2]))
	}
	t0, t1, err := parseRange(words[4])
	if err != nil {
		return nil, ref(issueAt(line, "%s", err.Error()))
	}
	return &Statement{Line: line, Kind: StmtBounce, Amplitude: a, T0: t0, T1: t1}, nil
}

// recoil distance <d> at <t0>..<t1>
func parseRecoil(line int, words []string) (*Statement, *Issue) {
	if len(words) != 5 || strings.ToLower(words[1]) != "distance" || strings.ToLower(words[3]) != "at" {
		return nil, ref(issueAt(line, "expected: recoil distance <d> at <t0>..<t1>"))
	}
	d, err := strconv.ParseFloat(words[2], 64)
	if err != nil {
		return nil, ref(issueAt(line, "invalid distance %q", words[2]))
	}
	t0, t1, err := parseRange(words[4])
	if err != nil {
		return nil, ref(issueAt(line, "%s", err.Error()))
	}
	return &Statement{Line: line, Kind: StmtRecoil, Distance: d, T0: t0, T1: t1}, nil
}

func ref(i Issue) *Issue { return &i }
