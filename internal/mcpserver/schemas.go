// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package mcpserver

// JSON Schema documents for every tool's input (spec §4.7: "tool argument
// schemas are fixed; superset fields are rejected"). Each is compiled once
// at server construction and validated against before the handler runs, in
// the same compile-then-validate two-step goadesign-goa-ai's
// validatePayloadJSONAgainstSchema uses.

var schemaEmpty = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
}

var schemaProjectLoadJSON = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"json":   map[string]any{"type": "string"},
		"staged": map[string]any{"type": "boolean"},
	},
	"required":             []any{"json"},
	"additionalProperties": false,
}

var schemaScope = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"scope": map[string]any{"type": "string", "enum": []any{"", "current", "staged"}},
	},
	"additionalProperties": false,
}

var schemaCommandExecute = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"action": map[string]any{"type": "string"},
		"input":  map[string]any{"type": "object"},
	},
	"required":             []any{"action"},
	"additionalProperties": false,
}

var schemaPlanGenerate = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"goal": map[string]any{"type": "string"},
		"constraints": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"targetObjects": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"style":         map[string]any{"type": "string"},
				"durationSec":   map[string]any{"type": "number"},
				"amplitude":     map[string]any{"type": "number"},
				"loop":          map[string]any{"type": "boolean"},
			},
			"additionalProperties": false,
		},
		"scope": map[string]any{"type": "string"},
	},
	"required":             []any{"goal"},
	"additionalProperties": false,
}

var schemaPlanID = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"planId": map[string]any{"type": "string"},
	},
	"required":             []any{"planId"},
	"additionalProperties": false,
}

var schemaPlanApply = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"planId":  map[string]any{"type": "string"},
		"confirm": map[string]any{"type": "boolean"},
	},
	"required":             []any{"planId"},
	"additionalProperties": false,
}

var schemaScriptSource = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"source": map[string]any{"type": "string"},
		"scope":  map[string]any{"type": "string"},
	},
	"required":             []any{"source"},
	"additionalProperties": false,
}

var schemaScriptRun = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"source":    map[string]any{"type": "string"},
		"scope":     map[string]any{"type": "string"},
		"applyMode": map[string]any{"type": "string", "enum": []any{"previewOnly", "apply"}},
		"confirm":   map[string]any{"type": "boolean"},
	},
	"required":             []any{"source", "applyMode"},
	"additionalProperties": false,
}

var schemaSkillGenerateScript = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"goal":        map[string]any{"type": "string"},
		"target":      map[string]any{"type": "string"},
		"durationSec": map[string]any{"type": "number"},
		"amplitude":   map[string]any{"type": "number"},
	},
	"required":             []any{"goal", "target", "durationSec", "amplitude"},
	"additionalProperties": false,
}

var schemaExportBundle = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"outDir":      map[string]any{"type": "string"},
		"projectName": map[string]any{"type": "string"},
		"unity":       map[string]any{"type": "boolean"},
	},
	"required":             []any{"outDir"},
	"additionalProperties": false,
}

var schemaExportUnityPackage = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"outDir":      map[string]any{"type": "string"},
		"projectName": map[string]any{"type": "string"},
	},
	"required":             []any{"outDir"},
	"additionalProperties": false,
}

var schemaExportProjectJSON = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"outDir": map[string]any{"type": "string"},
	},
	"additionalProperties": false,
}

var schemaIOReadFile = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"path": map[string]any{"type": "string"},
	},
	"required":             []any{"path"},
	"additionalProperties": false,
}

var schemaIOWriteFile = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"path":   map[string]any{"type": "string"},
		"base64": map[string]any{"type": "string"},
	},
	"required":             []any{"path", "base64"},
	"additionalProperties": false,
}

var schemaPipelineMakeBundle = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"inJson":         map[string]any{"type": "string"},
		"inBundleBase64": map[string]any{"type": "string"},
		"goal":           map[string]any{"type": "string"},
		"takes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":  map[string]any{"type": "string"},
					"start": map[string]any{"type": "number"},
					"end":   map[string]any{"type": "number"},
				},
				"required":             []any{"name", "start", "end"},
				"additionalProperties": false,
			},
		},
		"amplitude": map[string]any{"type": "number"},
		"target": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"select": map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
		"unity":   map[string]any{"type": "boolean"},
		"outDir":  map[string]any{"type": "string"},
		"confirm": map[string]any{"type": "boolean"},
	},
	"required":             []any{"goal", "outDir"},
	"additionalProperties": false,
}
