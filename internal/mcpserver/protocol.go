// SPDX-License-Identifier: AGPL-3.0-or-later

/*
MotionForge - a headless deterministic animation-editor runtime exposed as an MCP tool server.

Copyright (C) 2026 The MotionForge Authors

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

// Package mcpserver implements the MCP stdio tool surface described in
// spec §4.7: a fixed catalog of tools, each validated against a JSON
// Schema and dispatched to the runtime/plan/script/bundle/pipeline
// packages, with every result wrapped in the {ok, ...} envelope and every
// error translated to a stable mferr.Code before it reaches the wire.
//
// No example in the reference corpus imports a dedicated MCP server
// library — the closest analog (goadesign-goa-ai) hand-rolls its own MCP
// client/runtime code rather than importing one — so the stdio JSON-RPC
// line framing here is hand-rolled too, the same way the corpus does it.
package mcpserver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"motionforge/internal/mferr"
	"motionforge/pkg/logging"
)

// rpcRequest is one JSON-RPC 2.0 request line read from stdin.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// rpcResponse is one JSON-RPC 2.0 response line written to stdout.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a transport-level JSON-RPC error (malformed request,
// unknown method) — distinct from a tool's own {ok:false, error} envelope,
// which is always carried as a successful JSON-RPC result.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
)

// content is one entry of a tools/call result's content array, per MCP's
// text-content convention.
type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// callToolResult is tools/call's result shape: the envelope JSON re-encoded
// as a single text content block, with isError mirroring envelope.ok.
type callToolResult struct {
	Content []content `json:"content"`
	IsError bool      `json:"isError"`
}

// toolDescriptor is one entry of tools/list's result.
type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// listToolsResult is tools/list's result shape.
type listToolsResult struct {
	Tools []toolDescriptor `json:"tools"`
}

// callToolParams is tools/call's params shape.
type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// envelope is the {ok, ...} shape every tool handler returns. Extra is
// marshaled inline alongside ok via envelope's custom MarshalJSON, so
// callers build handler results as plain map[string]any without having to
// re-embed ok themselves.
type envelope struct {
	ok    bool
	extra map[string]any
}

func ok(fields map[string]any) envelope    { return envelope{ok: true, extra: fields} }
func failWith(code mferr.Code, msg string) envelope {
	return envelope{ok: false, extra: map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	}}
}

func failFromErr(err error) envelope {
	code := mferr.CodeOf(err, mferr.InvalidInput)
	return failWith(code, err.Error())
}

func (e envelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.extra)+1)
	for k, v := range e.extra {
		out[k] = v
	}
	out["ok"] = e.ok
	return json.Marshal(out)
}

// Serve reads one JSON-RPC request per line from r and writes one response
// per line to w, until r is exhausted or ctx-equivalent EOF. Every request
// is serviced to completion before the next is read — the runtime beneath
// this server has no internal lock because there is never a concurrent
// mutator (spec §5).
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), int(s.maxRequestBytes()))
	enc := json.NewEncoder(w)

	var writeMu sync.Mutex
	write := func(resp rpcResponse) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return enc.Encode(resp)
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.handleLine(line)
		if err := write(resp); err != nil {
			return fmt.Errorf("mcpserver: writing response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("mcpserver: reading request: %w", err)
	}
	return nil
}

func (s *Server) maxRequestBytes() int64 {
	if s.cfg.MaxJSONBytes > 0 {
		return s.cfg.MaxJSONBytes + s.cfg.MaxIOBytes
	}
	return 128 * 1024 * 1024
}

func (s *Server) handleLine(line []byte) rpcResponse {
	var req rpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: rpcParseError, Message: err.Error()}}
	}

	s.logger.Debug("mcpserver: request", logging.NewField("method", req.Method))

	switch req.Method {
	case "tools/list":
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: listToolsResult{Tools: s.listTools()}}
	case "tools/call":
		return s.handleToolsCall(req)
	default:
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: rpcMethodNotFound, Message: fmt.Sprintf("unknown method %q", req.Method)}}
	}
}

func (s *Server) handleToolsCall(req rpcRequest) rpcResponse {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: rpcInvalidParams, Message: err.Error()}}
	}

	env := s.callTool(params.Name, params.Arguments)
	envJSON, err := json.Marshal(env)
	if err != nil {
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: rpcParseError, Message: err.Error()}}
	}

	return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: callToolResult{
		Content: []content{{Type: "text", Text: string(envJSON)}},
		IsError: !env.ok,
	}}
}
