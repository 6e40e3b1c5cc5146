package domain

import (
	"context"
	"encoding/json"
)

// ToolSchema describes a tool for the LLM function-calling protocol.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolResult is the outcome of executing a tool.
//
// Remote-call failures (auth, timeout, server error, malformed response) are
// reported here with IsError=true and a single-line message prefixed with the
// tool name, so the agent loop can show that text to the model instead of
// crashing.
// Argument-shape problems never end up in a ToolResult; they come back as a
// *ValidationError from Execute.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id,omitempty"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error"`
}

// AsyncResult is what an ExecuteAsync channel delivers: the same pair a
// synchronous Execute call would have returned.
type AsyncResult struct {
	Result *ToolResult
	Err    error
}

// Tool is the interface every tool must implement.
type Tool interface {
	Name() string
	Description() string
	Schema() ToolSchema

	// Execute runs the tool synchronously. The returned error is reserved
	// for caller bugs (invalid params); remote failures are reported inside
	// the ToolResult.
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)

	// ExecuteAsync runs the same pipeline without blocking the caller. The
	// returned channel is buffered and delivers exactly one AsyncResult,
	// identical to what Execute would have produced for the same input.
	ExecuteAsync(ctx context.Context, params json.RawMessage) <-chan AsyncResult
}
