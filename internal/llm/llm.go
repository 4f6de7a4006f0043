// Package llm defines the narrow boundary to the tool-calling language
// model runtime. The conversational fallback is written against ToolCaller
// and never against a concrete provider, so tests substitute a
// deterministic stub.
package llm

import (
	"context"
	"errors"

	"github.com/opsline/opsline/internal/agent/tools"
	"github.com/opsline/opsline/internal/session"
)

var ErrUnavailable = errors.New("llm unavailable")

// ToolCall records one tool invocation the runtime performed while
// producing its reply.
type ToolCall struct {
	Name   string
	Args   string
	Output string
	Err    string
}

// ToolCaller turns a conversation history plus a tool registry into a reply
// and the trace of tool invocations made along the way.
type ToolCaller interface {
	Complete(ctx context.Context, turns []session.Turn, registry *tools.Registry) (string, []ToolCall, error)
}
