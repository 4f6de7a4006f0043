// Package agent holds the conversational fallback: messages the direct
// routes cannot answer are carried to the model with per-session history
// and the tool registry attached.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/opsline/opsline/internal/agent/tools"
	"github.com/opsline/opsline/internal/llm"
	"github.com/opsline/opsline/internal/session"
)

const defaultSystemPrompt = `You are OpsLine, an assistant for an incident management team.
You answer questions about incidents, their status, priority and assignees.
Use the available tools when a question needs live data. Keep answers short
and operational. If you do not know something, say so.`

const (
	connectivityReply = "I couldn't reach the language model service. The direct incident commands still work - try \"show open incidents\" or \"incident details INC00000001\"."
	genericReply      = "Something went wrong while processing that message. Please try rephrasing, or use one of the direct incident commands."
)

// ChatResult is the fallback's answer for one user message.
type ChatResult struct {
	Reply        string
	ToolsInvoked []string
	UsedFallback bool
}

type Agent struct {
	sessions *session.Store
	caller   llm.ToolCaller
	registry *tools.Registry
	logger   *slog.Logger

	mu           sync.RWMutex
	systemPrompt string
}

func New(sessions *session.Store, caller llm.ToolCaller, registry *tools.Registry, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		sessions:     sessions,
		caller:       caller,
		registry:     registry,
		logger:       logger,
		systemPrompt: defaultSystemPrompt,
	}
}

// SetSystemPrompt replaces the instruction used to seed sessions created
// from now on. Existing histories keep the instruction they started with.
func (a *Agent) SetSystemPrompt(prompt string) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	a.mu.Lock()
	a.systemPrompt = prompt
	a.mu.Unlock()
	a.logger.Info("system prompt updated", "length", len(prompt))
}

func (a *Agent) currentSystemPrompt() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.systemPrompt
}

// Chat records the user message, asks the model for a reply and appends the
// exchange to the session history. Model failures never surface as errors:
// the caller always gets a usable reply, with connectivity problems worded
// separately from everything else.
func (a *Agent) Chat(ctx context.Context, sessionID, message string) ChatResult {
	history := a.sessions.GetOrCreate(sessionID, a.currentSystemPrompt())
	history.Append(session.RoleUser, message)

	// Tools executed during this completion scope their work to the session.
	ctx = session.WithID(ctx, sessionID)
	reply, calls, err := a.caller.Complete(ctx, history.Snapshot(), a.registry)
	if err != nil {
		text := errorReply(err)
		a.logger.Warn("fallback completion failed", "session", sessionID, "error", err)
		history.Append(session.RoleAssistant, text)
		return ChatResult{Reply: text, UsedFallback: true}
	}

	invoked := make([]string, 0, len(calls))
	seen := make(map[string]bool, len(calls))
	for _, call := range calls {
		if !seen[call.Name] {
			seen[call.Name] = true
			invoked = append(invoked, call.Name)
		}
		history.Append(session.RoleTool, fmt.Sprintf("%s(%s) -> %s", call.Name, call.Args, call.Output))
	}
	if reply == "" {
		reply = genericReply
	}
	history.Append(session.RoleAssistant, reply)
	return ChatResult{Reply: reply, ToolsInvoked: invoked, UsedFallback: true}
}

// ClearSession drops one session's history. Unknown ids are a no-op.
func (a *Agent) ClearSession(sessionID string) {
	a.sessions.Clear(sessionID)
}

func errorReply(err error) string {
	if strings.Contains(strings.ToLower(err.Error()), "connection") {
		return connectivityReply
	}
	return genericReply
}
