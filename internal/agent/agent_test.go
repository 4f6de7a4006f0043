package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/opsline/opsline/internal/agent/tools"
	"github.com/opsline/opsline/internal/llm"
	"github.com/opsline/opsline/internal/session"
)

type stubCaller struct {
	reply string
	calls []llm.ToolCall
	err   error

	gotTurns []session.Turn
}

func (s *stubCaller) Complete(_ context.Context, turns []session.Turn, _ *tools.Registry) (string, []llm.ToolCall, error) {
	s.gotTurns = turns
	return s.reply, s.calls, s.err
}

func newTestAgent(caller llm.ToolCaller) *Agent {
	return New(session.NewStore(8), caller, tools.NewRegistry(), nil)
}

func TestChatAppendsHistory(t *testing.T) {
	caller := &stubCaller{reply: "There are three open incidents."}
	a := newTestAgent(caller)

	result := a.Chat(context.Background(), "s1", "what's open?")
	if result.Reply != "There are three open incidents." {
		t.Errorf("reply = %q", result.Reply)
	}
	if !result.UsedFallback {
		t.Error("UsedFallback should be true")
	}

	// The model must have seen the seeded system turn plus the user message.
	if len(caller.gotTurns) != 2 {
		t.Fatalf("turns sent = %d, want 2", len(caller.gotTurns))
	}
	if caller.gotTurns[0].Role != session.RoleSystem {
		t.Errorf("first turn role = %q, want system", caller.gotTurns[0].Role)
	}
	if caller.gotTurns[1].Content != "what's open?" {
		t.Errorf("user turn = %q", caller.gotTurns[1].Content)
	}

	// Second message on the same session carries the prior exchange.
	a.Chat(context.Background(), "s1", "and critical ones?")
	if len(caller.gotTurns) != 4 {
		t.Fatalf("turns sent = %d, want 4", len(caller.gotTurns))
	}
	if caller.gotTurns[2].Role != session.RoleAssistant {
		t.Errorf("turn 2 role = %q, want assistant", caller.gotTurns[2].Role)
	}
}

func TestChatRecordsToolInvocations(t *testing.T) {
	caller := &stubCaller{
		reply: "Done.",
		calls: []llm.ToolCall{{Name: "incident_search", Args: `{"q":"open"}`, Output: "3 records"}},
	}
	a := newTestAgent(caller)

	result := a.Chat(context.Background(), "s1", "search for open incidents")
	if len(result.ToolsInvoked) != 1 || result.ToolsInvoked[0] != "incident_search" {
		t.Errorf("ToolsInvoked = %v", result.ToolsInvoked)
	}

	a.Chat(context.Background(), "s1", "thanks")
	var sawTool bool
	for _, turn := range caller.gotTurns {
		if turn.Role == session.RoleTool && strings.Contains(turn.Content, "incident_search") {
			sawTool = true
		}
	}
	if !sawTool {
		t.Error("tool invocation was not recorded in the history")
	}
}

func TestChatDeduplicatesToolNames(t *testing.T) {
	caller := &stubCaller{
		reply: "Done.",
		calls: []llm.ToolCall{
			{Name: "search_incidents", Args: `{"q":"open"}`, Output: "2 records"},
			{Name: "search_incidents", Args: `{"q":"critical"}`, Output: "1 record"},
			{Name: "calculator", Args: `{"expression":"2+1"}`, Output: "3"},
		},
	}
	a := newTestAgent(caller)

	result := a.Chat(context.Background(), "s1", "how many are open vs critical?")
	want := []string{"search_incidents", "calculator"}
	if len(result.ToolsInvoked) != len(want) {
		t.Fatalf("ToolsInvoked = %v, want %v", result.ToolsInvoked, want)
	}
	for index, name := range want {
		if result.ToolsInvoked[index] != name {
			t.Fatalf("ToolsInvoked = %v, want %v", result.ToolsInvoked, want)
		}
	}

	// Every call still lands in the history, duplicates included.
	a.Chat(context.Background(), "s1", "thanks")
	var toolTurns int
	for _, turn := range caller.gotTurns {
		if turn.Role == session.RoleTool {
			toolTurns++
		}
	}
	if toolTurns != 3 {
		t.Errorf("tool turns in history = %d, want 3", toolTurns)
	}
}

func TestChatConnectivityFailure(t *testing.T) {
	caller := &stubCaller{err: errors.New("dial tcp 127.0.0.1:11434: connection refused")}
	a := newTestAgent(caller)

	result := a.Chat(context.Background(), "s1", "hello")
	if !strings.Contains(result.Reply, "couldn't reach") {
		t.Errorf("expected connectivity wording, got %q", result.Reply)
	}
	if len(result.ToolsInvoked) != 0 {
		t.Errorf("no tools should be reported on failure, got %v", result.ToolsInvoked)
	}
}

func TestChatGenericFailure(t *testing.T) {
	caller := &stubCaller{err: errors.New("model rejected the request")}
	a := newTestAgent(caller)

	result := a.Chat(context.Background(), "s1", "hello")
	if result.Reply != genericReply {
		t.Errorf("reply = %q, want generic template", result.Reply)
	}

	// The failure reply still lands in the history so the conversation
	// stays coherent on the next turn.
	a.Chat(context.Background(), "s1", "again")
	if len(caller.gotTurns) != 4 {
		t.Fatalf("turns sent = %d, want 4", len(caller.gotTurns))
	}
}

func TestSetSystemPromptAffectsNewSessionsOnly(t *testing.T) {
	caller := &stubCaller{reply: "ok"}
	a := newTestAgent(caller)

	a.Chat(context.Background(), "old", "hi")
	seeded := caller.gotTurns[0].Content

	a.SetSystemPrompt("You are a terse pager bot.")
	a.Chat(context.Background(), "old", "hi again")
	if caller.gotTurns[0].Content != seeded {
		t.Error("existing session's system turn changed")
	}

	a.Chat(context.Background(), "new", "hi")
	if caller.gotTurns[0].Content != "You are a terse pager bot." {
		t.Errorf("new session system turn = %q", caller.gotTurns[0].Content)
	}
}

func TestClearSession(t *testing.T) {
	caller := &stubCaller{reply: "ok"}
	a := newTestAgent(caller)

	a.Chat(context.Background(), "s1", "first")
	a.ClearSession("s1")
	a.Chat(context.Background(), "s1", "second")
	if len(caller.gotTurns) != 2 {
		t.Fatalf("turns sent after clear = %d, want 2", len(caller.gotTurns))
	}
}
