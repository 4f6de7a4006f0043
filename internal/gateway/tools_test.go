package gateway

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/opsline/opsline/internal/session"
	"github.com/opsline/opsline/internal/store"
)

func TestCalculatorTool(t *testing.T) {
	tool := NewCalculatorTool()
	cases := []struct {
		expression string
		want       string
	}{
		{"3 * 7", "21"},
		{"12 / 48", "0.2500"},
		{"10 - 4", "6"},
		{"-3 + 5", "2"},
	}
	for _, tc := range cases {
		args, _ := json.Marshal(map[string]string{"expression": tc.expression})
		got, err := tool.Execute(context.Background(), args)
		if err != nil {
			t.Errorf("%q: %v", tc.expression, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q = %q, want %q", tc.expression, got, tc.want)
		}
	}

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"expression":"10 / 0"}`)); err == nil {
		t.Error("division by zero should error")
	}
	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"expression":"banana"}`)); err == nil {
		t.Error("nonsense input should error")
	}
}

func TestCurrentTimeTool(t *testing.T) {
	tool := NewCurrentTimeTool()
	got, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(got, "UTC") {
		t.Errorf("default output should be UTC, got %q", got)
	}

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"timezone":"Not/AZone"}`)); err == nil {
		t.Error("bad timezone should error")
	}
}

func TestWeatherTool(t *testing.T) {
	tool := NewWeatherTool()
	got, err := tool.Execute(context.Background(), json.RawMessage(`{"city":"London"}`))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(got, "London") {
		t.Errorf("output = %q", got)
	}

	unknown, err := tool.Execute(context.Background(), json.RawMessage(`{"city":"Atlantis"}`))
	if err != nil {
		t.Fatalf("unknown city should not error: %v", err)
	}
	if !strings.Contains(unknown, "No conditions on file") {
		t.Errorf("unknown city output = %q", unknown)
	}
}

func TestSearchIncidentsTool(t *testing.T) {
	tool := NewSearchIncidentsTool(&fakeCache{records: testRecords()})

	got, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"database"}`))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(got, "INC00000001") {
		t.Errorf("keyword search output = %q", got)
	}

	resolved, err := tool.Execute(context.Background(), json.RawMessage(`{"status":"Resolved"}`))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(resolved, "INC00000003") || strings.Contains(resolved, "INC00000001") {
		t.Errorf("status filter output = %q", resolved)
	}

	none, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"zzz"}`))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if none != "No incidents match." {
		t.Errorf("empty result output = %q", none)
	}
}

type fakeTaskStore struct {
	created   []store.CreateTaskInput
	listed    []store.ListTasksInput
	completed [][2]string
}

func (f *fakeTaskStore) CreateTask(_ context.Context, input store.CreateTaskInput) error {
	f.created = append(f.created, input)
	return nil
}

func (f *fakeTaskStore) ListTasks(_ context.Context, input store.ListTasksInput) ([]store.TaskRecord, error) {
	f.listed = append(f.listed, input)
	return nil, nil
}

func (f *fakeTaskStore) CompleteTask(_ context.Context, id, sessionID string) error {
	f.completed = append(f.completed, [2]string{id, sessionID})
	return nil
}

func TestTaskToolsScopeToSession(t *testing.T) {
	taskStore := &fakeTaskStore{}
	ctx := session.WithID(context.Background(), "sess-42")

	if _, err := NewCreateTaskTool(taskStore).Execute(ctx, json.RawMessage(`{"title":"check replication"}`)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(taskStore.created) != 1 || taskStore.created[0].SessionID != "sess-42" {
		t.Errorf("created = %+v, want session sess-42", taskStore.created)
	}

	if _, err := NewListTasksTool(taskStore).Execute(ctx, json.RawMessage(`{}`)); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(taskStore.listed) != 1 || taskStore.listed[0].SessionID != "sess-42" {
		t.Errorf("listed = %+v, want session sess-42", taskStore.listed)
	}

	if _, err := NewCompleteTaskTool(taskStore).Execute(ctx, json.RawMessage(`{"id":"t1"}`)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(taskStore.completed) != 1 || taskStore.completed[0] != [2]string{"t1", "sess-42"} {
		t.Errorf("completed = %+v, want [t1 sess-42]", taskStore.completed)
	}

	// Without a session in context the tools refuse instead of writing
	// globally visible rows.
	if _, err := NewCreateTaskTool(taskStore).Execute(context.Background(), json.RawMessage(`{"title":"orphan"}`)); err == nil {
		t.Error("create without a session should error")
	}
	if len(taskStore.created) != 1 {
		t.Errorf("refused create still reached the store: %+v", taskStore.created)
	}
}

func TestBuiltinRegistry(t *testing.T) {
	registry := BuiltinRegistry(&fakeCache{}, nil)
	names := registry.Names()
	for _, want := range []string{"calculator", "current_time", "incident_analysis", "search_incidents", "weather"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("registry missing %s (have %v)", want, names)
		}
	}
	if _, ok := registry.Get("create_task"); ok {
		t.Error("task tools must be skipped without a store")
	}
}
