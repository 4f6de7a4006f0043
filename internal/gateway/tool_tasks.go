package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/opsline/opsline/internal/session"
	"github.com/opsline/opsline/internal/store"
)

// TaskStore is the slice of the sqlite store the task tools need.
type TaskStore interface {
	CreateTask(ctx context.Context, input store.CreateTaskInput) error
	ListTasks(ctx context.Context, input store.ListTasksInput) ([]store.TaskRecord, error)
	CompleteTask(ctx context.Context, id, sessionID string) error
}

// taskSessionID resolves the conversation the tool call runs inside. Tasks
// are always session-scoped, so a call with no session in context is refused.
func taskSessionID(ctx context.Context) (string, error) {
	id, ok := session.IDFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("no session attached to this request")
	}
	return id, nil
}

// CreateTaskTool implements tools.Tool for recording follow-up reminders.
type CreateTaskTool struct {
	store TaskStore
}

func NewCreateTaskTool(taskStore TaskStore) *CreateTaskTool {
	return &CreateTaskTool{store: taskStore}
}

func (t *CreateTaskTool) Name() string { return "create_task" }

func (t *CreateTaskTool) Description() string {
	return "Record a follow-up task, optionally linked to an incident id."
}

func (t *CreateTaskTool) ParametersSchema() string {
	return `{"type":"object","properties":{"title":{"type":"string"},"note":{"type":"string"},"incident_id":{"type":"string"}},"required":["title"]}`
}

func (t *CreateTaskTool) ValidateArgs(rawArgs json.RawMessage) error {
	var args createTaskArgs
	if err := strictDecodeArgs(rawArgs, &args); err != nil {
		return err
	}
	if strings.TrimSpace(args.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(args.Title) > 120 {
		return fmt.Errorf("title is too long")
	}
	return nil
}

type createTaskArgs struct {
	Title      string `json:"title"`
	Note       string `json:"note"`
	IncidentID string `json:"incident_id"`
}

func (t *CreateTaskTool) Execute(ctx context.Context, rawArgs json.RawMessage) (string, error) {
	var args createTaskArgs
	if err := strictDecodeArgs(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	sessionID, err := taskSessionID(ctx)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := t.store.CreateTask(ctx, store.CreateTaskInput{
		ID:         id,
		SessionID:  sessionID,
		Title:      args.Title,
		Note:       args.Note,
		IncidentID: strings.ToUpper(strings.TrimSpace(args.IncidentID)),
	}); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return fmt.Sprintf("Task %s recorded: %s", id, strings.TrimSpace(args.Title)), nil
}

// ListTasksTool implements tools.Tool for listing recorded follow-ups.
type ListTasksTool struct {
	store TaskStore
}

func NewListTasksTool(taskStore TaskStore) *ListTasksTool {
	return &ListTasksTool{store: taskStore}
}

func (t *ListTasksTool) Name() string { return "list_tasks" }

func (t *ListTasksTool) Description() string {
	return "List recorded follow-up tasks, optionally filtered by status (open or done)."
}

func (t *ListTasksTool) ParametersSchema() string {
	return `{"type":"object","properties":{"status":{"type":"string","enum":["open","done"]}}}`
}

func (t *ListTasksTool) Execute(ctx context.Context, rawArgs json.RawMessage) (string, error) {
	var args struct {
		Status string `json:"status"`
	}
	if err := strictDecodeArgs(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	sessionID, err := taskSessionID(ctx)
	if err != nil {
		return "", err
	}

	tasks, err := t.store.ListTasks(ctx, store.ListTasksInput{
		SessionID: sessionID,
		Status:    strings.TrimSpace(args.Status),
	})
	if err != nil {
		return "", fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return "No tasks recorded.", nil
	}
	var b strings.Builder
	for _, task := range tasks {
		fmt.Fprintf(&b, "- [%s] %s (%s", task.Status, task.Title, task.ID)
		if task.IncidentID != "" {
			fmt.Fprintf(&b, ", %s", task.IncidentID)
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// CompleteTaskTool implements tools.Tool for closing a follow-up.
type CompleteTaskTool struct {
	store TaskStore
}

func NewCompleteTaskTool(taskStore TaskStore) *CompleteTaskTool {
	return &CompleteTaskTool{store: taskStore}
}

func (t *CompleteTaskTool) Name() string { return "complete_task" }

func (t *CompleteTaskTool) Description() string {
	return "Mark a recorded follow-up task as done by its id."
}

func (t *CompleteTaskTool) ParametersSchema() string {
	return `{"type":"object","properties":{"id":{"type":"string"}},"required":["id"]}`
}

func (t *CompleteTaskTool) Execute(ctx context.Context, rawArgs json.RawMessage) (string, error) {
	var args struct {
		ID string `json:"id"`
	}
	if err := strictDecodeArgs(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	sessionID, err := taskSessionID(ctx)
	if err != nil {
		return "", err
	}
	if err := t.store.CompleteTask(ctx, args.ID, sessionID); err != nil {
		return "", fmt.Errorf("complete task: %w", err)
	}
	return fmt.Sprintf("Task %s marked done.", strings.TrimSpace(args.ID)), nil
}
