package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "opsline_test.sqlite")
	sqlStore, err := New(dbPath)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = sqlStore.Close() })
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	return sqlStore
}

func TestTaskLifecycle(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	if err := sqlStore.CreateTask(ctx, CreateTaskInput{
		ID:         "task-1",
		SessionID:  "sess-1",
		Title:      "Follow up on the database outage",
		Note:       "Check replication lag after restore",
		IncidentID: "INC00000003",
	}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	loaded, err := sqlStore.GetTask(ctx, "task-1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if loaded.Status != TaskStatusOpen {
		t.Fatalf("expected open task status, got %s", loaded.Status)
	}
	if loaded.IncidentID != "INC00000003" {
		t.Fatalf("incident id = %s", loaded.IncidentID)
	}

	if err := sqlStore.CompleteTask(ctx, "task-1", "sess-1"); err != nil {
		t.Fatalf("complete task: %v", err)
	}
	loaded, err = sqlStore.GetTask(ctx, "task-1")
	if err != nil {
		t.Fatalf("get task after complete: %v", err)
	}
	if loaded.Status != TaskStatusDone {
		t.Fatalf("expected done task status, got %s", loaded.Status)
	}

	if err := sqlStore.DeleteTask(ctx, "task-1"); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := sqlStore.GetTask(ctx, "task-1"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestListTasksFilters(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	seed := []CreateTaskInput{
		{ID: "t1", SessionID: "a", Title: "one"},
		{ID: "t2", SessionID: "a", Title: "two"},
		{ID: "t3", SessionID: "b", Title: "three"},
	}
	for _, input := range seed {
		if err := sqlStore.CreateTask(ctx, input); err != nil {
			t.Fatalf("create %s: %v", input.ID, err)
		}
	}
	if err := sqlStore.CompleteTask(ctx, "t2", "a"); err != nil {
		t.Fatalf("complete t2: %v", err)
	}

	open, err := sqlStore.ListTasks(ctx, ListTasksInput{SessionID: "a", Status: TaskStatusOpen})
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].ID != "t1" {
		t.Fatalf("open tasks = %+v", open)
	}

	all, err := sqlStore.ListTasks(ctx, ListTasksInput{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all tasks = %d, want 3", len(all))
	}

	unknown := sqlStore.CompleteTask(ctx, "missing", "a")
	if !errors.Is(unknown, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", unknown)
	}
}

func TestCompleteTaskScopedToSession(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	if err := sqlStore.CreateTask(ctx, CreateTaskInput{ID: "t1", SessionID: "a", Title: "one"}); err != nil {
		t.Fatalf("create t1: %v", err)
	}

	// Another session cannot complete session a's task.
	if err := sqlStore.CompleteTask(ctx, "t1", "b"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("cross-session complete should miss, got %v", err)
	}
	loaded, err := sqlStore.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("get t1: %v", err)
	}
	if loaded.Status != TaskStatusOpen {
		t.Fatalf("task status changed across sessions: %s", loaded.Status)
	}

	if err := sqlStore.CompleteTask(ctx, "t1", "a"); err != nil {
		t.Fatalf("owning session complete: %v", err)
	}
}
