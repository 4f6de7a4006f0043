package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrTaskNotFound = errors.New("task not found")

const (
	TaskStatusOpen = "open"
	TaskStatusDone = "done"
)

type TaskRecord struct {
	ID         string
	SessionID  string
	Title      string
	Note       string
	IncidentID string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreateTaskInput struct {
	ID         string
	SessionID  string
	Title      string
	Note       string
	IncidentID string
}

type ListTasksInput struct {
	SessionID string
	Status    string
	Limit     int
}

func (s *Store) CreateTask(ctx context.Context, input CreateTaskInput) error {
	nowUnix := time.Now().UTC().Unix()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tasks (id, session_id, title, note, incident_id, status, created_at_unix, updated_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		input.ID,
		input.SessionID,
		strings.TrimSpace(input.Title),
		nullIfEmpty(strings.TrimSpace(input.Note)),
		nullIfEmpty(strings.TrimSpace(input.IncidentID)),
		TaskStatusOpen,
		nowUnix,
		nowUnix,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) ListTasks(ctx context.Context, input ListTasksInput) ([]TaskRecord, error) {
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `SELECT id, session_id, title, COALESCE(note, ''), COALESCE(incident_id, ''), status,
		created_at_unix, updated_at_unix FROM tasks`
	conditions := []string{}
	args := []any{}
	if input.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, input.SessionID)
	}
	if input.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, input.Status)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at_unix DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []TaskRecord{}
	for rows.Next() {
		var task TaskRecord
		var createdUnix, updatedUnix int64
		if err := rows.Scan(&task.ID, &task.SessionID, &task.Title, &task.Note, &task.IncidentID,
			&task.Status, &createdUnix, &updatedUnix); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		task.CreatedAt = time.Unix(createdUnix, 0).UTC()
		task.UpdatedAt = time.Unix(updatedUnix, 0).UTC()
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (TaskRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return TaskRecord{}, ErrTaskNotFound
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, session_id, title, COALESCE(note, ''), COALESCE(incident_id, ''), status,
			created_at_unix, updated_at_unix FROM tasks WHERE id = ?`,
		id,
	)
	var task TaskRecord
	var createdUnix, updatedUnix int64
	err := row.Scan(&task.ID, &task.SessionID, &task.Title, &task.Note, &task.IncidentID,
		&task.Status, &createdUnix, &updatedUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return TaskRecord{}, ErrTaskNotFound
	}
	if err != nil {
		return TaskRecord{}, fmt.Errorf("get task: %w", err)
	}
	task.CreatedAt = time.Unix(createdUnix, 0).UTC()
	task.UpdatedAt = time.Unix(updatedUnix, 0).UTC()
	return task, nil
}

// CompleteTask marks a task done. A non-empty sessionID restricts the match
// to that session's tasks.
func (s *Store) CompleteTask(ctx context.Context, id, sessionID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrTaskNotFound
	}
	query := `UPDATE tasks SET status = ?, updated_at_unix = ? WHERE id = ?`
	args := []any{TaskStatusDone, time.Now().UTC().Unix(), id}
	if sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrTaskNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
