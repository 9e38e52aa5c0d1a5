package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pdarraugh/taskdeck/internal/models"
)

// SaveTask inserts the task or updates it if it already exists.
func (s *Store) SaveTask(ctx context.Context, t *models.Task) error {
	var due sql.NullString
	if t.Due != nil {
		due = sql.NullString{String: t.Due.Format(time.RFC3339), Valid: true}
	}
	var category sql.NullString
	if t.CategoryID != "" {
		category = sql.NullString{String: t.CategoryID, Valid: true}
	}

	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, done, priority, due, created_at, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			done = excluded.done,
			priority = excluded.priority,
			due = excluded.due,
			category_id = excluded.category_id
	`, t.ID, t.Title, t.Description, boolInt(t.Done), int(t.Priority), due,
		t.CreatedAt.Format(time.RFC3339Nano), category)
	if err != nil {
		return fmt.Errorf("saving task %s: %w", t.ID, err)
	}
	return nil
}

// GetTask retrieves a task by ID with its tags loaded.
func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row := s.tx.QueryRowContext(ctx, `
		SELECT id, title, description, done, priority, due, created_at, category_id
		FROM tasks WHERE id = ?
	`, id)

	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	tags, err := s.TaskTags(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Tags = tags
	return t, nil
}

// ListTasks returns all tasks with their tags loaded. Ordering is left to
// the query engine.
func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.tx.QueryContext(ctx, `
		SELECT id, title, description, done, priority, due, created_at, category_id
		FROM tasks
	`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("listing tasks: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	for i := range tasks {
		tags, err := s.TaskTags(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Tags = tags
	}

	return tasks, nil
}

// DeleteTask removes a task and its tag assignments.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.tx.ExecContext(ctx, "DELETE FROM task_tags WHERE task_id = ?", id); err != nil {
		return fmt.Errorf("deleting task %s: detaching tags: %w", id, err)
	}
	if _, err := s.tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var done, priority int
	var due, category sql.NullString
	var created string

	if err := row.Scan(&t.ID, &t.Title, &t.Description, &done, &priority, &due, &created, &category); err != nil {
		return nil, err
	}
	t.Done = done == 1
	t.Priority = models.Priority(priority)
	if due.Valid {
		if parsed, err := time.Parse(time.RFC3339, due.String); err == nil {
			t.Due = &parsed
		}
	}
	if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
		t.CreatedAt = parsed
	}
	if category.Valid {
		t.CategoryID = category.String
	}
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
