package store

import (
	"context"
	"fmt"

	"github.com/pdarraugh/taskdeck/internal/models"
)

// SaveTag inserts the tag or updates it if it already exists.
func (s *Store) SaveTag(ctx context.Context, t *models.Tag) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO tags (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, t.ID, t.Name)
	if err != nil {
		return fmt.Errorf("saving tag %s: %w", t.ID, err)
	}
	return nil
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	t := &models.Tag{}
	err := s.tx.QueryRowContext(ctx, "SELECT id, name FROM tags WHERE id = ?", id).
		Scan(&t.ID, &t.Name)
	if err != nil {
		return nil, fmt.Errorf("getting tag %s: %w", id, err)
	}
	return t, nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.tx.QueryContext(ctx, "SELECT id, name FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("listing tags: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// DeleteTag removes a tag. Every task referencing it is detached first,
// then the tag row itself is removed.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	if _, err := s.tx.ExecContext(ctx, "DELETE FROM task_tags WHERE tag_id = ?", id); err != nil {
		return fmt.Errorf("deleting tag %s: detaching tasks: %w", id, err)
	}
	if _, err := s.tx.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting tag %s: %w", id, err)
	}
	return nil
}

// TaskTags returns all tags carried by a task.
func (s *Store) TaskTags(ctx context.Context, taskID string) ([]models.Tag, error) {
	rows, err := s.tx.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM tags t
		JOIN task_tags tt ON t.id = tt.tag_id
		WHERE tt.task_id = ?
		ORDER BY t.name
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading tags for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("loading tags for task %s: %w", taskID, err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// AssignTag attaches a tag to a task. Assigning the same tag twice is a
// no-op.
func (s *Store) AssignTag(ctx context.Context, taskID, tagID string) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)
	`, taskID, tagID)
	if err != nil {
		return fmt.Errorf("assigning tag %s to task %s: %w", tagID, taskID, err)
	}
	return nil
}

// RemoveTag detaches a tag from a task.
func (s *Store) RemoveTag(ctx context.Context, taskID, tagID string) error {
	_, err := s.tx.ExecContext(ctx, "DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?", taskID, tagID)
	if err != nil {
		return fmt.Errorf("removing tag %s from task %s: %w", tagID, taskID, err)
	}
	return nil
}
