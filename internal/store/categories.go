package store

import (
	"context"
	"fmt"

	"github.com/pdarraugh/taskdeck/internal/models"
)

// SaveCategory inserts the category or updates it if it already exists.
func (s *Store) SaveCategory(ctx context.Context, c *models.Category) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO categories (id, name, color) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color
	`, c.ID, c.Name, c.Color)
	if err != nil {
		return fmt.Errorf("saving category %s: %w", c.ID, err)
	}
	return nil
}

// GetCategory retrieves a category by ID.
func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c := &models.Category{}
	err := s.tx.QueryRowContext(ctx, "SELECT id, name, color FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Color)
	if err != nil {
		return nil, fmt.Errorf("getting category %s: %w", id, err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.tx.QueryContext(ctx, "SELECT id, name, color FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("listing categories: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategory removes a category. Tasks referencing it keep existing;
// their category reference is cleared first so the relationship is
// nullified, never cascaded.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.tx.ExecContext(ctx, "UPDATE tasks SET category_id = NULL WHERE category_id = ?", id); err != nil {
		return fmt.Errorf("deleting category %s: clearing task references: %w", id, err)
	}
	if _, err := s.tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	return nil
}
