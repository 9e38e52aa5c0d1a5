package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryColor is the color token assigned to new categories.
const DefaultCategoryColor = "#7aa2f7"

// Priority is the urgency level of a task.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// String returns the display name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "medium"
	}
}

// ParsePriority maps a display name back to a Priority.
// Unknown names fall back to medium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Category groups tasks. Deleting a category never deletes its tasks;
// their category reference is cleared instead.
type Category struct {
	ID    string
	Name  string
	Color string
}

// Tag is a free-form label with a many-to-many relationship to tasks.
type Tag struct {
	ID   string
	Name string
}

// Task is a single tracked item. IDs are assigned at construction time so
// a task has a stable identity before it is ever persisted.
type Task struct {
	ID          string
	Title       string
	Description string
	Done        bool
	Priority    Priority
	Due         *time.Time
	CreatedAt   time.Time
	CategoryID  string // empty when uncategorized
	Tags        []Tag  // populated when loading tasks
}

// NewTask returns a task with the documented defaults: empty title and
// description, incomplete, medium priority, no due date, no category.
func NewTask() *Task {
	return &Task{
		ID:        uuid.NewString(),
		Priority:  PriorityMedium,
		CreatedAt: time.Now(),
	}
}

// NewCategory returns a category with the default color token.
func NewCategory(name string) *Category {
	return &Category{
		ID:    uuid.NewString(),
		Name:  name,
		Color: DefaultCategoryColor,
	}
}

// NewTag returns a tag with a fresh identity.
func NewTag(name string) *Tag {
	return &Tag{
		ID:   uuid.NewString(),
		Name: name,
	}
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tagID string) bool {
	for _, tag := range t.Tags {
		if tag.ID == tagID {
			return true
		}
	}
	return false
}
