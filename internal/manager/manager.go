// Package manager is the façade the UI layer talks to. It owns the task
// collection and the filter state, and coordinates the persistent store,
// the query engine, and the reminder scheduler.
package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pdarraugh/taskdeck/internal/models"
	"github.com/pdarraugh/taskdeck/internal/query"
	"github.com/pdarraugh/taskdeck/internal/remind"
)

// ErrEmptyTitle is returned by Commit when the trimmed title is empty.
// The commit is a no-op; the caller re-prompts.
var ErrEmptyTitle = errors.New("task title must not be empty")

// Store is the subset of the persistent store the manager needs.
// Defining it here keeps the package independent of the sqlite adapter.
type Store interface {
	SaveTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error

	SaveCategory(ctx context.Context, c *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	SaveTag(ctx context.Context, t *models.Tag) error
	GetTag(ctx context.Context, id string) (*models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	AssignTag(ctx context.Context, taskID, tagID string) error
	RemoveTag(ctx context.Context, taskID, tagID string) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Reminders is the subset of the reminder scheduler the manager needs.
type Reminders interface {
	Schedule(ctx context.Context, task *models.Task) error
	ScheduleRepeating(ctx context.Context, task *models.Task, components remind.DateComponents) error
	Cancel(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	OnSelect(h remind.SelectHandler)
}

// TaskManager defines the operations the UI layer drives.
type TaskManager interface {
	Create() *models.Task
	Commit(ctx context.Context, task *models.Task) error
	Discard(ctx context.Context) error
	Delete(ctx context.Context, task *models.Task) error
	ToggleCompletion(ctx context.Context, task *models.Task) error
	SetDueDate(ctx context.Context, task *models.Task, due *time.Time) error

	EnableReminder(ctx context.Context, task *models.Task) error
	EnableRepeatingReminder(ctx context.Context, task *models.Task, components remind.DateComponents) error
	CancelReminder(ctx context.Context, task *models.Task) error

	SetSearch(ctx context.Context, text string) error
	SelectCategory(ctx context.Context, categoryID string) error
	SelectTags(ctx context.Context, tagIDs []string) error
	SetShowCompleted(ctx context.Context, show bool) error
	Filter() query.Filter
	Results() []models.Task
	Refresh(ctx context.Context) error

	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]models.Category, error)
	CreateTag(ctx context.Context, name string) (*models.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	Tags(ctx context.Context) ([]models.Tag, error)
	AssignTag(ctx context.Context, task *models.Task, tagID string) error
	RemoveTag(ctx context.Context, task *models.Task, tagID string) error

	OnResults(h func([]models.Task))
	OnTaskSelected(h func(taskID string))
}

// taskManager implements TaskManager with explicitly injected
// collaborators; there is no process-wide singleton state.
type taskManager struct {
	store     Store
	engine    *query.Engine
	reminders Reminders

	filter    query.Filter
	results   []models.Task
	onResults func([]models.Task)
	warnf     func(format string, args ...any)
}

// New creates a TaskManager. warnf receives non-fatal failures (reminder
// cancellation during delete); nil sends them to stderr.
func New(store Store, engine *query.Engine, reminders Reminders, warnf func(string, ...any)) TaskManager {
	if warnf == nil {
		warnf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	return &taskManager{
		store:     store,
		engine:    engine,
		reminders: reminders,
		warnf:     warnf,
	}
}

// Create returns a new uncommitted task with defaults. It is not written
// to the store and stays invisible to queries until committed.
func (m *taskManager) Create() *models.Task {
	return models.NewTask()
}

// Commit validates the task and makes it durable, then recomputes the
// result set so observers see the change.
func (m *taskManager) Commit(ctx context.Context, task *models.Task) error {
	if !hasTitle(task) {
		return ErrEmptyTitle
	}
	if err := m.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("committing task: %w", err)
	}
	if err := m.store.Commit(ctx); err != nil {
		return fmt.Errorf("committing task: %w", err)
	}
	return m.Refresh(ctx)
}

// Discard rolls back uncommitted changes and requeries. Safe to call when
// nothing is pending.
func (m *taskManager) Discard(ctx context.Context) error {
	if err := m.store.Rollback(ctx); err != nil {
		return fmt.Errorf("discarding changes: %w", err)
	}
	return m.Refresh(ctx)
}

// Delete removes the task and cancels any reminder for it. Cancellation
// is best-effort: a failure is reported through warnf but never blocks
// the deletion.
func (m *taskManager) Delete(ctx context.Context, task *models.Task) error {
	if err := m.store.DeleteTask(ctx, task.ID); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if err := m.store.Commit(ctx); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if err := m.reminders.Cancel(ctx, task); err != nil {
		m.warnf("deleting task %s: %v", task.ID, err)
	}
	return m.Refresh(ctx)
}

// ToggleCompletion flips the completion flag and commits. Reminders are
// deliberately untouched; a completed task keeps its stale reminder.
func (m *taskManager) ToggleCompletion(ctx context.Context, task *models.Task) error {
	task.Done = !task.Done
	if err := m.Commit(ctx, task); err != nil {
		task.Done = !task.Done
		return fmt.Errorf("toggling completion: %w", err)
	}
	return nil
}

// SetDueDate persists the new due date. Clearing it cancels any existing
// reminder as part of the same operation; setting it leaves reminder
// scheduling to the caller.
func (m *taskManager) SetDueDate(ctx context.Context, task *models.Task, due *time.Time) error {
	task.Due = due
	if err := m.Commit(ctx, task); err != nil {
		return fmt.Errorf("setting due date: %w", err)
	}
	if due == nil {
		if err := m.reminders.Cancel(ctx, task); err != nil {
			m.warnf("clearing due date for %s: %v", task.ID, err)
		}
	}
	return nil
}

// EnableReminder replaces any existing reminder with one at the task's
// current due date.
func (m *taskManager) EnableReminder(ctx context.Context, task *models.Task) error {
	return m.reminders.Update(ctx, task)
}

// EnableRepeatingReminder replaces any existing reminder with a repeating
// one on the given components.
func (m *taskManager) EnableRepeatingReminder(ctx context.Context, task *models.Task, components remind.DateComponents) error {
	if err := m.reminders.Cancel(ctx, task); err != nil {
		return fmt.Errorf("enabling repeating reminder: %w", err)
	}
	return m.reminders.ScheduleRepeating(ctx, task, components)
}

// CancelReminder removes any pending reminder for the task.
func (m *taskManager) CancelReminder(ctx context.Context, task *models.Task) error {
	return m.reminders.Cancel(ctx, task)
}

func (m *taskManager) SetSearch(ctx context.Context, text string) error {
	m.filter.Search = text
	return m.Refresh(ctx)
}

func (m *taskManager) SelectCategory(ctx context.Context, categoryID string) error {
	m.filter.CategoryID = categoryID
	return m.Refresh(ctx)
}

func (m *taskManager) SelectTags(ctx context.Context, tagIDs []string) error {
	m.filter.TagIDs = tagIDs
	return m.Refresh(ctx)
}

func (m *taskManager) SetShowCompleted(ctx context.Context, show bool) error {
	m.filter.ShowCompleted = show
	return m.Refresh(ctx)
}

// Filter returns the current filter state.
func (m *taskManager) Filter() query.Filter {
	return m.filter
}

// Results returns the last successfully computed result set. After a
// store failure it keeps the previous value rather than presenting an
// empty, misleading list.
func (m *taskManager) Results() []models.Task {
	return m.results
}

// Refresh recomputes the result set from the store and filter state.
func (m *taskManager) Refresh(ctx context.Context) error {
	results, err := m.engine.Run(ctx, m.filter)
	if err != nil {
		return fmt.Errorf("refreshing results: %w", err)
	}
	m.results = results
	if m.onResults != nil {
		m.onResults(results)
	}
	return nil
}

// CreateCategory makes a new durable category.
func (m *taskManager) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	c := models.NewCategory(name)
	if err := m.store.SaveCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	if err := m.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category; referencing tasks survive with an
// empty category reference.
func (m *taskManager) DeleteCategory(ctx context.Context, id string) error {
	if err := m.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if err := m.store.Commit(ctx); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return m.Refresh(ctx)
}

func (m *taskManager) Categories(ctx context.Context) ([]models.Category, error) {
	return m.store.ListCategories(ctx)
}

// CreateTag makes a new durable tag.
func (m *taskManager) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	t := models.NewTag(name)
	if err := m.store.SaveTag(ctx, t); err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	if err := m.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	return t, nil
}

// DeleteTag detaches the tag from every task, then removes it.
func (m *taskManager) DeleteTag(ctx context.Context, id string) error {
	if err := m.store.DeleteTag(ctx, id); err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	if err := m.store.Commit(ctx); err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	return m.Refresh(ctx)
}

func (m *taskManager) Tags(ctx context.Context) ([]models.Tag, error) {
	return m.store.ListTags(ctx)
}

// AssignTag attaches a tag to a committed task.
func (m *taskManager) AssignTag(ctx context.Context, task *models.Task, tagID string) error {
	if err := m.store.AssignTag(ctx, task.ID, tagID); err != nil {
		return fmt.Errorf("assigning tag: %w", err)
	}
	if err := m.store.Commit(ctx); err != nil {
		return fmt.Errorf("assigning tag: %w", err)
	}
	if tag, err := m.store.GetTag(ctx, tagID); err == nil && !task.HasTag(tagID) {
		task.Tags = append(task.Tags, *tag)
	}
	return m.Refresh(ctx)
}

// RemoveTag detaches a tag from a committed task.
func (m *taskManager) RemoveTag(ctx context.Context, task *models.Task, tagID string) error {
	if err := m.store.RemoveTag(ctx, task.ID, tagID); err != nil {
		return fmt.Errorf("removing tag: %w", err)
	}
	if err := m.store.Commit(ctx); err != nil {
		return fmt.Errorf("removing tag: %w", err)
	}
	for i, tag := range task.Tags {
		if tag.ID == tagID {
			task.Tags = append(task.Tags[:i], task.Tags[i+1:]...)
			break
		}
	}
	return m.Refresh(ctx)
}

// OnResults sets the handler invoked with the new result set after every
// successful requery. This replaces ambient observation: mutations notify
// explicitly.
func (m *taskManager) OnResults(h func([]models.Task)) {
	m.onResults = h
}

// OnTaskSelected forwards task-selected events from delivered
// notifications to the UI layer.
func (m *taskManager) OnTaskSelected(h func(taskID string)) {
	m.reminders.OnSelect(h)
}

func hasTitle(task *models.Task) bool {
	return strings.TrimSpace(task.Title) != ""
}
