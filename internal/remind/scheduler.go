package remind

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdarraugh/taskdeck/internal/models"
)

// ErrNoDueDate is returned when a schedule is requested for a task
// without a due date.
var ErrNoDueDate = errors.New("task has no due date")

// SelectHandler receives the id of a task whose notification the user
// acted upon.
type SelectHandler func(taskID string)

// Scheduler owns the mapping from task identity to scheduled notification
// identifier. Per task the state machine is NoReminder <-> Scheduled; a
// failed schedule attempt leaves the task in NoReminder and surfaces the
// error.
type Scheduler struct {
	service  Service
	onSelect SelectHandler
}

// NewScheduler creates a scheduler over the given notification service
// and registers itself as the service's delivery handler.
func NewScheduler(service Service) *Scheduler {
	s := &Scheduler{service: service}
	service.OnDelivery(s.ResolveDelivery)
	return s
}

// OnSelect sets the handler for task-selected events emitted when a
// delivered notification resolves to a task.
func (s *Scheduler) OnSelect(h SelectHandler) {
	s.onSelect = h
}

// oneShotID and repeatingID are distinct namespaces so both reminder
// kinds can coexist for the same task.
func oneShotID(taskID string) string   { return "task-" + taskID }
func repeatingID(taskID string) string { return "task-repeat-" + taskID }

// Schedule registers a one-shot reminder at the task's due date, with
// second-level precision discarded. On any failure no reminder exists.
func (s *Scheduler) Schedule(ctx context.Context, task *models.Task) error {
	if task.Due == nil {
		return fmt.Errorf("scheduling reminder for %s: %w", task.ID, ErrNoDueDate)
	}
	return s.add(ctx, Request{
		ID:      oneShotID(task.ID),
		Payload: Payload{TaskID: task.ID, Title: task.Title},
		Trigger: Trigger{Components: ComponentsFromTime(*task.Due)},
	})
}

// ScheduleRepeating registers a reminder that recurs indefinitely on the
// given partial date components, under the repeating identifier
// namespace.
func (s *Scheduler) ScheduleRepeating(ctx context.Context, task *models.Task, components DateComponents) error {
	return s.add(ctx, Request{
		ID:      repeatingID(task.ID),
		Payload: Payload{TaskID: task.ID, Title: task.Title},
		Trigger: Trigger{Components: components, Repeats: true},
	})
}

func (s *Scheduler) add(ctx context.Context, req Request) error {
	granted, err := s.service.RequestAuthorization(ctx)
	if err != nil {
		return fmt.Errorf("scheduling reminder for %s: requesting authorization: %w", req.Payload.TaskID, err)
	}
	if !granted {
		return fmt.Errorf("scheduling reminder for %s: %w", req.Payload.TaskID, ErrAuthorizationDenied)
	}
	if err := s.service.Add(ctx, req); err != nil {
		return fmt.Errorf("scheduling reminder for %s: %w", req.Payload.TaskID, err)
	}
	return nil
}

// Cancel removes any pending reminder for the task, in both identifier
// namespaces. Cancelling when nothing is scheduled is not an error.
func (s *Scheduler) Cancel(ctx context.Context, task *models.Task) error {
	ids := []string{oneShotID(task.ID), repeatingID(task.ID)}
	if err := s.service.Remove(ctx, ids); err != nil {
		return fmt.Errorf("cancelling reminder for %s: %w", task.ID, err)
	}
	return nil
}

// Update replaces the task's reminder with one matching its current due
// date. Cancel runs to completion before the new registration so the
// at-most-one invariant holds; an in-place mutation is never attempted.
func (s *Scheduler) Update(ctx context.Context, task *models.Task) error {
	if err := s.Cancel(ctx, task); err != nil {
		return fmt.Errorf("updating reminder for %s: %w", task.ID, err)
	}
	return s.Schedule(ctx, task)
}

// ResolveDelivery maps a delivered payload back to its task and emits a
// task-selected event. A payload without a task id degrades to a no-op;
// this is a lookup, never a scheduling operation.
func (s *Scheduler) ResolveDelivery(p Payload) {
	if p.TaskID == "" || s.onSelect == nil {
		return
	}
	s.onSelect(p.TaskID)
}
