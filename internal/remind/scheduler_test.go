package remind

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdarraugh/taskdeck/internal/models"
)

func dueTask(t *testing.T, title string, due time.Time) *models.Task {
	t.Helper()
	task := models.NewTask()
	task.Title = title
	task.Due = &due
	return task
}

func pendingIDs(t *testing.T, svc Service) []string {
	t.Helper()
	reqs, err := svc.Pending(context.Background())
	if err != nil {
		t.Fatalf("listing pending: %v", err)
	}
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestScheduleRegistersOneEntry(t *testing.T) {
	svc := NewMemoryService(true)
	sched := NewScheduler(svc)
	task := dueTask(t, "Buy milk", time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local))

	if err := sched.Schedule(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := pendingIDs(t, svc)
	if len(ids) != 1 || ids[0] != "task-"+task.ID {
		t.Errorf("expected one entry keyed task-<id>, got %v", ids)
	}
}

func TestScheduleDiscardsSeconds(t *testing.T) {
	svc := NewMemoryService(true)
	sched := NewScheduler(svc)
	task := dueTask(t, "precise", time.Date(2030, 6, 1, 12, 30, 45, 0, time.Local))

	if err := sched.Schedule(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqs, _ := svc.Pending(context.Background())
	next, ok := reqs[0].Trigger.NextFire(time.Date(2030, 5, 1, 0, 0, 0, 0, time.Local))
	if !ok {
		t.Fatal("trigger should have a next fire time")
	}
	want := time.Date(2030, 6, 1, 12, 30, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Errorf("expected fire at %v (seconds discarded), got %v", want, next)
	}
}

func TestScheduleWithoutDueDateFails(t *testing.T) {
	sched := NewScheduler(NewMemoryService(true))
	task := models.NewTask()
	task.Title = "no due"

	err := sched.Schedule(context.Background(), task)
	if !errors.Is(err, ErrNoDueDate) {
		t.Fatalf("expected ErrNoDueDate, got %v", err)
	}
}

func TestScheduleAuthorizationDenied(t *testing.T) {
	svc := NewMemoryService(false)
	sched := NewScheduler(svc)
	task := dueTask(t, "denied", time.Now().Add(time.Hour))

	err := sched.Schedule(context.Background(), task)
	if !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}
	if len(pendingIDs(t, svc)) != 0 {
		t.Error("no reminder may exist after a denied schedule")
	}
}

// failingService errors on Add to exercise the registration-failure path.
type failingService struct {
	Service
}

func (f *failingService) Add(ctx context.Context, req Request) error {
	return errors.New("registration failed")
}

func TestScheduleRegistrationFailureSurfaced(t *testing.T) {
	svc := &failingService{Service: NewMemoryService(true)}
	sched := NewScheduler(svc)
	task := dueTask(t, "flaky", time.Now().Add(time.Hour))

	err := sched.Schedule(context.Background(), task)
	if err == nil {
		t.Fatal("registration failure must be reported, not swallowed")
	}
	if len(pendingIDs(t, svc)) != 0 {
		t.Error("no reminder may exist after a failed registration")
	}
}

func TestAtMostOneAfterRepeatedScheduling(t *testing.T) {
	svc := NewMemoryService(true)
	sched := NewScheduler(svc)
	task := dueTask(t, "busy", time.Now().Add(time.Hour))
	ctx := context.Background()

	if err := sched.Schedule(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	later := time.Now().Add(2 * time.Hour)
	task.Due = &later
	if err := sched.Update(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sched.Update(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := pendingIDs(t, svc)
	count := 0
	for _, id := range ids {
		if strings.Contains(id, task.ID) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected at most one live entry for the task, got %d (%v)", count, ids)
	}
}

func TestUpdateReplacesRepeatingWithOneShot(t *testing.T) {
	svc := NewMemoryService(true)
	sched := NewScheduler(svc)
	task := dueTask(t, "morning", time.Now().Add(time.Hour))
	ctx := context.Background()

	if err := sched.ScheduleRepeating(ctx, task, Daily(9, 30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pendingIDs(t, svc); len(got) != 1 || got[0] != "task-repeat-"+task.ID {
		t.Fatalf("expected the repeating namespace entry, got %v", got)
	}

	if err := sched.Update(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pendingIDs(t, svc); len(got) != 1 || got[0] != "task-"+task.ID {
		t.Errorf("update must clear the repeating entry before registering, got %v", got)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	svc := NewMemoryService(true)
	sched := NewScheduler(svc)
	task := dueTask(t, "gone", time.Now().Add(time.Hour))
	ctx := context.Background()

	if err := sched.Schedule(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sched.Cancel(ctx, task); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if err := sched.Cancel(ctx, task); err != nil {
		t.Fatalf("second cancel must not be an error: %v", err)
	}
	if len(pendingIDs(t, svc)) != 0 {
		t.Error("expected zero reminders after cancel")
	}
}

func TestResolveDeliveryRoundTrip(t *testing.T) {
	svc := NewMemoryService(true)
	sched := NewScheduler(svc)
	task := dueTask(t, "ping", time.Now().Add(time.Hour))

	var selected string
	sched.OnSelect(func(taskID string) { selected = taskID })

	if err := sched.Schedule(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqs, _ := svc.Pending(context.Background())
	sched.ResolveDelivery(reqs[0].Payload)

	if selected != task.ID {
		t.Errorf("expected task-selected event for %s, got %q", task.ID, selected)
	}
}

func TestResolveDeliveryMalformedPayloadIsNoOp(t *testing.T) {
	sched := NewScheduler(NewMemoryService(true))
	fired := false
	sched.OnSelect(func(string) { fired = true })

	sched.ResolveDelivery(Payload{Title: "no id"})

	if fired {
		t.Error("a payload without a task id must degrade to a no-op")
	}
}

func TestDeliverConsumesOneShotKeepsRepeating(t *testing.T) {
	svc := NewMemoryService(true)
	sched := NewScheduler(svc)
	ctx := context.Background()

	oneShot := dueTask(t, "once", time.Now().Add(time.Hour))
	repeating := dueTask(t, "daily", time.Now().Add(time.Hour))

	if err := sched.Schedule(ctx, oneShot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sched.ScheduleRepeating(ctx, repeating, Daily(8, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.Deliver("task-" + oneShot.ID)
	svc.Deliver("task-repeat-" + repeating.ID)

	ids := pendingIDs(t, svc)
	if len(ids) != 1 || ids[0] != "task-repeat-"+repeating.ID {
		t.Errorf("one-shot should be consumed, repeating kept; got %v", ids)
	}
}
