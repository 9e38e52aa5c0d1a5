package remind

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryService is an in-process Service: a mutex-guarded pending table
// with an optional clock loop that fires due triggers.
type MemoryService struct {
	mu         sync.Mutex
	authorized bool
	asked      bool
	pending    map[string]pendingEntry
	handler    DeliveryHandler
}

type pendingEntry struct {
	req  Request
	next time.Time
}

// NewMemoryService creates an in-process notification service. The
// authorized flag decides how RequestAuthorization answers.
func NewMemoryService(authorized bool) *MemoryService {
	return &MemoryService{
		authorized: authorized,
		pending:    make(map[string]pendingEntry),
	}
}

func (m *MemoryService) RequestAuthorization(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asked = true
	return m.authorized, nil
}

func (m *MemoryService) Add(ctx context.Context, req Request) error {
	next, _ := req.Trigger.NextFire(time.Now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[req.ID] = pendingEntry{req: req, next: next}
	return nil
}

func (m *MemoryService) Remove(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.pending, id)
	}
	return nil
}

func (m *MemoryService) Pending(ctx context.Context) ([]Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reqs := make([]Request, 0, len(m.pending))
	for _, e := range m.pending {
		reqs = append(reqs, e.req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	return reqs, nil
}

func (m *MemoryService) OnDelivery(h DeliveryHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// Deliver fires the pending entry with the given identifier as if the
// user acted on it. One-shot entries are consumed; repeating entries are
// rescheduled. Unknown identifiers are ignored.
func (m *MemoryService) Deliver(id string) {
	m.mu.Lock()
	e, ok := m.pending[id]
	if ok {
		if e.req.Trigger.Repeats {
			if next, ok2 := e.req.Trigger.NextFire(time.Now()); ok2 {
				e.next = next
				m.pending[id] = e
			}
		} else {
			delete(m.pending, id)
		}
	}
	h := m.handler
	m.mu.Unlock()

	if ok && h != nil {
		h(e.req.Payload)
	}
}

// Run checks the pending table once a tick and delivers entries whose
// trigger time has passed. It returns when the context is cancelled.
func (m *MemoryService) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, id := range m.due(now) {
				m.Deliver(id)
			}
		}
	}
}

func (m *MemoryService) due(now time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id, e := range m.pending {
		if !e.next.IsZero() && !e.next.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
