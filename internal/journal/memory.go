package journal

import (
	"context"
	"sync"
)

// MemoryJournal keeps events in process. It is the default backend.
type MemoryJournal struct {
	mu     sync.Mutex
	events []Event
	max    int
}

// NewMemoryJournal keeps at most max events; max <= 0 keeps everything.
func NewMemoryJournal(max int) *MemoryJournal {
	return &MemoryJournal{max: max}
}

// Record appends events, dropping the oldest once the cap is reached.
func (m *MemoryJournal) Record(_ context.Context, events ...Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	if m.max > 0 && len(m.events) > m.max {
		m.events = append([]Event(nil), m.events[len(m.events)-m.max:]...)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (m *MemoryJournal) Recent(_ context.Context, limit int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.events)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}
