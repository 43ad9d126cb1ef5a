package http

import (
	"sync/atomic"
	"time"

	applog "bankist/internal/log"
)

var actionOps = []string{
	applog.OpLogin,
	applog.OpTransfer,
	applog.OpLoan,
	applog.OpClose,
	applog.OpSort,
	applog.OpLogout,
}

type actionCounters struct {
	accepted atomic.Int64
	refused  atomic.Int64
	failed   atomic.Int64
}

// appMetrics counts action outcomes per operation. The map is built once
// and never written afterwards.
type appMetrics struct {
	actions map[string]*actionCounters
	started time.Time
}

func newAppMetrics() *appMetrics {
	m := &appMetrics{
		actions: make(map[string]*actionCounters, len(actionOps)),
		started: time.Now(),
	}
	for _, op := range actionOps {
		m.actions[op] = &actionCounters{}
	}
	return m
}

func (m *appMetrics) accepted(op string) { m.counter(op).accepted.Add(1) }
func (m *appMetrics) refused(op string)  { m.counter(op).refused.Add(1) }
func (m *appMetrics) failed(op string)   { m.counter(op).failed.Add(1) }

func (m *appMetrics) counter(op string) *actionCounters {
	if c, ok := m.actions[op]; ok {
		return c
	}
	panic("http: unknown action " + op)
}
