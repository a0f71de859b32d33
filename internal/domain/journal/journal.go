// Package journal keeps a bounded history of applied roster changes.
package journal

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/mergington/internal/domain/model"
)

const defaultCapacity = 50

// Journal is a fixed-size ring of the most recent roster events.
// It is safe for concurrent use.
type Journal struct {
	mu     sync.RWMutex
	events []model.RosterEvent
	next   int
	filled bool
	total  atomic.Int64
}

// Option applies a configuration option to the Journal.
type Option func(*Journal)

// WithCapacity sets how many events are retained.
func WithCapacity(n int) Option {
	return func(j *Journal) {
		if n > 0 {
			j.events = make([]model.RosterEvent, n)
		}
	}
}

// New creates an empty journal.
func New(opts ...Option) *Journal {
	j := &Journal{events: make([]model.RosterEvent, defaultCapacity)}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record appends ev, overwriting the oldest entry when full.
func (j *Journal) Record(_ context.Context, ev model.RosterEvent) error {
	j.mu.Lock()
	j.events[j.next] = ev
	j.next = (j.next + 1) % len(j.events)
	if j.next == 0 {
		j.filled = true
	}
	j.mu.Unlock()
	j.total.Add(1)
	return nil
}

// Recent returns up to n events, newest first. n <= 0 returns everything retained.
func (j *Journal) Recent(n int) []model.RosterEvent {
	j.mu.RLock()
	defer j.mu.RUnlock()

	size := j.next
	if j.filled {
		size = len(j.events)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]model.RosterEvent, 0, n)
	for i := 1; i <= n; i++ {
		idx := (j.next - i + len(j.events)) % len(j.events)
		out = append(out, j.events[idx])
	}
	return out
}

// Total returns how many events were ever recorded.
func (j *Journal) Total() int64 {
	return j.total.Load()
}

// Capacity returns the retention limit.
func (j *Journal) Capacity() int {
	return len(j.events)
}
