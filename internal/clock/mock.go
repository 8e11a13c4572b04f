package clock

import (
	"sort"
	"sync"
	"time"
)

// Mock is a manually driven Clock. Callbacks run synchronously inside Advance,
// on the caller's goroutine, in order of their due time.
type Mock struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	entries []*mockEntry
}

type mockEntry struct {
	id       int
	interval time.Duration
	next     time.Time
	f        func()
	stopped  bool
	mock     *Mock
}

// NewMock returns a Mock whose current time is now.
func NewMock(now time.Time) *Mock {
	return &Mock{now: now}
}

// Now implements Clock.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every implements Clock. The first call is due one interval from the current time.
func (m *Mock) Every(interval time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e := &mockEntry{
		id:       m.nextID,
		interval: interval,
		next:     m.now.Add(interval),
		f:        f,
		mock:     m,
	}
	m.entries = append(m.entries, e)
	return e
}

// Set moves the clock to t without firing any callbacks.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d, firing every callback that falls due
// on the way. Now() observed from inside a callback equals its due time.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		e := m.nextDueLocked(target)
		if e == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		// An overdue callback fires at the current time, like a ticker that dropped ticks.
		if e.next.After(m.now) {
			m.now = e.next
		}
		e.next = m.now.Add(e.interval)
		f := e.f
		m.mu.Unlock()

		f()
	}
}

// Pending reports how many registrations are still active.
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if !e.stopped {
			n++
		}
	}
	return n
}

func (m *Mock) nextDueLocked(target time.Time) *mockEntry {
	due := make([]*mockEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.stopped && e.interval > 0 && !e.next.After(target) {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].next.Equal(due[j].next) {
			return due[i].id < due[j].id
		}
		return due[i].next.Before(due[j].next)
	})
	return due[0]
}

// Stop implements Timer.
func (e *mockEntry) Stop() bool {
	e.mock.mu.Lock()
	defer e.mock.mu.Unlock()
	if e.stopped {
		return false
	}
	e.stopped = true
	return true
}
