package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensigniasec/run-countdown/internal/clock"
)

// loopClock is a clock.Clock whose repeating callbacks run on the Bubble Tea
// update loop: every registration becomes a chain of tickCountdownMsg ticks
// that Update hands back through fire.
type loopClock struct {
	now func() time.Time

	mu      sync.Mutex
	nextID  int
	entries map[int]*loopEntry
	queued  []int
}

type loopEntry struct {
	id       int
	interval time.Duration
	f        func()
	clock    *loopClock
}

func newLoopClock(now func() time.Time) *loopClock {
	if now == nil {
		now = time.Now
	}
	return &loopClock{now: now, entries: make(map[int]*loopEntry)}
}

// Now implements clock.Clock.
func (c *loopClock) Now() time.Time {
	return c.now()
}

// Every implements clock.Clock. The registration stays queued until drain
// turns it into a tea command.
func (c *loopClock) Every(interval time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	e := &loopEntry{id: c.nextID, interval: interval, f: f, clock: c}
	c.entries[e.id] = e
	c.queued = append(c.queued, e.id)
	return e
}

// fire runs the callback for id if it is still registered.
func (c *loopClock) fire(id int) {
	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()
	if ok {
		e.f()
	}
}

// schedule returns the next tick for id, or nil once it has been stopped.
func (c *loopClock) schedule(id int) tea.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil
	}
	return tickAfter(e.id, e.interval)
}

// drain returns the first tick for every registration made since the last drain.
func (c *loopClock) drain() tea.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	cmds := make([]tea.Cmd, 0, len(c.queued))
	for _, id := range c.queued {
		if e, ok := c.entries[id]; ok {
			cmds = append(cmds, tickAfter(e.id, e.interval))
		}
	}
	c.queued = nil
	return tea.Batch(cmds...)
}

// active reports how many registrations have not been stopped.
func (c *loopClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func tickAfter(id int, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickCountdownMsg{ID: id}
	})
}

// Stop implements clock.Timer.
func (e *loopEntry) Stop() bool {
	e.clock.mu.Lock()
	defer e.clock.mu.Unlock()
	if _, ok := e.clock.entries[e.id]; !ok {
		return false
	}
	delete(e.clock.entries, e.id)
	return true
}
