// Package clock abstracts the two time operations the countdown needs: reading
// the current time and running a callback on a fixed interval. Production code
// uses Real; tests inject Mock and advance it by hand.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time and repeating callbacks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Every calls f once per interval until the returned Timer is stopped.
	// Calls belonging to one registration never overlap.
	Every(interval time.Duration, f func()) Timer
}

// Timer is a pending repeating callback.
type Timer interface {
	// Stop prevents further calls. It returns false if the timer was already stopped.
	Stop() bool
}

// Real implements Clock on top of the time package.
type Real struct{}

// NewReal returns a Clock backed by the system time.
func NewReal() *Real {
	return &Real{}
}

// Now implements Clock.
func (Real) Now() time.Time {
	return time.Now()
}

// Every implements Clock using a time.Ticker drained by a single goroutine.
func (Real) Every(interval time.Duration, f func()) Timer {
	t := &realTimer{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go t.loop(f)
	return t
}

type realTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *realTimer) loop(f func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			// A Stop racing with the tick wins.
			select {
			case <-t.done:
				return
			default:
			}
			f()
		}
	}
}

// Stop implements Timer.
func (t *realTimer) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
