//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_AdvanceFiresDueCallbacks(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMock(start)

	var seen []time.Time
	m.Every(time.Second, func() { seen = append(seen, m.Now()) })

	m.Advance(500 * time.Millisecond)
	require.Empty(t, seen)

	m.Advance(2500 * time.Millisecond)
	require.Equal(t, []time.Time{
		start.Add(1 * time.Second),
		start.Add(2 * time.Second),
		start.Add(3 * time.Second),
	}, seen)
	require.Equal(t, start.Add(3*time.Second), m.Now())
}

func TestMock_OrderAcrossRegistrations(t *testing.T) {
	m := NewMock(time.Unix(0, 0))

	var order []string
	m.Every(2*time.Second, func() { order = append(order, "slow") })
	m.Every(time.Second, func() { order = append(order, "fast") })

	m.Advance(2 * time.Second)
	// Ties resolve in registration order.
	assert.Equal(t, []string{"fast", "slow", "fast"}, order)
}

func TestMock_StopInsideCallback(t *testing.T) {
	m := NewMock(time.Unix(0, 0))

	calls := 0
	var timer Timer
	timer = m.Every(time.Second, func() {
		calls++
		if calls == 2 {
			require.True(t, timer.Stop())
		}
	})

	m.Advance(10 * time.Second)
	require.Equal(t, 2, calls)
	require.False(t, timer.Stop())
	require.Zero(t, m.Pending())
}

func TestMock_SetDoesNotFire(t *testing.T) {
	m := NewMock(time.Unix(0, 0))
	fired := false
	m.Every(time.Second, func() { fired = true })

	m.Set(time.Unix(100, 0))
	require.False(t, fired)
	require.Equal(t, time.Unix(100, 0), m.Now())
}

func TestReal_EveryAndStop(t *testing.T) {
	c := NewReal()
	var n atomic.Int32
	timer := c.Every(5*time.Millisecond, func() { n.Add(1) })

	require.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, time.Millisecond)
	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	// At most one in-flight call may land after Stop returns.
	assert.LessOrEqual(t, n.Load(), after+1)
}
