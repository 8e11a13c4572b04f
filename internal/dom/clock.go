//go:build js && wasm

package dom

import (
	"sync"
	"syscall/js"
	"time"

	"github.com/ensigniasec/run-countdown/internal/clock"
)

// Clock implements clock.Clock with Date.now and setInterval, so callbacks run
// on the page's event loop.
type Clock struct{}

// Now implements clock.Clock.
func (Clock) Now() time.Time {
	ms := js.Global().Get("Date").Call("now").Float()
	return time.UnixMilli(int64(ms))
}

// Every implements clock.Clock.
func (Clock) Every(interval time.Duration, f func()) clock.Timer {
	t := &intervalTimer{}
	t.fn = js.FuncOf(func(js.Value, []js.Value) any {
		f()
		return nil
	})
	t.id = js.Global().Call("setInterval", t.fn, interval.Milliseconds())
	return t
}

type intervalTimer struct {
	once sync.Once
	id   js.Value
	fn   js.Func
}

// Stop implements clock.Timer.
func (t *intervalTimer) Stop() bool {
	stopped := false
	t.once.Do(func() {
		js.Global().Call("clearInterval", t.id)
		// The callback may be the one calling Stop; release after it returns.
		var release js.Func
		release = js.FuncOf(func(js.Value, []js.Value) any {
			t.fn.Release()
			release.Release()
			return nil
		})
		js.Global().Call("setTimeout", release, 0)
		stopped = true
	})
	return stopped
}
