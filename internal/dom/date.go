//go:build js && wasm

package dom

import (
	"math"
	"syscall/js"
	"time"

	"github.com/ensigniasec/run-countdown/internal/countdown"
)

// ParseDeadline builds the deadline the way the page would, with new Date(v).
// Strings, epoch milliseconds and Date objects all go through the browser's
// parser; anything it rejects is Invalid.
func ParseDeadline(v js.Value) countdown.Instant {
	return fromDate(js.Global().Get("Date").New(v))
}

// ParseStart is ParseDeadline for the optional start, except that falsy values
// (undefined, null, "", 0, NaN) leave the start unset.
func ParseStart(v js.Value) countdown.Instant {
	if !v.Truthy() {
		return countdown.Instant{}
	}
	return ParseDeadline(v)
}

func fromDate(d js.Value) countdown.Instant {
	ms := d.Call("getTime").Float()
	if math.IsNaN(ms) {
		return countdown.Invalid()
	}
	return countdown.At(time.UnixMilli(int64(ms)))
}
