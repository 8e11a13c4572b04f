//go:build js && wasm

// Command countdown-wasm exposes countDown to the page:
//
//	const c = countDown("#timer", "#loader", deadline, start)
//	c.stop()
//
// deadline and start may be date strings, epoch milliseconds or Date objects.
package main

import (
	"syscall/js"

	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/run-countdown/internal/countdown"
	"github.com/ensigniasec/run-countdown/internal/dom"
)

func countDown(_ js.Value, args []js.Value) any {
	if len(args) < 3 { //nolint:mnd // timer, loader, deadline
		return jsError("countDown: expected (timerSelector, loaderSelector, deadline[, start])")
	}
	timer, err := dom.Query(args[0].String())
	if err != nil {
		return jsError(err.Error())
	}
	loader, err := dom.Query(args[1].String())
	if err != nil {
		return jsError(err.Error())
	}

	deadline := dom.ParseDeadline(args[2])
	start := countdown.Instant{}
	if len(args) > 3 { //nolint:mnd // optional start
		start = dom.ParseStart(args[3])
	}

	d, err := countdown.New(timer, loader, deadline,
		countdown.WithStart(start),
		countdown.WithClock(dom.Clock{}),
		countdown.WithReload(dom.Reload),
	)
	if err != nil {
		return jsError(err.Error())
	}
	h, err := d.Start()
	if err != nil {
		return jsError(err.Error())
	}

	handle := js.Global().Get("Object").New()
	stop := js.FuncOf(func(js.Value, []js.Value) any {
		h.Stop()
		return nil
	})
	handle.Set("stop", stop)
	// Once the driver is done, stop is a no-op; swap in a plain JS function so
	// the Go callback can be released.
	go func() {
		<-h.Done()
		handle.Set("stop", js.Global().Get("Function").New())
		stop.Release()
	}()
	return handle
}

func jsError(msg string) js.Value {
	logrus.Error(msg)
	return js.Global().Get("Error").New(msg)
}

func main() {
	// The browser console is the only sink; keep it quiet unless something breaks.
	logrus.SetLevel(logrus.WarnLevel)
	js.Global().Set("countDown", js.FuncOf(countDown))
	select {}
}
