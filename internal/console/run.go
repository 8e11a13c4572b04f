package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/run-countdown/internal/clock"
	"github.com/ensigniasec/run-countdown/internal/countdown"
)

// Options tunes Run.
type Options struct {
	Clock        clock.Clock
	Interval     time.Duration
	ExitOnExpire bool
	Log          *logrus.Entry
}

// Run counts down the Window produced by src, printing to out. When the
// deadline passes it reloads: src is called again and a fresh countdown starts
// with reset elements. With ExitOnExpire it returns after the first expiry
// instead. Canceling ctx stops the countdown and returns nil.
func Run(ctx context.Context, out io.Writer, src countdown.Source, opts Options) (int, error) {
	if opts.Clock == nil {
		opts.Clock = clock.NewReal()
	}
	if opts.Log == nil {
		opts.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	timer := NewElement(out, "⏰", "timer", countdown.Info.Class())
	loader := NewSilentElement(out, "▮", "loader", countdown.Info.Class())

	reloads := 0
	for {
		w, err := src()
		if err != nil {
			return reloads, fmt.Errorf("load countdown: %w", err)
		}
		timer.Reset()
		loader.Reset()

		expired := make(chan struct{}, 1)
		d, err := countdown.New(timer, loader, w.Deadline,
			countdown.WithStart(w.Start),
			countdown.WithClock(opts.Clock),
			countdown.WithInterval(opts.Interval),
			countdown.WithLogger(opts.Log.WithField("reloads", reloads)),
			countdown.WithReload(func() { expired <- struct{}{} }),
		)
		if err != nil {
			return reloads, err
		}
		h, err := d.Start()
		if err != nil {
			return reloads, err
		}

		select {
		case <-ctx.Done():
			h.Stop()
			return reloads, nil
		case <-expired:
		}
		if opts.ExitOnExpire {
			return reloads, nil
		}
		reloads++
		opts.Log.WithField("reloads", reloads).Debug("reloading countdown")
	}
}
