package countdown

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/run-countdown/internal/clock"
)

// DefaultInterval is how often a running driver refreshes its elements.
const DefaultInterval = time.Second

var (
	// ErrNoElement is returned when a driver is built without a timer or loader.
	ErrNoElement = errors.New("countdown: missing element")
	// ErrAlreadyStarted is returned by Start on a driver that already ran.
	ErrAlreadyStarted = errors.New("countdown: driver already started")
)

// Element is the surface a driver writes to.
type Element interface {
	// SetText replaces the element's text content.
	SetText(text string)
	// ReplaceClass swaps oldToken for newToken if the element carries oldToken.
	ReplaceClass(oldToken, newToken string) bool
}

// State is the driver lifecycle.
type State int

const (
	Idle State = iota
	Running
	Expired
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Expired:
		return "expired"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Snapshot is what the driver last wrote.
type Snapshot struct {
	Text     string
	Percent  float64
	Severity Severity
	State    State
	Ticks    int
}

// Option configures a Driver.
type Option func(*Driver)

// WithStart sets the start of the window used for the elapsed percentage.
func WithStart(start Instant) Option {
	return func(d *Driver) {
		d.start = start
	}
}

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option {
	return func(d *Driver) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithInterval changes the refresh interval.
func WithInterval(interval time.Duration) Option {
	return func(d *Driver) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithReload sets the hook invoked once when the deadline passes.
func WithReload(reload func()) Option {
	return func(d *Driver) {
		if reload != nil {
			d.reload = reload
		}
	}
}

// WithLogger sets the entry transitions are logged to.
func WithLogger(log *logrus.Entry) Option {
	return func(d *Driver) {
		if log != nil {
			d.log = log
		}
	}
}

// WithInitialSeverity tells the driver which class the elements carry at start.
func WithInitialSeverity(s Severity) Option {
	return func(d *Driver) {
		d.severity = s
	}
}

// Driver refreshes a timer and a loader element until a deadline passes.
type Driver struct {
	timer    Element
	loader   Element
	deadline Instant
	start    Instant
	clock    clock.Clock
	interval time.Duration
	reload   func()
	log      *logrus.Entry

	mu       sync.Mutex
	state    State
	severity Severity
	last     Snapshot
	handle   *Handle
}

// New builds an idle driver. Call Start to begin ticking.
func New(timer, loader Element, deadline Instant, opts ...Option) (*Driver, error) {
	if timer == nil || loader == nil {
		return nil, ErrNoElement
	}
	d := &Driver{
		timer:    timer,
		loader:   loader,
		deadline: deadline,
		clock:    clock.NewReal(),
		interval: DefaultInterval,
		reload:   func() {},
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.WithField("deadline", deadline.String())
	d.last = Snapshot{Severity: d.severity, State: Idle}
	return d, nil
}

// Start registers the repeating callback. The first refresh happens one
// interval after Start, as with setInterval.
func (d *Driver) Start() (*Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Idle {
		return nil, ErrAlreadyStarted
	}
	d.state = Running
	d.last.State = Running
	h := &Handle{driver: d, done: make(chan struct{})}
	d.handle = h
	h.timer = d.clock.Every(d.interval, d.tick)
	d.log.WithField("interval", d.interval).Debug("countdown started")
	return h, nil
}

// Snapshot returns what the driver last wrote.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Deadline returns the deadline the driver counts toward.
func (d *Driver) Deadline() Instant {
	return d.deadline
}

func (d *Driver) tick() {
	d.mu.Lock()
	if d.state != Running {
		d.mu.Unlock()
		return
	}
	now := d.clock.Now()
	text, percent := FormatTimer(now, d.deadline, d.start)
	d.last.Ticks++
	d.last.Percent = percent

	if next := Escalate(d.severity, percent); next != d.severity {
		escalateClasses(d.timer, next)
		escalateClasses(d.loader, next)
		d.log.WithFields(logrus.Fields{"severity": next, "percent": percent}).Debug("countdown escalated")
		d.severity = next
		d.last.Severity = next
	}

	if HasTime(now, d.deadline) {
		d.timer.SetText(text)
		d.last.Text = text
		d.mu.Unlock()
		return
	}

	d.timer.SetText(ExpiredText)
	d.last.Text = ExpiredText
	d.finishLocked(Expired)
	reload := d.reload
	d.mu.Unlock()

	d.log.Debug("countdown expired, reloading")
	reload()
}

// escalateClasses moves el to s's class from whichever lower class it carries,
// so markup that starts above the driver's idea of the severity still escalates.
func escalateClasses(el Element, s Severity) {
	switch s {
	case Warning:
		el.ReplaceClass(Info.Class(), Warning.Class())
	case Error:
		el.ReplaceClass(Info.Class(), Error.Class())
		el.ReplaceClass(Warning.Class(), Error.Class())
	}
}

// finishLocked moves a running driver to a terminal state and cancels its callback.
func (d *Driver) finishLocked(state State) bool {
	if d.state != Running {
		return false
	}
	d.state = state
	d.last.State = state
	d.handle.timer.Stop()
	close(d.handle.done)
	return true
}

// Handle controls a started driver.
type Handle struct {
	driver *Driver
	timer  clock.Timer
	done   chan struct{}
}

// Stop cancels the driver if it is still running. It is safe to call more than once.
func (h *Handle) Stop() {
	h.driver.mu.Lock()
	defer h.driver.mu.Unlock()
	if h.driver.finishLocked(Stopped) {
		h.driver.log.Debug("countdown stopped")
	}
}

// Done is closed once the driver has expired or been stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// State returns the driver's current state.
func (h *Handle) State() State {
	return h.driver.Snapshot().State
}
