package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/run-countdown/internal/console"
	"github.com/ensigniasec/run-countdown/internal/countdown"
)

// Options configures the countdown view.
type Options struct {
	Title        string
	Source       countdown.Source
	ExitOnExpire bool
	Interval     time.Duration
	// Now overrides the wall clock; tests pin it.
	Now func() time.Time
	Log *logrus.Entry
}

// expiryFlag is shared by every copy of a Model so the driver's reload hook,
// which runs inside Update, can hand the expiry back to it.
type expiryFlag struct{ set bool }

// Model is the root Bubble Tea model.
type Model struct {
	title        string
	source       countdown.Source
	exitOnExpire bool
	interval     time.Duration
	log          *logrus.Entry

	clock  *loopClock
	timer  *viewElement
	loader *viewElement
	driver *countdown.Driver
	handle *countdown.Handle
	window countdown.Window
	expiry *expiryFlag

	progress    progress.Model
	keys        keyMap
	helpVisible bool
	reloads     int
	width       int
	height      int
	quitting    bool
	err         error
}

// NewModel constructs a Model and starts its first countdown.
func NewModel(opts Options) (Model, error) {
	if opts.Source == nil {
		return Model{}, errors.New("tui: nil countdown source")
	}
	if opts.Interval <= 0 {
		opts.Interval = countdownTickInterval
	}
	if opts.Log == nil {
		opts.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	m := Model{
		title:        opts.Title,
		source:       opts.Source,
		exitOnExpire: opts.ExitOnExpire,
		interval:     opts.Interval,
		log:          opts.Log,
		clock:        newLoopClock(opts.Now),
		timer:        newViewElement("timer", countdown.Info.Class()),
		loader:       newViewElement("loader", countdown.Info.Class()),
		expiry:       &expiryFlag{},
		progress:     progress.New(progress.WithSolidFill(console.InfoColor), progress.WithoutPercentage()),
		keys:         newKeyMap(),
	}
	if err := m.startCountdown(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.clock.drain()
}

// startCountdown loads a window from the source and starts a fresh driver on
// reset elements, the way a page reload re-renders the widget.
func (m *Model) startCountdown() error {
	w, err := m.source()
	if err != nil {
		return err
	}
	m.window = w
	text, _ := countdown.FormatTimer(m.clock.Now(), w.Deadline, w.Start)
	m.timer.reset(text)
	m.loader.reset("")
	m.expiry.set = false

	expiry := m.expiry
	d, err := countdown.New(m.timer, m.loader, w.Deadline,
		countdown.WithStart(w.Start),
		countdown.WithClock(m.clock),
		countdown.WithInterval(m.interval),
		countdown.WithLogger(m.log.WithField("reloads", m.reloads)),
		countdown.WithReload(func() { expiry.set = true }),
	)
	if err != nil {
		return err
	}
	h, err := d.Start()
	if err != nil {
		return err
	}
	m.driver = d
	m.handle = h
	return nil
}

// stop cancels the running driver, if any.
func (m *Model) stop() {
	if m.handle != nil {
		m.handle.Stop()
	}
}

// Reloads returns how many times the countdown has been reloaded.
func (m Model) Reloads() int {
	return m.reloads
}

// Err returns the error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}
