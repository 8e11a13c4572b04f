//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/run-countdown/internal/countdown"
)

//nolint:gochecknoglobals // fixed reference time.
var t0 = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

// fakeTime is a settable wall clock for the model.
type fakeTime struct{ now time.Time }

func (f *fakeTime) Now() time.Time { return f.now }

func fixedSource(deadline, start countdown.Instant) countdown.Source {
	return func() (countdown.Window, error) {
		return countdown.Window{Deadline: deadline, Start: start}, nil
	}
}

// step advances the fake clock by one interval and delivers the tick for id.
func step(t *testing.T, m Model, ft *fakeTime, id int) (Model, tea.Cmd) {
	t.Helper()
	ft.now = ft.now.Add(countdownTickInterval)
	next, cmd := m.Update(tickCountdownMsg{ID: id})
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel_CountsDownAndEscalates(t *testing.T) {
	ft := &fakeTime{now: t0.Add(48 * time.Second)}
	m, err := NewModel(Options{
		Source: fixedSource(countdown.At(t0.Add(100*time.Second)), countdown.At(t0)),
		Now:    ft.Now,
	})
	require.NoError(t, err)
	require.NotNil(t, m.Init())
	assert.Equal(t, "00:52", m.timer.text)

	m, cmd := step(t, m, ft, 1) // 49%
	require.NotNil(t, cmd)
	assert.Equal(t, "00:51", m.timer.text)
	assert.Equal(t, countdown.Info, m.timer.severity())

	m, _ = step(t, m, ft, 1) // 50%
	assert.Equal(t, countdown.Warning, m.timer.severity())
	assert.Equal(t, countdown.Warning, m.loader.severity())

	ft.now = t0.Add(79 * time.Second)
	m, _ = step(t, m, ft, 1) // 80%
	assert.Equal(t, countdown.Error, m.timer.severity())
	assert.Equal(t, "00:20", m.timer.text)

	view := m.View()
	assert.Contains(t, view, "00:20")
	assert.Contains(t, view, "elapsed 80.0%")
	assert.Contains(t, view, "RUNNING")
}

func TestModel_ReloadsOnExpiry(t *testing.T) {
	ft := &fakeTime{now: t0}
	calls := 0
	src := func() (countdown.Window, error) {
		calls++
		return countdown.Window{Deadline: countdown.At(t0.Add(time.Duration(calls) * time.Second))}, nil
	}
	m, err := NewModel(Options{Source: src, Now: ft.Now})
	require.NoError(t, err)
	m.Init()

	m, cmd := step(t, m, ft, 1)
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.Reloads())
	assert.Equal(t, 2, calls)
	// Fresh elements after the reload, one new registration.
	assert.Equal(t, countdown.Info, m.timer.severity())
	assert.Equal(t, 1, m.clock.active())

	// The old registration is gone.
	next, cmd := m.Update(tickCountdownMsg{ID: 1})
	assert.Nil(t, cmd)

	m, _ = step(t, next.(Model), ft, 2)
	assert.Equal(t, 2, m.Reloads())
}

func TestModel_ExitOnExpire(t *testing.T) {
	ft := &fakeTime{now: t0}
	m, err := NewModel(Options{
		Source:       fixedSource(countdown.At(t0.Add(time.Second)), countdown.Instant{}),
		ExitOnExpire: true,
		Now:          ft.Now,
	})
	require.NoError(t, err)

	m, cmd := step(t, m, ft, 1)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "00:00", m.timer.text)
	assert.Zero(t, m.Reloads())
}

func TestModel_ReloadErrorQuits(t *testing.T) {
	ft := &fakeTime{now: t0}
	boom := errors.New("storage gone")
	calls := 0
	src := func() (countdown.Window, error) {
		calls++
		if calls > 1 {
			return countdown.Window{}, boom
		}
		return countdown.Window{Deadline: countdown.At(t0.Add(time.Second))}, nil
	}
	m, err := NewModel(Options{Source: src, Now: ft.Now})
	require.NoError(t, err)

	m, cmd := step(t, m, ft, 1)
	require.NotNil(t, cmd)
	require.ErrorIs(t, m.Err(), boom)
	assert.Equal(t, "Shutting down...\n", m.View())
}

func TestModel_Keys(t *testing.T) {
	ft := &fakeTime{now: t0}
	m, err := NewModel(Options{
		Source: fixedSource(countdown.At(t0.Add(time.Hour)), countdown.Instant{}),
		Now:    ft.Now,
	})
	require.NoError(t, err)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, next.(Model).helpVisible)
	assert.Contains(t, next.View(), "toggle this help")

	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	require.IsType(t, reloadMsg{}, cmd())
	next, _ = next.Update(reloadMsg{})
	assert.Equal(t, 1, next.(Model).clock.active())

	next, cmd = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, countdown.Stopped, next.(Model).driver.Snapshot().State)
}

func TestModel_NilSource(t *testing.T) {
	_, err := NewModel(Options{})
	require.Error(t, err)
}

func TestClampRatio(t *testing.T) {
	assert.InDelta(t, 0.0, clampRatio(-0.5), 0)
	assert.InDelta(t, 0.42, clampRatio(0.42), 0)
	assert.InDelta(t, 1.0, clampRatio(3), 0)
}
