package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { // nolint:ireturn
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(x)
		return m, cmd

	case tickCountdownMsg:
		m.clock.fire(x.ID)
		if !m.expiry.set {
			return m, m.clock.schedule(x.ID)
		}
		if m.exitOnExpire {
			m.quitting = true
			return m, tea.Quit
		}
		m.reloads++
		return m.reload()

	case reloadMsg:
		m.stop()
		return m.reload()
	}

	return m, nil
}

// reload starts a new countdown from the source, quitting on failure.
func (m Model) reload() (Model, tea.Cmd) {
	if err := m.startCountdown(); err != nil {
		m.log.WithError(err).Debug("reload failed")
		m.err = err
		m.quitting = true
		return m, tea.Quit
	}
	return m, m.clock.drain()
}
