package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// Run starts the Bubble Tea countdown and blocks until the user quits, the
// deadline passes with ExitOnExpire set, or ctx is canceled. It returns the
// number of reloads performed.
func Run(ctx context.Context, opts Options) (int, error) {
	model, err := NewModel(opts)
	if err != nil {
		return 0, err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Silence external logs (WARN/ERRO) during TUI to avoid corrupting the view.
	prevOut := logrus.StandardLogger().Out
	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(prevOut)

	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.stop()
		if m.err != nil {
			return m.reloads, m.err
		}
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return m.reloads, nil
		}
		return m.reloads, err
	}
	return 0, err
}
