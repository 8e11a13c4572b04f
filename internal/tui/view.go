package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ensigniasec/run-countdown/internal/console"
	"github.com/ensigniasec/run-countdown/internal/countdown"
)

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	width := rightViewportMax
	if m.width > 0 && m.width < width {
		width = m.width
	}

	var b strings.Builder
	if m.helpVisible {
		b.WriteString(renderHelp())
		b.WriteString("\n\n")
	}
	b.WriteString(renderHeader(m.title))
	b.WriteString("\n")

	// Countdown (left) and state badge (right), aligned to the view width.
	snap := m.driver.Snapshot()
	countdownText := renderCountdown(m.timer)
	badge := stateBadge(snap.State)
	pad := width - lipgloss.Width(countdownText) - lipgloss.Width(badge)
	if pad < 1 {
		pad = 1
	}
	b.WriteString(countdownText)
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(badge)
	b.WriteString("\n")

	b.WriteString(renderProgress(m, snap.Percent, width))
	b.WriteString("\n")
	b.WriteString(renderDetails(m, snap))
	b.WriteString("\n\n")
	b.WriteString(renderFooter())
	return b.String()
}

func renderHeader(title string) string {
	if title == "" {
		title = "Countdown"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(titleColor)).Render(title + "\n")
}

func renderCountdown(timer *viewElement) string {
	style := console.SeverityStyle(timer.severity())
	return fmt.Sprintf("⏰ Time remaining: %s", style.Render(timer.text))
}

func stateBadge(s countdown.State) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch s {
	case countdown.Expired:
		return style.Foreground(lipgloss.Color(console.ErrorColor)).Render("EXPIRED")
	case countdown.Stopped:
		return style.Foreground(lipgloss.Color(titleColor)).Render("STOPPED")
	default:
		return style.Foreground(lipgloss.Color("46")).Render("RUNNING")
	}
}

// renderProgress draws the loader. Only the drawing is clamped; the percentage
// shown beside it is the raw value.
func renderProgress(m Model, percent float64, width int) string {
	bar := m.progress
	bar.Width = width
	if bar.Width < progressMinWidth {
		bar.Width = progressMinWidth
	}
	switch m.loader.severity() {
	case countdown.Warning:
		bar.FullColor = console.WarningColor
	case countdown.Error:
		bar.FullColor = console.ErrorColor
	default:
		bar.FullColor = console.InfoColor
	}
	return bar.ViewAs(clampRatio(percent / percentScale))
}

func clampRatio(r float64) float64 {
	switch {
	case math.IsNaN(r), r < 0:
		return 0
	case r > 1:
		return 1
	default:
		return r
	}
}

func renderDetails(m Model, snap countdown.Snapshot) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(titleColor))
	parts := []string{"deadline " + m.window.Deadline.String()}
	if m.window.Start.IsSet() {
		parts = append(parts, fmt.Sprintf("elapsed %.1f%%", snap.Percent))
	}
	if m.reloads > 0 {
		parts = append(parts, fmt.Sprintf("reloads %d", m.reloads))
	}
	return style.Render(strings.Join(parts, " • "))
}

func renderFooter() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(footerColor)).Render("esc/q: quit • r: reload • h/?: help")
}

func renderHelp() string {
	border := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Foreground(lipgloss.Color(helpColor))
	content := []string{
		"Help",
		"",
		"h/?: toggle this help",
		"q/ctrl+c: quit",
		"r: reload the deadline now",
		"",
		"The timer turns warning at 50% elapsed and error at 80%.",
	}
	return border.Render(strings.Join(content, "\n"))
}
