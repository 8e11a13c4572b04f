// Package console hosts a countdown on a plain terminal: elements print to an
// io.Writer and a supervisor loop restarts the countdown on every reload.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/ensigniasec/run-countdown/internal/countdown"
)

// Colors shared with the TUI.
const (
	InfoColor    = "69"
	WarningColor = "208"
	ErrorColor   = "196"
)

// SeverityStyle is the lipgloss style for an element carrying s's class.
func SeverityStyle(s countdown.Severity) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch s {
	case countdown.Warning:
		return style.Foreground(lipgloss.Color(WarningColor))
	case countdown.Error:
		return style.Foreground(lipgloss.Color(ErrorColor))
	default:
		return style.Foreground(lipgloss.Color(InfoColor))
	}
}

// Element is a countdown.Element that prints its updates as lines.
type Element struct {
	mu       sync.Mutex
	out      io.Writer
	label    string
	classes  *countdown.ClassList
	initial  []string
	text     string
	showText bool
}

// NewElement returns an element that prints "<label> <text>" on every SetText.
func NewElement(out io.Writer, label string, classes ...string) *Element {
	return &Element{
		out:      out,
		label:    label,
		classes:  countdown.NewClassList(classes...),
		initial:  classes,
		showText: true,
	}
}

// NewSilentElement returns an element that only reports class changes.
func NewSilentElement(out io.Writer, label string, classes ...string) *Element {
	e := NewElement(out, label, classes...)
	e.showText = false
	return e
}

// SetText implements countdown.Element.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
	if !e.showText {
		return
	}
	fmt.Fprintf(e.out, "%s %s\n", e.label, SeverityStyle(e.classes.Severity()).Render(text))
}

// ReplaceClass implements countdown.Element.
func (e *Element) ReplaceClass(oldToken, newToken string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.classes.Replace(oldToken, newToken) {
		return false
	}
	fmt.Fprintf(e.out, "%s %s\n", e.label, SeverityStyle(e.classes.Severity()).Render("["+newToken+"]"))
	return true
}

// Text returns the last text written.
func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// Classes returns the current class list as a space-separated string.
func (e *Element) Classes() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.classes.String()
}

// Reset restores the classes the element was built with and clears its text.
func (e *Element) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classes = countdown.NewClassList(e.initial...)
	e.text = ""
}
