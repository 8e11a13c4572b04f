package tui

import "github.com/ensigniasec/run-countdown/internal/countdown"

// viewElement is a countdown.Element whose state is read back by View.
type viewElement struct {
	text    string
	classes *countdown.ClassList
	initial []string
}

func newViewElement(classes ...string) *viewElement {
	return &viewElement{classes: countdown.NewClassList(classes...), initial: classes}
}

// SetText implements countdown.Element.
func (e *viewElement) SetText(text string) {
	e.text = text
}

// ReplaceClass implements countdown.Element.
func (e *viewElement) ReplaceClass(oldToken, newToken string) bool {
	return e.classes.Replace(oldToken, newToken)
}

func (e *viewElement) severity() countdown.Severity {
	return e.classes.Severity()
}

func (e *viewElement) reset(text string) {
	e.text = text
	e.classes = countdown.NewClassList(e.initial...)
}
