//go:build js && wasm

// Package dom binds the countdown to a browser document: elements resolved by
// CSS selector, timers on the page's event loop, and a page reload on expiry.
package dom

import (
	"errors"
	"fmt"
	"syscall/js"
)

// ErrElementNotFound is returned when a selector matches nothing.
var ErrElementNotFound = errors.New("dom: no element matches selector")

// Element wraps a DOM node.
type Element struct {
	node js.Value
}

// Query returns the first element matching selector.
func Query(selector string) (*Element, error) {
	node := js.Global().Get("document").Call("querySelector", selector)
	if node.IsNull() || node.IsUndefined() {
		return nil, fmt.Errorf("%w: %q", ErrElementNotFound, selector)
	}
	return &Element{node: node}, nil
}

// SetText implements countdown.Element.
func (e *Element) SetText(text string) {
	e.node.Set("textContent", text)
}

// ReplaceClass implements countdown.Element via classList.replace.
func (e *Element) ReplaceClass(oldToken, newToken string) bool {
	return e.node.Get("classList").Call("replace", oldToken, newToken).Bool()
}

// Reload navigates the page to itself.
func Reload() {
	js.Global().Get("location").Call("reload")
}
