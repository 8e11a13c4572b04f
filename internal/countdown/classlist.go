package countdown

import "strings"

// ClassList is an ordered set of class tokens with DOMTokenList semantics.
// Hosts that have no DOM use it to back their elements.
type ClassList struct {
	tokens []string
}

// NewClassList returns a list holding tokens, duplicates dropped.
func NewClassList(tokens ...string) *ClassList {
	c := &ClassList{}
	for _, t := range tokens {
		c.Add(t)
	}
	return c
}

// Contains reports whether token is present.
func (c *ClassList) Contains(token string) bool {
	return c.index(token) >= 0
}

// Add appends token if missing.
func (c *ClassList) Add(token string) {
	if token == "" || c.Contains(token) {
		return
	}
	c.tokens = append(c.tokens, token)
}

// Remove drops token if present.
func (c *ClassList) Remove(token string) {
	if i := c.index(token); i >= 0 {
		c.tokens = append(c.tokens[:i], c.tokens[i+1:]...)
	}
}

// Replace swaps oldToken for newToken in place. It does nothing and returns
// false when oldToken is absent. If newToken is already present, newToken ends
// up at the earlier of the two positions and the other one is dropped.
func (c *ClassList) Replace(oldToken, newToken string) bool {
	i := c.index(oldToken)
	if i < 0 {
		return false
	}
	if oldToken == newToken {
		return true
	}
	j := c.index(newToken)
	switch {
	case j < 0:
		c.tokens[i] = newToken
	case i < j:
		c.tokens[i] = newToken
		c.tokens = append(c.tokens[:j], c.tokens[j+1:]...)
	default:
		c.tokens = append(c.tokens[:i], c.tokens[i+1:]...)
	}
	return true
}

// Severity returns the highest severity whose class is present, or Info.
func (c *ClassList) Severity() Severity {
	switch {
	case c.Contains(Error.Class()):
		return Error
	case c.Contains(Warning.Class()):
		return Warning
	default:
		return Info
	}
}

// Reset replaces every severity class with s's class, leaving other tokens alone.
func (c *ClassList) Reset(s Severity) {
	for _, sev := range []Severity{Info, Warning, Error} {
		c.Remove(sev.Class())
	}
	c.Add(s.Class())
}

func (c *ClassList) String() string {
	return strings.Join(c.tokens, " ")
}

func (c *ClassList) index(token string) int {
	for i, t := range c.tokens {
		if t == token {
			return i
		}
	}
	return -1
}
