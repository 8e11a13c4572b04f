package tui

// Message types for Bubble Tea update loop.

// tickCountdownMsg fires once per interval for the loop clock registration ID.
type tickCountdownMsg struct{ ID int }

// reloadMsg asks the model to reload its window from the source.
type reloadMsg struct{}
