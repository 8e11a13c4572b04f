package tui

import "time"

// Package-level constants to avoid magic numbers and improve readability.
const (
	countdownTickSeconds = 1
	rightViewportMax     = 60
	progressMinWidth     = 10
	percentScale         = 100

	titleColor  = "241"
	footerColor = "241"
	helpColor   = "69"

	countdownTickInterval = time.Duration(countdownTickSeconds) * time.Second
)
