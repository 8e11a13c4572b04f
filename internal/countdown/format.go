// Package countdown formats the time left until a deadline and drives a pair of
// elements (a timer and a loader) once per interval until the deadline passes.
package countdown

import (
	"fmt"
	"math"
	"time"
)

// ExpiredText is written to the timer element once the deadline has passed.
const ExpiredText = "00:00"

const nanText = "NaN:NaN"

// HasTime reports whether deadline is strictly after now. Unset and invalid
// deadlines never have time left.
func HasTime(now time.Time, deadline Instant) bool {
	if !deadline.Valid() {
		return false
	}
	return deadline.Time().Sub(now) > 0
}

// FormatTimer returns the time left until deadline as "MM:SS" ("-MM:SS" once
// past) and, when start is set, how much of the start..deadline window has
// elapsed in percent. The percentage is not clamped.
func FormatTimer(now time.Time, deadline, start Instant) (string, float64) {
	return formatRemaining(now, deadline), ElapsedPercent(now, deadline, start)
}

func formatRemaining(now time.Time, deadline Instant) string {
	if !deadline.Valid() {
		return nanText
	}
	// Integer division truncates toward zero.
	remaining := int64(deadline.Time().Sub(now) / time.Second)
	minutes := remaining / 60 //nolint:mnd // seconds per minute
	seconds := remaining - minutes*60

	text := fmt.Sprintf("%02d:%02d", abs(minutes), abs(seconds))
	if remaining < 0 {
		text = "-" + text
	}
	return text
}

// ElapsedPercent returns (now-start)/(deadline-start)*100, or 0 without a start.
// Invalid inputs yield NaN; a zero-length window yields ±Inf or NaN.
func ElapsedPercent(now time.Time, deadline, start Instant) float64 {
	if !start.IsSet() {
		return 0
	}
	if !start.Valid() || !deadline.Valid() {
		return math.NaN()
	}
	passed := float64(now.Sub(start.Time()))
	total := float64(deadline.Time().Sub(start.Time()))
	return passed / total * 100 //nolint:mnd // percent
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
