package countdown

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type instantState int

const (
	instantUnset instantState = iota
	instantInvalid
	instantValid
)

// Instant is a parsed date-like value. The zero value is unset, which is how an
// optional start is left out. An Instant built from a value the parser rejects
// is invalid: it compares false against everything and formats as NaN.
type Instant struct {
	t     time.Time
	state instantState
}

// At returns a valid Instant for t.
func At(t time.Time) Instant {
	return Instant{t: t, state: instantValid}
}

// Invalid returns an Instant that is set but holds no time.
func Invalid() Instant {
	return Instant{state: instantInvalid}
}

// Parse interprets value the way a loose date constructor would: ISO 8601 and
// the many layouts dateparse recognizes, zone-less values in local time, and
// bare digits as an epoch timestamp. An empty value yields an unset Instant.
func Parse(value string) Instant {
	return ParseIn(value, time.Local)
}

// ParseIn is Parse with an explicit location for zone-less values.
func ParseIn(value string, loc *time.Location) Instant {
	value = strings.TrimSpace(value)
	if value == "" {
		return Instant{}
	}
	t, err := dateparse.ParseIn(value, loc)
	if err != nil {
		return Invalid()
	}
	return At(t)
}

// IsSet reports whether the Instant carries a value, valid or not.
func (i Instant) IsSet() bool {
	return i.state != instantUnset
}

// Valid reports whether the Instant holds a usable time.
func (i Instant) Valid() bool {
	return i.state == instantValid
}

// Time returns the underlying time; the zero time unless Valid.
func (i Instant) Time() time.Time {
	return i.t
}

func (i Instant) String() string {
	switch i.state {
	case instantValid:
		return i.t.Format(time.RFC3339)
	case instantInvalid:
		return "Invalid Date"
	default:
		return ""
	}
}

// Window is the deadline and optional start a driver counts against.
type Window struct {
	Deadline Instant
	Start    Instant
}

// Source produces a fresh Window. Hosts call it on every reload.
type Source func() (Window, error)
