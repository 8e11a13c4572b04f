//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package countdown

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoglobals // fixed reference time shared by table tests.
var t0 = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func TestHasTime(t *testing.T) {
	tests := []struct {
		name     string
		deadline Instant
		want     bool
	}{
		{"future", At(t0.Add(time.Second)), true},
		{"just ahead", At(t0.Add(time.Millisecond)), true},
		{"equal", At(t0), false},
		{"past", At(t0.Add(-time.Minute)), false},
		{"unset", Instant{}, false},
		{"invalid", Invalid(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasTime(t0, tt.deadline))
		})
	}
}

func TestFormatTimer_Text(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   string
	}{
		{"sixty five seconds", 65 * time.Second, "01:05"},
		{"five seconds", 5 * time.Second, "00:05"},
		{"negative five seconds", -5 * time.Second, "-00:05"},
		{"fraction truncates", 5*time.Second + 900*time.Millisecond, "00:05"},
		{"sub second past is unsigned", -400 * time.Millisecond, "00:00"},
		{"negative minutes", -(3*time.Minute + 12*time.Second), "-03:12"},
		{"minutes wider than two digits", 120 * time.Minute, "120:00"},
		{"zero", 0, "00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, pct := FormatTimer(t0, At(t0.Add(tt.offset)), Instant{})
			assert.Equal(t, tt.want, text)
			assert.Zero(t, pct)
		})
	}
}

func TestFormatTimer_ElapsedPercent(t *testing.T) {
	start := At(t0)
	deadline := At(t0.Add(100 * time.Second))

	_, pct := FormatTimer(t0.Add(50*time.Second), deadline, start)
	require.InDelta(t, 50.0, pct, 0)

	// Not clamped in either direction.
	_, pct = FormatTimer(t0.Add(150*time.Second), deadline, start)
	assert.InDelta(t, 150.0, pct, 1e-9)
	_, pct = FormatTimer(t0.Add(-10*time.Second), deadline, start)
	assert.InDelta(t, -10.0, pct, 1e-9)
}

func TestFormatTimer_Pure(t *testing.T) {
	now := t0.Add(42 * time.Second)
	deadline := At(t0.Add(90 * time.Second))
	start := At(t0)

	text1, pct1 := FormatTimer(now, deadline, start)
	text2, pct2 := FormatTimer(now, deadline, start)
	assert.Equal(t, text1, text2)
	assert.Equal(t, pct1, pct2) //nolint:testifylint // exact equality is the property under test
	assert.Equal(t, "00:48", text1)
}

func TestFormatTimer_Malformed(t *testing.T) {
	text, pct := FormatTimer(t0, Parse("not a date"), Instant{})
	assert.Equal(t, "NaN:NaN", text)
	assert.Zero(t, pct)

	text, pct = FormatTimer(t0, Parse("not a date"), At(t0))
	assert.Equal(t, "NaN:NaN", text)
	assert.True(t, math.IsNaN(pct))

	text, pct = FormatTimer(t0, At(t0.Add(time.Minute)), Parse("garbage"))
	assert.Equal(t, "01:00", text)
	assert.True(t, math.IsNaN(pct))
}

func TestFormatTimer_ZeroLengthWindow(t *testing.T) {
	_, pct := FormatTimer(t0.Add(time.Second), At(t0), At(t0))
	assert.True(t, math.IsInf(pct, 1))

	_, pct = FormatTimer(t0, At(t0), At(t0))
	assert.True(t, math.IsNaN(pct))
}

func TestParse(t *testing.T) {
	in := ParseIn("2025-03-14T09:00:00Z", time.UTC)
	require.True(t, in.Valid())
	assert.True(t, in.Time().Equal(t0))

	local := ParseIn("2025-03-14 09:00:00", time.UTC)
	require.True(t, local.Valid())
	assert.True(t, local.Time().Equal(t0))

	assert.False(t, Parse("").IsSet())
	assert.False(t, Parse("   ").IsSet())

	bad := Parse("tomorrow-ish")
	assert.True(t, bad.IsSet())
	assert.False(t, bad.Valid())
	assert.Equal(t, "Invalid Date", bad.String())
}
