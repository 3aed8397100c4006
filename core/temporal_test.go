package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozenNow is the injected clock for relative-expression tests.
var frozenNow = time.Date(2025, 6, 15, 12, 30, 45, 0, time.UTC)

func frozenParser() *TemporalParser {
	return NewTemporalParserAt(func() time.Time { return frozenNow })
}

// TestTemporalParser_RelativeShorthand tests <N>h / <N>d resolution against
// a frozen clock.
func TestTemporalParser_RelativeShorthand(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"24h", "2025-06-14T12:30:45Z"},
		{"1h", "2025-06-15T11:30:45Z"},
		{"7d", "2025-06-08T12:30:45Z"},
		{"30d", "2025-05-16T12:30:45Z"},
		{"0h", "2025-06-15T12:30:45Z"},
	}

	p := frozenParser()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := p.Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestTemporalParser_CalendarDate tests bare-date resolution to midnight UTC.
func TestTemporalParser_CalendarDate(t *testing.T) {
	got, err := frozenParser().Parse("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T00:00:00Z", got)
}

// TestTemporalParser_InvalidCalendarDate tests that a string matching the
// date pattern but naming an impossible date fails.
func TestTemporalParser_InvalidCalendarDate(t *testing.T) {
	_, err := frozenParser().Parse("2025-13-40")
	assert.ErrorIs(t, err, ErrInvalidTemporal)
}

// TestTemporalParser_PassThrough tests that unrecognized expressions are
// forwarded unmodified; the gateway performs its own validation.
func TestTemporalParser_PassThrough(t *testing.T) {
	tests := []string{
		"2025-12-19T10:00:00Z",
		"2025-12-19T10:00:00+02:00",
		"yesterday",
		"12x",
		"7 d",
		"24hours",
	}

	p := frozenParser()
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			got, err := p.Parse(expr)
			require.NoError(t, err)
			assert.Equal(t, expr, got)
		})
	}
}

// TestTemporalParser_TrimsWhitespace tests that surrounding whitespace does
// not defeat pattern matching.
func TestTemporalParser_TrimsWhitespace(t *testing.T) {
	got, err := frozenParser().Parse("  24h  ")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-14T12:30:45Z", got)
}

// TestTemporalParser_Overflow tests that an absurdly large count fails
// rather than wrapping.
func TestTemporalParser_Overflow(t *testing.T) {
	_, err := frozenParser().Parse("99999999999999999999h")
	assert.ErrorIs(t, err, ErrInvalidTemporal)
}
