package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativePattern matches relative shorthand expressions like "24h" or "7d".
// The whole string must match; "24hours" or "7d ago" fall through to the
// pass-through branch.
var relativePattern = regexp.MustCompile(`^(\d+)([hd])$`)

// datePattern matches a bare calendar date (YYYY-MM-DD).
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// TemporalParser resolves user-supplied "since" expressions into canonical
// absolute UTC timestamps. The clock is injectable so tests can freeze "now".
type TemporalParser struct {
	now func() time.Time
}

// NewTemporalParser creates a parser backed by the wall clock.
func NewTemporalParser() *TemporalParser {
	return &TemporalParser{now: time.Now}
}

// NewTemporalParserAt creates a parser with a fixed clock.
func NewTemporalParserAt(now func() time.Time) *TemporalParser {
	return &TemporalParser{now: now}
}

// Parse resolves a since-expression. Recognized forms, tried in order:
//
//  1. Relative shorthand "<N>h" / "<N>d" -> now minus N hours/days.
//  2. Calendar date "YYYY-MM-DD" -> that date at 00:00:00 UTC.
//  3. Anything else passes through unmodified. The gateway performs its own
//     timestamp validation, so free-form input is forwarded rather than
//     rejected here.
//
// Resolved timestamps are serialized RFC3339 with a literal "Z" suffix.
func (p *TemporalParser) Parse(expr string) (string, error) {
	expr = strings.TrimSpace(expr)

	if m := relativePattern.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidTemporal, expr)
		}
		d := time.Duration(n) * time.Hour
		if m[2] == "d" {
			d = time.Duration(n) * 24 * time.Hour
		}
		return asUTC(p.now().Add(-d)), nil
	}

	if datePattern.MatchString(expr) {
		t, err := time.ParseInLocation("2006-01-02", expr, time.UTC)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidTemporal, expr)
		}
		return asUTC(t), nil
	}

	return expr, nil
}

// asUTC serializes an instant as RFC3339 UTC with a "Z" suffix, the form the
// gateway's timestamp columns compare against.
func asUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
