package element

import (
	"time"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/format"
	"github.com/spetersoncode/reltime/internal/models"
)

// Zero duration shown by the micro format when the value is blank or on the
// wrong side of now.
var microEmpty = duration.Duration{Minutes: 1}

// resolvedFormat is the rendering path chosen for one computation.
type resolvedFormat int

const (
	pathDatetime resolvedFormat = iota
	pathRelative
	pathDuration
)

// Render computes the text for a at now.
func Render(a Attributes, now time.Time) (string, error) {
	target, err := ParseDatetime(a.Datetime, a.TimeZone)
	if err != nil {
		return a.Fallback, nil
	}
	return render(a, target, now)
}

func render(a Attributes, target, now time.Time) (string, error) {
	elapsed := duration.Elapsed(target, a.Precision, now)
	switch resolve(a, elapsed, now) {
	case pathDuration:
		return durationText(a, elapsed, now), nil
	case pathRelative:
		return relativeText(a, elapsed, now)
	default:
		text := format.Datetime(target, now, a.TimeZone)
		if a.Prefix != "" && (a.Format == models.FormatAuto || a.Format == models.FormatRelative) {
			text = a.Prefix + " " + text
		}
		return text, nil
	}
}

func resolve(a Attributes, elapsed duration.Duration, now time.Time) resolvedFormat {
	switch {
	case a.Format == models.FormatDatetime:
		return pathDatetime
	case a.Format.IsDuration():
		return pathDuration
	case a.Format == models.FormatAuto || a.Format == models.FormatRelative:
		if a.Tense == models.TensePast || a.Tense == models.TenseFuture {
			return pathRelative
		}
		if duration.CompareAt(elapsed, a.Threshold, now) == 1 {
			return pathRelative
		}
	}
	return pathDatetime
}

// wrongTense reports whether d falls on the side of now the tense excludes.
func wrongTense(t models.Tense, d duration.Duration) bool {
	return (t == models.TenseFuture && d.Sign() != 1) || (t == models.TensePast && d.Sign() != -1)
}

func relativeText(a Attributes, d duration.Duration, now time.Time) (string, error) {
	if wrongTense(a.Tense, d) {
		d = duration.Zero
	}
	value, unit := duration.RelativeTimeUnit(d, now)
	if unit == duration.Second && value > -10 && value < 10 {
		value, unit = 0, a.Precision
		if unit == duration.Millisecond {
			unit = duration.Second
		}
	}
	return format.Relative(value, unit, a.Style)
}

func durationText(a Attributes, d duration.Duration, now time.Time) string {
	style, empty := a.Style, duration.Zero
	if a.Format == models.FormatMicro {
		style, empty = models.StyleNarrow, microEmpty
		d = duration.Round(d, now)
	}
	if wrongTense(a.Tense, d) {
		d = empty
	}
	if d.Blank() {
		if a.Format == models.FormatMicro {
			return format.DurationText(microEmpty, style)
		}
		return format.DurationZero(a.Precision, style)
	}
	return format.DurationText(d, style)
}
