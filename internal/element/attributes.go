package element

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/models"
)

// ErrUnresolvableInstant is returned when a datetime attribute cannot be parsed.
var ErrUnresolvableInstant = errors.New("unresolvable instant")

// Attributes configure how an element renders its target.
type Attributes struct {
	// Datetime is RFC 3339 text, or a date or date-time without an offset.
	Datetime  string
	Format    models.Format
	Tense     models.Tense
	Precision duration.Unit
	// Threshold is how far from now auto and relative formats keep relative text.
	Threshold duration.Duration
	Style     models.Style
	// Prefix is put before absolute dates in auto and relative formats.
	Prefix string
	// TimeZone is used for absolute dates and for date-times without an offset.
	TimeZone *time.Location
	// Fallback is shown while Datetime cannot be resolved.
	Fallback string
}

// DefaultAttributes returns the attributes used for anything left unset.
func DefaultAttributes() Attributes {
	return Attributes{
		Format:    models.FormatAuto,
		Tense:     models.TenseAuto,
		Precision: duration.Second,
		Threshold: duration.Duration{Days: 30},
		Style:     models.StyleLong,
		Prefix:    "on",
		TimeZone:  time.UTC,
	}
}

// FromTimestamp builds attributes for a board entry.
func FromTimestamp(ts *models.Timestamp) Attributes {
	a := DefaultAttributes()
	a.Datetime = ts.Datetime
	a.Precision = ts.Precision
	if ts.Format != "" {
		a.Format = ts.Format
	}
	if ts.Tense != "" {
		a.Tense = ts.Tense
	}
	if ts.Style != "" {
		a.Style = ts.Style
	}
	if !ts.Threshold.Blank() {
		a.Threshold = ts.Threshold
	}
	return a
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseDatetime parses s as an instant. Text with an offset is absolute;
// date-times without one are read in loc and bare dates are read as UTC
// midnight. Failures wrap ErrUnresolvableInstant.
func ParseDatetime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty datetime", ErrUnresolvableInstant)
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(datetimeLayouts[0], s); err == nil {
		return t, nil
	}
	for _, layout := range datetimeLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnresolvableInstant, s)
}
