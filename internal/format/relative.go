// Package format renders engine output as English text.
package format

import (
	"errors"
	"fmt"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/models"
)

// ErrInvalidUnit is returned when relative text is requested for a unit with
// no phrasing.
var ErrInvalidUnit = errors.New("invalid unit")

type unitNames struct {
	one, other string // long forms
	short      string
	shortOther string
	narrow     string
}

var names = map[duration.Unit]unitNames{
	duration.Year:        {"year", "years", "yr.", "yr.", "y"},
	duration.Month:       {"month", "months", "mo.", "mo.", "mo"},
	duration.Week:        {"week", "weeks", "wk.", "wk.", "w"},
	duration.Day:         {"day", "days", "day", "days", "d"},
	duration.Hour:        {"hour", "hours", "hr.", "hr.", "h"},
	duration.Minute:      {"minute", "minutes", "min.", "min.", "m"},
	duration.Second:      {"second", "seconds", "sec.", "sec.", "s"},
	duration.Millisecond: {"millisecond", "milliseconds", "ms", "ms", "ms"},
}

// Relative phrases that replace the numeric form for -1, 0 and 1.
var special = map[duration.Unit]map[int]string{
	duration.Year:   {-1: "last year", 0: "this year", 1: "next year"},
	duration.Month:  {-1: "last month", 0: "this month", 1: "next month"},
	duration.Week:   {-1: "last week", 0: "this week", 1: "next week"},
	duration.Day:    {-1: "yesterday", 0: "today", 1: "tomorrow"},
	duration.Hour:   {0: "this hour"},
	duration.Minute: {0: "this minute"},
	duration.Second: {0: "now"},
}

var shortSpecial = map[duration.Unit]map[int]string{
	duration.Year:  {-1: "last yr.", 0: "this yr.", 1: "next yr."},
	duration.Month: {-1: "last mo.", 0: "this mo.", 1: "next mo."},
	duration.Week:  {-1: "last wk.", 0: "this wk.", 1: "next wk."},
}

// Relative phrases value units of unit relative to now: "3 minutes ago",
// "in 2 days", "yesterday". Negative values are in the past. Only year through
// second are supported; any other unit returns ErrInvalidUnit.
func Relative(value int, unit duration.Unit, style models.Style) (string, error) {
	if !unit.IsValid() || unit == duration.Millisecond {
		return "", fmt.Errorf("%w: %s", ErrInvalidUnit, unit)
	}
	if style != models.StyleLong {
		if phrase, ok := shortSpecial[unit][value]; ok {
			return phrase, nil
		}
	}
	if phrase, ok := special[unit][value]; ok {
		return phrase, nil
	}

	n := value
	if n < 0 {
		n = -n
	}
	quantity := Quantity(n, unit, style)
	if value < 0 {
		return quantity + " ago", nil
	}
	return "in " + quantity, nil
}

// Quantity renders a non-negative count with its unit name: "3 minutes",
// "3 min.", "3m".
func Quantity(n int, unit duration.Unit, style models.Style) string {
	nm := names[unit]
	switch style {
	case models.StyleNarrow:
		return fmt.Sprintf("%d%s", n, nm.narrow)
	case models.StyleShort:
		if n == 1 {
			return fmt.Sprintf("%d %s", n, nm.short)
		}
		return fmt.Sprintf("%d %s", n, nm.shortOther)
	default:
		if n == 1 {
			return fmt.Sprintf("%d %s", n, nm.one)
		}
		return fmt.Sprintf("%d %s", n, nm.other)
	}
}
