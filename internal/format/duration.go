package format

import (
	"fmt"
	"strings"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/models"
)

type durationNames struct {
	long, longOther   string
	short, shortOther string
	narrow            string
}

var durationUnits = map[duration.Unit]durationNames{
	duration.Year:        {"year", "years", "yr", "yrs", "y"},
	duration.Month:       {"month", "months", "mth", "mths", "mo"},
	duration.Week:        {"week", "weeks", "wk", "wks", "w"},
	duration.Day:         {"day", "days", "day", "days", "d"},
	duration.Hour:        {"hour", "hours", "hr", "hr", "h"},
	duration.Minute:      {"minute", "minutes", "min", "min", "m"},
	duration.Second:      {"second", "seconds", "sec", "sec", "s"},
	duration.Millisecond: {"millisecond", "milliseconds", "ms", "ms", "ms"},
}

func durationPart(n int, u duration.Unit, style models.Style) string {
	nm := durationUnits[u]
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
			return fmt.Sprintf("%d %s", n, nm.long)
		}
		return fmt.Sprintf("%d %s", n, nm.longOther)
	}
}

// DurationText lists the nonzero fields of d's magnitude from largest to
// smallest: "4 hours, 2 minutes", "4 hr, 2 min" or "4h 2m". A blank duration
// renders as an empty string; use DurationZero for its text.
func DurationText(d duration.Duration, style models.Style) string {
	abs := d.Abs()
	var parts []string
	for _, u := range duration.Units {
		if v := abs.Field(u); v != 0 {
			parts = append(parts, durationPart(v, u, style))
		}
	}
	if style == models.StyleNarrow {
		return strings.Join(parts, " ")
	}
	return strings.Join(parts, ", ")
}

// DurationZero renders zero of unit: "0 seconds", "0 sec", "0s".
func DurationZero(unit duration.Unit, style models.Style) string {
	if !unit.IsValid() {
		unit = duration.Second
	}
	return durationPart(0, unit, style)
}
