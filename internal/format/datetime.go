package format

import (
	"time"

	"github.com/spetersoncode/reltime/internal/duration"
	"github.com/spetersoncode/reltime/internal/models"
)

// Datetime renders t as a short date in loc: "Jan 2" when t falls in now's
// year, "Jan 2, 2006" otherwise. A nil loc means UTC.
func Datetime(t, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	if t.Year() == now.In(loc).Year() {
		return t.Format("Jan 2")
	}
	return t.Format("Jan 2, 2006")
}

// Ago returns a relative phrase for t seen from now: "just now",
// "3 minutes ago", "in 2 days".
func Ago(t, now time.Time) string {
	value, unit := duration.RelativeTimeUnit(duration.Elapsed(t, duration.Second, now), now)
	if unit == duration.Second && value > -10 && value < 10 {
		return "just now"
	}
	s, err := Relative(value, unit, models.StyleLong)
	if err != nil {
		return "just now"
	}
	return s
}
