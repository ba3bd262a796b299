package duration

import (
	"math"
	"time"
)

// Rounding thresholds used by Round. They are a display policy tuned for
// "roughly N units" phrasing rather than exact arithmetic.
const (
	// MillisecondCarry: milliseconds at or above this round into seconds.
	MillisecondCarry = 900
	// SecondCarry: seconds at or above this round into minutes.
	SecondCarry = 55
	// MinuteCarry: minutes at or above this round into hours.
	MinuteCarry = 55
	// HourCarryWithDays: hours at or above this round into an existing day count.
	HourCarryWithDays = 12
	// HourCarry: hours at or above this become a day when there is no day count.
	HourCarry = 21
	// CalendarDays: day counts at or above this are measured against the calendar,
	// and calendar distances below it stay in days or weeks.
	CalendarDays = 27
	// WeekCarry: day counts at or above this round into weeks.
	WeekCarry = 6
	// MonthCarry: week counts at or above this round into months.
	MonthCarry = 4
	// MaxMonths is the largest month distance reported before switching to years.
	MaxMonths = 11
)

// Round collapses d to the single most meaningful unit, measuring month and year
// lengths against the calendar around ref.
//
// The cascade works on absolute values and reapplies the sign at the end. Each carry
// step runs unconditionally and in order, so a later step can override an earlier
// one. Calendar arithmetic uses ref's location.
func Round(d Duration, ref time.Time) Duration {
	if d.Blank() {
		return d
	}
	sign := d.Sign()
	a := d.Abs()
	years, months, weeks, days := a.Years, a.Months, a.Weeks, a.Days
	hours, minutes, seconds, ms := a.Hours, a.Minutes, a.Seconds, a.Milliseconds

	if ms >= MillisecondCarry {
		seconds += roundDiv(ms, msPerSecond)
	}
	if seconds != 0 || minutes != 0 || hours != 0 || days != 0 || weeks != 0 || months != 0 || years != 0 {
		ms = 0
	}

	if seconds >= SecondCarry {
		minutes += roundDiv(seconds, secondsPerMin)
	}
	if minutes != 0 || hours != 0 || days != 0 || weeks != 0 || months != 0 || years != 0 {
		seconds = 0
	}

	if minutes >= MinuteCarry {
		hours += roundDiv(minutes, minutesPerHour)
	}
	if hours != 0 || days != 0 || weeks != 0 || months != 0 || years != 0 {
		minutes = 0
	}

	if days != 0 && hours >= HourCarryWithDays {
		days += roundDiv(hours, hoursPerDay)
	}
	if days == 0 && hours >= HourCarry {
		days += roundDiv(hours, hoursPerDay)
	}
	if days != 0 || weeks != 0 || months != 0 || years != 0 {
		hours = 0
	}

	if days >= CalendarDays || years != 0 || months != 0 || days != 0 {
		span := measure(ref, sign, years, months, days)
		switch {
		case span.days < CalendarDays:
			if days >= WeekCarry {
				weeks += roundDiv(days, 7)
				days = 0
			} else {
				days = span.days
			}
			months, years = 0, 0
		case span.months <= MaxMonths:
			months = span.months
			years = 0
		default:
			months, days = 0, 0
			years = span.years * sign
		}
		if months != 0 || years != 0 {
			days = 0
		}
	}
	if years != 0 {
		months = 0
	}

	if weeks >= MonthCarry {
		months += roundDiv(weeks, MonthCarry)
	}
	if months != 0 || years != 0 {
		weeks = 0
	}
	if days != 0 && weeks != 0 && months == 0 && years == 0 {
		weeks += roundDiv(days, 7)
		days = 0
	}

	return Duration{
		Years:        years * sign,
		Months:       months * sign,
		Weeks:        weeks * sign,
		Days:         days * sign,
		Hours:        hours * sign,
		Minutes:      minutes * sign,
		Seconds:      seconds * sign,
		Milliseconds: ms * sign,
	}
}

// calendarSpan is the real distance between ref and ref shifted by a duration.
type calendarSpan struct {
	years  int // signed calendar-year difference
	months int // absolute calendar-month difference
	days   int // absolute day difference, plus any month-end clamp
}

// measure shifts ref by the signed years, months and days and reports how far the
// result lands on the calendar. When ref's day of month does not exist in the target
// month (the 31st shifted into a 30-day month), the day is clamped to the month end
// and the clamp is added back to the day distance.
func measure(ref time.Time, sign, years, months, days int) calendarSpan {
	y, mo, dd := ref.Date()

	lastDay := at(ref, y, mo+time.Month(months*sign)+1, 0).Day()
	clamp := max(0, dd-lastDay)

	shifted := at(ref, y+years*sign, mo, dd)
	shifted = at(ref, shifted.Year(), shifted.Month(), dd-clamp)
	shifted = at(ref, shifted.Year(), mo+time.Month(months*sign), shifted.Day())
	shifted = at(ref, shifted.Year(), shifted.Month(), dd-clamp+days*sign)

	yearDiff := shifted.Year() - y
	monthDiff := int(shifted.Month()) - int(mo)
	dayDiff := int(math.Abs(math.Round(shifted.Sub(ref).Hours() / hoursPerDay)))

	return calendarSpan{
		years:  yearDiff,
		months: absInt(yearDiff*monthsPerYear + monthDiff),
		days:   dayDiff + clamp,
	}
}

// at returns the instant with ref's clock and location on the given date,
// normalizing out-of-range months and days like time.Date.
func at(ref time.Time, year int, month time.Month, day int) time.Time {
	h, m, s := ref.Clock()
	return time.Date(year, month, day, h, m, s, ref.Nanosecond(), ref.Location())
}

// roundDiv returns n/d rounded half up, for n >= 0 and d > 0.
func roundDiv(n, d int) int {
	return (2*n + d) / (2 * d)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// RelativeTimeUnit rounds d with Round and returns the first nonzero field from
// years down to seconds together with its unit. Milliseconds never qualify; a
// result with nothing coarser than milliseconds is reported as (0, Second).
func RelativeTimeUnit(d Duration, ref time.Time) (int, Unit) {
	rounded := Round(d, ref)
	if rounded.Blank() {
		return 0, Second
	}
	for _, u := range Units {
		if u == Millisecond {
			break
		}
		if v := rounded.Field(u); v != 0 {
			return v, u
		}
	}
	return 0, Second
}
