package duration

import "time"

// Flat conversion factors used by Elapsed. Months are a flat 30 days and years
// 12 such months; Round corrects against the real calendar.
const (
	msPerSecond    = 1000
	secondsPerMin  = 60
	minutesPerHour = 60
	hoursPerDay    = 24
	daysPerMonth   = 30
	monthsPerYear  = 12
)

// Elapsed returns target - now decomposed into nested whole units.
//
// Only fields at or above precision are populated; finer fields are zero. Weeks are
// never populated. Every populated field carries the sign of the difference.
func Elapsed(target time.Time, precision Unit, now time.Time) Duration {
	delta := target.Sub(now).Milliseconds()
	if delta == 0 {
		return Zero
	}
	if !precision.IsValid() {
		precision = Millisecond
	}

	sign := 1
	ms := int(delta)
	if ms < 0 {
		sign, ms = -1, -ms
	}

	secs := ms / msPerSecond
	mins := secs / secondsPerMin
	hrs := mins / minutesPerHour
	days := hrs / hoursPerDay
	months := days / daysPerMonth
	years := months / monthsPerYear

	keep := func(u Unit, v int) int {
		if precision >= u {
			return v * sign
		}
		return 0
	}

	return Duration{
		Years:        keep(Year, years),
		Months:       keep(Month, months-years*monthsPerYear),
		Days:         keep(Day, days-months*daysPerMonth),
		Hours:        keep(Hour, hrs-days*hoursPerDay),
		Minutes:      keep(Minute, mins-hrs*minutesPerHour),
		Seconds:      keep(Second, secs-mins*secondsPerMin),
		Milliseconds: keep(Millisecond, ms-secs*msPerSecond),
	}
}
