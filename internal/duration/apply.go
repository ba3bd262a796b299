package duration

import "time"

// Apply shifts t by d using UTC calendar fields and returns the result in UTC.
//
// Negative durations are applied from the smallest field to the largest, and
// positive ones from the largest to the smallest, so that day-of-month overflow
// happens as late as possible. Each step normalizes like time.Date: adding one
// month to January 31 yields March 2 or 3, and the shift is therefore not always
// reversible.
func Apply(t time.Time, d Duration) time.Time {
	r := t.UTC()
	days := d.Weeks*7 + d.Days

	if d.Sign() < 0 {
		r = r.Add(time.Duration(d.Milliseconds) * time.Millisecond)
		r = r.Add(time.Duration(d.Seconds) * time.Second)
		r = r.Add(time.Duration(d.Minutes) * time.Minute)
		r = r.Add(time.Duration(d.Hours) * time.Hour)
		r = r.AddDate(0, 0, days)
		r = r.AddDate(0, d.Months, 0)
		r = r.AddDate(d.Years, 0, 0)
		return r
	}

	r = r.AddDate(d.Years, 0, 0)
	r = r.AddDate(0, d.Months, 0)
	r = r.AddDate(0, 0, days)
	r = r.Add(time.Duration(d.Hours) * time.Hour)
	r = r.Add(time.Duration(d.Minutes) * time.Minute)
	r = r.Add(time.Duration(d.Seconds) * time.Second)
	r = r.Add(time.Duration(d.Milliseconds) * time.Millisecond)
	return r
}

// Compare orders two durations by the magnitude of the offset they produce when
// applied to the current time. It returns 1 if a is the smaller offset, -1 if a is
// the larger one and 0 if both are equal, so Compare(elapsed, threshold) == 1
// reads as "elapsed is still within threshold".
func Compare(a, b Duration) int {
	return CompareAt(a, b, time.Now())
}

// CompareAt is Compare anchored at now.
func CompareAt(a, b Duration, now time.Time) int {
	da := absDuration(Apply(now, a).Sub(now))
	db := absDuration(Apply(now, b).Sub(now))
	switch {
	case da > db:
		return -1
	case da < db:
		return 1
	default:
		return 0
	}
}

// CompareLike converts both arguments with From before comparing them.
func CompareLike(a, b any) (int, error) {
	da, err := From(a)
	if err != nil {
		return 0, err
	}
	db, err := From(b)
	if err != nil {
		return 0, err
	}
	return Compare(da, db), nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
