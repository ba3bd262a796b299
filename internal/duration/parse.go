package duration

import (
	"regexp"
	"strconv"
	"strings"
)

// durationRe matches an optionally signed ISO-8601 duration. Seconds may carry
// a fraction of up to three digits, which is read as milliseconds.
var durationRe = regexp.MustCompile(
	`^[-+]?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:[.,](\d{1,3}))?S)?)?$`,
)

// IsDuration reports whether s is an ISO-8601 duration string whose
// components fit in an int.
func IsDuration(s string) bool {
	_, ok := parse(s)
	return ok
}

// Parse reads an ISO-8601 duration such as "P1Y2M3DT4H5M6S" or "-PT5M".
// A leading "-" negates every field; "+" is accepted and ignored.
//
// Parse never fails: text that does not match the grammar, or has a
// component too large for an int, yields Zero.
func Parse(s string) Duration {
	d, _ := parse(s)
	return d
}

func parse(s string) (Duration, bool) {
	s = strings.TrimSpace(s)
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return Zero, false
	}

	factor := 1
	if strings.HasPrefix(s, "-") {
		factor = -1
	}

	var f [8]int
	for i := 0; i < 7; i++ {
		n, err := atoi(m[i+1])
		if err != nil {
			return Zero, false
		}
		f[i] = n * factor
	}
	if frac := m[8]; frac != "" {
		frac += strings.Repeat("0", 3-len(frac))
		n, _ := atoi(frac)
		f[7] = n * factor
	}
	return New(f[:]...), true
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
