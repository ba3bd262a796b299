package duration

import (
	"fmt"
	"strings"
)

// Unit is a calendar unit, ordered from coarsest to finest.
// The ordinal doubles as the precision rank used by Elapsed.
type Unit int

const (
	Year Unit = iota
	Month
	Week
	Day
	Hour
	Minute
	Second
	Millisecond
)

// Units lists every unit from coarsest to finest.
var Units = []Unit{Year, Month, Week, Day, Hour, Minute, Second, Millisecond}

var unitNames = [...]string{"year", "month", "week", "day", "hour", "minute", "second", "millisecond"}

// String returns the singular unit name ("year", "minute", ...).
func (u Unit) String() string {
	if !u.IsValid() {
		return fmt.Sprintf("unit(%d)", int(u))
	}
	return unitNames[u]
}

// Plural returns the plural unit name ("years", "minutes", ...).
func (u Unit) Plural() string {
	return u.String() + "s"
}

// IsValid returns true if u is one of the known units.
func (u Unit) IsValid() bool {
	return u >= Year && u <= Millisecond
}

// ParseUnit resolves a unit name. Singular and plural forms are accepted,
// case-insensitively.
func ParseUnit(name string) (Unit, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, "s")
	for i, un := range unitNames {
		if un == n {
			return Unit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown unit %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	if !u.IsValid() {
		return nil, fmt.Errorf("unknown unit %d", int(u))
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
