// Package duration implements calendar durations: ISO-8601 parsing, calendar-correct
// application to instants, elapsed-time decomposition and single-unit rounding.
//
// A Duration is a plain value. Every operation returns a new value, so a Duration
// can be shared freely once built.
package duration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned when a duration cannot be built from its input.
var ErrInvalidDuration = errors.New("invalid duration")

// Duration is a signed calendar duration.
//
// Fields are expected to share one sign (or be zero), as in ISO-8601 where the sign
// applies to the whole value. Sign is derived from the first nonzero field, scanning
// from Years to Milliseconds; fields are not forced to a common sign.
//
// Text encodings (JSON, YAML, TOML) use the ISO-8601 form.
type Duration struct {
	Years        int
	Months       int
	Weeks        int
	Days         int
	Hours        int
	Minutes      int
	Seconds      int
	Milliseconds int
}

// Zero is the blank duration.
var Zero = Duration{}

// New builds a Duration from its fields in Years..Milliseconds order.
// Missing trailing fields default to zero; extra fields are ignored.
func New(fields ...int) Duration {
	var f [8]int
	copy(f[:], fields)
	return Duration{
		Years:        f[0],
		Months:       f[1],
		Weeks:        f[2],
		Days:         f[3],
		Hours:        f[4],
		Minutes:      f[5],
		Seconds:      f[6],
		Milliseconds: f[7],
	}
}

// fields returns the fields in Years..Milliseconds order.
func (d Duration) fields() [8]int {
	return [8]int{d.Years, d.Months, d.Weeks, d.Days, d.Hours, d.Minutes, d.Seconds, d.Milliseconds}
}

// Field returns the value of the given unit.
func (d Duration) Field(u Unit) int {
	if !u.IsValid() {
		return 0
	}
	return d.fields()[u]
}

// Sign returns -1, 0 or 1: the sign of the first nonzero field.
func (d Duration) Sign() int {
	for _, v := range d.fields() {
		switch {
		case v < 0:
			return -1
		case v > 0:
			return 1
		}
	}
	return 0
}

// Blank returns true if every field is zero.
func (d Duration) Blank() bool {
	return d.Sign() == 0
}

// Abs returns d with every field made non-negative.
func (d Duration) Abs() Duration {
	f := d.fields()
	for i, v := range f {
		if v < 0 {
			f[i] = -v
		}
	}
	return New(f[:]...)
}

// Negate returns d with every field negated.
func (d Duration) Negate() Duration {
	f := d.fields()
	for i, v := range f {
		f[i] = -v
	}
	return New(f[:]...)
}

// String formats d as an ISO-8601 duration ("P1Y2M", "-PT5M", "PT1.5S").
// The blank duration formats as "PT0S".
func (d Duration) String() string {
	if d.Blank() {
		return "PT0S"
	}
	a := d.Abs()

	var b strings.Builder
	if d.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	writePart(&b, a.Years, 'Y')
	writePart(&b, a.Months, 'M')
	writePart(&b, a.Weeks, 'W')
	writePart(&b, a.Days, 'D')

	if a.Hours != 0 || a.Minutes != 0 || a.Seconds != 0 || a.Milliseconds != 0 {
		b.WriteByte('T')
		writePart(&b, a.Hours, 'H')
		writePart(&b, a.Minutes, 'M')
		if a.Seconds != 0 || a.Milliseconds != 0 {
			b.WriteString(strconv.Itoa(a.Seconds))
			if a.Milliseconds != 0 {
				frac := fmt.Sprintf("%03d", a.Milliseconds)
				b.WriteByte('.')
				b.WriteString(strings.TrimRight(frac, "0"))
			}
			b.WriteByte('S')
		}
	}
	return b.String()
}

func writePart(b *strings.Builder, v int, designator byte) {
	if v == 0 {
		return
	}
	b.WriteString(strconv.Itoa(v))
	b.WriteByte(designator)
}

// MarshalText implements encoding.TextMarshaler using the ISO-8601 form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Unlike Parse, text that is not an ISO-8601 duration is an error.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if !IsDuration(s) {
		return fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	*d = Parse(s)
	return nil
}

// From builds a Duration from a duration-like value: an ISO-8601 string, a Duration,
// or a map of field names ("years", "months", ... "milliseconds") to numbers.
// Missing fields default to zero. Any other input returns ErrInvalidDuration.
func From(v any) (Duration, error) {
	switch x := v.(type) {
	case string:
		return Parse(x), nil
	case Duration:
		return x, nil
	case *Duration:
		if x == nil {
			return Zero, fmt.Errorf("%w: nil", ErrInvalidDuration)
		}
		return *x, nil
	case map[string]int:
		return fromFields(func(name string) (int, error) {
			return x[name], nil
		})
	case map[string]float64:
		return fromFields(func(name string) (int, error) {
			return int(x[name]), nil
		})
	case map[string]any:
		return fromFields(func(name string) (int, error) {
			raw, ok := x[name]
			if !ok || raw == nil {
				return 0, nil
			}
			n, err := toInt(raw)
			if err != nil {
				return 0, fmt.Errorf("%w: field %s: %v", ErrInvalidDuration, name, err)
			}
			return n, nil
		})
	default:
		return Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidDuration, v)
	}
}

func fromFields(lookup func(name string) (int, error)) (Duration, error) {
	var f [8]int
	for i, u := range Units {
		n, err := lookup(u.Plural())
		if err != nil {
			return Zero, err
		}
		f[i] = n
	}
	return New(f[:]...), nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float32:
		return int(n), nil
	case float64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
