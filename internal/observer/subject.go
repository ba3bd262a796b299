package observer

import (
	"math"
	"time"

	"github.com/spetersoncode/reltime/internal/duration"
)

// Mode is the display mode a subject reports to the scheduler.
type Mode int

const (
	// ModeRelative covers relative phrases and absolute dates, whose text
	// changes at a rate set by the distance to the target.
	ModeRelative Mode = iota
	// ModeDuration covers duration and elapsed text, whose finest visible
	// field changes at a rate set by the precision.
	ModeDuration
)

// Never is the refresh interval of a subject with no resolvable target.
const Never = time.Duration(math.MaxInt64)

// Subject is a display element kept current by a Scheduler.
type Subject interface {
	// ID identifies the subject within one scheduler.
	ID() string
	// Target returns the instant the subject displays, false when it cannot
	// be resolved.
	Target() (time.Time, bool)
	Mode() Mode
	Precision() duration.Unit
	// Refresh recomputes the displayed text. It must be idempotent.
	Refresh() error
}

// RefreshInterval returns how soon s must be refreshed to stay visually current.
func RefreshInterval(s Subject, now time.Time) time.Duration {
	target, ok := s.Target()
	if !ok {
		return Never
	}
	if s.Mode() == ModeDuration {
		switch s.Precision() {
		case duration.Second:
			return time.Second
		case duration.Minute:
			return time.Minute
		}
	}

	distance := now.Sub(target)
	if distance < 0 {
		distance = -distance
	}
	switch {
	case distance < time.Minute:
		return time.Second
	case distance < time.Hour:
		return time.Minute
	default:
		return time.Hour
	}
}
