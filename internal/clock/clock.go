// Package clock provides a replaceable time source for the scheduler and
// renderers. Production code uses Real; tests drive a Fake by hand.
package clock

import "time"

// Timer is a pending callback created by Clock.AfterFunc.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// Clock is the source of the current instant and one-shot timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the system clock.
type Real struct{}

// Now returns time.Now.
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc. The callback runs on its own goroutine.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Fixed is a clock stopped at one instant, for rendering at a chosen time.
// Its timers never fire.
type Fixed time.Time

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// AfterFunc returns a timer that never fires.
func (Fixed) AfterFunc(time.Duration, func()) Timer {
	return idleTimer{}
}

type idleTimer struct{}

func (idleTimer) Stop() bool { return false }
