package scratchpad

import "time"

// Clock abstracts time so hysteresis/spawn-timeout races are testable
// without real sleeps (§8 boundary behaviors, S3/S6).
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the cancelable handle returned by Clock.AfterFunc, mirroring
// the subset of *time.Timer the engine needs.
type Timer interface {
	Stop() bool
}

type realClock struct{}

// RealClock is the production Clock backed by the standard library.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// cancelableTimer wraps a Timer with the "cancellation token" shape from
// §5: any state transition that invalidates the timer must be able to
// cancel it exactly once, idempotently.
type cancelableTimer struct {
	timer Timer
}

func newCancelableTimer(clock Clock, d time.Duration, f func()) *cancelableTimer {
	return &cancelableTimer{timer: clock.AfterFunc(d, f)}
}

// cancel stops the timer if it hasn't fired. Safe to call multiple times
// or on a nil receiver.
func (c *cancelableTimer) cancel() {
	if c == nil || c.timer == nil {
		return
	}
	c.timer.Stop()
}
