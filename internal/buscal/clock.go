package buscal

import "time"

// Clock supplies the current instant. Services take a Clock instead of
// calling time.Now so reporting windows and due calculations can be
// pinned in tests.
type Clock func() time.Time

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return time.Now
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
