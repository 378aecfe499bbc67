package ports

import "time"

// Clock abstracts the time source so that time-dependent logic (liveness
// sweeps, frame timestamps) can be tested deterministically.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock implements Clock using the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
