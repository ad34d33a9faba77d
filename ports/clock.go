package ports

import "time"

// Clock supplies the reference date for operational ages
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. Used for reproducible renders.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// ClockFor returns a FixedClock when at is set and the system clock otherwise.
func ClockFor(at time.Time) Clock {
	if at.IsZero() {
		return SystemClock{}
	}
	return FixedClock{At: at}
}
