package tracker

import "time"

// Clock supplies transition timestamps. Implementations should return times
// carrying a monotonic reading.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock with monotonic readings.
func SystemClock() Clock { return systemClock{} }
