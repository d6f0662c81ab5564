package tracker

import "time"

// Clock abstracts wall-clock time so the exit hysteresis can be tested
// without real delays.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
