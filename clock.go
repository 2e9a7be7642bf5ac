package paystream

import "time"

// Clock supplies the current time to the engine. All vesting arithmetic
// derives from a single Now() sample per operation, so two reads within
// one call can never disagree.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default wall-clock source.
var SystemClock Clock = systemClock{}
