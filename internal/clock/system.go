package clock

import (
	"context"
	"time"
)

// SystemClock reads the wall clock. The returned value keeps its monotonic
// reading, so durations between two calls are immune to wall clock jumps.
// Callers persisting timestamps convert with UTC().
type SystemClock struct{}

func (SystemClock) Now(context.Context) time.Time {
	return time.Now()
}
