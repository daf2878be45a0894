package pinger

import (
	"strconv"
	"time"
)

// Measurement is the client-observed round trip of one ping request
type Measurement struct {
	Elapsed time.Duration
}

// NewMeasurement builds a Measurement from the two tick timestamps.
// A clock that steps backwards yields zero, never a negative latency.
func NewMeasurement(before, after time.Time) Measurement {
	elapsed := after.Sub(before)
	if elapsed < 0 {
		elapsed = 0
	}
	return Measurement{Elapsed: elapsed}
}

// Milliseconds returns the elapsed time truncated to whole milliseconds
func (m Measurement) Milliseconds() int64 {
	if m.Elapsed < 0 {
		return 0
	}
	return m.Elapsed.Milliseconds()
}

// String formats the measurement for display, e.g. "37ms"
func (m Measurement) String() string {
	return strconv.FormatInt(m.Milliseconds(), 10) + "ms"
}
