package pinger

import (
	"context"
	"time"
)

// Prober issues a single request against the ping endpoint.
// It returns an error for transport failures and non-success statuses.
type Prober interface {
	Ping(ctx context.Context) error
}

// Display is the UI element the formatted latency is written into
type Display interface {
	// Render overwrites any prior content with text
	Render(text string) error
}

// Trigger is the UI control that starts sampling
type Trigger interface {
	// Disable disables the control and replaces its label
	Disable(label string) error
}

// Observer receives tick lifecycle events, typically for metrics
type Observer interface {
	TickSucceeded(m Measurement)
	TickFailed(err error)
	TickSkipped()
	StaleDiscarded()
}

// Clock supplies the timestamps used to measure a tick
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// Now uses time.Now so the monotonic reading is kept
func (systemClock) Now() time.Time { return time.Now() }

type nopObserver struct{}

func (nopObserver) TickSucceeded(Measurement) {}
func (nopObserver) TickFailed(error) {}
func (nopObserver) TickSkipped() {}
func (nopObserver) StaleDiscarded() {}
