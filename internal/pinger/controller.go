package pinger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultInterval is the time between two ticks
	DefaultInterval = time.Second
	// DefaultLabel replaces the trigger label once sampling starts
	DefaultLabel = "Pinging..."
)

// ErrAlreadySampling is returned by Start when a timer is already live
var ErrAlreadySampling = errors.New("controller is already sampling")

// State is the lifecycle state of a Controller
type State int

const (
	StateIdle State = iota
	StateSampling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller samples the ping endpoint on a fixed interval and renders
// each measured latency into its Display
type Controller struct {
	prober   Prober
	display  Display
	trigger  Trigger
	observer Observer
	clock    Clock
	logger   *slog.Logger
	interval time.Duration
	label    string

	mu         sync.Mutex
	state      State
	generation uint64
	current    *run
}

// run is the timer handle of one Start..Teardown cycle
type run struct {
	generation uint64
	cancel     context.CancelFunc
	ticker     *time.Ticker
	wg         sync.WaitGroup
	busy       atomic.Bool
}

// Option configures a Controller
type Option func(*Controller)

// WithInterval sets the tick interval; non-positive values are ignored
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLabel sets the label the trigger shows while sampling
func WithLabel(label string) Option {
	return func(c *Controller) {
		c.label = label
	}
}

// WithLogger sets the logger used by the controller
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces the wall clock used to timestamp ticks
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithObserver registers an observer for tick events
func WithObserver(observer Observer) Option {
	return func(c *Controller) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// NewController creates an idle controller
func NewController(prober Prober, display Display, trigger Trigger, opts ...Option) *Controller {
	c := &Controller{
		prober:   prober,
		display:  display,
		trigger:  trigger,
		observer: nopObserver{},
		clock:    systemClock{},
		logger:   slog.Default(),
		interval: DefaultInterval,
		label:    DefaultLabel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "ping-controller")
	return c
}

// State reports whether the controller is idle or sampling
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start disables the trigger and begins sampling. The first tick fires one
// interval after Start. Calling Start while sampling returns ErrAlreadySampling
// and leaves the running timer untouched.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSampling {
		c.mu.Unlock()
		return ErrAlreadySampling
	}
	// a run released by its parent context may still be draining
	released := c.current
	c.current = nil
	c.mu.Unlock()

	if released != nil {
		released.wg.Wait()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSampling || c.current != nil {
		return ErrAlreadySampling
	}

	if err := c.trigger.Disable(c.label); err != nil {
		return fmt.Errorf("failed to disable trigger: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.generation++
	r := &run{
		generation: c.generation,
		cancel:     cancel,
		ticker:     time.NewTicker(c.interval),
	}
	c.current = r
	c.state = StateSampling

	r.wg.Add(1)
	go c.loop(runCtx, r)

	c.logger.Info("sampling started", "interval", c.interval, "generation", r.generation)
	return nil
}

// Teardown cancels the timer and any in-flight request, then waits for them
// to finish. Once it returns no further request is issued and nothing more
// is rendered. Teardown on an idle controller is a no-op.
func (c *Controller) Teardown() {
	c.mu.Lock()
	r := c.current
	if r == nil {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.state = StateIdle
	c.generation++
	c.mu.Unlock()

	r.ticker.Stop()
	r.cancel()
	r.wg.Wait()

	c.logger.Info("sampling stopped", "generation", r.generation)
}

// Tick runs one measurement and renders it, independent of the timer
func (c *Controller) Tick(ctx context.Context) (Measurement, error) {
	m, err := c.measure(ctx)
	if err != nil {
		return Measurement{}, err
	}
	if err := c.display.Render(m.String()); err != nil {
		return m, fmt.Errorf("failed to render measurement: %w", err)
	}
	return m, nil
}

func (c *Controller) loop(ctx context.Context, r *run) {
	defer r.wg.Done()
	defer r.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.release(r)
			return
		case <-r.ticker.C:
			if ctx.Err() != nil {
				c.release(r)
				return
			}
			// one request at a time; a tick that finds the previous
			// request outstanding is dropped
			if !r.busy.CompareAndSwap(false, true) {
				c.observer.TickSkipped()
				c.logger.Debug("tick skipped, previous request outstanding")
				continue
			}
			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				defer r.busy.Store(false)
				c.sample(ctx, r.generation)
			}()
		}
	}
}

// release returns the controller to idle when the parent context ends
// without a Teardown. The run stays current so Teardown or the next Start
// can wait for it to drain.
func (c *Controller) release(r *run) {
	c.mu.Lock()
	if c.current == r && c.state == StateSampling && c.generation == r.generation {
		c.state = StateIdle
		c.generation++
		c.logger.Info("sampling stopped by context", "generation", r.generation)
	}
	c.mu.Unlock()
	r.cancel()
}

func (c *Controller) sample(ctx context.Context, generation uint64) {
	if ctx.Err() != nil {
		return
	}
	m, err := c.measure(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.observer.TickFailed(err)
		c.logger.Debug("ping failed", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSampling || c.generation != generation {
		c.observer.StaleDiscarded()
		return
	}

	if err := c.display.Render(m.String()); err != nil {
		c.logger.Warn("failed to render measurement", "error", err)
		return
	}
	c.observer.TickSucceeded(m)
}

func (c *Controller) measure(ctx context.Context) (Measurement, error) {
	before := c.clock.Now()
	if err := c.prober.Ping(ctx); err != nil {
		return Measurement{}, fmt.Errorf("ping failed: %w", err)
	}
	after := c.clock.Now()
	return NewMeasurement(before, after), nil
}
