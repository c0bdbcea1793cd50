// Package shutdown implements the state machine that drains the running
// process groups by broadcasting termination signals until none remain.
package shutdown

import (
	"fmt"
	"log/slog"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	mrunerrors "github.com/flashingpumpkin/mrun/internal/errors"
)

// State is the coordinator's lifecycle position.
type State int

const (
	// Idle is the state before any shutdown trigger.
	Idle State = iota
	// ShuttingDown is the kill loop; Attempt reports the current round.
	ShuttingDown
	// Done means the running set drained, or the attempt ceiling was reached.
	Done
)

func (s State) String() string {
	switch s {
	case ShuttingDown:
		return "shutting-down"
	case Done:
		return "done"
	default:
		return "idle"
	}
}

// DefaultDiagnosticEvery is how many rounds pass between "still terminating"
// diagnostics.
const DefaultDiagnosticEvery = 20

// Target is the set of live process groups the kill loop drains.
type Target interface {
	Len() int
	Signal(sig syscall.Signal) error
}

// Policy configures the kill loop.
type Policy struct {
	// Interval is the delay between broadcast rounds.
	Interval time.Duration

	// MaxAttempts stops the loop with ErrShutdownIncomplete after this many
	// rounds. Zero retries until the target is empty.
	MaxAttempts int

	// KillAfter sends SIGKILL instead of SIGTERM once this many rounds have
	// been broadcast. Zero never escalates.
	KillAfter int

	// DiagnosticEvery is the round period of the progress diagnostic.
	DiagnosticEvery int
}

// Coordinator is the shutdown state machine. It is not safe for concurrent
// use; one control flow owns it and feeds it triggers and ticks.
type Coordinator struct {
	target  Target
	policy  Policy
	clock   clockwork.Clock
	logger  *slog.Logger
	onEnter []func()

	state   State
	attempt int
	reason  string
	ticker  clockwork.Ticker
	err     error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces the real clock, typically with a fake in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// OnEnter registers a hook run once, on the transition out of Idle and
// before the first broadcast.
func OnEnter(fn func()) Option {
	return func(c *Coordinator) { c.onEnter = append(c.onEnter, fn) }
}

// New creates an Idle coordinator draining target under policy.
func New(target Target, policy Policy, opts ...Option) *Coordinator {
	if policy.Interval <= 0 {
		policy.Interval = 100 * time.Millisecond
	}
	if policy.DiagnosticEvery <= 0 {
		policy.DiagnosticEvery = DefaultDiagnosticEvery
	}
	c := &Coordinator{
		target: target,
		policy: policy,
		clock:  clockwork.NewRealClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Coordinator) State() State {
	return c.state
}

// Attempt returns the round number of the next broadcast; 0 while Idle.
func (c *Coordinator) Attempt() int {
	return c.attempt
}

// Reason returns what triggered the shutdown.
func (c *Coordinator) Reason() string {
	return c.reason
}

// Err returns ErrShutdownIncomplete when the loop gave up, nil otherwise.
func (c *Coordinator) Err() error {
	return c.err
}

// C returns the channel that paces Tick. It is nil outside ShuttingDown,
// which blocks forever in a select.
func (c *Coordinator) C() <-chan time.Time {
	if c.state != ShuttingDown || c.ticker == nil {
		return nil
	}
	return c.ticker.Chan()
}

// Trigger moves Idle to ShuttingDown(1), runs the OnEnter hooks, performs
// the first round immediately and starts the ticker. Any later trigger is a
// no-op and returns false.
func (c *Coordinator) Trigger(reason string) bool {
	if c.state != Idle {
		c.logger.Debug("shutdown already in progress", slog.String("reason", reason), slog.String("state", c.state.String()))
		return false
	}

	c.state = ShuttingDown
	c.attempt = 1
	c.reason = reason
	c.logger.Info("shutdown triggered", slog.String("reason", reason), slog.Int("running", c.target.Len()))

	for _, fn := range c.onEnter {
		fn()
	}

	if c.Tick() == ShuttingDown {
		c.ticker = c.clock.NewTicker(c.policy.Interval)
	}
	return true
}

// Tick runs one round of the kill loop: finish when the target is empty,
// otherwise broadcast a signal to every remaining group and advance the
// attempt counter. Ticks outside ShuttingDown do nothing.
func (c *Coordinator) Tick() State {
	if c.state != ShuttingDown {
		return c.state
	}

	remaining := c.target.Len()
	if remaining == 0 {
		c.finish(nil)
		return c.state
	}

	if c.policy.MaxAttempts > 0 && c.attempt > c.policy.MaxAttempts {
		c.logger.Error("giving up on shutdown", slog.Int("running", remaining), slog.Int("attempts", c.policy.MaxAttempts))
		c.finish(fmt.Errorf("%w: %d process group(s) still running after %d attempts",
			mrunerrors.ErrShutdownIncomplete, remaining, c.policy.MaxAttempts))
		return c.state
	}

	sig := c.signalFor(c.attempt)
	if err := c.target.Signal(sig); err != nil {
		c.logger.Debug("signal broadcast incomplete", slog.Int("attempt", c.attempt), slog.Any("error", err))
	}

	if c.attempt%c.policy.DiagnosticEvery == 0 {
		c.logger.Warn("still terminating tasks", slog.Int("running", remaining), slog.Int("attempt", c.attempt), slog.String("signal", sig.String()))
	}
	c.attempt++
	return c.state
}

func (c *Coordinator) signalFor(attempt int) syscall.Signal {
	if c.policy.KillAfter > 0 && attempt > c.policy.KillAfter {
		return syscall.SIGKILL
	}
	return syscall.SIGTERM
}

func (c *Coordinator) finish(err error) {
	c.state = Done
	c.err = err
	if c.ticker != nil {
		c.ticker.Stop()
	}
}
