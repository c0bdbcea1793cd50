package shutdown

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	mrunerrors "github.com/flashingpumpkin/mrun/internal/errors"
)

// stubbornTarget holds groups that each exit after a number of deliveries.
type stubbornTarget struct {
	remaining map[int]int
	rounds    int
	signals   []syscall.Signal
	delivered map[int]int
	killable  bool
}

func newStubbornTarget(deliveries ...int) *stubbornTarget {
	t := &stubbornTarget{remaining: map[int]int{}, delivered: map[int]int{}}
	for i, k := range deliveries {
		t.remaining[i+1] = k
	}
	return t
}

func (t *stubbornTarget) Len() int { return len(t.remaining) }

func (t *stubbornTarget) Signal(sig syscall.Signal) error {
	t.rounds++
	t.signals = append(t.signals, sig)
	for pid := range t.remaining {
		t.delivered[pid]++
		t.remaining[pid]--
		if t.remaining[pid] <= 0 || (t.killable && sig == syscall.SIGKILL) {
			delete(t.remaining, pid)
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func drain(t *testing.T, c *Coordinator, limit int) {
	t.Helper()
	for i := 0; c.State() == ShuttingDown; i++ {
		if i > limit {
			t.Fatalf("still shutting down after %d ticks", limit)
		}
		c.Tick()
	}
}

func TestTrigger_FirstRoundReachesEveryGroup(t *testing.T) {
	target := newStubbornTarget(5, 5, 5)
	c := New(target, Policy{}, WithClock(clockwork.NewFakeClock()), WithLogger(discardLogger()))

	if !c.Trigger("signal") {
		t.Fatal("Trigger() = false on Idle coordinator")
	}
	if c.State() != ShuttingDown {
		t.Fatalf("State() = %v, want shutting-down", c.State())
	}
	for pid := 1; pid <= 3; pid++ {
		if target.delivered[pid] != 1 {
			t.Errorf("group %d received %d signals, want 1 without any clock advance", pid, target.delivered[pid])
		}
	}
	if target.signals[0] != syscall.SIGTERM {
		t.Errorf("first signal = %v, want SIGTERM", target.signals[0])
	}
	if c.Attempt() != 2 {
		t.Errorf("Attempt() = %d, want 2 after first round", c.Attempt())
	}
}

func TestTrigger_IsIdempotent(t *testing.T) {
	target := newStubbornTarget(10)
	c := New(target, Policy{}, WithClock(clockwork.NewFakeClock()), WithLogger(discardLogger()))

	entered := 0
	c.onEnter = append(c.onEnter, func() { entered++ })

	c.Trigger("signal")
	c.Tick()
	attempt := c.Attempt()

	if c.Trigger("quit key") {
		t.Error("second Trigger() = true, want false")
	}
	if c.Trigger("exit") {
		t.Error("third Trigger() = true, want false")
	}

	if entered != 1 {
		t.Errorf("OnEnter ran %d times, want 1", entered)
	}
	if target.rounds != 2 {
		t.Errorf("broadcast rounds = %d, want 2 (extra triggers must not broadcast)", target.rounds)
	}
	if c.Attempt() != attempt {
		t.Errorf("Attempt() = %d, want %d (not reset)", c.Attempt(), attempt)
	}
	if c.Reason() != "signal" {
		t.Errorf("Reason() = %q, want first trigger's reason", c.Reason())
	}
}

func TestTick_RetriesUntilGroupsHonourSignal(t *testing.T) {
	const k = 4
	target := newStubbornTarget(k, 1)
	c := New(target, Policy{}, WithClock(clockwork.NewFakeClock()), WithLogger(discardLogger()))

	c.Trigger("signal")
	drain(t, c, 100)

	if c.State() != Done {
		t.Fatalf("State() = %v, want done", c.State())
	}
	if target.rounds < k {
		t.Errorf("rounds = %d, want at least %d", target.rounds, k)
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v, want nil", c.Err())
	}
}

func TestTrigger_EmptyTargetFinishesImmediately(t *testing.T) {
	target := newStubbornTarget()
	c := New(target, Policy{}, WithClock(clockwork.NewFakeClock()), WithLogger(discardLogger()))

	c.Trigger("exit")

	if c.State() != Done {
		t.Errorf("State() = %v, want done", c.State())
	}
	if target.rounds != 0 {
		t.Errorf("rounds = %d, want 0", target.rounds)
	}
	if c.C() != nil {
		t.Error("C() should be nil once done")
	}
}

func TestTick_IdleDoesNothing(t *testing.T) {
	target := newStubbornTarget(1)
	c := New(target, Policy{}, WithLogger(discardLogger()))

	if got := c.Tick(); got != Idle {
		t.Errorf("Tick() = %v, want idle", got)
	}
	if target.rounds != 0 {
		t.Errorf("rounds = %d, want 0", target.rounds)
	}
	if c.C() != nil {
		t.Error("C() should be nil while idle")
	}
}

func TestTick_EscalatesAfterKillAfter(t *testing.T) {
	target := newStubbornTarget(1000)
	target.killable = true
	c := New(target, Policy{KillAfter: 3}, WithClock(clockwork.NewFakeClock()), WithLogger(discardLogger()))

	c.Trigger("signal")
	drain(t, c, 10)

	want := []syscall.Signal{syscall.SIGTERM, syscall.SIGTERM, syscall.SIGTERM, syscall.SIGKILL}
	if len(target.signals) != len(want) {
		t.Fatalf("signals = %v, want %v", target.signals, want)
	}
	for i := range want {
		if target.signals[i] != want[i] {
			t.Errorf("signals[%d] = %v, want %v", i, target.signals[i], want[i])
		}
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v, want nil", c.Err())
	}
}

func TestTick_MaxAttemptsGivesUp(t *testing.T) {
	target := newStubbornTarget(1000)
	c := New(target, Policy{MaxAttempts: 5}, WithClock(clockwork.NewFakeClock()), WithLogger(discardLogger()))

	c.Trigger("signal")
	drain(t, c, 10)

	if target.rounds != 5 {
		t.Errorf("rounds = %d, want 5", target.rounds)
	}
	if !errors.Is(c.Err(), mrunerrors.ErrShutdownIncomplete) {
		t.Errorf("Err() = %v, want ErrShutdownIncomplete", c.Err())
	}
}

func TestTick_DiagnosticEveryTwentiethAttempt(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	target := newStubbornTarget(45)
	c := New(target, Policy{}, WithClock(clockwork.NewFakeClock()), WithLogger(logger))

	c.Trigger("signal")
	drain(t, c, 100)

	if got := strings.Count(logs.String(), "still terminating tasks"); got != 2 {
		t.Errorf("diagnostics = %d, want 2 (attempts 20 and 40)\n%s", got, logs.String())
	}
}

func TestCoordinator_TickerPacesRounds(t *testing.T) {
	clock := clockwork.NewFakeClock()
	target := newStubbornTarget(3)
	c := New(target, Policy{Interval: 100 * time.Millisecond}, WithClock(clock), WithLogger(discardLogger()))

	c.Trigger("signal")
	if c.C() == nil {
		t.Fatal("C() = nil while shutting down")
	}

	for c.State() == ShuttingDown {
		clock.Advance(100 * time.Millisecond)
		select {
		case <-c.C():
			c.Tick()
		case <-time.After(time.Second):
			t.Fatalf("ticker did not fire after advancing the clock (rounds=%d)", target.rounds)
		}
	}

	if target.rounds != 3 {
		t.Errorf("rounds = %d, want 3", target.rounds)
	}
}

func TestState_String(t *testing.T) {
	if Idle.String() != "idle" || ShuttingDown.String() != "shutting-down" || Done.String() != "done" {
		t.Error("unexpected state names")
	}
}
