// Package runner drives one mrun invocation: it lays out a pane per task,
// spawns every task, streams their output onto the panes and, once shutdown
// is triggered, drains the running process groups.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/flashingpumpkin/mrun/internal/config"
	mrunerrors "github.com/flashingpumpkin/mrun/internal/errors"
	"github.com/flashingpumpkin/mrun/internal/shutdown"
	"github.com/flashingpumpkin/mrun/internal/stream"
	"github.com/flashingpumpkin/mrun/internal/supervisor"
	"github.com/flashingpumpkin/mrun/internal/tasks"
	"github.com/flashingpumpkin/mrun/internal/ui"
)

// QuitKeys are the keys bound to the quit action on the surface.
var QuitKeys = []string{"esc", "q", "ctrl+c"}

// Trigger reasons reported by the runner itself.
const (
	ReasonQuit     = "quit"
	ReasonComplete = "complete"
	ReasonCanceled = "canceled"
	ReasonSurface  = "surface closed"
)

// StartedLine is appended to a pane once its process group is live.
const StartedLine = "started"

// event carries one line of a task's merged output to the control loop.
type event struct {
	index int
	proc  *supervisor.Process
	line  stream.Line
}

// Runner owns all per-run state. Run may be called once.
type Runner struct {
	config  *config.Config
	surface ui.Surface
	logger  *slog.Logger
	clock   clockwork.Clock
	kill    supervisor.KillFunc

	onShutdown       []func()
	completeWhenIdle bool
	running          *supervisor.RunningSet
	coordinator      *shutdown.Coordinator
	panes            []ui.Pane
	events           chan event
	triggers         chan string
	done             chan struct{}
}

// New creates a Runner drawing onto surface.
func New(cfg *config.Config, surface ui.Surface) *Runner {
	return &Runner{
		config:   cfg,
		surface:  surface,
		logger:   slog.Default(),
		clock:    clockwork.NewRealClock(),
		events:   make(chan event),
		triggers: make(chan string, 1),
		done:     make(chan struct{}),
	}
}

// SetLogger sets the logger for lifecycle records.
func (r *Runner) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// SetClock replaces the clock pacing the shutdown loop.
func (r *Runner) SetClock(clock clockwork.Clock) {
	r.clock = clock
}

// SetKillFunc replaces the function used to signal process groups.
func (r *Runner) SetKillFunc(kill supervisor.KillFunc) {
	r.kill = kill
}

// OnShutdown registers fn to run when shutdown begins, after the surface
// has been destroyed.
func (r *Runner) OnShutdown(fn func()) {
	r.onShutdown = append(r.onShutdown, fn)
}

// SetCompleteWhenIdle makes the run shut itself down once every task has
// exited. Without it the run waits for a quit key or signal.
func (r *Runner) SetCompleteWhenIdle(v bool) {
	r.completeWhenIdle = v
}

// Running returns the set of live process groups. It is nil before Run.
func (r *Runner) Running() *supervisor.RunningSet {
	return r.running
}

// Trigger requests shutdown. It never blocks and may be called from any
// goroutine; requests after the first are dropped.
func (r *Runner) Trigger(reason string) {
	select {
	case r.triggers <- reason:
	default:
	}
}

// Run spawns tasks and blocks until shutdown completes. It returns
// ErrShutdownIncomplete if the configured attempt ceiling was reached with
// process groups still running.
func (r *Runner) Run(ctx context.Context, ts []tasks.Task) error {
	if len(ts) == 0 {
		return &mrunerrors.UsageError{Msg: "no tasks given"}
	}

	r.running = supervisor.NewRunningSet(r.kill)
	sup := supervisor.New(r.config.Shell, r.config.WorkingDir, r.running, r.logger)
	r.coordinator = shutdown.New(r.running, shutdown.Policy{
		Interval:    r.config.RetryInterval,
		MaxAttempts: r.config.MaxAttempts,
		KillAfter:   r.config.KillAfter,
	},
		shutdown.WithClock(r.clock),
		shutdown.WithLogger(r.logger),
		shutdown.OnEnter(r.enterShutdown),
	)

	fraction := 1 / float64(len(ts))
	for _, t := range ts {
		pane := r.surface.CreatePane(t.Name, fraction)
		pane.SetLabel(tasks.Label(t.Name, tasks.StatusPending))
		r.panes = append(r.panes, pane)
	}
	r.surface.RegisterKeyHandler(QuitKeys, func() { r.Trigger(ReasonQuit) })

	if err := r.surface.Start(); err != nil {
		r.surface.Destroy()
		return fmt.Errorf("failed to start display: %w", err)
	}

	for i, t := range ts {
		r.spawn(i, sup, t)
	}

	return r.loop(ctx, len(ts))
}

func (r *Runner) spawn(index int, sup *supervisor.Supervisor, t tasks.Task) {
	proc, err := sup.Spawn(t)
	if err != nil {
		r.logger.Warn("task failed to start", slog.String("task", t.Name), slog.Any("error", err))
	} else {
		pane := r.panes[index]
		pane.SetLabel(tasks.Label(t.Name, tasks.StatusRunning))
		stream.Append(pane, StartedLine)
		pane.Render()
	}

	lines := stream.Merge(r.done, proc.Exited(), proc.Stdout, proc.Stderr)
	go r.pump(index, proc, lines)
}

// pump forwards one task's lines to the control loop.
func (r *Runner) pump(index int, proc *supervisor.Process, lines <-chan stream.Line) {
	for line := range lines {
		select {
		case r.events <- event{index: index, proc: proc, line: line}:
		case <-r.done:
			return
		}
	}
}

func (r *Runner) loop(ctx context.Context, total int) error {
	defer close(r.done)

	ctxDone := ctx.Done()
	surfaceDone := r.surface.Done()
	exited := 0

	for r.coordinator.State() != shutdown.Done {
		select {
		case ev := <-r.events:
			r.handle(ev)
			if ev.line.Final {
				exited++
				if exited == total && r.completeWhenIdle {
					r.coordinator.Trigger(ReasonComplete)
				}
			}

		case reason := <-r.triggers:
			r.coordinator.Trigger(reason)

		case <-ctxDone:
			ctxDone = nil
			r.coordinator.Trigger(ReasonCanceled)

		case <-surfaceDone:
			surfaceDone = nil
			r.coordinator.Trigger(ReasonSurface)

		case <-r.coordinator.C():
			r.coordinator.Tick()
		}
	}

	r.logger.Info("shutdown finished", slog.String("reason", r.coordinator.Reason()))
	return r.coordinator.Err()
}

// handle applies one line event. Once shutdown has begun the surface is
// gone, so only the running set is updated.
func (r *Runner) handle(ev event) {
	pane := r.panes[ev.index]
	idle := r.coordinator.State() == shutdown.Idle

	if ev.line.Final {
		r.running.Remove(ev.proc)
		r.logger.Debug("task exited", slog.String("task", ev.proc.Task.Name), slog.Int("status", ev.line.Status))
		if !idle {
			return
		}
		pane.SetLabel(tasks.Label(ev.proc.Task.Name, tasks.StatusFromExit(ev.line.Status)))
		stream.Append(pane, stream.ExitLine(ev.line.Status))
		pane.Render()
		return
	}

	if !idle {
		return
	}
	stream.Append(pane, ev.line.Text)
	pane.Render()
}

func (r *Runner) enterShutdown() {
	r.surface.Destroy()
	for _, fn := range r.onShutdown {
		fn()
	}
}
