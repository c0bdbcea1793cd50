// Package supervisor spawns tasks as independent process groups and tracks
// the groups that are still alive.
package supervisor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/flashingpumpkin/mrun/internal/tasks"
)

// StatusSpawnFailed is the exit status reported for a task whose process
// could not be started at all.
const StatusSpawnFailed = -1

// Process is a spawned process group together with its output streams.
type Process struct {
	Task tasks.Task

	// Stdout and Stderr are read until EOF by the caller.
	Stdout io.ReadCloser
	Stderr io.ReadCloser

	pid    int
	exited chan int
	err    error
}

// Pid returns the process group identifier, or 0 for a process that never started.
func (p *Process) Pid() int {
	return p.pid
}

// Exited delivers the exit status exactly once, then is closed.
func (p *Process) Exited() <-chan int {
	return p.exited
}

// Err returns the spawn error of a synthetic failed process.
func (p *Process) Err() error {
	return p.err
}

// Supervisor launches tasks and registers them in its RunningSet.
type Supervisor struct {
	shell   string
	dir     string
	running *RunningSet
	logger  *slog.Logger
}

// New creates a Supervisor. An empty shell selects the platform default.
func New(shell, dir string, running *RunningSet, logger *slog.Logger) *Supervisor {
	if shell == "" {
		shell = DefaultShell
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		shell:   shell,
		dir:     dir,
		running: running,
		logger:  logger,
	}
}

// Running returns the set of live process groups.
func (s *Supervisor) Running() *RunningSet {
	return s.running
}

// Spawn starts task as a new process group with stdin ignored and stdout
// and stderr piped. On success the process is added to the RunningSet.
//
// Spawn never returns a nil Process. When the process cannot be started the
// returned Process is synthetic: its Stdout carries the failure message, it
// reports StatusSpawnFailed, and it is not in the RunningSet.
func (s *Supervisor) Spawn(task tasks.Task) (*Process, error) {
	cmd := exec.Command(s.shell, shellArgs(task.Command)...)
	cmd.Dir = s.dir
	cmd.Env = task.Env
	setProcAttr(cmd)

	outR, outW, err := os.Pipe()
	if err != nil {
		return failed(task, fmt.Errorf("failed to create stdout pipe: %w", err))
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return failed(task, fmt.Errorf("failed to create stderr pipe: %w", err))
	}
	cmd.Stdout = outW
	cmd.Stderr = errW

	if err := cmd.Start(); err != nil {
		outR.Close()
		outW.Close()
		errR.Close()
		errW.Close()
		return failed(task, fmt.Errorf("failed to start %s: %w", task.Name, err))
	}

	// The child holds its own copies; readers see EOF once every process in
	// the group has closed them.
	outW.Close()
	errW.Close()

	p := &Process{
		Task:   task,
		Stdout: outR,
		Stderr: errR,
		pid:    cmd.Process.Pid,
		exited: make(chan int, 1),
	}
	if err := s.running.Add(p); err != nil {
		// A reused pid means a stale entry; the new group still needs reaping.
		s.logger.Error("running set rejected process", slog.String("task", task.Name), slog.Any("error", err))
	}
	s.logger.Debug("spawned task", slog.String("task", task.Name), slog.Int("pgid", p.pid))

	go func() {
		code := exitStatus(cmd.Wait())
		p.exited <- code
		close(p.exited)
	}()

	return p, nil
}

func failed(task tasks.Task, err error) (*Process, error) {
	p := &Process{
		Task:   task,
		Stdout: io.NopCloser(strings.NewReader(err.Error() + "\n")),
		Stderr: io.NopCloser(strings.NewReader("")),
		exited: make(chan int, 1),
		err:    err,
	}
	p.exited <- StatusSpawnFailed
	close(p.exited)
	return p, err
}

// exitStatus converts the result of cmd.Wait into a shell-style status.
// A process terminated by signal N reports 128+N.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return exitErr.ExitCode()
	}
	return 1
}
