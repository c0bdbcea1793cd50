package supervisor

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"syscall"
)

// KillFunc delivers sig to the process group identified by pgid.
type KillFunc func(pgid int, sig syscall.Signal) error

// RunningSet holds the process groups that were spawned and whose exit has
// not yet been observed. Safe for concurrent use.
type RunningSet struct {
	mu    sync.Mutex
	procs map[int]*Process
	kill  KillFunc
}

// NewRunningSet creates an empty set that signals groups with kill.
// A nil kill uses the platform group signal.
func NewRunningSet(kill KillFunc) *RunningSet {
	if kill == nil {
		kill = killGroup
	}
	return &RunningSet{
		procs: make(map[int]*Process),
		kill:  kill,
	}
}

// Add registers p. Adding a process group that is already present is an error.
func (rs *RunningSet) Add(p *Process) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, exists := rs.procs[p.pid]; exists {
		return fmt.Errorf("process group %d already running", p.pid)
	}
	rs.procs[p.pid] = p
	return nil
}

// Remove drops p after its exit was observed. Returns false when p was not
// present, so duplicate exit notifications are harmless.
func (rs *RunningSet) Remove(p *Process) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if cur, exists := rs.procs[p.pid]; !exists || cur != p {
		return false
	}
	delete(rs.procs, p.pid)
	return true
}

// Len returns the number of live process groups.
func (rs *RunningSet) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.procs)
}

// Pids returns the live process group identifiers in ascending order.
func (rs *RunningSet) Pids() []int {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	pids := make([]int, 0, len(rs.procs))
	for pid := range rs.procs {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// Signal sends sig to every live process group. Every group is attempted
// even when some fail; failures are joined into the returned error.
// Membership is unchanged: entries leave only through Remove.
func (rs *RunningSet) Signal(sig syscall.Signal) error {
	var errs []error
	for _, pid := range rs.Pids() {
		if err := rs.kill(pid, sig); err != nil {
			errs = append(errs, fmt.Errorf("signal %v to group %d: %w", sig, pid, err))
		}
	}
	return errors.Join(errs...)
}
