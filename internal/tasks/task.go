// Package tasks defines the Task value launched by mrun and resolves
// requested task names against a registry.
package tasks

// Task is a named shell command with the environment it runs under.
// A Task is immutable once resolved.
type Task struct {
	// Name is the registry key the user asked for.
	Name string

	// Command is the shell command string; shell syntax is allowed.
	Command string

	// Env is the complete child environment in os.Environ form.
	Env []string
}

// Status is the lifecycle position of a task as shown on its pane label.
type Status int

const (
	// StatusPending is a task whose process group has not been started.
	StatusPending Status = iota
	// StatusRunning is a task whose process group is live.
	StatusRunning
	// StatusSucceeded is a task that exited with status 0.
	StatusSucceeded
	// StatusFailed is a task that exited non-zero or could not be spawned.
	StatusFailed
)

// Status indicator icons used as the leading marker of pane labels.
const (
	IconPending = "○"
	IconRunning = "→"
	IconSuccess = "✓"
	IconFailure = "✗"
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Icon returns the marker for the status.
func (s Status) Icon() string {
	switch s {
	case StatusRunning:
		return IconRunning
	case StatusSucceeded:
		return IconSuccess
	case StatusFailed:
		return IconFailure
	default:
		return IconPending
	}
}

// StatusFromExit maps a process exit code onto a terminal status.
func StatusFromExit(code int) Status {
	if code == 0 {
		return StatusSucceeded
	}
	return StatusFailed
}

// Label formats the pane label for a task in the given status.
func Label(name string, s Status) string {
	return " " + s.Icon() + " " + name + " "
}
