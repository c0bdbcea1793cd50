// Package errors defines the error types shared across mrun packages.
package errors

import (
	"errors"
	"fmt"
)

// ErrUsage is wrapped by every UsageError so callers can match with errors.Is.
var ErrUsage = errors.New("usage error")

// ErrShutdownIncomplete is returned when the shutdown loop reaches its
// configured attempt ceiling while process groups are still running.
var ErrShutdownIncomplete = errors.New("shutdown incomplete")

// UsageError reports an invocation that cannot be run, such as one naming no tasks.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// Unwrap returns ErrUsage.
func (e *UsageError) Unwrap() error {
	return ErrUsage
}

// MissingTaskError reports a requested task name absent from the registry.
type MissingTaskError struct {
	Name string
}

func (e *MissingTaskError) Error() string {
	return fmt.Sprintf("missing task: %q is not defined in the task registry", e.Name)
}
