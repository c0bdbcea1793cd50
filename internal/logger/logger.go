// Package logger configures the process-wide slog logger for mrun.
//
// Records go to stderr and, optionally, to a log file. Stderr output can be
// suspended while the terminal surface owns the screen.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// EnvLevel names the environment variable consulted when no level is given.
const EnvLevel = "MRUN_LOG_LEVEL"

// switchWriter forwards writes to the primary writer unless suspended, and
// always to the secondary writer when one is set. Safe for concurrent use.
type switchWriter struct {
	mu        sync.RWMutex
	primary   io.Writer
	secondary io.Writer
	suspended bool
}

func (sw *switchWriter) Write(p []byte) (int, error) {
	sw.mu.RLock()
	primary, secondary, suspended := sw.primary, sw.secondary, sw.suspended
	sw.mu.RUnlock()

	if secondary != nil {
		secondary.Write(p) //nolint:errcheck
	}
	if suspended || primary == nil {
		return len(p), nil
	}
	return primary.Write(p)
}

var gw = &switchWriter{primary: os.Stderr}

// Init installs a text handler as the slog default and returns a logger
// carrying a fresh run_id. An empty level falls back to MRUN_LOG_LEVEL, then warn.
// secondary may be nil.
func Init(level string, secondary io.Writer) *slog.Logger {
	if level == "" {
		level = os.Getenv(EnvLevel)
	}

	gw.mu.Lock()
	gw.secondary = secondary
	gw.suspended = false
	gw.mu.Unlock()

	h := slog.NewTextHandler(gw, &slog.HandlerOptions{Level: ParseLevel(level)})
	slog.SetDefault(slog.New(h))
	return slog.Default().With(slog.String("run_id", uuid.NewString()))
}

// Suspend stops writing to stderr until Resume is called. The secondary
// writer keeps receiving records.
func Suspend() {
	gw.mu.Lock()
	gw.suspended = true
	gw.mu.Unlock()
}

// Resume re-enables stderr output.
func Resume() {
	gw.mu.Lock()
	gw.suspended = false
	gw.mu.Unlock()
}

// SetOutput replaces the primary writer. Intended for tests.
func SetOutput(w io.Writer) {
	gw.mu.Lock()
	gw.primary = w
	gw.mu.Unlock()
}

// ParseLevel maps a level name to a slog.Level; unknown names mean warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
