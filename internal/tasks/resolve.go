package tasks

import (
	"os"
	"path/filepath"
	"strings"

	mrunerrors "github.com/flashingpumpkin/mrun/internal/errors"
)

// ForceColorVar is set to "1" in every child environment.
const ForceColorVar = "FORCE_COLOR"

// Resolve validates names against scripts and returns one Task per name in
// request order. It fails with a UsageError when names is empty and with a
// MissingTaskError naming the first unknown task; in either case no Task is
// returned. binDir is prepended to PATH in each child environment built from environ.
func Resolve(names []string, scripts map[string]string, binDir string, environ []string) ([]Task, error) {
	if len(names) == 0 {
		return nil, &mrunerrors.UsageError{Msg: "no tasks given"}
	}

	for _, name := range names {
		if _, ok := scripts[name]; !ok {
			return nil, &mrunerrors.MissingTaskError{Name: name}
		}
	}

	env := BuildEnv(environ, binDir)
	resolved := make([]Task, 0, len(names))
	for _, name := range names {
		taskEnv := make([]string, len(env))
		copy(taskEnv, env)
		resolved = append(resolved, Task{
			Name:    name,
			Command: scripts[name],
			Env:     taskEnv,
		})
	}
	return resolved, nil
}

// BuildEnv returns a copy of environ with binDir prepended to PATH and
// FORCE_COLOR set. Every other variable passes through unchanged.
func BuildEnv(environ []string, binDir string) []string {
	env := make([]string, 0, len(environ)+2)
	path := ""
	for _, kv := range environ {
		key, value, _ := strings.Cut(kv, "=")
		switch {
		case key == "PATH":
			path = value
		case key == ForceColorVar:
		default:
			env = append(env, kv)
		}
	}

	if binDir != "" {
		if path == "" {
			path = binDir
		} else {
			path = binDir + string(os.PathListSeparator) + path
		}
	}
	if path != "" {
		env = append(env, "PATH="+path)
	}
	return append(env, ForceColorVar+"=1")
}

// BinDir resolves dir against workingDir unless it is already absolute.
func BinDir(workingDir, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	abs, err := filepath.Abs(filepath.Join(workingDir, dir))
	if err != nil {
		return filepath.Join(workingDir, dir)
	}
	return abs
}
