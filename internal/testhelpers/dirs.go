// Package testhelpers provides common utilities for tests across packages.
package testhelpers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// ProjectDir creates a temporary project directory whose package.json
// declares scripts. Returns the directory path.
// The temp dir is automatically cleaned up when the test completes.
func ProjectDir(t *testing.T, scripts map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	data, err := json.MarshalIndent(map[string]any{
		"name":    "fixture",
		"scripts": scripts,
	}, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode manifest: %v", err)
	}
	WriteFile(t, dir, "package.json", string(data))
	return dir
}

// BinDir creates node_modules/.bin under dir and returns its path.
func BinDir(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "node_modules", ".bin")
	if err := os.MkdirAll(bin, 0755); err != nil {
		t.Fatalf("failed to create bin dir: %v", err)
	}
	return bin
}

// WriteFile writes content to name under dir, creating parent directories.
// Returns the file path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
