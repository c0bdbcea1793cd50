// Package ui declares the display capabilities mrun's orchestration core
// depends on. Backends live in internal/tui and internal/output.
package ui

// Pane displays one task's output and status.
type Pane interface {
	// AppendLine adds a line to the bottom of the buffer.
	AppendLine(text string)

	// SetLabel replaces the pane's title.
	SetLabel(text string)

	// ScrollPercent reports the view position, 0 at the top to 100 at the
	// bottom. A buffer that fits entirely reports 0.
	ScrollPercent() int

	// Overflowing reports whether the buffer holds more lines than are visible.
	Overflowing() bool

	// ScrollBy moves the view by delta lines, clamped to the buffer.
	ScrollBy(delta int)

	// Render schedules a redraw.
	Render()
}

// Surface owns the screen and the panes on it.
type Surface interface {
	// CreatePane adds a pane taking heightFraction of the surface height.
	CreatePane(title string, heightFraction float64) Pane

	// RegisterKeyHandler calls fn whenever one of keys is pressed. Key names
	// follow bubbletea: "q", "esc", "ctrl+c".
	RegisterKeyHandler(keys []string, fn func())

	// Start begins drawing. It returns once the surface is live.
	Start() error

	// Destroy releases the screen. Later pane calls are ignored. Destroy is
	// idempotent.
	Destroy()

	// Done is closed when the surface stops on its own, for example when the
	// terminal backend fails.
	Done() <-chan struct{}
}
