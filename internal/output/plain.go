// Package output is the line-oriented backend used when stdout is not a
// terminal or minimal output is requested. Every pane line is written to a
// single writer with a coloured task prefix.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/flashingpumpkin/mrun/internal/ui"
)

// prefixColours cycles across panes in creation order.
var prefixColours = []color.Attribute{
	color.FgCyan,
	color.FgMagenta,
	color.FgYellow,
	color.FgBlue,
	color.FgGreen,
	color.FgRed,
}

// Surface writes pane output as prefixed lines. It implements ui.Surface.
type Surface struct {
	mu        sync.Mutex
	w         io.Writer
	panes     []*Pane
	width     int
	destroyed bool

	once sync.Once
	done chan struct{}
}

var _ ui.Surface = (*Surface)(nil)

// New creates a plain surface writing to w.
// It checks the NO_COLOR environment variable to determine if colour output should be disabled.
func New(w io.Writer) *Surface {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	return &Surface{
		w:    w,
		done: make(chan struct{}),
	}
}

// CreatePane adds a pane whose lines are prefixed with title.
// heightFraction has no meaning for line output and is ignored.
func (s *Surface) CreatePane(title string, heightFraction float64) ui.Pane {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(title)
	p := &Pane{
		surface: s,
		name:    name,
		colour:  color.New(prefixColours[len(s.panes)%len(prefixColours)], color.Bold),
	}
	s.panes = append(s.panes, p)
	if len(name) > s.width {
		s.width = len(name)
	}
	return p
}

// RegisterKeyHandler is a no-op: plain output does not read the keyboard.
func (s *Surface) RegisterKeyHandler(keys []string, fn func()) {}

// Start is a no-op.
func (s *Surface) Start() error {
	return nil
}

// Destroy stops all further output.
func (s *Surface) Destroy() {
	s.once.Do(func() {
		s.mu.Lock()
		s.destroyed = true
		s.mu.Unlock()
		close(s.done)
	})
}

// Done is closed by Destroy.
func (s *Surface) Done() <-chan struct{} {
	return s.done
}

func (s *Surface) write(p *Pane, text string, dim bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}

	prefix := fmt.Sprintf("[%s]%s ", p.name, strings.Repeat(" ", s.width-len(p.name)))
	_, _ = p.colour.Fprint(s.w, prefix)
	if dim {
		_, _ = color.New(color.Faint).Fprintln(s.w, text)
		return
	}
	_, _ = fmt.Fprintln(s.w, text)
}

// Pane is a task's view onto the shared writer.
type Pane struct {
	surface *Surface
	name    string
	colour  *color.Color

	mu    sync.Mutex
	label string
}

// AppendLine writes text with the pane's prefix.
func (p *Pane) AppendLine(text string) {
	p.surface.write(p, text, false)
}

// SetLabel writes the label as a dimmed line when it changes.
func (p *Pane) SetLabel(text string) {
	p.mu.Lock()
	changed := text != p.label
	p.label = text
	p.mu.Unlock()
	if changed {
		p.surface.write(p, strings.TrimSpace(text), true)
	}
}

// ScrollPercent always reports 0: line output has no view to scroll.
func (p *Pane) ScrollPercent() int { return 0 }

// Overflowing always reports false.
func (p *Pane) Overflowing() bool { return false }

// ScrollBy is a no-op.
func (p *Pane) ScrollBy(delta int) {}

// Render is a no-op: lines are written as they arrive.
func (p *Pane) Render() {}
