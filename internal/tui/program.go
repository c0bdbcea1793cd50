package tui

import (
	"errors"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/flashingpumpkin/mrun/internal/ui"
)

// ErrStarted is returned by Start when the surface has already been started.
var ErrStarted = errors.New("surface already started")

// Surface is the full-screen pane backend. It implements ui.Surface.
type Surface struct {
	title  string
	styles Styles
	opts   []tea.ProgramOption

	mu        sync.Mutex
	panes     []*Pane
	fractions []float64
	handlers  []handler
	model     Model
	program   *tea.Program
	started   bool
	destroyed bool
	err       error

	destroy sync.Once
	done    chan struct{}
}

var _ ui.Surface = (*Surface)(nil)

// New creates a surface titled title using theme. Extra options are passed
// to tea.NewProgram after the defaults, so tests can redirect input and output.
func New(title string, theme Theme, opts ...tea.ProgramOption) *Surface {
	if os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return &Surface{
		title:  title,
		styles: GetStyles(ResolveTheme(theme)),
		opts:   opts,
		done:   make(chan struct{}),
	}
}

// CreatePane adds a pane taking heightFraction of the terminal height.
func (s *Surface) CreatePane(title string, heightFraction float64) ui.Pane {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := newPane(title, DefaultMaxPaneLines, s.requestRender)
	s.panes = append(s.panes, p)
	s.fractions = append(s.fractions, heightFraction)
	return p
}

// RegisterKeyHandler binds keys to fn. It must be called before Start.
// fn runs on the event loop and must not block.
func (s *Surface) RegisterKeyHandler(keys []string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler{
		binding: key.NewBinding(key.WithKeys(keys...)),
		fn:      fn,
	})
}

// Start launches the event loop in the background.
func (s *Surface) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrStarted
	}
	s.started = true
	if s.destroyed {
		return nil
	}

	s.model = NewModel(s.title, s.panes, s.fractions, s.styles)
	s.model.handlers = s.handlers

	opts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	}, s.opts...)
	s.program = tea.NewProgram(s.model, opts...)

	go func() {
		_, err := s.program.Run()
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	}()
	return nil
}

// Destroy stops the event loop and restores the terminal. Pane calls made
// afterwards are ignored.
func (s *Surface) Destroy() {
	s.destroy.Do(func() {
		s.mu.Lock()
		s.destroyed = true
		for _, p := range s.panes {
			p.close()
		}
		program := s.program
		s.mu.Unlock()

		if program == nil {
			close(s.done)
			return
		}
		program.Quit()
		<-s.done
	})
}

// Done is closed once the event loop has exited.
func (s *Surface) Done() <-chan struct{} {
	return s.done
}

// Err returns the error the event loop exited with, if any.
func (s *Surface) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(s.err, tea.ErrProgramKilled) {
		return nil
	}
	return s.err
}

// requestRender coalesces redraw requests into at most one queued renderMsg.
func (s *Surface) requestRender() {
	s.mu.Lock()
	program := s.program
	pending := s.model.pending
	s.mu.Unlock()
	if program == nil || pending == nil || !pending.CompareAndSwap(false, true) {
		return
	}
	go program.Send(renderMsg{})
}
