package runner

import (
	"slices"
	"sync"

	"github.com/flashingpumpkin/mrun/internal/ui"
)

type fakePane struct {
	mu      sync.Mutex
	title   string
	lines   []string
	label   string
	renders int
}

func (p *fakePane) AppendLine(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, text)
}

func (p *fakePane) SetLabel(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label = text
}

func (p *fakePane) ScrollPercent() int { return 0 }
func (p *fakePane) Overflowing() bool  { return false }
func (p *fakePane) ScrollBy(int)       {}

func (p *fakePane) Render() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renders++
}

func (p *fakePane) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.lines)
}

func (p *fakePane) Label() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.label
}

func (p *fakePane) has(line string) bool {
	return slices.Contains(p.Lines(), line)
}

type fakeSurface struct {
	mu        sync.Mutex
	panes     []*fakePane
	fractions []float64
	keys      map[string]func()
	started   bool
	destroyed int
	startErr  error

	once sync.Once
	done chan struct{}
}

var _ ui.Surface = (*fakeSurface)(nil)

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		keys: make(map[string]func()),
		done: make(chan struct{}),
	}
}

func (s *fakeSurface) CreatePane(title string, heightFraction float64) ui.Pane {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &fakePane{title: title}
	s.panes = append(s.panes, p)
	s.fractions = append(s.fractions, heightFraction)
	return p
}

func (s *fakeSurface) RegisterKeyHandler(keys []string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.keys[k] = fn
	}
}

func (s *fakeSurface) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return s.startErr
}

func (s *fakeSurface) Destroy() {
	s.mu.Lock()
	s.destroyed++
	s.mu.Unlock()
	s.stop()
}

func (s *fakeSurface) Done() <-chan struct{} {
	return s.done
}

// stop closes Done as if the backend had exited on its own.
func (s *fakeSurface) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *fakeSurface) press(key string) {
	s.mu.Lock()
	fn := s.keys[key]
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *fakeSurface) pane(i int) *fakePane {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.panes) {
		return nil
	}
	return s.panes[i]
}

func (s *fakeSurface) destroyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}
