package tui

import (
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// wheelStep is the number of lines one mouse wheel notch scrolls.
const wheelStep = 3

// renderMsg asks the model to redraw after pane contents changed.
type renderMsg struct{}

// Model is the tea.Model drawing a vertical stack of panes.
type Model struct {
	title     string
	panes     []*Pane
	fractions []float64
	handlers  []handler
	keys      KeyMap
	styles    Styles
	focus     int
	width     int
	height    int
	ready     bool

	// pending is set while a renderMsg is in flight.
	pending *atomic.Bool
}

// NewModel creates a model for the given panes. fractions holds each
// pane's share of the terminal height.
func NewModel(title string, panes []*Pane, fractions []float64, styles Styles) Model {
	return Model{
		title:     title,
		panes:     panes,
		fractions: fractions,
		keys:      DefaultKeyMap(),
		styles:    styles,
		pending:   new(atomic.Bool),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.title == "" {
		return nil
	}
	return tea.SetWindowTitle(m.title)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		for i, h := range SplitHeights(msg.Height, m.fractions) {
			m.panes[i].setHeight(h)
		}
		return m, nil

	case renderMsg:
		m.pending.Store(false)
		return m, nil

	case tea.KeyMsg:
		for _, h := range m.handlers {
			if key.Matches(msg, h.binding) {
				h.fn()
				return m, nil
			}
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if p := m.paneAt(msg.Y); p != nil {
				p.ScrollBy(-wheelStep)
			}
		case tea.MouseButtonWheelDown:
			if p := m.paneAt(msg.Y); p != nil {
				p.ScrollBy(wheelStep)
			}
		case tea.MouseButtonLeft:
			if i := m.paneIndexAt(msg.Y); i >= 0 {
				m.focus = i
			}
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.panes) == 0 {
		return m, nil
	}
	p := m.panes[m.focus]

	switch {
	case key.Matches(msg, m.keys.NextPane):
		m.focus = (m.focus + 1) % len(m.panes)
	case key.Matches(msg, m.keys.PrevPane):
		m.focus = (m.focus - 1 + len(m.panes)) % len(m.panes)
	case key.Matches(msg, m.keys.Up):
		p.ScrollBy(-1)
	case key.Matches(msg, m.keys.Down):
		p.ScrollBy(1)
	case key.Matches(msg, m.keys.PageUp):
		p.ScrollBy(-p.pageSize())
	case key.Matches(msg, m.keys.PageDown):
		p.ScrollBy(p.pageSize())
	case key.Matches(msg, m.keys.Top):
		p.scrollToTop()
	case key.Matches(msg, m.keys.Bottom):
		p.scrollToBottom()
	}
	return m, nil
}

// paneIndexAt returns the index of the pane drawn on terminal row y, or -1.
func (m Model) paneIndexAt(y int) int {
	top := 0
	for i, h := range SplitHeights(m.height, m.fractions) {
		if y >= top && y < top+h {
			return i
		}
		top += h
	}
	return -1
}

func (m Model) paneAt(y int) *Pane {
	if i := m.paneIndexAt(y); i >= 0 {
		return m.panes[i]
	}
	return nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return ""
	}
	views := make([]string, 0, len(m.panes))
	for i, p := range m.panes {
		if v := p.view(m.width, i == m.focus, m.styles); v != "" {
			views = append(views, v)
		}
	}
	return strings.Join(views, "\n")
}
