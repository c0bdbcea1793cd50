package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// Pane is one task's bordered output region. It is safe for concurrent use:
// the runner appends and scrolls from its own goroutine while the tea event
// loop reads it to draw.
type Pane struct {
	mu     sync.Mutex
	label  string
	lines  *RingBuffer
	offset int // index of the first visible line
	outer  int // rows including the border
	height int // visible content rows
	closed bool
	notify func()
}

func newPane(title string, capacity int, notify func()) *Pane {
	return &Pane{
		label:  title,
		lines:  NewRingBuffer(capacity),
		notify: notify,
	}
}

// AppendLine adds text to the bottom of the buffer. The view position is
// not changed except to keep the same lines visible when the oldest line
// is evicted.
func (p *Pane) AppendLine(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.lines.Push(text) && p.offset > 0 {
		p.offset--
	}
}

// SetLabel replaces the title drawn in the top border.
func (p *Pane) SetLabel(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.label = text
}

// Label returns the current title.
func (p *Pane) Label() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.label
}

// ScrollPercent reports how far down the view is, 0 to 100.
func (p *Pane) ScrollPercent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	limit := p.maxOffset()
	if limit == 0 {
		return 0
	}
	return p.offset * 100 / limit
}

// Overflowing reports whether more lines are buffered than fit in the view.
func (p *Pane) Overflowing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lines.Len() > p.height
}

// ScrollBy moves the view by delta lines, clamped to the buffer.
func (p *Pane) ScrollBy(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollTo(p.offset + delta)
}

// Render asks the surface to redraw.
func (p *Pane) Render() {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed || p.notify == nil {
		return
	}
	p.notify()
}

func (p *Pane) scrollTo(offset int) {
	if limit := p.maxOffset(); offset > limit {
		offset = limit
	}
	if offset < 0 {
		offset = 0
	}
	p.offset = offset
}

func (p *Pane) scrollToBottom() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = p.maxOffset()
}

func (p *Pane) scrollToTop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = 0
}

func (p *Pane) pageSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.height < 1 {
		return 1
	}
	return p.height
}

func (p *Pane) maxOffset() int {
	if n := p.lines.Len() - p.height; n > 0 {
		return n
	}
	return 0
}

// setHeight resizes the pane to outer rows. A view that was at the bottom
// stays at the bottom.
func (p *Pane) setHeight(outer int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	atBottom := p.offset >= p.maxOffset()
	p.outer = outer
	p.height = ContentHeight(outer)
	if atBottom {
		p.offset = p.maxOffset()
		return
	}
	p.scrollTo(p.offset)
}

func (p *Pane) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// view draws the pane as exactly p.outer rows of the given width.
func (p *Pane) view(width int, focused bool, s Styles) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.outer <= 0 || width < 2 {
		return ""
	}
	inner := width - 2

	border := s.Border
	if focused {
		border = s.BorderFocused
	}

	rows := make([]string, 0, p.outer)

	label := ansi.Truncate(p.label, inner, TruncationTail)
	fill := inner - ansi.StringWidth(label)
	rows = append(rows, border.Render(BoxTopLeft)+s.renderLabel(label)+
		border.Render(strings.Repeat(BoxHorizontal, fill)+BoxTopRight))
	if p.outer == 1 {
		return rows[0]
	}

	thumb := -1
	if limit := p.maxOffset(); limit > 0 && p.height > 0 {
		thumb = p.offset * (p.height - 1) / limit
	}

	left := border.Render(BoxVertical)
	for i, line := range p.contentRows() {
		line = ansi.Truncate(strings.ReplaceAll(line, "\t", "    "), inner, TruncationTail)
		if strings.Contains(line, "\x1b") {
			line += ansi.ResetStyle
		}
		pad := inner - ansi.StringWidth(line)
		right := left
		if i == thumb {
			right = s.Thumb.Render(ScrollThumb)
		}
		rows = append(rows, left+line+strings.Repeat(" ", pad)+right)
	}

	rows = append(rows, border.Render(BoxBottomLeft+strings.Repeat(BoxHorizontal, inner)+BoxBottomRight))
	return strings.Join(rows, "\n")
}

// contentRows returns exactly p.height rows, blank-padded.
func (p *Pane) contentRows() []string {
	rows := p.lines.Window(p.offset, p.height)
	for len(rows) < p.height {
		rows = append(rows, "")
	}
	return rows
}
