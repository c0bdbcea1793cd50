package stream

import "testing"

// fakePane models a viewport of height lines over a growing buffer.
type fakePane struct {
	lines    []string
	height   int
	offset   int
	scrolled int
}

func (p *fakePane) AppendLine(text string) { p.lines = append(p.lines, text) }

func (p *fakePane) maxOffset() int {
	if n := len(p.lines) - p.height; n > 0 {
		return n
	}
	return 0
}

func (p *fakePane) ScrollPercent() int {
	if p.maxOffset() == 0 {
		return 0
	}
	return p.offset * 100 / p.maxOffset()
}

func (p *fakePane) Overflowing() bool { return len(p.lines) > p.height }

func (p *fakePane) ScrollBy(delta int) {
	p.scrolled += delta
	p.offset += delta
	if p.offset > p.maxOffset() {
		p.offset = p.maxOffset()
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

func fill(p *fakePane, n int) {
	for i := 0; i < n; i++ {
		Append(p, "line")
	}
}

func TestAppend_FollowsWhenAtBottom(t *testing.T) {
	p := &fakePane{height: 3}
	fill(p, 10)

	if p.offset != p.maxOffset() {
		t.Fatalf("offset = %d, want bottom %d", p.offset, p.maxOffset())
	}

	Append(p, "new")
	if p.offset != p.maxOffset() {
		t.Errorf("offset = %d after append, want to stay at bottom %d", p.offset, p.maxOffset())
	}
}

func TestAppend_NewlyOverflowingFromTop(t *testing.T) {
	p := &fakePane{height: 3}
	fill(p, 3)
	if p.scrolled != 0 {
		t.Fatalf("scrolled = %d while the buffer still fits", p.scrolled)
	}

	Append(p, "overflow")
	if p.scrolled != 1 || p.offset != 1 {
		t.Errorf("scrolled/offset = %d/%d, want 1/1 on first overflow", p.scrolled, p.offset)
	}
}

func TestAppend_LeavesManualScrollAlone(t *testing.T) {
	p := &fakePane{height: 3}
	fill(p, 10)

	p.offset = 2 // user scrolled up
	before := p.scrolled
	Append(p, "new")

	if p.offset != 2 {
		t.Errorf("offset = %d, want unchanged 2", p.offset)
	}
	if p.scrolled != before {
		t.Errorf("ScrollBy called on a manually scrolled pane")
	}
}

func TestAppend_TopOfOverflowingPaneStaysPut(t *testing.T) {
	p := &fakePane{height: 3}
	fill(p, 10)

	p.offset = 0 // user scrolled to the very top
	Append(p, "new")

	if p.offset != 0 {
		t.Errorf("offset = %d, want 0", p.offset)
	}
}
