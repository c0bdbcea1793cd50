package stream

// Pane is the part of a display pane the follow policy needs.
type Pane interface {
	AppendLine(text string)
	ScrollPercent() int
	Overflowing() bool
	ScrollBy(delta int)
}

// Append adds text to p and keeps the view following new output: when p was
// scrolled to the bottom, or pinned to the top and this line makes it
// overflow, the view advances by one line. Any other manual scroll position
// is left untouched.
func Append(p Pane, text string) {
	pct := p.ScrollPercent()
	wasOverflowing := p.Overflowing()

	p.AppendLine(text)

	atBottom := pct >= 100
	newlyOverflowing := pct == 0 && !wasOverflowing && p.Overflowing()
	if atBottom || newlyOverflowing {
		p.ScrollBy(1)
	}
}
