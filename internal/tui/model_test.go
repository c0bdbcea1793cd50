package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

func newTestModel(titles ...string) Model {
	panes := make([]*Pane, len(titles))
	fractions := make([]float64, len(titles))
	for i, title := range titles {
		panes[i] = newPane(title, 100, nil)
		fractions[i] = 1 / float64(len(titles))
	}
	return NewModel("mrun", panes, fractions, DarkStyles())
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelInit(t *testing.T) {
	if cmd := newTestModel("a").Init(); cmd == nil {
		t.Error("expected Init() to set the window title")
	}
	m := NewModel("", nil, nil, DarkStyles())
	if cmd := m.Init(); cmd != nil {
		t.Error("expected Init() to return nil without a title")
	}
}

func TestModelUpdateWindowSize(t *testing.T) {
	m := newTestModel("a", "b")

	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	model := updated.(Model)

	if cmd != nil {
		t.Error("expected no command from window size update")
	}
	if !model.ready {
		t.Error("expected model to be ready after window size message")
	}
	for i, p := range model.panes {
		if p.outer != 10 || p.height != 8 {
			t.Errorf("pane %d: outer=%d height=%d, want 10 and 8", i, p.outer, p.height)
		}
	}

	rows := strings.Split(model.View(), "\n")
	if len(rows) != 20 {
		t.Errorf("View() has %d rows, want 20", len(rows))
	}
}

func TestModelViewBeforeReady(t *testing.T) {
	if v := newTestModel("a").View(); v != "" {
		t.Errorf("View() = %q, want empty before the first size", v)
	}
}

func TestModelRegisteredHandler(t *testing.T) {
	m := newTestModel("a")
	calls := 0
	m.handlers = []handler{{
		binding: key.NewBinding(key.WithKeys("q", "esc")),
		fn:      func() { calls++ },
	}}

	m.Update(keyPress("q"))
	m.Update(keyPress("esc"))
	m.Update(keyPress("x"))

	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}
}

func TestModelFocusCycles(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want int
	}{
		{"tab", []string{"tab"}, 1},
		{"tab wraps", []string{"tab", "tab", "tab"}, 0},
		{"shift+tab wraps", []string{"shift+tab"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var model tea.Model = newTestModel("a", "b", "c")
			for _, k := range tt.keys {
				model, _ = model.Update(keyPress(k))
			}
			if got := model.(Model).focus; got != tt.want {
				t.Errorf("focus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestModelScrollKeys(t *testing.T) {
	m := newTestModel("a")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 7}) // five rows
	m = updated.(Model)
	p := m.panes[0]
	for i := 0; i < 20; i++ {
		p.AppendLine("x")
	}

	m.Update(keyPress("g"))
	if got := p.ScrollPercent(); got != 0 {
		t.Errorf("after g: ScrollPercent() = %d, want 0", got)
	}
	m.Update(keyPress("j"))
	if p.offset != 1 {
		t.Errorf("after j: offset = %d, want 1", p.offset)
	}
	m.Update(keyPress("pgdown"))
	if p.offset != 6 {
		t.Errorf("after pgdown: offset = %d, want 6", p.offset)
	}
	m.Update(keyPress("G"))
	if got := p.ScrollPercent(); got != 100 {
		t.Errorf("after G: ScrollPercent() = %d, want 100", got)
	}
}

func TestModelMouseWheelScrollsPaneUnderPointer(t *testing.T) {
	m := newTestModel("a", "b")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	m = updated.(Model)
	for _, p := range m.panes {
		for i := 0; i < 30; i++ {
			p.AppendLine("x")
		}
	}

	m.Update(tea.MouseMsg{Y: 15, Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})

	if m.panes[0].offset != 0 {
		t.Errorf("pane 0 offset = %d, want 0", m.panes[0].offset)
	}
	if m.panes[1].offset != wheelStep {
		t.Errorf("pane 1 offset = %d, want %d", m.panes[1].offset, wheelStep)
	}
}

func TestModelRenderMsgClearsPending(t *testing.T) {
	m := newTestModel("a")
	m.pending.Store(true)

	m.Update(renderMsg{})

	if m.pending.Load() {
		t.Error("pending still set after renderMsg")
	}
}

func TestModelTeatest(t *testing.T) {
	m := newTestModel(" → build ", " → test ")
	m.panes[0].AppendLine("compiled 12 files")

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(60, 20))
	tm.Send(tea.WindowSizeMsg{Width: 60, Height: 20})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("compiled 12 files")) && bytes.Contains(out, []byte("test"))
	}, teatest.WithDuration(3*time.Second))

	if err := tm.Quit(); err != nil {
		t.Fatal(err)
	}
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
