package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/flashingpumpkin/mrun/internal/tasks"
)

// Dark theme colour palette (for dark terminal backgrounds)
const (
	ColourAmber      = lipgloss.Color("214") // #FFB000 - Focused borders
	ColourAmberDim   = lipgloss.Color("136") // #996600 - Borders
	ColourAmberLight = lipgloss.Color("222") // #FFD966 - Labels
	ColourSuccess    = lipgloss.Color("82")  // #00FF00 - Succeeded tasks
	ColourError      = lipgloss.Color("196") // #FF3300 - Failed tasks
)

// Light theme colour palette (for light terminal backgrounds)
const (
	ColourAmberDark    = lipgloss.Color("94")  // #8B6914 - Focused borders
	ColourAmberDarkDim = lipgloss.Color("58")  // #5C4A0A - Borders
	ColourAmberDarkMid = lipgloss.Color("94")  // #6B5A1E - Labels
	ColourSuccessDark  = lipgloss.Color("22")  // #008000 - Succeeded tasks
	ColourErrorDark    = lipgloss.Color("160") // #CC0000 - Failed tasks
)

// Box drawing characters for pane frames.
const (
	BoxTopLeft     = "╭"
	BoxTopRight    = "╮"
	BoxBottomLeft  = "╰"
	BoxBottomRight = "╯"
	BoxHorizontal  = "─"
	BoxVertical    = "│"
	ScrollThumb    = "┃"
	TruncationTail = "…"
)

// Styles contains all lipgloss styles for the panes.
type Styles struct {
	Border        lipgloss.Style
	BorderFocused lipgloss.Style
	Label         lipgloss.Style
	Success       lipgloss.Style
	Failure       lipgloss.Style
	Running       lipgloss.Style
	Thumb         lipgloss.Style
}

// DarkStyles returns the amber theme optimised for dark terminal backgrounds.
func DarkStyles() Styles {
	return Styles{
		Border:        lipgloss.NewStyle().Foreground(ColourAmberDim),
		BorderFocused: lipgloss.NewStyle().Foreground(ColourAmber),
		Label:         lipgloss.NewStyle().Foreground(ColourAmberLight).Bold(true),
		Success:       lipgloss.NewStyle().Foreground(ColourSuccess).Bold(true),
		Failure:       lipgloss.NewStyle().Foreground(ColourError).Bold(true),
		Running:       lipgloss.NewStyle().Foreground(ColourAmber),
		Thumb:         lipgloss.NewStyle().Foreground(ColourAmber),
	}
}

// LightStyles returns the amber theme optimised for light terminal backgrounds.
func LightStyles() Styles {
	return Styles{
		Border:        lipgloss.NewStyle().Foreground(ColourAmberDarkDim),
		BorderFocused: lipgloss.NewStyle().Foreground(ColourAmberDark),
		Label:         lipgloss.NewStyle().Foreground(ColourAmberDarkMid).Bold(true),
		Success:       lipgloss.NewStyle().Foreground(ColourSuccessDark).Bold(true),
		Failure:       lipgloss.NewStyle().Foreground(ColourErrorDark).Bold(true),
		Running:       lipgloss.NewStyle().Foreground(ColourAmberDark),
		Thumb:         lipgloss.NewStyle().Foreground(ColourAmberDark),
	}
}

// GetStyles returns the Styles for the given theme.
// Falls back to dark theme for unknown theme values.
func GetStyles(theme Theme) Styles {
	switch theme {
	case ThemeLight:
		return LightStyles()
	default:
		return DarkStyles()
	}
}

// renderLabel colours the status icon at the start of a pane label.
func (s Styles) renderLabel(label string) string {
	trimmed := strings.TrimLeft(label, " ")
	lead := label[:len(label)-len(trimmed)]

	icons := []struct {
		icon  string
		style lipgloss.Style
	}{
		{tasks.IconSuccess, s.Success},
		{tasks.IconFailure, s.Failure},
		{tasks.IconRunning, s.Running},
	}
	for _, ic := range icons {
		if strings.HasPrefix(trimmed, ic.icon) {
			return lead + ic.style.Render(ic.icon) + s.Label.Render(strings.TrimPrefix(trimmed, ic.icon))
		}
	}
	return s.Label.Render(label)
}
