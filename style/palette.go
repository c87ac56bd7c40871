package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/freeasset/mediacore/color"
)

// Semantic colors for banners and boxed messages.
var (
	Text        = lipgloss.Color("#cdd6f4")
	AccentColor = lipgloss.Color("#cba6f7")
	ErrorColor  = lipgloss.Color("#f38ba8")
)

// stateColors colors session state names as reported in a snapshot.
var stateColors = map[string]lipgloss.Color{
	"idle":       color.Gray,
	"switching":  color.Cyan,
	"loading":    color.Cyan,
	"playing":    color.Green,
	"paused":     color.Yellow,
	"terminated": color.Red,
}

// State renders a session state name in its color. Unknown names are left plain.
func State(name string) string {
	c, ok := stateColors[name]
	if !ok {
		return name
	}
	return Fg(c)(name)
}
