// Package tui provides the terminal player view.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/freeasset/mediacore/playback"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Media  string
	Filter string
}

// Run opens the player view over core until the user quits.
func Run(core *playback.Core, options *Options) error {
	bubble := newBubble(core, options)
	program := tea.NewProgram(bubble, tea.WithAltScreen())

	core.OnIdle(func() {
		program.Send(endedMsg{})
	})
	defer core.OnIdle(nil)

	_, err := program.Run()
	return err
}
