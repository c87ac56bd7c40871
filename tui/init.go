package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// refreshInterval matches the cadence a UI timer polls the core at.
const refreshInterval = 200 * time.Millisecond

type (
	tickMsg   time.Time
	loadedMsg struct{}
	endedMsg  struct{}
	errMsg    struct{ err error }
)

func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, tick(), b.load())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// load opens the initial media, applies the initial filter and starts playing.
func (b *statefulBubble) load() tea.Cmd {
	core, options := b.core, b.options

	return func() tea.Msg {
		if options.Media == "" {
			return loadedMsg{}
		}
		if err := core.SetMedia(options.Media); err != nil {
			return errMsg{err}
		}
		if options.Filter != "" {
			if err := core.EnableFilter(options.Filter); err != nil {
				return errMsg{err}
			}
		}
		if err := core.Play(); err != nil {
			return errMsg{err}
		}
		return loadedMsg{}
	}
}

// do runs a core operation off the UI goroutine. A non-empty note is shown once it succeeds.
func (b *statefulBubble) do(op func() error, note string) tea.Cmd {
	return func() tea.Msg {
		if err := op(); err != nil {
			return errMsg{err}
		}
		if note != "" {
			return notifyMsg(note)
		}
		return nil
	}
}
