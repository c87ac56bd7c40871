package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	seekStep   = 5
	volumeStep = 5
	speedStep  = 0.25
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case tickMsg:
		b.snapshot = b.core.Snapshot()
		return b, tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case loadedMsg:
		b.snapshot = b.core.Snapshot()
		b.setState(playerState)
		return b, nil
	case endedMsg:
		return b, notify("playback finished")
	case errMsg:
		if b.state == loadingState {
			b.raiseError(msg.err)
			return b, nil
		}
		return b, notify(msg.err.Error())
	case notifyMsg, clearNotificationMsg:
		return b, b.notifier.Update(msg)
	case tea.KeyMsg:
		if key.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	}

	switch b.state {
	case playerState:
		return b.updatePlayer(msg)
	case filterState:
		return b.updateFilter(msg)
	case errorState:
		return b.updateError(msg)
	}

	return b, nil
}

func (b *statefulBubble) updatePlayer(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	core, snap := b.core, b.snapshot

	switch {
	case key.Matches(keyMsg, b.keymap.quit):
		return b, tea.Quit
	case key.Matches(keyMsg, b.keymap.playPause):
		return b, b.do(core.TogglePause, "")
	case key.Matches(keyMsg, b.keymap.stop):
		return b, b.do(core.Stop, "stopped")
	case key.Matches(keyMsg, b.keymap.seekForward):
		return b, b.do(func() error { return core.SeekRelative(seekStep) }, "")
	case key.Matches(keyMsg, b.keymap.seekBack):
		return b, b.do(func() error { return core.SeekRelative(-seekStep) }, "")
	case key.Matches(keyMsg, b.keymap.volumeUp):
		return b, b.do(func() error { return core.SetVolume(snap.Volume + volumeStep) }, "")
	case key.Matches(keyMsg, b.keymap.volumeDown):
		return b, b.do(func() error { return core.SetVolume(snap.Volume - volumeStep) }, "")
	case key.Matches(keyMsg, b.keymap.speedUp):
		speed := snap.Speed + speedStep
		return b, b.do(func() error { return core.SetSpeed(speed) }, fmt.Sprintf("speed %.2gx", speed))
	case key.Matches(keyMsg, b.keymap.speedDown):
		speed := snap.Speed - speedStep
		return b, b.do(func() error { return core.SetSpeed(speed) }, fmt.Sprintf("speed %.2gx", speed))
	case key.Matches(keyMsg, b.keymap.mute):
		return b, b.do(func() error { return core.SetMute(!snap.Muted) }, "")
	case key.Matches(keyMsg, b.keymap.loop):
		note := "loop on"
		if snap.Loop {
			note = "loop off"
		}
		return b, b.do(func() error { return core.SetLoop(!snap.Loop) }, note)
	case key.Matches(keyMsg, b.keymap.filter):
		b.inputC.SetValue(snap.Filter)
		b.newState(filterState)
		return b, b.inputC.Focus()
	case key.Matches(keyMsg, b.keymap.clearFilter):
		return b, b.do(core.DisableFilter, "filter cleared")
	case key.Matches(keyMsg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return b, nil
	}

	return b, nil
}

func (b *statefulBubble) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, b.keymap.back):
			b.inputC.Blur()
			b.previousState()
			return b, nil
		case key.Matches(keyMsg, b.keymap.confirm):
			path := b.inputC.Value()
			b.inputC.Blur()
			b.previousState()
			if path == "" {
				return b, b.do(b.core.DisableFilter, "filter cleared")
			}
			return b, b.do(func() error { return b.core.EnableFilter(path) }, "filter applied")
		}
	}

	var cmd tea.Cmd
	b.inputC, cmd = b.inputC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	switch {
	case key.Matches(keyMsg, b.keymap.quit):
		return b, tea.Quit
	case key.Matches(keyMsg, b.keymap.back):
		b.lastError = nil
		b.setState(playerState)
	}
	return b, nil
}
