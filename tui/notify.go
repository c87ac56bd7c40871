package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freeasset/mediacore/style"
)

// notifier shows a short-lived message next to the last line of the view.
type notifier struct {
	message string
	shownAt time.Time
}

type notifyMsg string

type clearNotificationMsg struct{ shownAt time.Time }

func notify(message string) tea.Cmd {
	return func() tea.Msg {
		return notifyMsg(message)
	}
}

func (n *notifier) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notifyMsg:
		n.message = string(msg)
		n.shownAt = time.Now()
		shownAt := n.shownAt
		return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearNotificationMsg{shownAt: shownAt}
		})
	case clearNotificationMsg:
		// a newer message restarted the timer
		if msg.shownAt.Equal(n.shownAt) {
			n.message = ""
		}
	}
	return nil
}

func (n *notifier) View(content string) string {
	if n.message == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(n.message)
	return strings.Join(lines, "\n")
}
