package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/freeasset/mediacore/color"
	"github.com/freeasset/mediacore/icon"
	"github.com/freeasset/mediacore/style"
	"github.com/freeasset/mediacore/util"
	"github.com/muesli/reflow/wrap"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case playerState:
		output = b.viewPlayer()
	case filterState:
		output = b.viewFilter()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + filepath.Base(b.options.Media),
		},
	)
}

func (b *statefulBubble) viewPlayer() string {
	snap := b.snapshot

	title := "No media"
	if snap.Path != "" {
		title = util.FileStem(snap.Path)
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		style.Truncate(b.width)(fmt.Sprintf("%s %s", b.statusIcon(), style.Fg(color.Purple)(title))),
		"",
		b.progressC.ViewAs(snap.PositionFraction),
		fmt.Sprintf(
			"%s / %s",
			style.Bold(util.FormatMillis(snap.CurrentTimeMs)),
			style.Faint(util.FormatMillis(snap.DurationMs)),
		),
		"",
		b.viewFlags(),
	}

	if snap.Error != "" {
		lines = append(lines, "", wrap.String(style.Fg(color.Red)(snap.Error), b.width))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) statusIcon() string {
	if b.snapshot.Switching {
		return b.spinnerC.View()
	}
	return icon.Get(icon.ForState(b.snapshot.State))
}

func (b *statefulBubble) viewFlags() string {
	snap := b.snapshot

	flags := []string{
		fmt.Sprintf("vol %d%%", snap.Volume),
		fmt.Sprintf("%.2gx", snap.Speed),
	}
	if snap.Muted {
		flags = append(flags, icon.Get(icon.Mute)+" muted")
	}
	if snap.Loop {
		flags = append(flags, icon.Get(icon.Loop)+" loop")
	}
	if snap.Filter != "" {
		flags = append(flags, icon.Get(icon.Filter)+" "+filepath.Base(snap.Filter))
	}
	if snap.AudioOnly {
		flags = append(flags, "audio")
	}

	return style.Fg(color.Yellow)(strings.Join(flags, "  "))
}

func (b *statefulBubble) viewFilter() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Color Filter"),
			"",
			b.inputC.View(),
			"",
			style.Faint("(Leave empty to clear the active filter)"),
		},
	)
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Playback Failure: %v", b.lastError))
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
