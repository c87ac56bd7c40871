package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/freeasset/mediacore/playback"
	"github.com/freeasset/mediacore/util"
)

// statefulBubble holds the player view and the core it drives.
type statefulBubble struct {
	state    state
	previous state

	keymap *statefulKeymap
	core   *playback.Core

	// refreshed from the core on every tick
	snapshot playback.Snapshot

	spinnerC  spinner.Model
	inputC    textinput.Model
	progressC progress.Model
	helpC     help.Model

	notifier  *notifier
	lastError error

	width, height int
	options       *Options
}

// raiseError dispatches a terminal error and transitions the application to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState moves to s and remembers where to go back to.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}
	if b.state != loadingState {
		b.previous = b.state
	}
	b.setState(s)
}

func (b *statefulBubble) previousState() {
	b.setState(b.previous)
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y

	b.progressC.Width = b.width
	b.inputC.Width = b.width
	b.helpC.Width = b.width
}

func newBubble(core *playback.Core, options *Options) *statefulBubble {
	bubble := statefulBubble{
		keymap:   newStatefulKeymap(),
		core:     core,
		snapshot: core.Snapshot(),
		notifier: &notifier{},
		options:  options,
		previous: playerState,
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = "/path/to/table.cube"
	bubble.inputC.CharLimit = 512
	bubble.inputC.Prompt = "LUT: "

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.setState(loadingState)
	return &bubble
}
