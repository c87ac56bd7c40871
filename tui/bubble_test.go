package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freeasset/mediacore/engine/enginetest"
	"github.com/freeasset/mediacore/playback"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBubble(t *testing.T) {
	Convey("Given a player view over an idle core", t, func() {
		fake := enginetest.New()
		core, err := playback.New(fake.Factory(), playback.DefaultOptions())
		So(err, ShouldBeNil)
		Reset(func() { _ = core.Close() })

		b := newBubble(core, &Options{})
		b.resize(80, 24)

		Convey("Loading with no media opens the player", func() {
			msg := b.load()()
			So(msg, ShouldHaveSameTypeAs, loadedMsg{})

			b.Update(msg)
			So(b.state, ShouldEqual, playerState)
			So(b.View(), ShouldContainSubstring, "No media")
		})

		Convey("The filter prompt opens and closes", func() {
			b.setState(playerState)
			b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
			So(b.state, ShouldEqual, filterState)

			b.Update(tea.KeyMsg{Type: tea.KeyEsc})
			So(b.state, ShouldEqual, playerState)
		})

		Convey("An error while loading shows the error view", func() {
			b.Update(errMsg{errors.New("boom")})
			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, "boom")
		})

		Convey("Errors during playback become notifications", func() {
			b.setState(playerState)
			_, cmd := b.Update(errMsg{errors.New("engine command timed out")})
			So(cmd, ShouldNotBeNil)

			b.Update(cmd())
			So(b.View(), ShouldContainSubstring, "timed out")
		})
	})
}
