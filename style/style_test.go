package style

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestState(t *testing.T) {
	Convey("State names keep their text", t, func() {
		for _, name := range []string{"idle", "switching", "loading", "playing", "paused", "terminated"} {
			So(State(name), ShouldContainSubstring, name)
		}
	})

	Convey("Unknown names are returned as is", t, func() {
		So(State("buffering"), ShouldEqual, "buffering")
	})
}
