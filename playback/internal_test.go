package playback

import (
	"testing"
	"time"

	"github.com/freeasset/mediacore/config"
	"github.com/freeasset/mediacore/engine/enginetest"
	"github.com/freeasset/mediacore/filesystem"
	"github.com/freeasset/mediacore/key"
	"github.com/freeasset/mediacore/session"
	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestLut3d(t *testing.T) {
	Convey("Paths with spaces are quoted for lavfi", t, func() {
		So(lut3d("/luts/warm.cube"), ShouldEqual, "lavfi-lut3d=file=/luts/warm.cube")
		So(lut3d("/my luts/warm.cube"), ShouldEqual, "lavfi-lut3d=file='/my luts/warm.cube'")
	})
}

func TestOptionsFromConfig(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		So(config.Setup(), ShouldBeNil)
		Reset(viper.Reset)

		Convey("The defaults come through", func() {
			opts, err := OptionsFromConfig()
			So(err, ShouldBeNil)
			So(opts.CommandTimeout, ShouldEqual, 5*time.Second)
			So(opts.LoadTimeout, ShouldEqual, 30*time.Second)
			So(opts.PlayRetries, ShouldEqual, 2)
			So(opts.Volume, ShouldEqual, 100)
			So(opts.Idle.Threshold, ShouldEqual, 5)
			So(opts.Clock, ShouldNotBeNil)
			So(opts.EngineLogLevel, ShouldEqual, "warn")
		})

		Convey("Extra engine options are appended after the defaults", func() {
			viper.Set(key.PlayerOptions, []string{"--hwdec=no", "mute"})
			opts, err := OptionsFromConfig()
			So(err, ShouldBeNil)

			n := len(opts.EngineOptions)
			So(opts.EngineOptions[n-2].Name, ShouldEqual, "hwdec")
			So(opts.EngineOptions[n-2].Value, ShouldEqual, "no")
			So(opts.EngineOptions[n-1].Value, ShouldEqual, "yes")
		})

		Convey("A malformed engine option is an error", func() {
			viper.Set(key.PlayerOptions, []string{"--=x"})
			_, err := OptionsFromConfig()
			So(err, ShouldNotBeNil)
		})

		Convey("Zero values fall back to the defaults", func() {
			viper.Set(key.PlayerPollInterval, time.Duration(0))
			opts, err := OptionsFromConfig()
			So(err, ShouldBeNil)
			So(opts.PollInterval, ShouldEqual, 100*time.Millisecond)
		})
	})
}

func TestLoopReloadOfReplacedMedia(t *testing.T) {
	Convey("Given a loop reload that lost the race to a new media", t, func() {
		for _, p := range []string{"/media/loop-a.mp4", "/media/loop-b.mp4"} {
			So(filesystem.API().WriteFile(p, []byte("x"), 0o644), ShouldBeNil)
		}

		fake := enginetest.New()
		opts := DefaultOptions()
		opts.CommandTimeout = 500 * time.Millisecond
		opts.LoadTimeout = time.Second
		opts.PollInterval = 5 * time.Millisecond
		c, err := New(fake.Factory(), opts)
		So(err, ShouldBeNil)
		Reset(func() {
			fake.HoldEvents(false)
			_ = c.Close()
		})

		state := func(want string) bool {
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				if c.Snapshot().State == want {
					return true
				}
				time.Sleep(5 * time.Millisecond)
			}
			return false
		}

		So(c.SetMedia("/media/loop-a.mp4"), ShouldBeNil)
		So(state("paused"), ShouldBeTrue)
		fake.ResetCommands()
		fake.HoldEvents(true)

		var (
			stale     uuid.UUID
			reloadErr error
		)
		So(c.loopState(func(m *session.Machine) {
			_, reloadErr = m.BeginReload()
			stale = m.Session().ID
		}), ShouldBeTrue)
		So(reloadErr, ShouldBeNil)
		So(c.SetMedia("/media/loop-b.mp4"), ShouldBeNil)

		Convey("Nothing is sent for the old media", func() {
			c.loopReload(stale, "/media/loop-a.mp4")
			loads := fake.CommandsNamed("loadfile")
			So(loads, ShouldHaveLength, 1)
			So(loads[0][1], ShouldEqual, "/media/loop-b.mp4")

			Convey("and the new media finishes its switch", func() {
				fake.HoldEvents(false)
				So(state("paused"), ShouldBeTrue)
				snap := c.Snapshot()
				So(snap.Path, ShouldEqual, "/media/loop-b.mp4")
				So(snap.Switching, ShouldBeFalse)
			})
		})
	})
}
