package config

import (
	"testing"
	"time"

	"github.com/freeasset/mediacore/filesystem"
	"github.com/freeasset/mediacore/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.IsSet(name), ShouldBeTrue)
			}
		})

		Convey("Durations should be typed", func() {
			_ = Setup()
			So(viper.GetDuration(key.PlayerCommandTimeout), ShouldEqual, 5*time.Second)
			So(viper.GetDuration(key.IdleMinInterval), ShouldEqual, 500*time.Millisecond)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("player.command_timeout")
			So(result, ShouldEqual, "player_command_timeout")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a duration field", t, func() {
		field := Default[key.IdleSuppress]

		Convey("It should report its type", func() {
			So(field.TypeName(), ShouldEqual, "duration")
		})

		Convey("It should parse a duration string", func() {
			v, err := field.Parse([]string{"750ms"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 750*time.Millisecond)
		})

		Convey("It should reject garbage", func() {
			_, err := field.Parse([]string{"soon"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an int field", t, func() {
		field := Default[key.PlayerMaxInflight]

		Convey("It should parse integers", func() {
			v, err := field.Parse([]string{"8"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 8)
		})

		Convey("Info should carry the current and the default value", func() {
			_ = Setup()
			viper.Set(key.PlayerMaxInflight, 4)
			defer viper.Set(key.PlayerMaxInflight, 16)

			info := field.Info()
			So(info.Key, ShouldEqual, key.PlayerMaxInflight)
			So(info.Value, ShouldEqual, 4)
			So(info.Default, ShouldEqual, 16)
			So(info.Type, ShouldEqual, "int")
		})

		Convey("Env should carry the app prefix", func() {
			So(field.Env(), ShouldEqual, "MEDIACORE_PLAYER_MAX_INFLIGHT")
		})
	})
}

func TestChoices(t *testing.T) {
	Convey("Given a field with a closed set of values", t, func() {
		field := Default[key.LogsEngineLevel]
		So(field.Choices, ShouldContain, "warn")

		Convey("Listed values parse", func() {
			v, err := field.Parse([]string{"debug"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "debug")
		})

		Convey("Anything else is refused with the accepted values", func() {
			_, err := field.Parse([]string{"loud"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "trace")
		})

		Convey("Info and Pretty list the choices", func() {
			So(field.Info().Choices, ShouldResemble, field.Choices)
			So(field.Pretty(), ShouldContainSubstring, "no, fatal, error")
		})
	})

	Convey("Every default is one of its own choices", t, func() {
		for _, field := range Default {
			if len(field.Choices) == 0 {
				continue
			}
			So(field.Choices, ShouldContain, field.Value)
		}
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the defaults", t, func() {
		So(Setup(), ShouldBeNil)
		Reset(func() { viper.Set(key.PlayerBackend, "ipc") })

		So(Validate(), ShouldBeNil)

		Convey("A value outside its choices is named in the error", func() {
			viper.Set(key.PlayerBackend, "vlc")
			err := Validate()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, key.PlayerBackend)
			So(err.Error(), ShouldContainSubstring, `"vlc"`)
		})

		Convey("An environment override is checked too", func() {
			t.Setenv("MEDIACORE_LOGS_LEVEL", "shouting")
			So(Validate(), ShouldNotBeNil)
		})
	})
}
