package cmd

import (
	"testing"

	"github.com/freeasset/mediacore/where"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEnvVars(t *testing.T) {
	Convey("Given one override set", t, func() {
		t.Setenv("MEDIACORE_PLAYER_LOOP", "true")

		vars := envVars()
		names := lo.Map(vars, func(v envVar, _ int) string { return v.name })

		Convey("Every config key and the config dir are listed once", func() {
			So(names, ShouldContain, "MEDIACORE_PLAYER_LOOP")
			So(names, ShouldContain, where.EnvConfigPath)
			So(len(lo.Uniq(names)), ShouldEqual, len(names))
		})

		Convey("Only the set one reports a value", func() {
			loop, _ := lo.Find(vars, func(v envVar) bool { return v.name == "MEDIACORE_PLAYER_LOOP" })
			So(loop.set, ShouldBeTrue)
			So(loop.value, ShouldEqual, "true")

			backend, _ := lo.Find(vars, func(v envVar) bool { return v.name == "MEDIACORE_PLAYER_BACKEND" })
			So(backend.set, ShouldBeFalse)
		})

		Convey("Calling again does not grow the list", func() {
			So(len(envVars()), ShouldEqual, len(vars))
		})
	})
}
