package where

import (
	"os"
	"testing"

	"github.com/freeasset/mediacore/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Use in-memory filesystem for tests to avoid creating real directories
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Config() honours the override", func() {
			t.Setenv(EnvConfigPath, "/custom/mediacore")
			So(Config(), ShouldEqual, "/custom/mediacore")
			So(lo.Must(filesystem.API().IsDir("/custom/mediacore")), ShouldBeTrue)
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Sockets() lives under the temp dir", func() {
			path := Sockets()
			So(path, ShouldStartWith, os.TempDir())
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})
	})
}
