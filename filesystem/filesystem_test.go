package filesystem

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackend(t *testing.T) {
	Convey("Given the in-memory backend", t, func() {
		SetMemMapFs()
		Reset(SetMemMapFs)

		So(API().Name(), ShouldEqual, "MemMapFS")

		Convey("Switching resets its contents", func() {
			So(API().WriteFile("/sockets/a.sock", []byte("x"), 0o600), ShouldBeNil)
			SetMemMapFs()
			exists, err := API().Exists("/sockets/a.sock")
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})

		Convey("A read-only backend still reads but refuses writes", func() {
			So(API().WriteFile("/config/mediacore.toml", []byte("a = 1"), 0o600), ShouldBeNil)
			SetReadOnly()

			data, err := API().ReadFile("/config/mediacore.toml")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "a = 1")
			So(API().WriteFile("/config/other.toml", nil, 0o600), ShouldNotBeNil)
		})
	})

	Convey("The disk backend can be restored", t, func() {
		SetOsFs()
		Reset(SetMemMapFs)
		So(API().Name(), ShouldEqual, "OsFs")
	})
}
