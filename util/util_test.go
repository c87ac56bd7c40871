package util

import (
	"math"
	"testing"

	"github.com/freeasset/mediacore/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "file", "files"), ShouldEqual, "1 file")
		So(Quantify(2, "file", "files"), ShouldEqual, "2 files")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
		So(Capitalize("stale engine sockets"), ShouldEqual, "Stale engine sockets")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("path/to/file.mkv"), ShouldEqual, "file")
		So(FileStem("file"), ShouldEqual, "file")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(150, 0, 100), ShouldEqual, 100)
		So(Clamp(-3, 0, 100), ShouldEqual, 0)
		So(Clamp(42, 0, 100), ShouldEqual, 42)
		So(Clamp(0.05, 0.1, 10.0), ShouldEqual, 0.1)
		So(Clamp(math.Inf(1), 0.1, 10.0), ShouldEqual, 10.0)
	})
}

func TestFormatMillis(t *testing.T) {
	Convey("FormatMillis", t, func() {
		So(FormatMillis(0), ShouldEqual, "0:00")
		So(FormatMillis(61_500), ShouldEqual, "1:01")
		So(FormatMillis(3_723_000), ShouldEqual, "1:02:03")
		So(FormatMillis(-5), ShouldEqual, "0:00")
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		lo.Must0(fs.MkdirAll("/tmp/a/b", 0o755))
		lo.Must0(fs.WriteFile("/tmp/a/b/c.txt", []byte("x"), 0o644))

		So(Delete("/tmp/a"), ShouldBeNil)
		So(lo.Must(fs.Exists("/tmp/a")), ShouldBeFalse)
		So(Delete("/tmp/missing"), ShouldNotBeNil)
	})
}
