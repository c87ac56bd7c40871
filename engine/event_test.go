package engine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEventSpace(t *testing.T) {
	Convey("Event ids match the client api", t, func() {
		So(int(EventShutdown), ShouldEqual, 1)
		So(int(EventEndFile), ShouldEqual, 7)
		So(int(EventFileLoaded), ShouldEqual, 8)
		So(int(EventIdle), ShouldEqual, 11)
		So(int(EventClientMessage), ShouldEqual, 16)
		So(int(EventPropertyChange), ShouldEqual, 22)
		So(int(EventHook), ShouldEqual, 25)

		Convey("Names round trip", func() {
			for id, name := range eventNames {
				parsed, ok := ParseEventID(name)
				So(ok, ShouldBeTrue)
				So(parsed, ShouldEqual, id)
				So(id.String(), ShouldEqual, name)
			}
			_, ok := ParseEventID("bogus")
			So(ok, ShouldBeFalse)
		})

		Convey("Only lifecycle events are critical", func() {
			So(EventFileLoaded.Critical(), ShouldBeTrue)
			So(EventEndFile.Critical(), ShouldBeTrue)
			So(EventShutdown.Critical(), ShouldBeTrue)
			So(EventIdle.Critical(), ShouldBeFalse)
			So(EventPropertyChange.Critical(), ShouldBeFalse)
		})
	})

	Convey("Error codes match the client api", t, func() {
		So(int(ErrInvalidParameter), ShouldEqual, -4)
		So(int(ErrCommand), ShouldEqual, -12)
		So(int(ErrLoadingFailed), ShouldEqual, -13)
		So(int(ErrNothingToPlay), ShouldEqual, -16)
		So(ErrPropertyNotFound.Error(), ShouldEqual, "property not found")
		So(ParseError("loading failed"), ShouldEqual, ErrLoadingFailed)
		So(ParseError("what"), ShouldEqual, ErrGeneric)
		So(Success.Err(), ShouldBeNil)
		So(ErrCommand.Err(), ShouldEqual, ErrCommand)
	})

	Convey("End reasons", t, func() {
		So(ParseEndReason("eof"), ShouldEqual, EndEOF)
		So(ParseEndReason("redirect"), ShouldEqual, EndRedirect)
		So(EndStop.String(), ShouldEqual, "stop")
	})
}

func TestValue(t *testing.T) {
	Convey("Values render the way commands expect", t, func() {
		So(Flag(true).String(), ShouldEqual, "yes")
		So(Flag(false).String(), ShouldEqual, "no")
		So(Double(1.5).String(), ShouldEqual, "1.5")
		So(Int64(-1).String(), ShouldEqual, "-1")
		So(Value{}.IsEmpty(), ShouldBeTrue)
	})

	Convey("Values convert between formats", t, func() {
		So(String("yes").Convert(FormatFlag).Bool(), ShouldBeTrue)
		So(String("2.25").Convert(FormatDouble).Float(), ShouldEqual, 2.25)
		So(Double(3.9).Int(), ShouldEqual, 3)
		So(Int64(4).Float(), ShouldEqual, 4.0)
		So(Value{}.Convert(FormatFlag).IsEmpty(), ShouldBeTrue)
	})
}
