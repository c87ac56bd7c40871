package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/engine/enginetest"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/exp/slices"
)

func TestHandle(t *testing.T) {
	Convey("Given a fake engine", t, func() {
		fake := enginetest.New()

		Convey("Create should fail when the backend cannot be created", func() {
			_, err := engine.Create(enginetest.FailingFactory(errors.New("libmpv not found")))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "libmpv not found")
		})

		Convey("Create should fail without a backend", func() {
			_, err := engine.Create(nil)
			So(err, ShouldNotBeNil)
		})

		Convey("With a created handle", func() {
			h, err := engine.Create(fake.Factory())
			So(err, ShouldBeNil)

			Convey("Configure should pass options through in order", func() {
				So(h.Configure(engine.DefaultOptions()), ShouldBeNil)
				v, ok := fake.Option("keep-open")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "no")
				v, _ = fake.Option("idle")
				So(v, ShouldEqual, "yes")
			})

			Convey("Log messages can only be requested once initialized", func() {
				So(h.RequestLogMessages("warn"), ShouldEqual, engine.ErrUninitialized)
				So(h.Initialize(), ShouldBeNil)
				So(h.RequestLogMessages("debug"), ShouldBeNil)
				So(fake.LogLevel(), ShouldEqual, "debug")
				So(h.RequestLogMessages("loud"), ShouldEqual, engine.ErrInvalidParameter)

				h.Terminate()
				So(h.RequestLogMessages("warn"), ShouldEqual, engine.ErrTerminated)
			})

			Convey("Initialize should reject an old client api", func() {
				fake.SetAPIVersion("1.109.0")
				err := h.Initialize()
				So(err, ShouldNotBeNil)
				So(h.Initialized(), ShouldBeFalse)
			})

			Convey("Initialize should start the engine", func() {
				So(h.Initialize(), ShouldBeNil)
				So(h.Initialized(), ShouldBeTrue)
				So(h.Engine(), ShouldNotBeNil)

				Convey("Configure after initialize is refused by the engine", func() {
					So(h.Configure([]engine.Option{{Name: "vo", Value: "null"}}), ShouldNotBeNil)
				})

				Convey("Terminate should be idempotent and never panic", func() {
					fake.PanicOn("stop", "native crash")
					fake.FailCommand("quit", engine.ErrCommand)

					So(func() { h.Terminate() }, ShouldNotPanic)
					So(func() { h.Terminate() }, ShouldNotPanic)
					So(fake.Destroyed(), ShouldBeTrue)
					So(h.Engine(), ShouldBeNil)
					So(h.Initialized(), ShouldBeFalse)
					So(h.Initialize(), ShouldEqual, engine.ErrTerminated)
				})
			})

			Convey("Terminate gives up on a hung teardown and lets it finish behind", func() {
				So(h.Initialize(), ShouldBeNil)
				fake.SetDelay("stop", 300*time.Millisecond)

				start := time.Now()
				So(h.TerminateWithin(20*time.Millisecond), ShouldBeFalse)
				So(time.Since(start), ShouldBeLessThan, 250*time.Millisecond)
				So(h.Initialized(), ShouldBeFalse)
				So(h.TerminateWithin(time.Second), ShouldBeTrue)

				deadline := time.Now().Add(2 * time.Second)
				for !fake.Destroyed() && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(fake.Destroyed(), ShouldBeTrue)
			})

			Convey("Terminate before initialize only destroys", func() {
				h.Terminate()
				So(fake.Destroyed(), ShouldBeTrue)
				So(fake.Commands(), ShouldBeEmpty)
			})
		})
	})
}

func TestParseOption(t *testing.T) {
	Convey("ParseOption", t, func() {
		o, err := engine.ParseOption("--hwdec=no")
		So(err, ShouldBeNil)
		So(o, ShouldResemble, engine.Option{Name: "hwdec", Value: "no"})

		o, err = engine.ParseOption("msg-level=all=v")
		So(err, ShouldBeNil)
		So(o.Value, ShouldEqual, "all=v")

		o, err = engine.ParseOption("fullscreen")
		So(err, ShouldBeNil)
		So(o.Value, ShouldEqual, "yes")

		_, err = engine.ParseOption("  ")
		So(err, ShouldNotBeNil)

		_, err = engine.ParseOption("=x")
		So(err, ShouldNotBeNil)
	})
}

func TestRegistry(t *testing.T) {
	Convey("Backend registry", t, func() {
		engine.Register("registry-test", enginetest.New().Factory())

		f, err := engine.Lookup("registry-test")
		So(err, ShouldBeNil)
		So(f, ShouldNotBeNil)
		So(engine.Backends(), ShouldContain, "registry-test")

		engine.Register("registry-a", enginetest.New().Factory())
		names := engine.Backends()
		So(slices.IsSorted(names), ShouldBeTrue)
		So(slices.Index(names, "registry-a"), ShouldBeLessThan, slices.Index(names, "registry-test"))

		_, err = engine.Lookup("nope")
		So(err, ShouldNotBeNil)

		So(func() { engine.Register("registry-test", nil) }, ShouldPanic)
	})
}
