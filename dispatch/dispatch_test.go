package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/engine/enginetest"
	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func newFake() *enginetest.Engine {
	fake := enginetest.New()
	if err := fake.Initialize(); err != nil {
		panic(err)
	}
	return fake
}

func TestCommands(t *testing.T) {
	Convey("Command helpers build the engine vectors", t, func() {
		cases := []struct {
			cmd  Command
			want []string
		}{
			{LoadFile("/m/x.mp4"), []string{"loadfile", "/m/x.mp4", "replace"}},
			{Seek(42.5), []string{"seek", "42.5", "absolute-percent", "exact"}},
			{SeekStart(), []string{"seek", "0", "absolute", "exact"}},
			{SeekRelative(-5), []string{"seek", "-5", "relative", "exact"}},
			{Set("pause", engine.Flag(true)), []string{"set", "pause", "yes"}},
			{Set("speed", engine.Double(1.5)), []string{"set", "speed", "1.5"}},
			{ClearWindow(), []string{"set", "wid", "-1"}},
			{SetWindow(77), []string{"set", "wid", "77"}},
			{Raw("vf", "clr", ""), []string{"vf", "clr", ""}},
		}
		for _, c := range cases {
			So(cmp.Diff(c.want, c.cmd.Vector()), ShouldBeEmpty)
		}
		So(Raw().Name, ShouldBeEmpty)
	})

	Convey("Classify", t, func() {
		So(Classify(Stop()), ShouldEqual, Critical)
		So(Classify(PlaylistClear()), ShouldEqual, Critical)
		So(Classify(LoadFile("x")), ShouldEqual, Critical)
		So(Classify(ClearWindow()), ShouldEqual, Critical)
		So(Classify(Quit()), ShouldEqual, Critical)
		So(Classify(Seek(10)), ShouldEqual, Transport)
		So(Classify(Set("pause", engine.Flag(false))), ShouldEqual, Transport)
		So(Classify(Set("volume", engine.Double(50))), ShouldEqual, Transport)
		So(Classify(Command{Name: Query, Args: []string{"pause"}}), ShouldEqual, Transport)
		So(Classify(Set("speed", engine.Double(2))), ShouldEqual, Advisory)
		So(Classify(Raw("vf", "add", "x")), ShouldEqual, Advisory)
		So(Classify(Command{Name: "set"}), ShouldEqual, Advisory)
	})
}

func TestExecute(t *testing.T) {
	Convey("Given a dispatcher over a fake engine", t, func() {
		fake := newFake()
		lock := NewMutex()
		d := New(fake, lock, 4)

		Convey("A fast command succeeds", func() {
			o := d.Execute(Set("volume", engine.Double(50)), time.Second)
			So(o.Success, ShouldBeTrue)
			So(o.TimedOut, ShouldBeFalse)
			So(o.Err, ShouldBeNil)
			So(fake.Property("volume").Float(), ShouldEqual, 50)
		})

		Convey("A failing command reports the engine error", func() {
			o := d.Execute(Raw("bogus"), time.Second)
			So(o.Success, ShouldBeFalse)
			So(o.Err, ShouldEqual, engine.ErrCommand)
		})

		Convey("A hung command is abandoned at the timeout", func() {
			fake.SetDelay("loadfile", 2*time.Second)

			start := time.Now()
			o := d.Execute(LoadFile("/m/x.mp4"), 500*time.Millisecond)
			elapsed := time.Since(start)

			So(o.TimedOut, ShouldBeTrue)
			So(o.Success, ShouldBeFalse)
			So(errors.Is(o.Err, ErrTimeout), ShouldBeTrue)
			So(elapsed, ShouldBeGreaterThanOrEqualTo, 500*time.Millisecond)
			So(elapsed, ShouldBeLessThan, time.Second)

			Convey("and the abandoned worker keeps the lock until the native call returns", func() {
				o := d.Execute(Set("volume", engine.Double(10)), 100*time.Millisecond)
				So(o.TimedOut, ShouldBeTrue)

				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				So(lock.Lock(ctx), ShouldBeNil)
				lock.Unlock()
			})
		})

		Convey("A worker panic is contained", func() {
			fake.PanicOn("seek", "segfault")
			var o Outcome
			So(func() { o = d.Execute(Seek(10), time.Second) }, ShouldNotPanic)
			So(errors.Is(o.Err, ErrPanicked), ShouldBeTrue)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			So(lock.Lock(ctx), ShouldBeNil)
			lock.Unlock()
		})

		Convey("While switching", func() {
			d.SetSwitching(true)
			So(d.Switching(), ShouldBeTrue)

			Convey("advisory commands are rejected without reaching the engine", func() {
				fake.ResetCommands()
				o := d.Execute(Raw("vf", "add", "lavfi-lut3d=file=/x.cube"), time.Second)
				So(errors.Is(o.Err, ErrRejected), ShouldBeTrue)
				So(o.Success, ShouldBeFalse)
				So(fake.Commands(), ShouldBeEmpty)
			})

			Convey("critical and transport commands still run", func() {
				So(d.Execute(Stop(), time.Second).Success, ShouldBeTrue)
				So(d.Execute(Set("pause", engine.Flag(true)), time.Second).Success, ShouldBeTrue)
				v, o := d.Query("pause", engine.FormatFlag, time.Second)
				So(o.Success, ShouldBeTrue)
				So(v.Bool(), ShouldBeTrue)
			})
		})

		Convey("When every worker slot is taken", func() {
			d := New(fake, NewMutex(), 1)
			fake.SetDelay("stop", 300*time.Millisecond)
			go d.Execute(Stop(), time.Second)
			time.Sleep(50 * time.Millisecond)

			o := d.Execute(PlaylistClear(), time.Second)
			So(errors.Is(o.Err, ErrBusy), ShouldBeTrue)
			So(errors.Is(o.Err, ErrRejected), ShouldBeTrue)
			So(o.Elapsed, ShouldBeLessThan, 50*time.Millisecond)
			time.Sleep(300 * time.Millisecond)
		})
	})
}

func TestQuery(t *testing.T) {
	Convey("Given a dispatcher with a single worker slot", t, func() {
		fake := newFake()
		d := New(fake, NewMutex(), 1)

		Convey("A query returns the property in the asked format", func() {
			v, o := d.Query("volume", engine.FormatInt64, time.Second)
			So(o.Success, ShouldBeTrue)
			So(v.Format, ShouldEqual, engine.FormatInt64)
		})

		Convey("Concurrent reads of one property share the worker", func() {
			fake.SetDelay("get_property", 200*time.Millisecond)

			outcomes := make(chan Outcome, 2)
			for i := 0; i < 2; i++ {
				go func() {
					_, o := d.Query("pause", engine.FormatFlag, time.Second)
					outcomes <- o
				}()
				time.Sleep(20 * time.Millisecond)
			}

			So((<-outcomes).Success, ShouldBeTrue)
			So((<-outcomes).Success, ShouldBeTrue)
		})

		Convey("Reads of different properties still compete for slots", func() {
			fake.SetDelay("get_property", 200*time.Millisecond)

			first := make(chan Outcome, 1)
			go func() {
				_, o := d.Query("pause", engine.FormatFlag, time.Second)
				first <- o
			}()
			time.Sleep(20 * time.Millisecond)

			_, o := d.Query("volume", engine.FormatDouble, time.Second)
			So(errors.Is(o.Err, ErrBusy), ShouldBeTrue)
			So((<-first).Success, ShouldBeTrue)
		})
	})
}

func TestNoLeakedWorkers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fake := newFake()
	fake.SetDelay("stop", 200*time.Millisecond)
	d := New(fake, NewMutex(), 2)

	if o := d.Execute(Stop(), 50*time.Millisecond); !o.TimedOut {
		t.Fatalf("expected timeout, got %+v", o)
	}
	// the abandoned worker finishes on its own and exits
	time.Sleep(400 * time.Millisecond)
}

func TestMutex(t *testing.T) {
	Convey("Mutex honours the context deadline", t, func() {
		m := NewMutex()
		So(m.TryLock(), ShouldBeTrue)
		So(m.TryLock(), ShouldBeFalse)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		So(m.Lock(ctx), ShouldNotBeNil)

		m.Unlock()
		So(m.Lock(context.Background()), ShouldBeNil)
		m.Unlock()
	})
}
