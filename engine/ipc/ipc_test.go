package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/freeasset/mediacore/engine"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeServer answers every request with reply, after writing an unrelated broadcast event.
func fakeServer(t *testing.T, reply func(req request) string) string {
	dir, err := os.MkdirTemp("", "ipc")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "s.sock")

	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = ln.Close()
		_ = os.RemoveAll(dir)
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				scanner := bufio.NewScanner(c)
				for scanner.Scan() {
					var req request
					if json.Unmarshal(scanner.Bytes(), &req) != nil {
						return
					}
					_, _ = fmt.Fprintln(c, `{"event":"playback-restart"}`)
					_, _ = fmt.Fprintln(c, reply(req))
				}
			}(conn)
		}
	}()

	return path
}

func TestSendCommand(t *testing.T) {
	Convey("Given an mpv-like socket", t, func() {
		path := fakeServer(t, func(req request) string {
			switch req.Command[0] {
			case "get_property":
				return fmt.Sprintf(`{"data":12.5,"request_id":%d,"error":"success"}`, req.RequestID)
			default:
				return fmt.Sprintf(`{"request_id":%d,"error":"property not found"}`, req.RequestID)
			}
		})

		Convey("Replies are matched past broadcast events", func() {
			data, err := sendCommand(path, []any{"get_property", "time-pos"})
			So(err, ShouldBeNil)
			So(decodeValue(data, engine.FormatDouble).Float(), ShouldEqual, 12.5)
		})

		Convey("mpv errors map to error codes and are not retried", func() {
			start := time.Now()
			_, err := sendCommand(path, []any{"set_property", "lut", ""})
			So(err, ShouldEqual, engine.ErrPropertyNotFound)
			So(time.Since(start), ShouldBeLessThan, retryDelay)
		})
	})

	Convey("A missing socket is retried then reported", t, func() {
		_, err := sendCommand(filepath.Join(os.TempDir(), "definitely-missing.sock"), []any{"stop"})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "after 3 attempts")
	})
}

func TestDecode(t *testing.T) {
	Convey("Given a listener", t, func() {
		l := &listener{formats: map[string]engine.Format{"width": engine.FormatInt64, "pause": engine.FormatFlag, "idle-active": engine.FormatFlag}}

		Convey("end-file carries reason and error", func() {
			evs := l.decode(message{Event: "end-file", Reason: "error", FileError: "loading failed"})
			So(evs, ShouldHaveLength, 1)
			So(evs[0].ID, ShouldEqual, engine.EventEndFile)
			So(evs[0].EndFile.Reason, ShouldEqual, engine.EndError)
			So(evs[0].EndFile.Error, ShouldEqual, engine.ErrLoadingFailed)
		})

		Convey("property values take the observed format", func() {
			evs := l.decode(message{Event: "property-change", ID: 6, Name: "width", Data: json.RawMessage("1920")})
			So(evs, ShouldHaveLength, 1)
			So(evs[0].ReplyUserdata, ShouldEqual, 6)
			So(evs[0].Property.Value.Format, ShouldEqual, engine.FormatInt64)
			So(evs[0].Property.Value.Int(), ShouldEqual, 1920)
		})

		Convey("unavailable properties decode as empty", func() {
			evs := l.decode(message{Event: "property-change", Name: "time-pos"})
			So(evs[0].Property.Value.IsEmpty(), ShouldBeTrue)
		})

		Convey("idle is synthesized once per transition", func() {
			evs := l.decode(message{Event: "property-change", Name: "idle-active", Data: json.RawMessage("true")})
			So(evs, ShouldHaveLength, 2)
			So(evs[1].ID, ShouldEqual, engine.EventIdle)

			evs = l.decode(message{Event: "property-change", Name: "idle-active", Data: json.RawMessage("true")})
			So(evs, ShouldHaveLength, 1)
		})

		Convey("pause and unpause are synthesized", func() {
			evs := l.decode(message{Event: "property-change", Name: "pause", Data: json.RawMessage("true")})
			So(evs[len(evs)-1].ID, ShouldEqual, engine.EventPause)
			evs = l.decode(message{Event: "property-change", Name: "pause", Data: json.RawMessage("false")})
			So(evs[len(evs)-1].ID, ShouldEqual, engine.EventUnpause)
		})

		Convey("unknown events are dropped", func() {
			So(l.decode(message{Event: "brand-new-event"}), ShouldBeEmpty)
		})
	})
}

func TestArgs(t *testing.T) {
	Convey("Options become sorted flags after the fixed ones", t, func() {
		e := &Engine{socketPath: "/tmp/x.sock", options: map[string]string{"vo": "null", "idle": "once", "hwdec": "no"}}
		So(e.args(), ShouldResemble, []string{
			"--idle=yes",
			"--no-terminal",
			"--input-ipc-server=/tmp/x.sock",
			"--hwdec=no",
			"--vo=null",
		})
	})

	Convey("Values are encoded as native JSON", t, func() {
		So(encodeValue(engine.Flag(true)), ShouldEqual, true)
		So(encodeValue(engine.Double(0.5)), ShouldEqual, 0.5)
		So(encodeValue(engine.Int64(-1)), ShouldEqual, int64(-1))
		So(encodeValue(engine.String("x")), ShouldEqual, "x")
	})
}
