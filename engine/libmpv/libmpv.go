//go:build libmpv

// Package libmpv binds the mpv client library directly. Build with -tags libmpv.
package libmpv

/*
#cgo pkg-config: mpv
#include <stdlib.h>
#include <mpv/client.h>

static char **alloc_args(int n) { return calloc(n + 1, sizeof(char *)); }
static void set_arg(char **args, int i, char *s) { args[i] = s; }
static void free_args(char **args, int n) {
	for (int i = 0; i < n; i++) free(args[i]);
	free(args);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/version"
)

// Backend is the registry name of this engine.
const Backend = "libmpv"

func init() {
	engine.Register(Backend, New)
}

// Engine wraps an mpv_handle.
type Engine struct {
	mu     sync.RWMutex
	handle *C.mpv_handle

	// only touched by the WaitEvent caller
	synthesized []engine.Event
	idle        bool
	paused      bool
}

// New creates an uninitialized mpv core.
func New() (engine.Engine, error) {
	h := C.mpv_create()
	if h == nil {
		return nil, fmt.Errorf("mpv_create: %w", engine.ErrNoMem)
	}
	return &Engine{handle: h}, nil
}

func (e *Engine) h() (*C.mpv_handle, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.handle == nil {
		return nil, engine.ErrUninitialized
	}
	return e.handle, nil
}

func (e *Engine) SetOptionString(name, value string) error {
	h, err := e.h()
	if err != nil {
		return err
	}

	cname, cvalue := C.CString(name), C.CString(value)
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(cvalue))
	return engine.ErrorCode(C.mpv_set_option_string(h, cname, cvalue)).Err()
}

func (e *Engine) Initialize() error {
	h, err := e.h()
	if err != nil {
		return err
	}
	return engine.ErrorCode(C.mpv_initialize(h)).Err()
}

func (e *Engine) Command(args ...string) error {
	h, err := e.h()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return engine.ErrInvalidParameter
	}

	n := C.int(len(args))
	cargs := C.alloc_args(n)
	defer C.free_args(cargs, n)
	for i, a := range args {
		C.set_arg(cargs, C.int(i), C.CString(a))
	}
	return engine.ErrorCode(C.mpv_command(h, cargs)).Err()
}

func (e *Engine) SetProperty(name string, value engine.Value) error {
	h, err := e.h()
	if err != nil {
		return err
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	switch value.Format {
	case engine.FormatFlag:
		var flag C.int
		if value.Bool() {
			flag = 1
		}
		return engine.ErrorCode(C.mpv_set_property(h, cname, C.MPV_FORMAT_FLAG, unsafe.Pointer(&flag))).Err()
	case engine.FormatInt64:
		i := C.int64_t(value.Int())
		return engine.ErrorCode(C.mpv_set_property(h, cname, C.MPV_FORMAT_INT64, unsafe.Pointer(&i))).Err()
	case engine.FormatDouble:
		d := C.double(value.Float())
		return engine.ErrorCode(C.mpv_set_property(h, cname, C.MPV_FORMAT_DOUBLE, unsafe.Pointer(&d))).Err()
	default:
		cvalue := C.CString(value.String())
		defer C.free(unsafe.Pointer(cvalue))
		return engine.ErrorCode(C.mpv_set_property_string(h, cname, cvalue)).Err()
	}
}

func (e *Engine) GetProperty(name string, format engine.Format) (engine.Value, error) {
	h, err := e.h()
	if err != nil {
		return engine.Value{}, err
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	switch format {
	case engine.FormatFlag:
		var flag C.int
		if err := engine.ErrorCode(C.mpv_get_property(h, cname, C.MPV_FORMAT_FLAG, unsafe.Pointer(&flag))).Err(); err != nil {
			return engine.Value{}, err
		}
		return engine.Flag(flag != 0), nil
	case engine.FormatInt64:
		var i C.int64_t
		if err := engine.ErrorCode(C.mpv_get_property(h, cname, C.MPV_FORMAT_INT64, unsafe.Pointer(&i))).Err(); err != nil {
			return engine.Value{}, err
		}
		return engine.Int64(int64(i)), nil
	case engine.FormatDouble:
		var d C.double
		if err := engine.ErrorCode(C.mpv_get_property(h, cname, C.MPV_FORMAT_DOUBLE, unsafe.Pointer(&d))).Err(); err != nil {
			return engine.Value{}, err
		}
		return engine.Double(float64(d)), nil
	default:
		s := C.mpv_get_property_string(h, cname)
		if s == nil {
			return engine.Value{}, engine.ErrPropertyUnavail
		}
		defer C.mpv_free(unsafe.Pointer(s))
		return engine.String(C.GoString(s)), nil
	}
}

func (e *Engine) RequestLogMessages(minLevel string) error {
	h, err := e.h()
	if err != nil {
		return err
	}

	clevel := C.CString(minLevel)
	defer C.free(unsafe.Pointer(clevel))
	return engine.ErrorCode(C.mpv_request_log_messages(h, clevel)).Err()
}

func (e *Engine) ObserveProperty(id uint64, name string, format engine.Format) error {
	h, err := e.h()
	if err != nil {
		return err
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return engine.ErrorCode(C.mpv_observe_property(h, C.uint64_t(id), cname, C.mpv_format(format))).Err()
}

// WaitEvent polls the core and decodes the event before the next call can reuse its memory.
// Client API 2.0 dropped the idle and pause events, so they are rebuilt from property changes.
func (e *Engine) WaitEvent(timeout time.Duration) engine.Event {
	if len(e.synthesized) > 0 {
		ev := e.synthesized[0]
		e.synthesized = e.synthesized[1:]
		return ev
	}

	h, err := e.h()
	if err != nil {
		return engine.NewEvent(engine.EventShutdown)
	}

	raw := C.mpv_wait_event(h, C.double(timeout.Seconds()))
	if raw == nil {
		return engine.NewEvent(engine.EventNone)
	}

	ev := decode(raw)
	if ev.ID == engine.EventPropertyChange && !ev.Property.Value.IsEmpty() {
		e.synthesize(ev.Property)
	}
	return ev
}

func (e *Engine) synthesize(p engine.Property) {
	switch p.Name {
	case "idle-active":
		idle := p.Value.Bool()
		if idle && !e.idle {
			e.synthesized = append(e.synthesized, engine.NewEvent(engine.EventIdle))
		}
		e.idle = idle
	case "pause":
		paused := p.Value.Bool()
		if paused != e.paused {
			id := engine.EventUnpause
			if paused {
				id = engine.EventPause
			}
			e.synthesized = append(e.synthesized, engine.NewEvent(id))
		}
		e.paused = paused
	}
}

func decode(raw *C.mpv_event) engine.Event {
	ev := engine.Event{
		ID:            engine.EventID(raw.event_id),
		Error:         engine.ErrorCode(raw.error),
		ReplyUserdata: uint64(raw.reply_userdata),
	}

	switch ev.ID {
	case engine.EventEndFile:
		if raw.data != nil {
			ef := (*C.mpv_event_end_file)(raw.data)
			ev.EndFile = engine.EndFile{Reason: engine.EndReason(ef.reason), Error: engine.ErrorCode(ef.error)}
		}
	case engine.EventLogMessage:
		if raw.data != nil {
			lm := (*C.mpv_event_log_message)(raw.data)
			ev.Log = engine.LogMessage{Prefix: C.GoString(lm.prefix), Level: C.GoString(lm.level), Text: C.GoString(lm.text)}
		}
	case engine.EventPropertyChange, engine.EventGetPropertyReply:
		if raw.data != nil {
			p := (*C.mpv_event_property)(raw.data)
			ev.Property = engine.Property{Name: C.GoString(p.name), Value: decodeProperty(p)}
		}
	}
	return ev
}

func decodeProperty(p *C.mpv_event_property) engine.Value {
	if p.data == nil {
		return engine.Value{}
	}

	switch p.format {
	case C.MPV_FORMAT_FLAG:
		return engine.Flag(*(*C.int)(p.data) != 0)
	case C.MPV_FORMAT_INT64:
		return engine.Int64(int64(*(*C.int64_t)(p.data)))
	case C.MPV_FORMAT_DOUBLE:
		return engine.Double(float64(*(*C.double)(p.data)))
	case C.MPV_FORMAT_STRING, C.MPV_FORMAT_OSD_STRING:
		return engine.String(C.GoString(*(**C.char)(p.data)))
	default:
		return engine.Value{}
	}
}

func (e *Engine) Wakeup() {
	if h, err := e.h(); err == nil {
		C.mpv_wakeup(h)
	}
}

func (e *Engine) TerminateDestroy() {
	e.mu.Lock()
	h := e.handle
	e.handle = nil
	e.mu.Unlock()

	if h != nil {
		C.mpv_terminate_destroy(h)
	}
}

func (e *Engine) ClientAPIVersion() string {
	return version.FromPacked(uint64(C.mpv_client_api_version())).String()
}
