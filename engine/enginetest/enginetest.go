// Package enginetest provides an in-memory engine that behaves like an idle-mode mpv closely enough to drive the playback core in tests.
package enginetest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/freeasset/mediacore/engine"
)

const queueSize = 512

// Engine is a scriptable fake. The zero value is not usable, call New.
type Engine struct {
	mu          sync.Mutex
	version     string
	options     map[string]string
	props       map[string]engine.Value
	unknown     map[string]bool
	observed    map[string]uint64
	delays      map[string]time.Duration
	failures    map[string]error
	panics      map[string]any
	unloadable  map[string]bool
	commands    [][]string
	holdLoads   bool
	holdEvents  bool
	held        []string
	current     string
	duration    float64
	width       int64
	logLevel    string
	initialized bool
	destroyed   bool

	events chan engine.Event
	wake   chan struct{}
}

// New returns a fake reporting client API 2.3.0 with nothing loaded.
func New() *Engine {
	e := &Engine{
		version:    "2.3.0",
		options:    make(map[string]string),
		unknown:    map[string]bool{"lut": true},
		observed:   make(map[string]uint64),
		delays:     make(map[string]time.Duration),
		failures:   make(map[string]error),
		panics:     make(map[string]any),
		unloadable: make(map[string]bool),
		duration:   10,
		width:      1920,
		events:     make(chan engine.Event, queueSize),
		wake:       make(chan struct{}, 1),
	}
	e.props = map[string]engine.Value{
		"pause":        engine.Flag(false),
		"idle-active":  engine.Flag(true),
		"eof-reached":  engine.Flag(false),
		"volume":       engine.Double(100),
		"speed":        engine.Double(1),
		"mute":         engine.Flag(false),
		"wid":          engine.Int64(-1),
		"vf":           engine.String(""),
		"glsl-shaders": engine.String(""),
	}
	return e
}

// Factory returns an engine.Factory that always hands out e.
func (e *Engine) Factory() engine.Factory {
	return func() (engine.Engine, error) { return e, nil }
}

// FailingFactory returns a factory that fails the way a missing native library does.
func FailingFactory(err error) engine.Factory {
	return func() (engine.Engine, error) { return nil, err }
}

// SetAPIVersion changes the version reported by ClientAPIVersion.
func (e *Engine) SetAPIVersion(v string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.version = v
}

// SetDelay makes every command with the given name sleep before completing.
// The name "get_property" applies to GetProperty.
func (e *Engine) SetDelay(name string, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delays[name] = d
}

// FailCommand makes the named command fail with err. A nil err clears the failure.
func (e *Engine) FailCommand(name string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.failures, name)
		return
	}
	e.failures[name] = err
}

// PanicOn makes the named command panic with v, like a crashing native call.
func (e *Engine) PanicOn(name string, v any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.panics[name] = v
}

// SetUnknownProperty makes a property behave as if the engine did not have it.
func (e *Engine) SetUnknownProperty(name string, unknown bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unknown[name] = unknown
}

// SetUnloadable makes loading path fail with an end-file error event.
func (e *Engine) SetUnloadable(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unloadable[path] = true
}

// SetDuration sets the duration in seconds reported for files loaded afterwards.
func (e *Engine) SetDuration(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.duration = seconds
}

// SetVideoWidth sets the video width reported for files loaded afterwards. Zero means audio only.
func (e *Engine) SetVideoWidth(width int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.width = width
}

// HoldLoads keeps loadfile from completing until ReleaseLoad is called.
func (e *Engine) HoldLoads(hold bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.holdLoads = hold
}

// HoldEvents keeps WaitEvent from delivering anything while hold is set. Events keep queueing.
func (e *Engine) HoldEvents(hold bool) {
	e.mu.Lock()
	e.holdEvents = hold
	e.mu.Unlock()
	if !hold {
		e.Wakeup()
	}
}

// ReleaseLoad completes the most recent held load and reports whether there was one.
func (e *Engine) ReleaseLoad() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.held) == 0 {
		return false
	}
	path := e.held[len(e.held)-1]
	e.held = nil
	e.completeLoadLocked(path)
	return true
}

// Emit queues an arbitrary event.
func (e *Engine) Emit(ev engine.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitLocked(ev)
}

// Advance moves the playback position to seconds and reports it to observers.
func (e *Engine) Advance(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setPropLocked("time-pos", engine.Double(seconds))
}

// FinishPlayback simulates the current file reaching its end with keep-open disabled.
func (e *Engine) FinishPlayback() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == "" {
		return
	}
	e.setPropLocked("time-pos", engine.Double(e.duration))
	e.current = ""
	e.emitLocked(engine.NewEndFile(engine.EndEOF, engine.Success))
	e.goIdleLocked()
}

// Commands returns a copy of every command vector run so far.
func (e *Engine) Commands() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([][]string, len(e.commands))
	for i, c := range e.commands {
		out[i] = append([]string(nil), c...)
	}
	return out
}

// CommandsNamed returns the command vectors whose first element is name.
func (e *Engine) CommandsNamed(name string) [][]string {
	var out [][]string
	for _, c := range e.Commands() {
		if len(c) > 0 && c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

// ResetCommands forgets the recorded command log.
func (e *Engine) ResetCommands() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = nil
}

// Property returns the current value of a property.
func (e *Engine) Property(name string) engine.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.props[name]
}

// Option returns an option set before initialization.
func (e *Engine) Option(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.options[name]
	return v, ok
}

// Destroyed reports whether TerminateDestroy was called.
func (e *Engine) Destroyed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.destroyed
}

func (e *Engine) SetOptionString(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return engine.ErrInvalidParameter
	}
	if name == "" {
		return engine.ErrOptionNotFound
	}
	e.options[name] = value
	return nil
}

func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return engine.ErrUninitialized
	}
	if err := e.failures["initialize"]; err != nil {
		return err
	}
	e.initialized = true
	e.emitLocked(engine.NewEvent(engine.EventIdle))
	return nil
}

func (e *Engine) Command(args ...string) error {
	if len(args) == 0 {
		return engine.ErrInvalidParameter
	}

	name := args[0]
	if err := e.before(name, args); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch name {
	case "loadfile":
		return e.loadLocked(args[1:])
	case "stop":
		e.stopLocked()
	case "playlist-clear":
	case "quit":
		e.stopLocked()
		e.emitLocked(engine.NewEvent(engine.EventShutdown))
	case "set":
		if len(args) != 3 {
			return engine.ErrInvalidParameter
		}
		return e.setLocked(args[1], engine.String(args[2]))
	case "seek":
		return e.seekLocked(args[1:])
	case "vf":
		return e.listLocked("vf", args[1:])
	case "change-list":
		if len(args) < 3 {
			return engine.ErrInvalidParameter
		}
		return e.listLocked(args[1], args[2:])
	default:
		return engine.ErrCommand
	}
	return nil
}

func (e *Engine) SetProperty(name string, value engine.Value) error {
	if err := e.before("set_property", []string{"set_property", name, value.String()}); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setLocked(name, value)
}

func (e *Engine) GetProperty(name string, format engine.Format) (engine.Value, error) {
	e.mu.Lock()
	delay := e.delays["get_property"]
	fail := e.failures["get_property"]
	e.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail != nil {
		return engine.Value{}, fail
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.unknown[name] {
		return engine.Value{}, engine.ErrPropertyNotFound
	}
	v, ok := e.props[name]
	if !ok {
		return engine.Value{}, engine.ErrPropertyUnavail
	}
	return v.Convert(format), nil
}

// LogLevel returns the level last passed to RequestLogMessages.
func (e *Engine) LogLevel() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.logLevel
}

func (e *Engine) RequestLogMessages(minLevel string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized || e.destroyed {
		return engine.ErrUninitialized
	}
	switch minLevel {
	case "no", "fatal", "error", "warn", "info", "v", "debug", "trace":
	default:
		return engine.ErrInvalidParameter
	}
	e.logLevel = minLevel
	return nil
}

func (e *Engine) ObserveProperty(id uint64, name string, _ engine.Format) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observed[name] = id
	return nil
}

func (e *Engine) WaitEvent(timeout time.Duration) engine.Event {
	e.mu.Lock()
	destroyed, held := e.destroyed, e.holdEvents
	e.mu.Unlock()
	if destroyed {
		return engine.NewEvent(engine.EventShutdown)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	if held {
		select {
		case <-e.wake:
		case <-timer.C:
		}
		return engine.NewEvent(engine.EventNone)
	}

	select {
	case ev := <-e.events:
		return ev
	case <-e.wake:
		return engine.NewEvent(engine.EventNone)
	case <-timer.C:
		return engine.NewEvent(engine.EventNone)
	}
}

func (e *Engine) Wakeup() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) TerminateDestroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destroyed = true
	e.initialized = false
}

func (e *Engine) ClientAPIVersion() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// before records the call and applies the configured delay, failure or panic.
func (e *Engine) before(name string, args []string) error {
	e.mu.Lock()
	if e.destroyed || !e.initialized {
		e.mu.Unlock()
		return engine.ErrUninitialized
	}
	e.commands = append(e.commands, append([]string(nil), args...))
	delay := e.delays[name]
	fail := e.failures[name]
	p, shouldPanic := e.panics[name]
	e.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if shouldPanic {
		panic(p)
	}
	return fail
}

func (e *Engine) loadLocked(args []string) error {
	if len(args) == 0 || args[0] == "" {
		return engine.ErrInvalidParameter
	}
	path := args[0]

	if e.current != "" || len(e.held) > 0 {
		e.emitLocked(engine.NewEndFile(engine.EndStop, engine.Success))
	}
	e.current = ""
	e.emitLocked(engine.NewEvent(engine.EventStartFile))

	if e.holdLoads {
		e.held = append(e.held, path)
		return nil
	}
	e.completeLoadLocked(path)
	return nil
}

func (e *Engine) completeLoadLocked(path string) {
	if e.unloadable[path] {
		e.emitLocked(engine.NewEndFile(engine.EndError, engine.ErrLoadingFailed))
		e.goIdleLocked()
		return
	}

	e.current = path
	e.setPropLocked("idle-active", engine.Flag(false))
	e.setPropLocked("eof-reached", engine.Flag(false))
	e.setPropLocked("duration", engine.Double(e.duration))
	e.setPropLocked("time-pos", engine.Double(0))
	e.setPropLocked("width", engine.Int64(e.width))
	e.emitLocked(engine.NewEvent(engine.EventFileLoaded))
	e.emitLocked(engine.NewEvent(engine.EventPlaybackRestart))
}

func (e *Engine) stopLocked() {
	e.held = nil
	if e.current == "" {
		return
	}
	e.current = ""
	e.emitLocked(engine.NewEndFile(engine.EndStop, engine.Success))
	e.goIdleLocked()
}

func (e *Engine) goIdleLocked() {
	delete(e.props, "time-pos")
	delete(e.props, "duration")
	delete(e.props, "width")
	e.emitLocked(engine.NewPropertyChange("time-pos", engine.Value{}))
	e.setPropLocked("idle-active", engine.Flag(true))
	e.emitLocked(engine.NewEvent(engine.EventIdle))
}

func (e *Engine) seekLocked(args []string) error {
	if e.current == "" {
		return engine.ErrCommand
	}
	if len(args) == 0 {
		return engine.ErrInvalidParameter
	}

	var target float64
	if _, err := fmt.Sscanf(args[0], "%g", &target); err != nil {
		return engine.ErrInvalidParameter
	}

	mode := "relative"
	if len(args) > 1 {
		mode = args[1]
	}
	pos := e.props["time-pos"].Float()
	switch mode {
	case "absolute":
		pos = target
	case "absolute-percent":
		pos = e.duration * target / 100
	default:
		pos += target
	}
	if pos < 0 {
		pos = 0
	}
	if pos > e.duration {
		pos = e.duration
	}

	e.setPropLocked("eof-reached", engine.Flag(false))
	e.setPropLocked("time-pos", engine.Double(pos))
	e.emitLocked(engine.NewEvent(engine.EventSeek))
	return nil
}

func (e *Engine) setLocked(name string, value engine.Value) error {
	if e.unknown[name] {
		return engine.ErrPropertyNotFound
	}

	switch name {
	case "pause", "mute":
		value = engine.Flag(value.Bool())
	case "volume", "speed":
		value = engine.Double(value.Float())
	case "wid":
		value = engine.Int64(value.Int())
	}

	old, had := e.props[name]
	e.setPropLocked(name, value)

	if name == "pause" && (!had || old.Bool() != value.Bool()) {
		if value.Bool() {
			e.emitLocked(engine.NewEvent(engine.EventPause))
		} else {
			e.emitLocked(engine.NewEvent(engine.EventUnpause))
		}
	}
	return nil
}

func (e *Engine) listLocked(name string, args []string) error {
	if len(args) < 2 {
		return engine.ErrInvalidParameter
	}

	var items []string
	if cur := e.props[name].String(); cur != "" {
		items = strings.Split(cur, ",")
	}

	switch args[0] {
	case "add", "append":
		items = append(items, args[1])
	case "clr":
		items = nil
	case "remove":
		kept := items[:0]
		for _, it := range items {
			if it != args[1] {
				kept = append(kept, it)
			}
		}
		items = kept
	default:
		return engine.ErrInvalidParameter
	}

	e.setPropLocked(name, engine.String(strings.Join(items, ",")))
	return nil
}

func (e *Engine) setPropLocked(name string, value engine.Value) {
	e.props[name] = value
	if id, ok := e.observed[name]; ok {
		ev := engine.NewPropertyChange(name, value)
		ev.ReplyUserdata = id
		e.emitLocked(ev)
	}
}

func (e *Engine) emitLocked(ev engine.Event) {
	select {
	case e.events <- ev:
	default:
		// mpv drops events the same way once its queue is full
	}
}
