package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/freeasset/mediacore/log"
	"github.com/freeasset/mediacore/version"
)

// MinAPIVersion is the oldest client API the core knows how to drive.
const MinAPIVersion = "2.0.0"

// ErrTerminated is returned by Handle methods after Terminate.
var ErrTerminated = errors.New("engine handle terminated")

// Option is a single engine option applied before initialization.
type Option struct {
	Name  string
	Value string
}

// ParseOption splits "name=value". A bare name is treated as a flag set to "yes".
func ParseOption(raw string) (Option, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "--")
	if raw == "" {
		return Option{}, errors.New("empty option")
	}

	name, value, found := strings.Cut(raw, "=")
	if name == "" {
		return Option{}, fmt.Errorf("option %q has no name", raw)
	}
	if !found {
		value = "yes"
	}
	return Option{Name: name, Value: value}, nil
}

// DefaultOptions returns the options every engine instance is configured with.
// The engine stays alive in idle mode between files and reports end-of-file instead of holding the last frame.
func DefaultOptions() []Option {
	return []Option{
		{"vo", "gpu-next"},
		{"hwdec", "auto-safe"},
		{"keep-open", "no"},
		{"idle", "yes"},
		{"force-window", "no"},
		{"audio-display", "no"},
		{"input-cursor", "no"},
		{"cursor-autohide", "no"},
		{"osc", "no"},
		{"osd-level", "0"},
		{"terminal", "no"},
		{"msg-level", "all=warn"},
		{"keepaspect", "yes"},
		{"keepaspect-window", "no"},
		{"input-default-bindings", "no"},
		{"input-vo-keyboard", "no"},
		{"stop-playback-on-init-failure", "no"},
		{"load-scripts", "no"},
		{"load-auto-profiles", "no"},
	}
}

// Observed lists the properties the core subscribes to at initialization, indexed by their reply id.
var Observed = []struct {
	Name   string
	Format Format
}{
	{"pause", FormatFlag},
	{"idle-active", FormatFlag},
	{"time-pos", FormatDouble},
	{"duration", FormatDouble},
	{"eof-reached", FormatFlag},
	{"width", FormatInt64},
}

// Handle owns the lifetime of one engine instance.
type Handle struct {
	mu          sync.Mutex
	engine      Engine
	initialized bool
	terminated  bool
}

// Create allocates a new engine through factory.
func Create(factory Factory) (*Handle, error) {
	if factory == nil {
		return nil, errors.New("create engine: no backend")
	}

	e, err := factory()
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	if e == nil {
		return nil, errors.New("create engine: backend returned nothing")
	}

	return &Handle{engine: e}, nil
}

// Configure applies options in order and stops at the first one the engine refuses.
func (h *Handle) Configure(options []Option) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.terminated {
		return ErrTerminated
	}

	for _, o := range options {
		if err := h.engine.SetOptionString(o.Name, o.Value); err != nil {
			return fmt.Errorf("set option %s=%s: %w", o.Name, o.Value, err)
		}
	}
	return nil
}

// Initialize checks API compatibility, starts the engine and subscribes to the observed properties.
func (h *Handle) Initialize() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.terminated {
		return ErrTerminated
	}
	if h.initialized {
		return nil
	}

	apiVersion := h.engine.ClientAPIVersion()
	cmp, err := version.Compare(apiVersion, MinAPIVersion)
	if err != nil {
		return fmt.Errorf("engine reported unparsable api version %q: %w", apiVersion, err)
	}
	if cmp < 0 {
		return fmt.Errorf("engine api %s is older than %s", apiVersion, MinAPIVersion)
	}

	if err := h.engine.Initialize(); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	for i, p := range Observed {
		if err := h.engine.ObserveProperty(uint64(i+1), p.Name, p.Format); err != nil {
			return fmt.Errorf("observe %s: %w", p.Name, err)
		}
	}

	h.initialized = true
	log.Infof("engine initialized, client api %s", apiVersion)
	return nil
}

// RequestLogMessages forwards engine log messages at level and above as LogMessage events.
func (h *Handle) RequestLogMessages(level string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.terminated {
		return ErrTerminated
	}
	if !h.initialized {
		return ErrUninitialized
	}
	return h.engine.RequestLogMessages(level)
}

// Engine returns the underlying engine, or nil once terminated.
func (h *Handle) Engine() Engine {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.terminated {
		return nil
	}
	return h.engine
}

// Initialized reports whether Initialize succeeded and Terminate has not run.
func (h *Handle) Initialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initialized && !h.terminated
}

// TeardownTimeout bounds Terminate. A native call that hangs past it is left running.
const TeardownTimeout = 5 * time.Second

// Terminate tears the engine down within TeardownTimeout. Every step is attempted, failures are logged and ignored.
// Calling it more than once is a no-op.
func (h *Handle) Terminate() {
	h.TerminateWithin(TeardownTimeout)
}

// TerminateWithin is Terminate with its own bound. It reports whether the teardown finished in time;
// if not, the remaining steps keep running in the background and destroy the engine when they get there.
func (h *Handle) TerminateWithin(timeout time.Duration) bool {
	h.mu.Lock()
	if h.terminated {
		h.mu.Unlock()
		return true
	}
	h.terminated = true
	e := h.engine
	initialized := h.initialized
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		teardown(e, initialized)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		log.Info("engine terminated")
		return true
	case <-timer.C:
		log.Warnf("engine teardown still running after %s, leaving it behind", timeout)
		return false
	}
}

func teardown(e Engine, initialized bool) {
	step := func(name string, fn func() error) {
		defer func() {
			if r := recover(); r != nil {
				log.Warnf("engine teardown: %s panicked: %v", name, r)
			}
		}()

		if err := fn(); err != nil {
			log.Debugf("engine teardown: %s: %v", name, err)
		}
	}

	if initialized {
		step("pause", func() error { return e.SetProperty("pause", Flag(true)) })
		step("stop", func() error { return e.Command("stop") })
		step("clear lut", func() error { return e.SetProperty("lut", String("")) })
		step("clear shaders", func() error { return e.Command("change-list", "glsl-shaders", "clr", "") })
		step("clear vf", func() error { return e.Command("vf", "clr", "") })
		step("quit", func() error { return e.Command("quit") })
		step("settle", func() error {
			time.Sleep(100 * time.Millisecond)
			return nil
		})
	}
	step("terminate", func() error {
		e.TerminateDestroy()
		return nil
	})
}
