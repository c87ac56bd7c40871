// Package playback is the facade over one engine: it owns the handle, the dispatcher, the session
// state machine and the event loop, and exposes the player operations a UI calls.
//
// Every state read or mutation happens under one lock shared with the dispatcher workers.
// Engine commands are issued with that lock released, so a hung native call can only ever
// cost the caller its timeout.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freeasset/mediacore/debounce"
	"github.com/freeasset/mediacore/dispatch"
	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/log"
	"github.com/freeasset/mediacore/session"
)

// nearStartMs is how close to zero the cached position must be for an idle event to be ignored.
const nearStartMs = 500

// Core drives one engine instance.
type Core struct {
	opts Options

	handle     *engine.Handle
	engine     engine.Engine
	dispatcher *dispatch.Dispatcher

	// lock guards machine, idle, unavailable and the engine itself
	lock *dispatch.Mutex
	// serial orders facade operations
	serial *dispatch.Mutex

	machine     *session.Machine
	idle        *debounce.Idle
	unavailable error

	cbMu   sync.Mutex
	onIdle func()

	snapshot atomic.Pointer[Snapshot]

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New creates, configures and initializes an engine and starts the event loop.
//
// When the engine cannot be brought up the returned Core is still usable: every operation
// fails with ErrEngineUnavailable, and the same error is returned here.
func New(factory engine.Factory, opts Options) (*Core, error) {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Core{
		opts:    opts,
		lock:    dispatch.NewMutex(),
		serial:  dispatch.NewMutex(),
		machine: session.New(opts.Loop, opts.Volume),
		idle:    debounce.New(opts.Idle),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	if err := c.start(factory); err != nil {
		c.unavailable = fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
		c.machine.Terminate()
		close(c.done)
		c.publishLocked()
		log.Errorf("playback: %v", c.unavailable)
		return c, c.unavailable
	}

	c.dispatcher = dispatch.New(c.engine, c.lock, opts.MaxInflight)
	c.publishLocked()

	if err := c.exec(dispatch.Set("volume", engine.Int64(int64(opts.Volume)))); err != nil {
		log.Warnf("playback: initial volume: %v", err)
	}

	go c.run()
	log.Infof("playback: engine ready, client api %s", c.engine.ClientAPIVersion())
	return c, nil
}

func (c *Core) start(factory engine.Factory) error {
	h, err := engine.Create(factory)
	if err != nil {
		return err
	}

	if err := h.Configure(c.opts.EngineOptions); err != nil {
		h.Terminate()
		return err
	}

	if err := h.Initialize(); err != nil {
		h.Terminate()
		return err
	}

	if err := h.RequestLogMessages(c.opts.EngineLogLevel); err != nil {
		log.Warnf("playback: engine log level %q: %v", c.opts.EngineLogLevel, err)
	}

	c.handle = h
	c.engine = h.Engine()
	return nil
}

// OnIdle registers a callback for a confirmed natural end of playback.
// It runs on the event loop goroutine with no lock held.
func (c *Core) OnIdle(cb func()) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.onIdle = cb
}

func (c *Core) idleCallback() func() {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	return c.onIdle
}

// Snapshot returns the latest published view. It never blocks.
func (c *Core) Snapshot() Snapshot {
	if s := c.snapshot.Load(); s != nil {
		return *s
	}
	return Snapshot{State: session.Idle.String()}
}

// Close stops the loop and tears the engine down. It is safe to call more than once.
func (c *Core) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.engine != nil {
			c.engine.Wakeup()
		}

		select {
		case <-c.done:
		case <-time.After(c.opts.LoadTimeout + c.opts.PollInterval):
			log.Warn("playback: event loop did not stop in time")
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.opts.CommandTimeout)
		defer cancel()
		if err := c.lock.Lock(ctx); err == nil {
			c.machine.Terminate()
			if c.unavailable == nil {
				c.unavailable = fmt.Errorf("%w: closed", ErrEngineUnavailable)
			}
			c.syncLocked()
			c.lock.Unlock()
		} else {
			log.Warn("playback: closing with the engine lock held by a stuck command")
		}

		if c.handle != nil {
			c.handle.TerminateWithin(c.opts.CommandTimeout)
		}
		log.Info("playback: closed")
	})
	return nil
}

// op serializes a facade operation and keeps panics from reaching the caller.
func (c *Core) op(name string, fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.CommandTimeout)
	defer cancel()

	if err := c.serial.Lock(ctx); err != nil {
		return fmt.Errorf("%s: %w", name, ErrCommandTimeout)
	}
	defer c.serial.Unlock()

	defer func() {
		if p := recover(); p != nil {
			log.Errorf("playback: %s panicked: %v", name, p)
			err = fmt.Errorf("%s: %w: %v", name, dispatch.ErrPanicked, p)
		}
	}()

	if err = fn(); err != nil {
		log.Warnf("playback: %s: %v", name, err)
	}
	return err
}

// state runs fn under the core lock once the engine is known to be usable, then republishes.
func (c *Core) state(fn func(m *session.Machine) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.CommandTimeout)
	defer cancel()

	if err := c.lock.Lock(ctx); err != nil {
		return fmt.Errorf("waiting for the engine: %w", ErrCommandTimeout)
	}
	defer c.lock.Unlock()

	if c.unavailable != nil {
		return c.unavailable
	}

	err := fn(c.machine)
	c.syncLocked()
	return err
}

// loopState is state for the event loop, bounded by the core lifetime instead of a deadline.
func (c *Core) loopState(fn func(m *session.Machine)) bool {
	if err := c.lock.Lock(c.ctx); err != nil {
		return false
	}
	defer c.lock.Unlock()

	if c.unavailable != nil {
		return false
	}
	fn(c.machine)
	c.syncLocked()
	return true
}

// syncLocked mirrors the switching flag into the dispatcher gate and publishes a snapshot.
func (c *Core) syncLocked() {
	if c.dispatcher != nil {
		c.dispatcher.SetSwitching(c.machine.Session().Switching)
	}
	c.publishLocked()
}

func (c *Core) publishLocked() {
	m := c.machine
	s := m.Session()
	d := m.Device()

	snap := &Snapshot{
		SessionID:     s.ID.String(),
		Path:          s.Path.OrEmpty(),
		State:         m.State().String(),
		IsPlaying:     m.State() == session.Playing,
		CurrentTimeMs: s.CachedPositionMs,
		DurationMs:    s.DurationMs,
		Volume:        d.Volume,
		Speed:         d.Speed,
		Muted:         d.Muted,
		Loop:          s.LoopEnabled,
		Filter:        m.Filter().OrEmpty(),
		Switching:     s.Switching,
		AudioOnly:     m.Loaded() && s.VideoWidth == 0,
		Available:     c.unavailable == nil,
	}
	if s.DurationMs > 0 {
		snap.PositionFraction = min(float64(s.CachedPositionMs)/float64(s.DurationMs), 1)
	}
	switch {
	case c.unavailable != nil:
		snap.Error = c.unavailable.Error()
	case s.Err != nil:
		snap.Error = s.Err.Error()
	}
	c.snapshot.Store(snap)
}

func (c *Core) exec(cmd dispatch.Command) error {
	return c.execTimeout(cmd, c.opts.CommandTimeout)
}

func (c *Core) execTimeout(cmd dispatch.Command, timeout time.Duration) error {
	return outcomeErr(cmd.String(), c.dispatcher.Execute(cmd, timeout))
}

func (c *Core) queryFlag(name string) (bool, error) {
	v, o := c.dispatcher.Query(name, engine.FormatFlag, c.opts.CommandTimeout)
	if err := outcomeErr(name, o); err != nil {
		return false, err
	}
	return v.Bool(), nil
}

func outcomeErr(what string, o dispatch.Outcome) error {
	switch {
	case o.Success:
		return nil
	case o.TimedOut:
		return fmt.Errorf("%s: %w", what, ErrCommandTimeout)
	case o.Err == nil:
		return fmt.Errorf("%s: %w", what, engine.ErrGeneric)
	default:
		return fmt.Errorf("%s: %w", what, o.Err)
	}
}

// errDeferred ends an operation early once its effect has been recorded for after the switch.
var errDeferred = errors.New("deferred until the media switch completes")

func deferred(err error) error {
	if errors.Is(err, errDeferred) {
		return nil
	}
	return err
}
