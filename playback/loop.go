package playback

import (
	"fmt"

	"github.com/freeasset/mediacore/debounce"
	"github.com/freeasset/mediacore/dispatch"
	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/log"
	"github.com/freeasset/mediacore/metrics"
	"github.com/freeasset/mediacore/session"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// run polls the engine until Close or an engine shutdown.
func (c *Core) run() {
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		ev := c.engine.WaitEvent(c.opts.PollInterval)
		if ev.ID == engine.EventNone {
			continue
		}
		if !c.handleEvent(ev) {
			return
		}
	}
}

// handleEvent applies one event and reports whether the loop should keep going.
// Follow-up engine commands run after the lock is released.
func (c *Core) handleEvent(ev engine.Event) (keep bool) {
	var (
		follow  func()
		handled bool
	)

	if err := c.lock.Lock(c.ctx); err != nil {
		return false
	}
	func() {
		defer c.lock.Unlock()
		defer func() {
			if p := recover(); p != nil {
				log.Errorf("playback: handling %s panicked: %v", ev, p)
				follow, handled, keep = nil, false, true
			}
		}()
		follow, handled, keep = c.decideLocked(ev)
		c.syncLocked()
	}()

	metrics.RecordEvent(ev.ID.String(), handled)
	if follow != nil {
		c.safely(ev.ID.String(), follow)
	}
	return keep
}

func (c *Core) decideLocked(ev engine.Event) (follow func(), handled, keep bool) {
	m := c.machine

	if ev.ID == engine.EventShutdown {
		log.Warn("playback: engine shut down")
		if c.unavailable == nil {
			c.unavailable = fmt.Errorf("%w: engine shut down", ErrEngineUnavailable)
		}
		m.Terminate()
		return nil, true, false
	}

	if c.unavailable != nil || m.Terminated() {
		return nil, false, true
	}

	// state from the outgoing media must not leak into the new session,
	// property changes after our start-file already describe the new media
	if m.Session().Switching && !ev.ID.Critical() {
		if ev.ID != engine.EventPropertyChange || m.AwaitingStart() {
			return nil, false, true
		}
	}

	switch ev.ID {
	case engine.EventStartFile:
		return nil, m.StartFile(), true

	case engine.EventFileLoaded:
		loaded, ok := m.FileLoaded()
		if !ok {
			log.Debug("playback: discarding stale file-loaded")
			return nil, false, true
		}
		c.idle.Reset()
		id := m.Session().ID
		log.Infof("playback: loaded %s", m.Session().Path.OrEmpty())
		return func() { c.afterLoad(id, loaded) }, true, true

	case engine.EventEndFile:
		return c.endFileLocked(ev.EndFile), true, true

	case engine.EventIdle:
		return c.idleLocked(), true, true

	case engine.EventPropertyChange:
		return nil, c.propertyLocked(ev.Property), true

	case engine.EventPause, engine.EventUnpause:
		m.ObservePause(ev.ID == engine.EventPause)
		return nil, true, true

	case engine.EventLogMessage:
		log.Engine(ev.Log.Prefix, ev.Log.Level, ev.Log.Text)
		return nil, true, true
	}

	return nil, false, true
}

func (c *Core) endFileLocked(ef engine.EndFile) func() {
	m := c.machine
	s := m.Session()

	// the end of whatever played before our load was issued
	if m.AwaitingStart() {
		return nil
	}

	switch ef.Reason {
	case engine.EndEOF:
		m.EndOfFile()
		if !s.LoopEnabled || s.Switching {
			return nil
		}
		if _, err := m.BeginReload(); err != nil {
			log.Warnf("playback: loop: %v", err)
			return nil
		}
		id, path := m.Session().ID, s.Path.MustGet()
		return func() { c.loopReload(id, path) }

	case engine.EndError:
		err := fmt.Errorf("%w: %s", ErrLoadFailed, ef.Error)
		if s.Switching {
			log.Errorf("playback: %s: %v", s.Path.OrEmpty(), err)
			m.LoadFailed(err)
		} else {
			m.EndOfFile()
		}
	}
	return nil
}

// loopReload loads path again for session id. It is ordered with the facade operations,
// and a SetMedia that got in first owns the engine, so nothing is sent.
func (c *Core) loopReload(id uuid.UUID, path string) {
	if err := c.serial.Lock(c.ctx); err != nil {
		return
	}
	defer c.serial.Unlock()

	current := false
	c.loopState(func(m *session.Machine) {
		current = m.Session().ID == id
		if !current {
			m.ReleaseStart()
		}
	})
	if !current {
		log.Debugf("playback: dropping loop reload of %s, media changed", path)
		return
	}

	log.Infof("playback: looping %s", path)

	err := c.execTimeout(dispatch.LoadFile(path), c.opts.LoadTimeout)
	metrics.RecordLoopReload(err == nil)

	c.loopState(func(m *session.Machine) {
		if m.Session().ID != id {
			if err != nil {
				m.ReleaseStart()
			}
			return
		}
		if err != nil {
			m.LoadNotIssued(fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err))
		} else {
			m.LoadIssued()
		}
	})

	if err != nil {
		log.Errorf("playback: loop reload: %v", err)
		if err := c.exec(dispatch.Set("pause", engine.Flag(true))); err != nil {
			log.Warnf("playback: %v", err)
		}
	}
}

// idleLocked decides whether an idle event is a real end of playback.
// A burst of idle events right after a load is the engine settling, not the media ending.
func (c *Core) idleLocked() func() {
	m := c.machine

	decision := c.idle.Observe(c.opts.Clock())
	metrics.RecordIdleDecision(decision.String())

	switch decision {
	case debounce.Process:
	case debounce.StormDetected:
		log.Warnf("playback: idle storm, ignoring idle events for %s", c.opts.Idle.Suppress)
		return nil
	default:
		return nil
	}

	if !m.Loaded() || m.NearStart(nearStartMs) {
		return nil
	}

	m.MarkEnded()
	cb := c.idleCallback()
	if cb == nil {
		return nil
	}
	return cb
}

func (c *Core) propertyLocked(p engine.Property) bool {
	m := c.machine

	switch p.Name {
	case "time-pos":
		if p.Value.IsEmpty() {
			return false
		}
		m.ObservePosition(int64(p.Value.Float() * 1000))
	case "duration":
		if p.Value.IsEmpty() {
			return false
		}
		m.ObserveDuration(int64(p.Value.Float() * 1000))
	case "pause":
		if p.Value.IsEmpty() {
			return false
		}
		m.ObservePause(p.Value.Bool())
	case "width":
		m.ObserveVideoWidth(p.Value.Int())
	default:
		return false
	}
	return true
}

// afterLoad reapplies the pending filter and speed, then sets pause from the intent.
func (c *Core) afterLoad(id uuid.UUID, loaded session.Loaded) {
	if p, ok := loaded.Pending.Get(); ok {
		if path, ok := p.FilterPath.Get(); ok && p.FilterEnabled {
			// video filters outlive a load, clear first so the table is not stacked twice
			if err := c.disableFilterChain(); err != nil {
				log.Debugf("playback: %v", err)
			}

			applied := mo.Some(path)
			if err := c.enableFilterChain(path); err != nil {
				log.Warnf("playback: reapply filter: %v", err)
				applied = mo.None[string]()
			}
			c.loopState(func(m *session.Machine) {
				if m.Session().ID == id {
					m.SetFilter(applied)
				}
			})
		}

		if p.Speed > 0 {
			if err := c.exec(dispatch.Set("speed", engine.Double(p.Speed))); err != nil {
				log.Warnf("playback: reapply speed: %v", err)
			}
		}
	}

	if err := c.exec(dispatch.Set("pause", engine.Flag(!loaded.Resume))); err != nil {
		log.Warnf("playback: %v", err)
	}
}

// safely runs follow-up work so that a panic in it, or in a user callback, never stops the loop.
func (c *Core) safely(what string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("playback: after %s: %v", what, p)
		}
	}()
	fn()
}
