package playback

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/freeasset/mediacore/constant"
	"github.com/freeasset/mediacore/dispatch"
	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/filesystem"
	"github.com/freeasset/mediacore/log"
	"github.com/freeasset/mediacore/session"
	"github.com/freeasset/mediacore/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	minSpeed = 0.1
	maxSpeed = 10.0
)

// SetMedia replaces the current media with path. The new media is loaded paused.
func (c *Core) SetMedia(path string) error {
	return c.op("set media", func() error {
		abs, err := resolve(path)
		if err != nil {
			return err
		}
		if exists, err := filesystem.API().Exists(abs); err != nil || !exists {
			return fmt.Errorf("%w: %s does not exist", ErrLoadFailed, abs)
		}
		if ext := strings.ToLower(filepath.Ext(abs)); !lo.Contains(constant.VideoExtensions, ext) && !lo.Contains(constant.AudioExtensions, ext) {
			log.Warnf("playback: %s has an unrecognized extension, handing it to the engine anyway", abs)
		}

		var (
			hadFilter bool
			window    mo.Option[int64]
		)
		if err := c.state(func(m *session.Machine) error {
			hadFilter = m.Filter().IsPresent()
			window = m.Device().Window
			return nil
		}); err != nil {
			return err
		}

		// the old filter has to go before the gate closes, disabling is advisory
		if hadFilter {
			if err := c.disableFilterChain(); err != nil {
				log.Warnf("playback: %v", err)
			}
		}

		if err := c.state(func(m *session.Machine) error {
			_, err := m.Replace(abs)
			return err
		}); err != nil {
			return err
		}

		teardown := []dispatch.Command{
			dispatch.Stop(),
			dispatch.Set("pause", engine.Flag(true)),
			dispatch.PlaylistClear(),
			dispatch.ClearWindow(),
		}
		if id, ok := window.Get(); ok {
			teardown = append(teardown, dispatch.SetWindow(id))
		}
		for _, cmd := range teardown {
			if err := c.exec(cmd); err != nil {
				log.Warnf("playback: teardown: %v", err)
			}
		}

		log.Infof("playback: loading %s", abs)
		if err := c.execTimeout(dispatch.LoadFile(abs), c.opts.LoadTimeout); err != nil {
			loadErr := fmt.Errorf("%w: %s: %w", ErrLoadFailed, abs, err)
			if err := c.state(func(m *session.Machine) error {
				m.LoadNotIssued(loadErr)
				return nil
			}); err != nil {
				return err
			}
			return loadErr
		}

		return c.state(func(m *session.Machine) error {
			m.LoadIssued()
			return nil
		})
	})
}

// Play starts or resumes playback. Media that already ended is restarted from the beginning.
// Media that failed to load is not retried: Play returns the load error until SetMedia is called again.
func (c *Core) Play() error {
	return c.op("play", c.play)
}

func (c *Core) play() error {
	var atEnd bool
	err := c.state(func(m *session.Machine) error {
		s := m.Session()
		if s.Path.IsAbsent() {
			return ErrNoMedia
		}
		if s.Switching {
			m.SetIntent(true)
			return errDeferred
		}
		if errors.Is(s.Err, ErrLoadFailed) {
			return s.Err
		}
		atEnd = s.AtEnd
		return nil
	})
	if err != nil {
		return deferred(err)
	}

	paused, err := c.queryFlag("pause")
	if err != nil {
		return err
	}
	idle, err := c.queryFlag("idle-active")
	if err != nil {
		log.Debugf("playback: %v", err)
	}

	if idle || atEnd {
		return c.restart()
	}

	if paused {
		if err := c.exec(dispatch.Set("pause", engine.Flag(false))); err != nil {
			return err
		}
	}

	return c.state(func(m *session.Machine) error {
		m.SetIntent(true)
		m.ObservePause(false)
		return nil
	})
}

// restart rewinds media kept open at its end, reloading it when the engine has already let go.
func (c *Core) restart() error {
	for attempt := 1; attempt <= c.opts.PlayRetries; attempt++ {
		err := c.exec(dispatch.SeekStart())
		if err == nil {
			if err := c.state(func(m *session.Machine) error {
				m.Rewound()
				m.SetIntent(true)
				return nil
			}); err != nil {
				return err
			}
			if err := c.exec(dispatch.Set("pause", engine.Flag(false))); err != nil {
				return err
			}
			return c.state(func(m *session.Machine) error {
				m.ObservePause(false)
				return nil
			})
		}
		log.Debugf("playback: rewind attempt %d: %v", attempt, err)
	}

	log.Info("playback: rewind failed, reloading")
	return c.reload()
}

// reload issues a fresh load of the current media with the active filter and speed queued for reapply.
// The loop resumes playback on file-loaded.
func (c *Core) reload() error {
	var path string
	if err := c.state(func(m *session.Machine) error {
		if _, err := m.BeginReload(); err != nil {
			return err
		}
		path = m.Session().Path.MustGet()
		return nil
	}); err != nil {
		return err
	}

	if err := c.execTimeout(dispatch.LoadFile(path), c.opts.LoadTimeout); err != nil {
		loadErr := fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, err)
		if err := c.state(func(m *session.Machine) error {
			m.LoadNotIssued(loadErr)
			return nil
		}); err != nil {
			return err
		}
		if err := c.exec(dispatch.Set("pause", engine.Flag(true))); err != nil {
			log.Warnf("playback: %v", err)
		}
		return loadErr
	}

	return c.state(func(m *session.Machine) error {
		m.LoadIssued()
		return nil
	})
}

// Pause pauses playback. During a media switch only the intent is recorded.
func (c *Core) Pause() error {
	return c.op("pause", c.pause)
}

func (c *Core) pause() error {
	err := c.state(func(m *session.Machine) error {
		s := m.Session()
		if s.Path.IsAbsent() {
			return ErrNoMedia
		}
		if s.Switching {
			m.SetIntent(false)
			return errDeferred
		}
		return nil
	})
	if err != nil {
		return deferred(err)
	}

	if err := c.exec(dispatch.Set("pause", engine.Flag(true))); err != nil {
		return err
	}

	return c.state(func(m *session.Machine) error {
		m.SetIntent(false)
		m.ObservePause(true)
		return nil
	})
}

// TogglePause flips between playing and paused, going by the engine's own pause flag.
func (c *Core) TogglePause() error {
	return c.op("toggle pause", func() error {
		var (
			switching bool
			intended  bool
			loaded    bool
		)
		if err := c.state(func(m *session.Machine) error {
			switching = m.Session().Switching
			intended = m.Session().IntendedPlaying
			loaded = m.Loaded()
			return nil
		}); err != nil {
			return err
		}

		if switching {
			if intended {
				return c.pause()
			}
			return c.play()
		}

		if !loaded {
			return c.play()
		}

		paused, err := c.queryFlag("pause")
		if err != nil {
			return err
		}
		if paused {
			return c.play()
		}
		return c.pause()
	})
}

// Stop halts playback and forgets the position. The media stays set, so Play loads it again.
func (c *Core) Stop() error {
	return c.op("stop", func() error {
		// stopped first, so the idle the engine answers with is not taken for a natural end
		if err := c.state(func(m *session.Machine) error {
			m.Stopped()
			return nil
		}); err != nil {
			return err
		}

		return errors.Join(
			c.exec(dispatch.Stop()),
			c.exec(dispatch.Set("pause", engine.Flag(true))),
		)
	})
}

// Seek moves to fraction of the media duration, fraction in [0, 1].
func (c *Core) Seek(fraction float64) error {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return fmt.Errorf("%w: seek position %v outside [0, 1]", ErrInvalidArgument, fraction)
	}

	return c.op("seek", func() error {
		var durationMs int64
		if err := c.state(func(m *session.Machine) error {
			if m.Session().Path.IsAbsent() {
				return ErrNoMedia
			}
			durationMs = m.Session().DurationMs
			return nil
		}); err != nil {
			return err
		}

		if err := c.exec(dispatch.Seek(fraction * 100)); err != nil {
			return err
		}

		return c.state(func(m *session.Machine) error {
			m.ObservePosition(int64(fraction * float64(durationMs)))
			return nil
		})
	})
}

// SeekRelative moves by seconds from the current position.
func (c *Core) SeekRelative(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("%w: seek offset %v", ErrInvalidArgument, seconds)
	}

	return c.op("seek relative", func() error {
		if err := c.state(func(m *session.Machine) error {
			if m.Session().Path.IsAbsent() {
				return ErrNoMedia
			}
			return nil
		}); err != nil {
			return err
		}
		return c.exec(dispatch.SeekRelative(seconds))
	})
}

// SetVolume sets the volume, clamped to [0, 100].
func (c *Core) SetVolume(volume int) error {
	volume = util.Clamp(volume, 0, 100)

	return c.op("set volume", func() error {
		if err := c.state(func(*session.Machine) error { return nil }); err != nil {
			return err
		}
		if err := c.exec(dispatch.Set("volume", engine.Int64(int64(volume)))); err != nil {
			return err
		}
		return c.state(func(m *session.Machine) error {
			m.SetVolume(volume)
			return nil
		})
	})
}

// SetSpeed sets the playback speed, clamped to [0.1, 10]. During a media switch it is applied after the load.
func (c *Core) SetSpeed(speed float64) error {
	if math.IsNaN(speed) {
		return fmt.Errorf("%w: speed is not a number", ErrInvalidArgument)
	}
	speed = util.Clamp(speed, minSpeed, maxSpeed)

	return c.op("set speed", func() error {
		err := c.state(func(m *session.Machine) error {
			if m.Session().Switching {
				m.SetSpeed(speed)
				return errDeferred
			}
			return nil
		})
		if err != nil {
			return deferred(err)
		}

		if err := c.exec(dispatch.Set("speed", engine.Double(speed))); err != nil {
			return err
		}
		return c.state(func(m *session.Machine) error {
			m.SetSpeed(speed)
			return nil
		})
	})
}

func (c *Core) SetMute(muted bool) error {
	return c.op("set mute", func() error {
		if err := c.state(func(*session.Machine) error { return nil }); err != nil {
			return err
		}
		if err := c.exec(dispatch.Set("mute", engine.Flag(muted))); err != nil {
			return err
		}
		return c.state(func(m *session.Machine) error {
			m.SetMuted(muted)
			return nil
		})
	})
}

// SetLoop toggles reloading the media when it reaches its end.
func (c *Core) SetLoop(enabled bool) error {
	return c.op("set loop", func() error {
		return c.state(func(m *session.Machine) error {
			m.SetLoop(enabled)
			return nil
		})
	})
}

// SetWindow binds video output to a native window id.
func (c *Core) SetWindow(id int64) error {
	if id < 0 {
		return fmt.Errorf("%w: window id %d", ErrInvalidArgument, id)
	}

	return c.op("set window", func() error {
		if err := c.state(func(*session.Machine) error { return nil }); err != nil {
			return err
		}
		if err := c.exec(dispatch.SetWindow(id)); err != nil {
			return err
		}
		return c.state(func(m *session.Machine) error {
			m.SetWindow(mo.Some(id))
			return nil
		})
	})
}

func (c *Core) ClearWindow() error {
	return c.op("clear window", func() error {
		if err := c.state(func(*session.Machine) error { return nil }); err != nil {
			return err
		}
		if err := c.exec(dispatch.ClearWindow()); err != nil {
			return err
		}
		return c.state(func(m *session.Machine) error {
			m.SetWindow(mo.None[int64]())
			return nil
		})
	})
}

func resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidArgument)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return abs, nil
}
