package playback

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/freeasset/mediacore/constant"
	"github.com/freeasset/mediacore/dispatch"
	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/filesystem"
	"github.com/freeasset/mediacore/log"
	"github.com/freeasset/mediacore/session"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// EnableFilter applies a color lookup table. During a media switch it is applied after the load.
func (c *Core) EnableFilter(path string) error {
	return c.op("enable filter", func() error {
		abs, err := resolve(path)
		if err != nil {
			return err
		}
		if exists, err := filesystem.API().Exists(abs); err != nil || !exists {
			return fmt.Errorf("%w: filter %s does not exist", ErrInvalidArgument, abs)
		}
		if ext := strings.ToLower(filepath.Ext(abs)); !lo.Contains(constant.LUTExtensions, ext) {
			log.Warnf("playback: %s is not a known lookup table format", abs)
		}

		var active mo.Option[string]
		err = c.state(func(m *session.Machine) error {
			if m.Session().Switching {
				m.SetFilter(mo.Some(abs))
				return errDeferred
			}
			active = m.Filter()
			return nil
		})
		if err != nil {
			return deferred(err)
		}

		if active.IsPresent() {
			if err := c.disableFilterChain(); err != nil {
				log.Warnf("playback: %v", err)
			}
		}

		if err := c.enableFilterChain(abs); err != nil {
			return err
		}

		return c.state(func(m *session.Machine) error {
			m.SetFilter(mo.Some(abs))
			return nil
		})
	})
}

// DisableFilter removes the active lookup table, if any.
func (c *Core) DisableFilter() error {
	return c.op("disable filter", func() error {
		var active bool
		err := c.state(func(m *session.Machine) error {
			if m.Session().Switching {
				m.SetFilter(mo.None[string]())
				return errDeferred
			}
			active = m.Filter().IsPresent()
			return nil
		})
		if err != nil {
			return deferred(err)
		}
		if !active {
			return nil
		}

		if err := c.disableFilterChain(); err != nil {
			return err
		}

		return c.state(func(m *session.Machine) error {
			m.SetFilter(mo.None[string]())
			return nil
		})
	})
}

// enableFilterChain tries each way the engine can take a lookup table and stops at the first that works.
func (c *Core) enableFilterChain(abs string) error {
	steps := []dispatch.Command{
		dispatch.Set("lut", engine.String(abs)),
		dispatch.Raw("vf", "add", lut3d(abs)),
		dispatch.Raw("change-list", "glsl-shaders", "append", abs),
	}

	var errs []error
	for _, cmd := range steps {
		err := c.exec(cmd)
		if err == nil {
			log.Infof("playback: filter %s applied with %q", abs, cmd)
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("enable filter %s: %w", abs, errors.Join(errs...))
}

// disableFilterChain clears every place a lookup table may have landed. One success is enough.
func (c *Core) disableFilterChain() error {
	steps := []dispatch.Command{
		dispatch.Set("lut", engine.String("")),
		dispatch.Raw("change-list", "glsl-shaders", "clr", ""),
		dispatch.Raw("vf", "clr", ""),
	}

	var (
		errs []error
		ok   bool
	)
	for _, cmd := range steps {
		if err := c.exec(cmd); err != nil {
			errs = append(errs, err)
			continue
		}
		ok = true
	}
	if ok {
		return nil
	}
	return fmt.Errorf("disable filter: %w", errors.Join(errs...))
}

func lut3d(abs string) string {
	if strings.Contains(abs, " ") {
		return "lavfi-lut3d=file='" + abs + "'"
	}
	return "lavfi-lut3d=file=" + abs
}
