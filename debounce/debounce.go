// Package debounce detects bursts of idle events from the engine and throttles how often they are acted on.
package debounce

import (
	"time"

	"golang.org/x/time/rate"
)

// Settings tune the detector.
type Settings struct {
	// Window is how far back events are counted.
	Window time.Duration
	// Threshold is the number of events tolerated inside Window. One more starts suppression.
	Threshold int
	// Suppress is how long events are dropped after a storm.
	Suppress time.Duration
	// MinInterval is the minimum spacing between two processed events.
	MinInterval time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Window:      5 * time.Second,
		Threshold:   5,
		Suppress:    3 * time.Second,
		MinInterval: 500 * time.Millisecond,
	}
}

// Decision is what to do with one idle event.
type Decision int

const (
	Process Decision = iota
	RateLimited
	Suppressed
	StormDetected
)

func (d Decision) String() string {
	switch d {
	case Process:
		return "process"
	case RateLimited:
		return "rate_limited"
	case Suppressed:
		return "suppressed"
	case StormDetected:
		return "storm"
	default:
		return "unknown"
	}
}

// Idle is a sliding-window storm detector. It is not safe for concurrent use; the owner serializes calls.
type Idle struct {
	settings      Settings
	window        []time.Time
	suppressUntil time.Time
	limiter       *rate.Limiter
}

func New(settings Settings) *Idle {
	d := &Idle{settings: settings}
	d.limiter = d.newLimiter()
	return d
}

func (d *Idle) newLimiter() *rate.Limiter {
	if d.settings.MinInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d.settings.MinInterval), 1)
}

// Observe records an idle event seen at now and decides whether to act on it.
// Events dropped during suppression are not counted.
func (d *Idle) Observe(now time.Time) Decision {
	if !d.suppressUntil.IsZero() {
		if now.Before(d.suppressUntil) {
			return Suppressed
		}
		d.suppressUntil = time.Time{}
		d.window = d.window[:0]
	}

	d.window = append(d.window, now)
	cutoff := now.Add(-d.settings.Window)
	kept := d.window[:0]
	for _, ts := range d.window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	d.window = kept

	if len(d.window) > d.settings.Threshold {
		d.window = d.window[:0]
		d.suppressUntil = now.Add(d.settings.Suppress)
		return StormDetected
	}

	if !d.limiter.AllowN(now, 1) {
		return RateLimited
	}
	return Process
}

// Suppressing reports whether events at now would be dropped.
func (d *Idle) Suppressing(now time.Time) bool {
	return !d.suppressUntil.IsZero() && now.Before(d.suppressUntil)
}

// Pending returns how many events are currently inside the window.
func (d *Idle) Pending() int {
	return len(d.window)
}

// Reset forgets every recorded event, any suppression and the rate limit.
func (d *Idle) Reset() {
	d.window = d.window[:0]
	d.suppressUntil = time.Time{}
	d.limiter = d.newLimiter()
}
