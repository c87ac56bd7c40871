// Package session tracks the lifecycle of the current media and what the user intends it to do.
//
// The Machine performs no engine calls. Its owner holds the core lock around every
// method and translates transitions into commands.
package session

import (
	"errors"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// State is the lifecycle state of the current media.
type State int

const (
	Idle State = iota
	Switching
	Loading
	Playing
	Paused
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Switching:
		return "switching"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var (
	ErrTerminated = errors.New("playback core terminated")
	ErrNoMedia    = errors.New("no media set")
)

// MediaSession is the media currently associated with the engine.
// A new value replaces the old one on every switch.
type MediaSession struct {
	ID               uuid.UUID
	Path             mo.Option[string]
	DurationMs       int64
	CachedPositionMs int64
	VideoWidth       int64
	IntendedPlaying  bool
	LoopEnabled      bool
	Switching        bool
	// AtEnd is set once playback ended or was stopped, so play has to rewind or reload.
	AtEnd bool
	Err   error
}

// PendingFilter is what must be reapplied once the engine confirms a reload.
type PendingFilter struct {
	FilterEnabled bool
	FilterPath    mo.Option[string]
	Speed         float64
}

// Device is engine-global state that survives media switches.
type Device struct {
	Volume int
	Speed  float64
	Muted  bool
	Window mo.Option[int64]
}

// Loaded is the result of a confirmed load.
type Loaded struct {
	Pending mo.Option[PendingFilter]
	Resume  bool
}

// Machine owns the current session, the active filter and the pending reapply state.
type Machine struct {
	state   State
	session MediaSession
	device  Device
	filter  mo.Option[string]
	pending mo.Option[PendingFilter]

	// start-file events still owed by the engine, one per load sent.
	// Only the last of them answers the current load, anything loaded before it is stale.
	startsOwed int
}

func New(loop bool, volume int) *Machine {
	return &Machine{
		state:   Idle,
		session: MediaSession{ID: uuid.New(), LoopEnabled: loop},
		device:  Device{Volume: volume, Speed: 1},
	}
}

func (m *Machine) State() State              { return m.state }
func (m *Machine) Session() MediaSession     { return m.session }
func (m *Machine) Device() Device            { return m.device }
func (m *Machine) Filter() mo.Option[string] { return m.filter }
func (m *Machine) Pending() mo.Option[PendingFilter] {
	return m.pending
}
// AwaitingStart reports whether a load is still waiting for its start-file.
func (m *Machine) AwaitingStart() bool { return m.startsOwed > 0 }
func (m *Machine) Terminated() bool    { return m.state == Terminated }

// Loaded reports whether media is open in the engine.
func (m *Machine) Loaded() bool {
	return m.state == Playing || m.state == Paused
}

// Replace starts a switch to path. The previous session, its filter and any pending state are discarded.
func (m *Machine) Replace(path string) (MediaSession, error) {
	if m.state == Terminated {
		return MediaSession{}, ErrTerminated
	}

	m.session = MediaSession{
		ID:          uuid.New(),
		Path:        mo.Some(path),
		LoopEnabled: m.session.LoopEnabled,
		Switching:   true,
	}
	m.filter = mo.None[string]()
	m.pending = mo.Some(PendingFilter{Speed: m.device.Speed})
	m.startsOwed++
	m.state = Switching
	return m.session, nil
}

// BeginReload starts reloading the current media with the active filter and speed captured for reapply.
func (m *Machine) BeginReload() (PendingFilter, error) {
	if m.state == Terminated {
		return PendingFilter{}, ErrTerminated
	}
	if m.session.Path.IsAbsent() {
		return PendingFilter{}, ErrNoMedia
	}

	p := PendingFilter{
		FilterEnabled: m.filter.IsPresent(),
		FilterPath:    m.filter,
		Speed:         m.device.Speed,
	}
	m.pending = mo.Some(p)
	m.session.Switching = true
	m.session.IntendedPlaying = true
	m.session.AtEnd = false
	m.session.Err = nil
	m.startsOwed++
	m.state = Loading
	return p, nil
}

// LoadIssued records that the engine accepted the load command.
// The engine may already have confirmed the load by then, in which case nothing changes.
func (m *Machine) LoadIssued() {
	if m.state == Terminated || !m.session.Switching {
		return
	}
	m.state = Loading
}

// LoadFailed ends the switch with an error reported by the engine after it started the load.
// The session stays on its path, but play will not retry it: the caller has to set the media again.
func (m *Machine) LoadFailed(err error) {
	if m.state == Terminated {
		return
	}
	m.session.Err = err
	m.session.Switching = false
	m.session.IntendedPlaying = false
	m.session.AtEnd = true
	m.pending = mo.None[PendingFilter]()
	m.state = Idle
}

// LoadNotIssued is LoadFailed for a load command that failed to dispatch, so no start-file is owed for it.
// A timed-out load that the engine runs anyway is then taken for a stray start-file.
func (m *Machine) LoadNotIssued(err error) {
	m.ReleaseStart()
	m.LoadFailed(err)
}

// ReleaseStart forgets the start-file owed for a load that was never sent.
func (m *Machine) ReleaseStart() {
	if m.startsOwed > 0 {
		m.startsOwed--
	}
}

// StartFile records the engine's start-file event and reports whether it answered the latest load.
// Start-files of loads that were superseded before the engine got to them report false.
func (m *Machine) StartFile() bool {
	if m.startsOwed == 0 {
		return false
	}
	m.startsOwed--
	return m.startsOwed == 0 && m.session.Switching
}

// FileLoaded completes a switch. It returns false for a stale event that belongs to an earlier load.
// The pending state is handed out once and cleared.
func (m *Machine) FileLoaded() (Loaded, bool) {
	if m.state == Terminated || m.startsOwed > 0 || !m.session.Switching {
		return Loaded{}, false
	}

	loaded := Loaded{Pending: m.pending, Resume: m.session.IntendedPlaying}
	m.pending = mo.None[PendingFilter]()
	m.session.Switching = false
	m.session.AtEnd = false
	m.session.Err = nil
	m.session.CachedPositionMs = 0
	if m.session.IntendedPlaying {
		m.state = Playing
	} else {
		m.state = Paused
	}
	return loaded, true
}

// EndOfFile records that the engine reached the end of the media.
func (m *Machine) EndOfFile() {
	m.session.AtEnd = true
}

// MarkEnded records a natural end of playback confirmed by the idle handler.
func (m *Machine) MarkEnded() {
	if m.state == Terminated {
		return
	}
	m.session.AtEnd = true
	m.session.IntendedPlaying = false
	m.state = Idle
}

// Stopped resets position caches and intent. The path is kept so play can reload it.
func (m *Machine) Stopped() {
	if m.state == Terminated {
		return
	}
	m.session.CachedPositionMs = 0
	m.session.IntendedPlaying = false
	m.session.Switching = false
	m.session.AtEnd = true
	m.pending = mo.None[PendingFilter]()
	m.state = Idle
}

// Rewound records a successful seek back to the start of media that is still open in the engine.
func (m *Machine) Rewound() {
	if m.state == Terminated || m.session.Switching || m.session.Path.IsAbsent() {
		return
	}
	m.session.AtEnd = false
	m.session.CachedPositionMs = 0
	if m.state == Idle {
		m.state = Paused
	}
}

// ObservePause applies the device-reported pause flag. It moves the state, never the intent.
func (m *Machine) ObservePause(paused bool) {
	if !m.Loaded() {
		return
	}
	if paused {
		m.state = Paused
	} else {
		m.state = Playing
	}
}

// SetIntent records whether the user wants the media to play.
func (m *Machine) SetIntent(playing bool) {
	m.session.IntendedPlaying = playing
}

func (m *Machine) ObservePosition(ms int64) {
	if ms < 0 {
		ms = 0
	}
	m.session.CachedPositionMs = ms
}

func (m *Machine) ObserveDuration(ms int64) {
	if ms < 0 {
		ms = 0
	}
	m.session.DurationMs = ms
}

func (m *Machine) ObserveVideoWidth(width int64) {
	m.session.VideoWidth = width
}

// NearStart reports whether the cached position is within thresholdMs of zero.
func (m *Machine) NearStart(thresholdMs int64) bool {
	return m.session.CachedPositionMs < thresholdMs
}

func (m *Machine) SetLoop(enabled bool) {
	m.session.LoopEnabled = enabled
}

// SetFilter records the active filter. During a switch it also updates the pending state so the filter is applied after the load.
func (m *Machine) SetFilter(path mo.Option[string]) {
	m.filter = path
	if p, ok := m.pending.Get(); ok {
		p.FilterEnabled = path.IsPresent()
		p.FilterPath = path
		m.pending = mo.Some(p)
	}
}

// SetSpeed records the playback speed, mirrored into the pending state during a switch.
func (m *Machine) SetSpeed(speed float64) {
	m.device.Speed = speed
	if p, ok := m.pending.Get(); ok {
		p.Speed = speed
		m.pending = mo.Some(p)
	}
}

func (m *Machine) SetVolume(volume int) { m.device.Volume = volume }
func (m *Machine) SetMuted(muted bool)  { m.device.Muted = muted }

func (m *Machine) SetWindow(id mo.Option[int64]) {
	m.device.Window = id
}

// Terminate is final. Every later transition is ignored or refused.
func (m *Machine) Terminate() {
	m.state = Terminated
	m.session.Switching = false
	m.session.IntendedPlaying = false
	m.pending = mo.None[PendingFilter]()
	m.startsOwed = 0
}
