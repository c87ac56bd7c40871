// Package engine models the boundary to the native playback engine.
//
// The event-id and error-code spaces mirror the mpv client API one to one, so any
// backend that speaks mpv (the JSON-IPC process or the libmpv binding) can sit behind
// the Engine interface. Raw engine events are decoded into the closed Event type once,
// right after polling, and nothing above this package sees backend-specific data.
package engine

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// Engine is a single native engine instance.
//
// Implementations must be safe for concurrent use: WaitEvent is called from the event
// loop while commands run on dispatcher workers.
type Engine interface {
	// SetOptionString sets an option before Initialize.
	SetOptionString(name, value string) error

	// Initialize starts the engine. Options set afterwards may be ignored.
	Initialize() error

	// Command runs a command given as an ordered argument vector and waits for it to complete.
	Command(args ...string) error

	// SetProperty writes a property by name.
	SetProperty(name string, value Value) error

	// GetProperty reads a property by name in the requested format.
	GetProperty(name string, format Format) (Value, error)

	// RequestLogMessages asks for LogMessage events at minLevel and above. "no" turns them off.
	RequestLogMessages(minLevel string) error

	// ObserveProperty subscribes to changes of a property.
	// Changes are delivered as PropertyChange events carrying id as reply userdata.
	ObserveProperty(id uint64, name string, format Format) error

	// WaitEvent blocks up to timeout for the next event and returns an event with ID None when nothing arrived.
	WaitEvent(timeout time.Duration) Event

	// Wakeup interrupts a blocked WaitEvent.
	Wakeup()

	// TerminateDestroy shuts the engine down and releases it. It must not be used afterwards.
	TerminateDestroy()

	// ClientAPIVersion returns the engine's client API version as major.minor.patch.
	ClientAPIVersion() string
}

// Factory creates a fresh, uninitialized engine.
type Factory func() (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available under name. Registering the same name twice panics.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic("engine: duplicate backend " + name)
	}
	registry[name] = factory
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown engine backend %q, available: %v", name, backendsLocked())
	}
	return factory, nil
}

// Backends lists registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return backendsLocked()
}

func backendsLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
