// Package filesystem routes every file access of the program through one afero backend,
// so tests can swap the real disk for memory.
package filesystem

import (
	"sync/atomic"

	"github.com/spf13/afero"
)

// backend is read from the config watcher goroutine while tests may swap it.
var backend atomic.Pointer[afero.Afero]

func init() {
	SetOsFs()
}

// API returns the active backend.
func API() afero.Afero {
	return *backend.Load()
}

func set(fs afero.Fs) {
	backend.Store(&afero.Afero{Fs: fs})
}

// SetOsFs switches to the real disk.
func SetOsFs() {
	set(afero.NewOsFs())
}

// SetMemMapFs switches to a fresh in-memory filesystem.
func SetMemMapFs() {
	set(afero.NewMemMapFs())
}

// SetReadOnly wraps the active backend so that every write fails.
func SetReadOnly() {
	set(afero.NewReadOnlyFs(API().Fs))
}
