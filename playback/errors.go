package playback

import (
	"errors"

	"github.com/freeasset/mediacore/dispatch"
	"github.com/freeasset/mediacore/session"
)

var (
	// ErrEngineUnavailable means the engine could not be created or initialized, or has shut down.
	// It is final for the core; every later call fails with it.
	ErrEngineUnavailable = errors.New("engine unavailable")
	// ErrCommandTimeout means the engine did not answer in time. The command may still take effect later.
	ErrCommandTimeout = dispatch.ErrTimeout
	// ErrCommandRejected means the command was refused while a media switch was in progress.
	ErrCommandRejected = dispatch.ErrRejected
	// ErrLoadFailed means the engine cannot open the media.
	ErrLoadFailed = errors.New("media could not be loaded")
	// ErrNoMedia means the call needs media and none was set.
	ErrNoMedia = session.ErrNoMedia
	// ErrInvalidArgument means an argument was outside its accepted range.
	ErrInvalidArgument = errors.New("invalid argument")
)
