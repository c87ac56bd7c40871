// Package constant holds the application name, build metadata and fixed lists shared across packages.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "mediacore"

	// Version is the current application semantic version string.
	Version = "0.3.0"
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// runtime.GOOS values that get a platform specific install hint.
const (
	Darwin  = "darwin"
	Linux   = "linux"
	Windows = "windows"
)
