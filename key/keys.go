// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback Engine - these keys select and tune the native playback engine backend.
const (
	PlayerBackend        = "player.backend"
	PlayerMpvPath        = "player.mpv_path"
	PlayerOptions        = "player.options"
	PlayerCommandTimeout = "player.command_timeout"
	PlayerLoadTimeout    = "player.load_timeout"
	PlayerPollInterval   = "player.poll_interval"
	PlayerMaxInflight    = "player.max_inflight"
	PlayerPlayRetries    = "player.play_retries"
)

// Playback Preferences - these keys seed the device-global state of a new core.
const (
	PlayerLoop   = "player.loop"
	PlayerVolume = "player.volume"
)

// Idle Storm Detection - these keys tune the debouncer guarding against idle event bursts.
const (
	IdleWindow      = "idle.window"
	IdleThreshold   = "idle.threshold"
	IdleSuppress    = "idle.suppress"
	IdleMinInterval = "idle.min_interval"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"

	LogsEngineLevel = "logs.engine_level"
)

// Metrics Exposition - these keys control the optional Prometheus listener.
const (
	MetricsListen = "metrics.listen"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
