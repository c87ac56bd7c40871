package playback

// Snapshot is a read-only view of the core, safe to poll from a UI refresh timer.
type Snapshot struct {
	SessionID        string  `json:"session_id" jsonschema:"description=Identifier of the current media session"`
	Path             string  `json:"path,omitempty" jsonschema:"description=Absolute path of the current media"`
	State            string  `json:"state" jsonschema:"enum=idle,enum=switching,enum=loading,enum=playing,enum=paused,enum=terminated"`
	IsPlaying        bool    `json:"is_playing"`
	CurrentTimeMs    int64   `json:"current_time_ms" jsonschema:"minimum=0"`
	DurationMs       int64   `json:"duration_ms" jsonschema:"minimum=0"`
	PositionFraction float64 `json:"position_fraction" jsonschema:"minimum=0,maximum=1"`
	Volume           int     `json:"volume" jsonschema:"minimum=0,maximum=100"`
	Speed            float64 `json:"speed" jsonschema:"minimum=0.1,maximum=10"`
	Muted            bool    `json:"muted"`
	Loop             bool    `json:"loop"`
	Filter           string  `json:"filter,omitempty" jsonschema:"description=Active color lookup table"`
	Switching        bool    `json:"switching"`
	AudioOnly        bool    `json:"audio_only"`
	Available        bool    `json:"available"`
	Error            string  `json:"error,omitempty"`
}
