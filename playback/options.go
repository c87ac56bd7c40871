package playback

import (
	"time"

	"github.com/freeasset/mediacore/debounce"
	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/key"
	"github.com/spf13/viper"
)

// Options configure a Core.
type Options struct {
	// EngineOptions are applied in order before the engine starts.
	EngineOptions []engine.Option
	// EngineLogLevel is the lowest engine log level forwarded into the log, "no" for none.
	EngineLogLevel string

	CommandTimeout time.Duration
	LoadTimeout    time.Duration
	PollInterval   time.Duration
	MaxInflight    int64
	PlayRetries    int

	Loop   bool
	Volume int

	Idle debounce.Settings

	// Clock stamps idle events. Defaults to time.Now.
	Clock func() time.Time
}

func DefaultOptions() Options {
	return Options{
		EngineOptions:  engine.DefaultOptions(),
		EngineLogLevel: "warn",
		CommandTimeout: 5 * time.Second,
		LoadTimeout:    30 * time.Second,
		PollInterval:   100 * time.Millisecond,
		MaxInflight:    16,
		PlayRetries:    2,
		Volume:         100,
		Idle:           debounce.DefaultSettings(),
		Clock:          time.Now,
	}
}

// OptionsFromConfig builds Options from the loaded configuration.
// Extra engine options from the config are appended after the defaults so they take precedence.
func OptionsFromConfig() (Options, error) {
	opts := DefaultOptions()

	for _, raw := range viper.GetStringSlice(key.PlayerOptions) {
		o, err := engine.ParseOption(raw)
		if err != nil {
			return Options{}, err
		}
		opts.EngineOptions = append(opts.EngineOptions, o)
	}

	opts.EngineLogLevel = viper.GetString(key.LogsEngineLevel)
	opts.CommandTimeout = viper.GetDuration(key.PlayerCommandTimeout)
	opts.LoadTimeout = viper.GetDuration(key.PlayerLoadTimeout)
	opts.PollInterval = viper.GetDuration(key.PlayerPollInterval)
	opts.MaxInflight = viper.GetInt64(key.PlayerMaxInflight)
	opts.PlayRetries = viper.GetInt(key.PlayerPlayRetries)
	opts.Loop = viper.GetBool(key.PlayerLoop)
	opts.Volume = viper.GetInt(key.PlayerVolume)
	opts.Idle = debounce.Settings{
		Window:      viper.GetDuration(key.IdleWindow),
		Threshold:   viper.GetInt(key.IdleThreshold),
		Suppress:    viper.GetDuration(key.IdleSuppress),
		MinInterval: viper.GetDuration(key.IdleMinInterval),
	}

	return opts.withDefaults(), nil
}

// withDefaults fills zero values so a partially built Options is usable.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.EngineLogLevel == "" {
		o.EngineLogLevel = d.EngineLogLevel
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = d.CommandTimeout
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = d.LoadTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.MaxInflight <= 0 {
		o.MaxInflight = d.MaxInflight
	}
	if o.PlayRetries < 0 {
		o.PlayRetries = 0
	}
	if o.Idle.Window <= 0 || o.Idle.Threshold <= 0 {
		o.Idle = d.Idle
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}
