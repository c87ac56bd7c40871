package cmd

import (
	"context"
	"fmt"

	"github.com/freeasset/mediacore/config"
	"github.com/freeasset/mediacore/engine"
	"github.com/freeasset/mediacore/engine/ipc"
	"github.com/freeasset/mediacore/key"
	"github.com/freeasset/mediacore/log"
	"github.com/freeasset/mediacore/metrics"
	"github.com/freeasset/mediacore/playback"
	"github.com/spf13/viper"
)

// newCore builds a playback core for the configured backend. tweak may adjust the options first.
func newCore(tweak func(*playback.Options)) (*playback.Core, error) {
	backend := viper.GetString(key.PlayerBackend)
	factory, err := engine.Lookup(backend)
	if err != nil {
		return nil, err
	}

	if backend == ipc.Backend {
		CheckDependencies()
	}

	opts, err := playback.OptionsFromConfig()
	if err != nil {
		return nil, fmt.Errorf("player options: %w", err)
	}
	if tweak != nil {
		tweak(&opts)
	}

	return playback.New(factory, opts)
}

// startAmbient starts the metrics listener and the config watcher for the lifetime of ctx.
// A config change reloads the logger and the loop setting of core.
func startAmbient(ctx context.Context, core *playback.Core) {
	if addr := viper.GetString(key.MetricsListen); addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr); err != nil {
				log.Errorf("metrics: %v", err)
			}
		}()
	}

	config.Watch(func() {
		if err := log.Setup(); err != nil {
			log.Warnf("reloading logger: %v", err)
		}

		if loop := viper.GetBool(key.PlayerLoop); core.Snapshot().Loop != loop {
			if err := core.SetLoop(loop); err != nil {
				log.Warnf("reloading %s: %v", key.PlayerLoop, err)
			}
		}
	})
}
