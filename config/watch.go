package config

import (
	"github.com/freeasset/mediacore/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-reads the config file whenever it changes on disk and calls onChange afterwards.
// An edit that fails Validate is logged and onChange is skipped.
// It is a no-op when no config file was found during Setup.
func Watch(onChange func()) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		if err := Validate(); err != nil {
			log.Warnf("ignoring config change in %s: %s", e.Name, err)
			return
		}

		log.Infof("config changed: %s", e.Name)
		if onChange != nil {
			onChange()
		}
	})
	viper.WatchConfig()
}
