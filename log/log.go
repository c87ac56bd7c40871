// Package log is the application logger: logrus writing to a dated file under where.Logs().
// Nothing is written unless logs.write is set.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freeasset/mediacore/filesystem"
	"github.com/freeasset/mediacore/key"
	"github.com/freeasset/mediacore/where"
	"github.com/samber/lo"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	enabled atomic.Bool

	// mu guards output across reloads
	mu     sync.Mutex
	output io.Closer
)

// Setup (re)configures the logger from the current config. It is safe to call again
// after a config change; the previous log file is closed.
func Setup() error {
	mu.Lock()
	defer mu.Unlock()

	if !viper.GetBool(key.LogsWrite) {
		enabled.Store(false)
		closeOutputLocked()
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	if exists := lo.Must(filesystem.API().Exists(path)); !exists {
		f := lo.Must(filesystem.API().Create(path))
		_ = f.Close()
	}

	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)
	closeOutputLocked()
	output = f

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	enabled.Store(true)
	return nil
}

func closeOutputLocked() {
	if output != nil {
		_ = output.Close()
		output = nil
	}
}

// engineLevels maps engine log level names onto logrus levels.
var engineLevels = map[string]logrus.Level{
	"fatal": logrus.ErrorLevel,
	"error": logrus.ErrorLevel,
	"warn":  logrus.WarnLevel,
	"info":  logrus.InfoLevel,
	"v":     logrus.DebugLevel,
	"debug": logrus.DebugLevel,
	"trace": logrus.TraceLevel,
}

// EngineLevel returns the logrus level for an engine log level name. Unknown names log at debug.
func EngineLevel(level string) logrus.Level {
	if l, ok := engineLevels[level]; ok {
		return l
	}
	return logrus.DebugLevel
}

// Engine records a log line emitted by the playback engine itself.
// An engine fatal never takes the process down, it is logged as an error.
func Engine(prefix, level, text string) {
	if !enabled.Load() {
		return
	}
	logrus.WithFields(logrus.Fields{
		"engine":       prefix,
		"engine_level": level,
	}).Log(EngineLevel(level), text)
}

func Error(args ...any) {
	if enabled.Load() {
		logrus.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled.Load() {
		logrus.Errorf(format, args...)
	}
}

func Warn(args ...any) {
	if enabled.Load() {
		logrus.Warn(args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled.Load() {
		logrus.Warnf(format, args...)
	}
}

func Info(args ...any) {
	if enabled.Load() {
		logrus.Info(args...)
	}
}

func Infof(format string, args ...any) {
	if enabled.Load() {
		logrus.Infof(format, args...)
	}
}

func Debug(args ...any) {
	if enabled.Load() {
		logrus.Debug(args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled.Load() {
		logrus.Debugf(format, args...)
	}
}
