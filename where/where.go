// Package where resolves the directories the program writes to. Every getter creates its directory.
package where

import (
	"os"
	"path/filepath"

	"github.com/freeasset/mediacore/constant"
	"github.com/freeasset/mediacore/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the config directory.
const EnvConfigPath = "MEDIACORE_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is $MEDIACORE_CONFIG_PATH, or mediacore under os.UserConfigDir. Logs live inside it.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache holds the console history. It falls back to ./cache when no user cache dir exists.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}

// Sockets resolves the directory holding engine IPC sockets.
// Socket paths have a short length limit on most platforms, so this lives under the temp dir.
func Sockets() string {
	return ensureDir(filepath.Join(Temp(), "ipc"))
}
