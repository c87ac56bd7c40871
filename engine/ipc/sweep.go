package ipc

import (
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/freeasset/mediacore/filesystem"
	"github.com/freeasset/mediacore/log"
)

const probeTimeout = 200 * time.Millisecond

// RemoveStaleSockets deletes every *.sock in dir that no process is listening on.
// Sockets of running players are left alone.
func RemoveStaleSockets(dir string) (removed int, err error) {
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return 0, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sock") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if conn, err := net.DialTimeout("unix", path, probeTimeout); err == nil {
			_ = conn.Close()
			continue
		}

		if err := filesystem.API().Remove(path); err != nil {
			return removed, err
		}
		log.Debugf("removed stale socket %s", path)
		removed++
	}

	return removed, nil
}
