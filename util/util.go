// Package util holds small helpers shared by the CLI and the TUI.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/freeasset/mediacore/filesystem"
	"golang.org/x/exp/constraints"
	"golang.org/x/term"
)

// Quantify picks singular or plural for count: "1 socket", "3 sockets".
func Quantify(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FileStem is the base name of path without its extension.
func FileStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Clamp bounds v to the closed range [low, high].
func Clamp[T constraints.Ordered](v, low, high T) T {
	return min(max(v, low), high)
}

// FormatMillis renders a millisecond offset as m:ss, or h:mm:ss past the hour.
// Negative offsets render as zero.
func FormatMillis(ms int64) string {
	d := time.Duration(max(ms, 0)) * time.Millisecond
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func TerminalSize() (width, height int, err error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// PrintErasable writes msg on the current line. The returned func blanks it again.
func PrintErasable(msg string) (erase func()) {
	fmt.Fprintf(os.Stdout, "\r%s", msg)
	return func() {
		fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", len(msg)))
	}
}

// Delete removes path, recursively when it is a directory. A missing path is an error.
func Delete(path string) error {
	fs := filesystem.API()
	stat, err := fs.Stat(path)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		return fs.RemoveAll(path)
	}
	return fs.Remove(path)
}
