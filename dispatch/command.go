package dispatch

import (
	"strconv"
	"strings"

	"github.com/freeasset/mediacore/engine"
)

// Command is an engine command as an ordered argument vector, split into name and arguments.
type Command struct {
	Name string
	Args []string
}

// Vector returns the full argument vector sent to the engine.
func (c Command) Vector() []string {
	return append([]string{c.Name}, c.Args...)
}

func (c Command) String() string {
	return strings.Join(c.Vector(), " ")
}

// Raw builds a command from a full argument vector.
func Raw(args ...string) Command {
	if len(args) == 0 {
		return Command{}
	}
	return Command{Name: args[0], Args: append([]string(nil), args[1:]...)}
}

// LoadFile replaces whatever is playing with path.
func LoadFile(path string) Command {
	return Command{Name: "loadfile", Args: []string{path, "replace"}}
}

func Stop() Command          { return Command{Name: "stop"} }
func PlaylistClear() Command { return Command{Name: "playlist-clear"} }
func Quit() Command          { return Command{Name: "quit"} }

// Seek jumps to percent of the duration, frame exact.
func Seek(percent float64) Command {
	return Command{Name: "seek", Args: []string{formatFloat(percent), "absolute-percent", "exact"}}
}

// SeekStart rewinds to the beginning.
func SeekStart() Command {
	return Command{Name: "seek", Args: []string{"0", "absolute", "exact"}}
}

// SeekRelative moves by seconds from the current position.
func SeekRelative(seconds float64) Command {
	return Command{Name: "seek", Args: []string{formatFloat(seconds), "relative", "exact"}}
}

// Set writes a property through the set command.
func Set(property string, value engine.Value) Command {
	return Command{Name: "set", Args: []string{property, value.String()}}
}

// SetWindow binds video output to a native window id.
func SetWindow(id int64) Command {
	return Set("wid", engine.Int64(id))
}

// ClearWindow detaches video output from any native window.
func ClearWindow() Command {
	return SetWindow(-1)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Class is the dispatch policy class of a command.
type Class int

const (
	// Advisory commands are dropped while a media switch is in progress.
	Advisory Class = iota
	// Transport commands are queries and play/pause/seek/volume, allowed during a switch.
	Transport
	// Critical commands drive the switch itself and are always allowed.
	Critical
)

func (c Class) String() string {
	switch c {
	case Critical:
		return "critical"
	case Transport:
		return "transport"
	default:
		return "advisory"
	}
}

// AllowedWhileSwitching reports whether the class may run during a media switch.
func (c Class) AllowedWhileSwitching() bool {
	return c != Advisory
}

// Query is the pseudo command name used for property reads.
const Query = "query"

// Classify assigns a command its policy class.
func Classify(c Command) Class {
	switch c.Name {
	case "stop", "playlist-clear", "loadfile", "quit":
		return Critical
	case "seek", Query:
		return Transport
	case "set", "set_property":
		if len(c.Args) == 0 {
			return Advisory
		}
		switch c.Args[0] {
		case "wid":
			return Critical
		case "pause", "volume", "mute":
			return Transport
		}
	}
	return Advisory
}
