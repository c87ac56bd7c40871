// Package icon renders status symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/freeasset/mediacore/key"
	"github.com/spf13/viper"
)

// Variant names, in the order shown by completion.
const (
	emoji   = "emoji"
	kaomoji = "kaomoji"
	plain   = "plain"
	squares = "squares"
	nerd    = "nerd"
)

// Variants lists the accepted values of icons.variant.
func Variants() []string {
	return []string{emoji, kaomoji, plain, squares, nerd}
}

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) in(variant string) string {
	switch variant {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return d.plain
	}
}

// Get renders i in the configured variant. An unknown variant falls back to plain.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.in(viper.GetString(key.IconsVariant))
}

// ForState picks the icon shown next to a session state name.
func ForState(state string) Icon {
	switch state {
	case "playing":
		return Play
	case "paused":
		return Pause
	case "switching", "loading":
		return Progress
	case "terminated":
		return Fail
	default:
		return Stop
	}
}
