//go:build libmpv

package cmd

import _ "github.com/freeasset/mediacore/engine/libmpv"
