package main

import (
	"fmt"
	"os"

	"github.com/freeasset/mediacore/cmd"
	"github.com/freeasset/mediacore/color"
	"github.com/freeasset/mediacore/config"
	"github.com/freeasset/mediacore/log"
	"github.com/freeasset/mediacore/style"
	"github.com/samber/lo"
)

func main() {
	// Bad values are only reported so that `config set` and `config reset` still run.
	if err := config.Setup(); err != nil {
		fmt.Fprintln(os.Stderr, style.Fg(color.Yellow)(err.Error()))
	}
	lo.Must0(log.Setup())

	cmd.Execute()
}
