package cmd

import (
	"fmt"

	"github.com/freeasset/mediacore/engine/ipc"
	"github.com/freeasset/mediacore/icon"
	"github.com/freeasset/mediacore/util"
	"github.com/freeasset/mediacore/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// clearTarget is something clear can remove. run returns a short summary.
type clearTarget struct {
	name  string
	flag  string
	short string
	run   func() (string, error)
}

func removeDir(location func() string) func() (string, error) {
	return func() (string, error) {
		return "removed", util.Delete(location())
	}
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", "c", removeDir(where.Cache)},
	{"logs directory", "logs", "l", removeDir(where.Logs)},
	{"stale engine sockets", "sockets", "s", func() (string, error) {
		n, err := ipc.RemoveStaleSockets(where.Sockets())
		return util.Quantify(n, "socket", "sockets") + " removed", err
	}},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, t := range clearTargets {
		clearCmd.Flags().BoolP(t.flag, t.short, false, "clear "+t.name)
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached files, logs or sockets left behind by crashed players",
	Long:  "Remove cached files, logs or sockets left behind by crashed players. Sockets of running players are kept.",
	Run: func(cmd *cobra.Command, args []string) {
		selected := lo.Filter(clearTargets, func(t clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(t.flag))
		})
		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, t := range selected {
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), t.name))
			summary, err := t.run()
			erase()
			handleErr(err)

			fmt.Printf("%s %s: %s\n", icon.Get(icon.Success), util.Capitalize(t.name), summary)
		}
	},
}
