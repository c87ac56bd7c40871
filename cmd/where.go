package cmd

import (
	"encoding/json"
	"os"

	"github.com/freeasset/mediacore/color"
	"github.com/freeasset/mediacore/style"
	"github.com/freeasset/mediacore/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// whereTarget is a directory the program writes to, selectable by flag.
type whereTarget struct {
	name  string
	path  func() string
	flag  string
	short mo.Option[string]
}

var whereTargets = []whereTarget{
	{"Config", where.Config, "config", mo.Some("c")},
	{"Logs", where.Logs, "logs", mo.Some("l")},
	{"Sockets", where.Sockets, "sockets", mo.Some("s")},
	{"Cache", where.Cache, "cache", mo.None[string]()},
	{"Temp", where.Temp, "temp", mo.None[string]()},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, t := range whereTargets {
		if short, ok := t.short.Get(); ok {
			whereCmd.Flags().BoolP(t.flag, short, false, t.name+" path")
		} else {
			whereCmd.Flags().Bool(t.flag, false, t.name+" path")
		}
	}
	whereCmd.Flags().BoolP("json", "j", false, "Print every path as a JSON object")

	whereCmd.MarkFlagsMutuallyExclusive(append(lo.Map(whereTargets, func(t whereTarget, _ int) string {
		return t.flag
	}), "json")...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Print the directories used for config, logs, engine sockets and cache",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range whereTargets {
			if lo.Must(cmd.Flags().GetBool(t.flag)) {
				cmd.Println(t.path())
				return
			}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			paths := lo.SliceToMap(whereTargets, func(t whereTarget) (string, string) {
				return t.flag, t.path()
			})
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(paths))
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		for i, t := range whereTargets {
			cmd.Printf("%s %s\n", header(t.name+"?"), style.Fg(color.Yellow)("--"+t.flag))
			cmd.Println(t.path())

			if i < len(whereTargets)-1 {
				cmd.Println()
			}
		}
	},
}
